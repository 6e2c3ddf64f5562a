package mcp

import (
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// NewServer builds an MCP server with the read only routine analytics tools.
// The backend mounts it at /mcp, cmd/routine_mcp serves it over stdio.
func NewServer(service analyticsService) *mcp.Server {
	h := NewHandler(service)
	s := mcp.NewServer(&mcp.Implementation{
		Name:    "routinestats",
		Version: "1.0.0",
	}, nil)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_event_insights",
		Description: "Returns time-of-day statistics (average time, earliest, latest, consistency 0-1, occurrence count) for one routine event type or, without event_type, for every type with data. Optional: days. Use when asking when something usually happens.",
	}, h.GetEventInsightsTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_duration_insight",
		Description: "Returns average, min and max seconds between two event types logged on the same day (first occurrence of each). Args: from_event, to_event; optional: days. Result is null when no day has both in order.",
	}, h.GetDurationInsightTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_commute_insights",
		Description: "Returns duration insights for the commute legs (home to bus, bus to subway, subway to work, home to work, work to home) that have data. Optional: days.",
	}, h.GetCommuteInsightsTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_routine_suggestions",
		Description: "Returns suggested times for wake up, leaving home and bedtime with a confidence and reasoning, only for events consistent enough. Optional: days.",
	}, h.GetRoutineSuggestionsTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "check_outlier",
		Description: "Checks whether a timestamp deviates from the event's usual time of day by at least threshold_minutes. Args: event_type; optional: timestamp (RFC3339, default now), threshold_minutes, baseline_days.",
	}, h.CheckOutlierTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_feedback_summaries",
		Description: "Returns caught/missed feedback statistics (attempts, success rate, average adjustment, latest feedback) for one event type or all boarding events. Optional: event_type, days.",
	}, h.GetFeedbackSummariesTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_adaptive_adjustment",
		Description: "Returns how much a reminder for the event type should move based on feedback success rate, or with recent=true based on the latest feedback only. Args: event_type; optional: base_time (RFC3339), days, recent. Null when there is not enough feedback.",
	}, h.GetAdaptiveAdjustmentTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_daily_summaries",
		Description: "Returns the logged events of each day in the window with the share of event types completed that day. Optional: days.",
	}, h.GetDailySummariesTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_dashboard",
		Description: "Returns consistency score, routine suggestions, recent reminder adjustments and feedback summaries in one response. Optional: days.",
	}, h.GetDashboardTool())

	return s
}

// NewHTTPHandler serves the MCP server over streamable HTTP.
func NewHTTPHandler(server *mcp.Server) http.Handler {
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, nil)
	return otelhttp.NewHandler(handler, "mcp")
}
