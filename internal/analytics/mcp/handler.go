package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/2beens/routinestats/internal/analytics"
	"github.com/2beens/routinestats/internal/routine"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type analyticsService interface {
	Defaults() analytics.Defaults
	Now() time.Time
	DailySummaries(ctx context.Context, days int) ([]routine.DailySummary, error)
	EventInsight(ctx context.Context, eventType routine.EventType, days int) (*routine.EventInsight, error)
	AllEventInsights(ctx context.Context, days int) ([]routine.EventInsight, error)
	DurationInsight(ctx context.Context, from, to routine.EventType, days int) (*routine.DurationInsight, error)
	CommuteInsights(ctx context.Context, days int) ([]routine.DurationInsight, error)
	RoutineSuggestions(ctx context.Context, days int) ([]routine.RoutineSuggestion, error)
	CheckOutlier(ctx context.Context, eventType routine.EventType, timestamp time.Time, thresholdMinutes, baselineDays int) (routine.OutlierInfo, error)
	FeedbackSummary(ctx context.Context, eventType routine.EventType, days int) (*routine.FeedbackSummary, error)
	AllFeedbackSummaries(ctx context.Context, days int) ([]routine.FeedbackSummary, error)
	AdaptiveAdjustment(ctx context.Context, eventType routine.EventType, baseTime time.Time, days int) (*routine.AdaptiveAdjustment, error)
	RecentAdjustment(ctx context.Context, eventType routine.EventType) (*routine.AdaptiveAdjustment, error)
	Dashboard(ctx context.Context, days int) (*analytics.Dashboard, error)
}

// Handler turns MCP tool calls into analytics queries: parses input, calls the
// service, formats the result as indented JSON text.
type Handler struct {
	service analyticsService
}

func NewHandler(service analyticsService) *Handler {
	return &Handler{
		service: service,
	}
}

// DaysInput is the input for tools that only take a window.
type DaysInput struct {
	Days int `json:"days,omitempty" jsonschema:"Trailing window in calendar days including today (default from server config)"`
}

// EventInsightsInput is the input for get_event_insights.
type EventInsightsInput struct {
	EventType string `json:"event_type,omitempty" jsonschema:"Event type (e.g. wake_up, boarding_bus). Empty for all event types"`
	Days      int    `json:"days,omitempty" jsonschema:"Trailing window in calendar days including today"`
}

// DurationInsightInput is the input for get_duration_insight.
type DurationInsightInput struct {
	FromEvent string `json:"from_event" jsonschema:"Event type the duration starts at (e.g. leaving_home)"`
	ToEvent   string `json:"to_event" jsonschema:"Event type the duration ends at (e.g. arriving_at_work)"`
	Days      int    `json:"days,omitempty" jsonschema:"Trailing window in calendar days including today"`
}

// CheckOutlierInput is the input for check_outlier.
type CheckOutlierInput struct {
	EventType        string `json:"event_type" jsonschema:"Event type to check"`
	Timestamp        string `json:"timestamp,omitempty" jsonschema:"RFC3339 timestamp to check (default now)"`
	ThresholdMinutes int    `json:"threshold_minutes,omitempty" jsonschema:"Deviation in minutes that counts as an outlier"`
	BaselineDays     int    `json:"baseline_days,omitempty" jsonschema:"Days used to compute the baseline average"`
}

// FeedbackSummariesInput is the input for get_feedback_summaries.
type FeedbackSummariesInput struct {
	EventType string `json:"event_type,omitempty" jsonschema:"Event type (e.g. boarding_bus). Empty for all boarding events"`
	Days      int    `json:"days,omitempty" jsonschema:"Trailing window in calendar days including today"`
}

// AdaptiveAdjustmentInput is the input for get_adaptive_adjustment.
type AdaptiveAdjustmentInput struct {
	EventType string `json:"event_type" jsonschema:"Event type the reminder is for (e.g. boarding_bus)"`
	BaseTime  string `json:"base_time,omitempty" jsonschema:"RFC3339 reminder time to adjust (default now)"`
	Days      int    `json:"days,omitempty" jsonschema:"Feedback window in days"`
	Recent    bool   `json:"recent,omitempty" jsonschema:"Only react to the latest feedback from the last 24 hours"`
}

func (h *Handler) GetEventInsightsTool() func(context.Context, *mcp.CallToolRequest, EventInsightsInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in EventInsightsInput) (*mcp.CallToolResult, any, error) {
		days := orDefault(in.Days, h.service.Defaults().Days)
		if in.EventType == "" {
			insights, err := h.service.AllEventInsights(ctx, days)
			return result("event insights", insights, err)
		}
		eventType, err := routine.ParseEventType(in.EventType)
		if err != nil {
			return errorResult("Invalid event_type: " + err.Error()), nil, nil
		}
		insight, err := h.service.EventInsight(ctx, eventType, days)
		return result("event insight", insight, err)
	}
}

func (h *Handler) GetDurationInsightTool() func(context.Context, *mcp.CallToolRequest, DurationInsightInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in DurationInsightInput) (*mcp.CallToolResult, any, error) {
		from, err := routine.ParseEventType(in.FromEvent)
		if err != nil {
			return errorResult("Invalid from_event: " + err.Error()), nil, nil
		}
		to, err := routine.ParseEventType(in.ToEvent)
		if err != nil {
			return errorResult("Invalid to_event: " + err.Error()), nil, nil
		}
		insight, err := h.service.DurationInsight(ctx, from, to, orDefault(in.Days, h.service.Defaults().Days))
		return result("duration insight", insight, err)
	}
}

func (h *Handler) GetCommuteInsightsTool() func(context.Context, *mcp.CallToolRequest, DaysInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in DaysInput) (*mcp.CallToolResult, any, error) {
		insights, err := h.service.CommuteInsights(ctx, orDefault(in.Days, h.service.Defaults().Days))
		return result("commute insights", insights, err)
	}
}

func (h *Handler) GetRoutineSuggestionsTool() func(context.Context, *mcp.CallToolRequest, DaysInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in DaysInput) (*mcp.CallToolResult, any, error) {
		suggestions, err := h.service.RoutineSuggestions(ctx, orDefault(in.Days, h.service.Defaults().Days))
		return result("routine suggestions", suggestions, err)
	}
}

func (h *Handler) GetDailySummariesTool() func(context.Context, *mcp.CallToolRequest, DaysInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in DaysInput) (*mcp.CallToolResult, any, error) {
		summaries, err := h.service.DailySummaries(ctx, orDefault(in.Days, h.service.Defaults().Days))
		return result("daily summaries", summaries, err)
	}
}

func (h *Handler) GetDashboardTool() func(context.Context, *mcp.CallToolRequest, DaysInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in DaysInput) (*mcp.CallToolResult, any, error) {
		dashboard, err := h.service.Dashboard(ctx, orDefault(in.Days, h.service.Defaults().Days))
		return result("dashboard", dashboard, err)
	}
}

func (h *Handler) CheckOutlierTool() func(context.Context, *mcp.CallToolRequest, CheckOutlierInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in CheckOutlierInput) (*mcp.CallToolResult, any, error) {
		eventType, err := routine.ParseEventType(in.EventType)
		if err != nil {
			return errorResult("Invalid event_type: " + err.Error()), nil, nil
		}
		timestamp, err := h.parseTime(in.Timestamp)
		if err != nil {
			return errorResult("Invalid timestamp: use RFC3339 (e.g. 2024-03-15T07:30:00Z)"), nil, nil
		}
		defaults := h.service.Defaults()
		info, err := h.service.CheckOutlier(
			ctx,
			eventType,
			timestamp,
			orDefault(in.ThresholdMinutes, defaults.OutlierThresholdMinutes),
			orDefault(in.BaselineDays, defaults.BaselineDays),
		)
		return result("outlier check", info, err)
	}
}

func (h *Handler) GetFeedbackSummariesTool() func(context.Context, *mcp.CallToolRequest, FeedbackSummariesInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in FeedbackSummariesInput) (*mcp.CallToolResult, any, error) {
		days := orDefault(in.Days, h.service.Defaults().FeedbackDays)
		if in.EventType == "" {
			summaries, err := h.service.AllFeedbackSummaries(ctx, days)
			return result("feedback summaries", summaries, err)
		}
		eventType, err := routine.ParseEventType(in.EventType)
		if err != nil {
			return errorResult("Invalid event_type: " + err.Error()), nil, nil
		}
		summary, err := h.service.FeedbackSummary(ctx, eventType, days)
		return result("feedback summary", summary, err)
	}
}

func (h *Handler) GetAdaptiveAdjustmentTool() func(context.Context, *mcp.CallToolRequest, AdaptiveAdjustmentInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in AdaptiveAdjustmentInput) (*mcp.CallToolResult, any, error) {
		eventType, err := routine.ParseEventType(in.EventType)
		if err != nil {
			return errorResult("Invalid event_type: " + err.Error()), nil, nil
		}
		if in.Recent {
			adjustment, err := h.service.RecentAdjustment(ctx, eventType)
			return result("recent adjustment", adjustment, err)
		}
		baseTime, err := h.parseTime(in.BaseTime)
		if err != nil {
			return errorResult("Invalid base_time: use RFC3339 (e.g. 2024-03-15T07:30:00Z)"), nil, nil
		}
		adjustment, err := h.service.AdaptiveAdjustment(ctx, eventType, baseTime, orDefault(in.Days, h.service.Defaults().AdjustmentDays))
		return result("adaptive adjustment", adjustment, err)
	}
}

func (h *Handler) parseTime(raw string) (time.Time, error) {
	if raw == "" {
		return h.service.Now(), nil
	}
	return time.Parse(time.RFC3339, raw)
}

func orDefault(value, def int) int {
	if value <= 0 {
		return def
	}
	return value
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}

// result encodes v as the tool text, a nil v is "null" which tells the
// caller there was not enough data.
func result(what string, v any, err error) (*mcp.CallToolResult, any, error) {
	if err != nil {
		return errorResult(fmt.Sprintf("Error fetching %s: %s", what, err)), nil, nil
	}
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult("Error encoding response: " + err.Error()), nil, nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(raw)}},
	}, nil, nil
}
