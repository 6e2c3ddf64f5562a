package analytics

import (
	"context"
	"net/http"
	"time"

	"github.com/2beens/routinestats/internal/routine"
	"github.com/2beens/routinestats/internal/telemetry/tracing"
	"github.com/2beens/routinestats/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type service interface {
	Defaults() Defaults
	Now() time.Time
	DailySummaries(ctx context.Context, days int) ([]routine.DailySummary, error)
	EventInsight(ctx context.Context, eventType routine.EventType, days int) (*routine.EventInsight, error)
	AllEventInsights(ctx context.Context, days int) ([]routine.EventInsight, error)
	DurationInsight(ctx context.Context, from, to routine.EventType, days int) (*routine.DurationInsight, error)
	CommuteInsights(ctx context.Context, days int) ([]routine.DurationInsight, error)
	SleepInsight(ctx context.Context, days int) (*routine.DurationInsight, error)
	ConsistencyScore(ctx context.Context, days int) (float64, error)
	RoutineSuggestions(ctx context.Context, days int) ([]routine.RoutineSuggestion, error)
	CheckOutlier(ctx context.Context, eventType routine.EventType, timestamp time.Time, thresholdMinutes, baselineDays int) (routine.OutlierInfo, error)
	FeedbackSummary(ctx context.Context, eventType routine.EventType, days int) (*routine.FeedbackSummary, error)
	AllFeedbackSummaries(ctx context.Context, days int) ([]routine.FeedbackSummary, error)
	AdaptiveAdjustment(ctx context.Context, eventType routine.EventType, baseTime time.Time, days int) (*routine.AdaptiveAdjustment, error)
	RecentAdjustment(ctx context.Context, eventType routine.EventType) (*routine.AdaptiveAdjustment, error)
	Dashboard(ctx context.Context, days int) (*Dashboard, error)
}

type ConsistencyResponse struct {
	Days  int     `json:"days"`
	Score float64 `json:"score"`
}

type Handler struct {
	service service
}

func NewHandler(service service) *Handler {
	return &Handler{
		service: service,
	}
}

func (h *Handler) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/routine/summaries", h.HandleDailySummaries).Methods("GET", "OPTIONS").Name("summaries")
	r.HandleFunc("/routine/insights", h.HandleAllEventInsights).Methods("GET", "OPTIONS").Name("insights")
	r.HandleFunc("/routine/insights/{type}", h.HandleEventInsight).Methods("GET", "OPTIONS").Name("insight")
	r.HandleFunc("/routine/durations/{from}/{to}", h.HandleDurationInsight).Methods("GET", "OPTIONS").Name("duration")
	r.HandleFunc("/routine/commute", h.HandleCommuteInsights).Methods("GET", "OPTIONS").Name("commute")
	r.HandleFunc("/routine/sleep", h.HandleSleepInsight).Methods("GET", "OPTIONS").Name("sleep")
	r.HandleFunc("/routine/consistency", h.HandleConsistency).Methods("GET", "OPTIONS").Name("consistency")
	r.HandleFunc("/routine/suggestions", h.HandleSuggestions).Methods("GET", "OPTIONS").Name("suggestions")
	r.HandleFunc("/routine/outlier/{type}", h.HandleCheckOutlier).Methods("GET", "OPTIONS").Name("outlier")
	r.HandleFunc("/routine/feedback", h.HandleAllFeedbackSummaries).Methods("GET", "OPTIONS").Name("feedback-summaries")
	r.HandleFunc("/routine/feedback/{type}", h.HandleFeedbackSummary).Methods("GET", "OPTIONS").Name("feedback-summary")
	r.HandleFunc("/routine/adjustment/{type}", h.HandleAdaptiveAdjustment).Methods("GET", "OPTIONS").Name("adjustment")
	r.HandleFunc("/routine/adjustment/{type}/recent", h.HandleRecentAdjustment).Methods("GET", "OPTIONS").Name("recent-adjustment")
	r.HandleFunc("/routine/dashboard", h.HandleDashboard).Methods("GET", "OPTIONS").Name("dashboard")
}

func (h *Handler) HandleDailySummaries(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.analytics.summaries")
	defer span.End()

	days, ok := h.days(w, r, h.service.Defaults().Days)
	if !ok {
		return
	}
	summaries, err := h.service.DailySummaries(ctx, days)
	respond(w, "daily summaries", summaries, err)
}

func (h *Handler) HandleAllEventInsights(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.analytics.insights")
	defer span.End()

	days, ok := h.days(w, r, h.service.Defaults().Days)
	if !ok {
		return
	}
	insights, err := h.service.AllEventInsights(ctx, days)
	respond(w, "event insights", insights, err)
}

func (h *Handler) HandleEventInsight(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.analytics.insight")
	defer span.End()

	eventType, ok := eventTypeVar(w, r, "type")
	if !ok {
		return
	}
	days, ok := h.days(w, r, h.service.Defaults().Days)
	if !ok {
		return
	}
	insight, err := h.service.EventInsight(ctx, eventType, days)
	respond(w, "event insight", insight, err)
}

func (h *Handler) HandleDurationInsight(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.analytics.duration")
	defer span.End()

	from, ok := eventTypeVar(w, r, "from")
	if !ok {
		return
	}
	to, ok := eventTypeVar(w, r, "to")
	if !ok {
		return
	}
	days, ok := h.days(w, r, h.service.Defaults().Days)
	if !ok {
		return
	}
	insight, err := h.service.DurationInsight(ctx, from, to, days)
	respond(w, "duration insight", insight, err)
}

func (h *Handler) HandleCommuteInsights(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.analytics.commute")
	defer span.End()

	days, ok := h.days(w, r, h.service.Defaults().Days)
	if !ok {
		return
	}
	insights, err := h.service.CommuteInsights(ctx, days)
	respond(w, "commute insights", insights, err)
}

func (h *Handler) HandleSleepInsight(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.analytics.sleep")
	defer span.End()

	days, ok := h.days(w, r, h.service.Defaults().Days)
	if !ok {
		return
	}
	insight, err := h.service.SleepInsight(ctx, days)
	respond(w, "sleep insight", insight, err)
}

func (h *Handler) HandleConsistency(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.analytics.consistency")
	defer span.End()

	days, ok := h.days(w, r, h.service.Defaults().Days)
	if !ok {
		return
	}
	score, err := h.service.ConsistencyScore(ctx, days)
	respond(w, "consistency score", ConsistencyResponse{Days: days, Score: score}, err)
}

func (h *Handler) HandleSuggestions(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.analytics.suggestions")
	defer span.End()

	days, ok := h.days(w, r, h.service.Defaults().Days)
	if !ok {
		return
	}
	suggestions, err := h.service.RoutineSuggestions(ctx, days)
	respond(w, "routine suggestions", suggestions, err)
}

func (h *Handler) HandleCheckOutlier(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.analytics.outlier")
	defer span.End()

	eventType, ok := eventTypeVar(w, r, "type")
	if !ok {
		return
	}
	defaults := h.service.Defaults()
	query := r.URL.Query()

	timestamp, err := pkg.QueryTime(query, "timestamp")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if timestamp == nil {
		now := h.service.Now()
		timestamp = &now
	}
	threshold, err := pkg.QueryInt(query, "threshold", defaults.OutlierThresholdMinutes)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	baselineDays, err := pkg.QueryInt(query, "baseline_days", defaults.BaselineDays)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	info, err := h.service.CheckOutlier(ctx, eventType, *timestamp, threshold, baselineDays)
	respond(w, "outlier check", info, err)
}

func (h *Handler) HandleAllFeedbackSummaries(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.analytics.feedback.all")
	defer span.End()

	days, ok := h.days(w, r, h.service.Defaults().FeedbackDays)
	if !ok {
		return
	}
	summaries, err := h.service.AllFeedbackSummaries(ctx, days)
	respond(w, "feedback summaries", summaries, err)
}

func (h *Handler) HandleFeedbackSummary(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.analytics.feedback.event")
	defer span.End()

	eventType, ok := eventTypeVar(w, r, "type")
	if !ok {
		return
	}
	days, ok := h.days(w, r, h.service.Defaults().FeedbackDays)
	if !ok {
		return
	}
	summary, err := h.service.FeedbackSummary(ctx, eventType, days)
	respond(w, "feedback summary", summary, err)
}

func (h *Handler) HandleAdaptiveAdjustment(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.analytics.adjustment")
	defer span.End()

	eventType, ok := eventTypeVar(w, r, "type")
	if !ok {
		return
	}
	days, ok := h.days(w, r, h.service.Defaults().AdjustmentDays)
	if !ok {
		return
	}
	base, err := pkg.QueryTime(r.URL.Query(), "base")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if base == nil {
		now := h.service.Now()
		base = &now
	}

	adjustment, err := h.service.AdaptiveAdjustment(ctx, eventType, *base, days)
	respond(w, "adaptive adjustment", adjustment, err)
}

func (h *Handler) HandleRecentAdjustment(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.analytics.adjustment.recent")
	defer span.End()

	eventType, ok := eventTypeVar(w, r, "type")
	if !ok {
		return
	}
	adjustment, err := h.service.RecentAdjustment(ctx, eventType)
	respond(w, "recent adjustment", adjustment, err)
}

func (h *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.analytics.dashboard")
	defer span.End()

	days, ok := h.days(w, r, h.service.Defaults().Days)
	if !ok {
		return
	}
	dashboard, err := h.service.Dashboard(ctx, days)
	respond(w, "dashboard", dashboard, err)
}

func (h *Handler) days(w http.ResponseWriter, r *http.Request, def int) (int, bool) {
	days, err := pkg.QueryInt(r.URL.Query(), "days", def)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return 0, false
	}
	return days, true
}

func eventTypeVar(w http.ResponseWriter, r *http.Request, name string) (routine.EventType, bool) {
	eventType, err := routine.ParseEventType(mux.Vars(r)[name])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return "", false
	}
	return eventType, true
}

// respond writes result as JSON, a nil result is written as null.
func respond(w http.ResponseWriter, what string, result any, err error) {
	if err != nil {
		log.Errorf("%s: %s", what, err)
		http.Error(w, "failed to compute "+what, http.StatusInternalServerError)
		return
	}
	pkg.WriteJSON(w, result)
}
