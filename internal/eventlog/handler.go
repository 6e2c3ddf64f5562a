package eventlog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/2beens/routinestats/internal/middleware"
	"github.com/2beens/routinestats/internal/routine"
	"github.com/2beens/routinestats/internal/telemetry/metrics"
	"github.com/2beens/routinestats/internal/telemetry/tracing"
	"github.com/2beens/routinestats/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=eventlog_test

type service interface {
	LogEvent(ctx context.Context, event routine.EventRecord, source Source) (*routine.EventRecord, error)
	LogFeedback(ctx context.Context, feedback routine.FeedbackRecord, source Source) (*routine.FeedbackRecord, error)
	ListEvents(ctx context.Context, filter Filter) ([]routine.EventRecord, error)
	ListFeedback(ctx context.Context, filter Filter) ([]routine.FeedbackRecord, error)
	DeleteEvent(ctx context.Context, id string) error
	ClearEvents(ctx context.Context) (int64, error)
}

type DeleteEventResponse struct {
	DeletedID string `json:"deletedId"`
}

type ClearEventsResponse struct {
	Deleted int64 `json:"deleted"`
}

type Handler struct {
	service service
}

func NewHandler(service service) *Handler {
	return &Handler{
		service: service,
	}
}

func (h *Handler) SetupRoutes(
	r *mux.Router,
	rateLimiter middleware.RequestRateLimiter,
	metricsManager *metrics.Manager,
	writesPerMin int,
) {
	r.HandleFunc("/events", h.HandleListEvents).Methods("GET", "OPTIONS").Name("list-events")
	r.HandleFunc("/feedback", h.HandleListFeedback).Methods("GET", "OPTIONS").Name("list-feedback")

	writes := r.Methods("POST", "DELETE").Subrouter()
	writes.HandleFunc("/events", h.HandleAddEvent).Methods("POST").Name("new-event")
	writes.HandleFunc("/events", h.HandleClearEvents).Methods("DELETE").Name("clear-events")
	writes.HandleFunc("/events/{id}", h.HandleDeleteEvent).Methods("DELETE").Name("remove-event")
	writes.HandleFunc("/feedback", h.HandleAddFeedback).Methods("POST").Name("new-feedback")
	writes.Use(middleware.RateLimit(rateLimiter, "eventlog-writes", writesPerMin, metricsManager))
}

func (h *Handler) HandleAddEvent(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.eventlog.events.new")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var event routine.EventRecord
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		log.Tracef("new event, unmarshal json params: %s", err)
		http.Error(w, "add event failed", http.StatusBadRequest)
		return
	}

	added, err := h.service.LogEvent(ctx, event, SourceHTTP)
	if err != nil {
		writeWriteError(w, "new event", err)
		return
	}

	eventJson, err := json.Marshal(added)
	if err != nil {
		log.Errorf("failed to marshal new event: %s", err)
		http.Error(w, "error, failed to add new event", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, eventJson, http.StatusCreated)
}

func (h *Handler) HandleListEvents(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.eventlog.events.list")
	defer span.End()

	filter, err := filterFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	events, err := h.service.ListEvents(ctx, filter)
	if err != nil {
		log.Errorf("list events: %s", err)
		http.Error(w, "failed to list events", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, events)
}

func (h *Handler) HandleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.eventlog.events.delete")
	defer span.End()

	id := mux.Vars(r)["id"]
	if id == "" {
		http.Error(w, "error, event id empty", http.StatusBadRequest)
		return
	}

	if err := h.service.DeleteEvent(ctx, id); err != nil {
		if errors.Is(err, ErrEventNotFound) {
			http.Error(w, "event not found", http.StatusNotFound)
			return
		}
		log.Errorf("delete event %s: %s", id, err)
		http.Error(w, "failed to delete event", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, DeleteEventResponse{DeletedID: id})
}

func (h *Handler) HandleClearEvents(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.eventlog.events.clear")
	defer span.End()

	deleted, err := h.service.ClearEvents(ctx)
	if err != nil {
		log.Errorf("clear events: %s", err)
		http.Error(w, "failed to clear events", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, ClearEventsResponse{Deleted: deleted})
}

func (h *Handler) HandleAddFeedback(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.eventlog.feedback.new")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var feedback routine.FeedbackRecord
	if err := json.NewDecoder(r.Body).Decode(&feedback); err != nil {
		log.Tracef("new feedback, unmarshal json params: %s", err)
		http.Error(w, "add feedback failed", http.StatusBadRequest)
		return
	}

	added, err := h.service.LogFeedback(ctx, feedback, SourceHTTP)
	if err != nil {
		writeWriteError(w, "new feedback", err)
		return
	}

	feedbackJson, err := json.Marshal(added)
	if err != nil {
		log.Errorf("failed to marshal new feedback: %s", err)
		http.Error(w, "error, failed to add new feedback", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, feedbackJson, http.StatusCreated)
}

func (h *Handler) HandleListFeedback(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.eventlog.feedback.list")
	defer span.End()

	filter, err := filterFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	feedback, err := h.service.ListFeedback(ctx, filter)
	if err != nil {
		log.Errorf("list feedback: %s", err)
		http.Error(w, "failed to list feedback", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, feedback)
}

func writeWriteError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrInvalidEventType), errors.Is(err, ErrRejectedRecord):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrDuplicateRecord):
		http.Error(w, "record already exists", http.StatusConflict)
	default:
		log.Errorf("%s: %s", op, err)
		http.Error(w, "failed to store record", http.StatusInternalServerError)
	}
}

func filterFromRequest(r *http.Request) (Filter, error) {
	query := r.URL.Query()

	from, err := pkg.QueryTime(query, "from")
	if err != nil {
		return Filter{}, err
	}
	to, err := pkg.QueryTime(query, "to")
	if err != nil {
		return Filter{}, err
	}

	filter := Filter{From: from, To: to}
	if rawType := query.Get("type"); rawType != "" {
		eventType, err := routine.ParseEventType(rawType)
		if err != nil {
			return Filter{}, err
		}
		filter.Type = &eventType
	}
	return filter, nil
}
