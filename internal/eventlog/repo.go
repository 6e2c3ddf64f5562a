package eventlog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/routinestats/internal/routine"
	"github.com/2beens/routinestats/internal/telemetry/tracing"
	"github.com/2beens/routinestats/pkg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var (
	ErrEventNotFound    = errors.New("event not found")
	ErrInvalidEventType = errors.New("invalid event type")
	ErrDuplicateRecord  = errors.New("record already exists")
	ErrRejectedRecord   = errors.New("record rejected by storage")
)

// Filter narrows event and feedback listings. Nil fields are not applied.
type Filter struct {
	From *time.Time
	To   *time.Time
	Type *routine.EventType
}

func (f Filter) typeArg() *string {
	if f.Type == nil {
		return nil
	}
	t := f.Type.String()
	return &t
}

func (f Filter) spanAttributes() []attribute.KeyValue {
	var attrs []attribute.KeyValue
	if f.Type != nil {
		attrs = append(attrs, attribute.String("type", f.Type.String()))
	}
	if f.From != nil {
		attrs = append(attrs, attribute.String("from", f.From.String()))
	}
	if f.To != nil {
		attrs = append(attrs, attribute.String("to", f.To.String()))
	}
	return attrs
}

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) AddEvent(ctx context.Context, event routine.EventRecord) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.eventlog.events.add")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	_, err = r.db.Exec(ctx, `
		INSERT INTO routine_event (id, event_type, timestamp)
		VALUES ($1, $2, $3)
	`,
		event.ID,
		event.Type.String(),
		event.Timestamp,
	)
	if pkg.IsUniqueViolationError(err) {
		return fmt.Errorf("event %s: %w", event.ID, ErrDuplicateRecord)
	}
	if pkg.IsDataExceptionError(err) {
		return fmt.Errorf("event %s: %w: %s", event.ID, ErrRejectedRecord, err)
	}
	return err
}

// ListEvents returns the matching events ordered by timestamp, oldest first.
func (r *Repo) ListEvents(ctx context.Context, filter Filter) (_ []routine.EventRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.eventlog.events.list")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	span.SetAttributes(filter.spanAttributes()...)

	rows, err := r.db.Query(ctx, `
		SELECT id, event_type, timestamp
		FROM routine_event
		WHERE ($1::text IS NULL OR event_type = $1)
		  AND ($2::timestamptz IS NULL OR timestamp >= $2)
		  AND ($3::timestamptz IS NULL OR timestamp <= $3)
		ORDER BY timestamp ASC
	`,
		filter.typeArg(),
		filter.From, filter.To,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]routine.EventRecord, 0)
	for rows.Next() {
		var (
			event     routine.EventRecord
			eventType string
		)
		if err := rows.Scan(&event.ID, &eventType, &event.Timestamp); err != nil {
			return nil, err
		}
		event.Type = routine.EventType(eventType)
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

func (r *Repo) DeleteEvent(ctx context.Context, id string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.eventlog.events.delete")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	span.SetAttributes(attribute.String("id", id))

	tag, err := r.db.Exec(ctx, `DELETE FROM routine_event WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEventNotFound
	}
	return nil
}

// ClearEvents removes the whole event log.
func (r *Repo) ClearEvents(ctx context.Context) (_ int64, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.eventlog.events.clear")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	tag, err := r.db.Exec(ctx, `DELETE FROM routine_event`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *Repo) DeleteEventsBefore(ctx context.Context, before time.Time) (_ int64, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.eventlog.events.deletebefore")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	tag, err := r.db.Exec(ctx, `DELETE FROM routine_event WHERE timestamp < $1`, before)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *Repo) AddFeedback(ctx context.Context, feedback routine.FeedbackRecord) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.eventlog.feedback.add")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	var targetEventType *string
	if feedback.TargetEventType != nil {
		t := feedback.TargetEventType.String()
		targetEventType = &t
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO routine_feedback (id, event_type, timestamp, was_successful, target_event_type, adjustment_applied_minutes, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		feedback.ID,
		feedback.EventType.String(),
		feedback.Timestamp,
		feedback.WasSuccessful,
		targetEventType,
		feedback.AdjustmentAppliedMinutes,
		feedback.Notes,
	)
	if pkg.IsUniqueViolationError(err) {
		return fmt.Errorf("feedback %s: %w", feedback.ID, ErrDuplicateRecord)
	}
	if pkg.IsDataExceptionError(err) {
		return fmt.Errorf("feedback %s: %w: %s", feedback.ID, ErrRejectedRecord, err)
	}
	return err
}

// ListFeedback returns the matching feedback ordered by timestamp, oldest first.
func (r *Repo) ListFeedback(ctx context.Context, filter Filter) (_ []routine.FeedbackRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.eventlog.feedback.list")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	span.SetAttributes(filter.spanAttributes()...)

	rows, err := r.db.Query(ctx, `
		SELECT id, event_type, timestamp, was_successful, target_event_type, adjustment_applied_minutes, notes
		FROM routine_feedback
		WHERE ($1::text IS NULL OR event_type = $1)
		  AND ($2::timestamptz IS NULL OR timestamp >= $2)
		  AND ($3::timestamptz IS NULL OR timestamp <= $3)
		ORDER BY timestamp ASC
	`,
		filter.typeArg(),
		filter.From, filter.To,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	feedback, err := pgx.CollectRows(rows, scanFeedback)
	if err != nil {
		return nil, err
	}
	if feedback == nil {
		feedback = make([]routine.FeedbackRecord, 0)
	}
	return feedback, nil
}

func scanFeedback(row pgx.CollectableRow) (routine.FeedbackRecord, error) {
	var (
		fb              routine.FeedbackRecord
		eventType       string
		targetEventType *string
	)
	if err := row.Scan(
		&fb.ID,
		&eventType,
		&fb.Timestamp,
		&fb.WasSuccessful,
		&targetEventType,
		&fb.AdjustmentAppliedMinutes,
		&fb.Notes,
	); err != nil {
		return fb, err
	}
	fb.EventType = routine.EventType(eventType)
	if targetEventType != nil {
		t := routine.EventType(*targetEventType)
		fb.TargetEventType = &t
	}
	return fb, nil
}

func (r *Repo) DeleteFeedbackBefore(ctx context.Context, before time.Time) (_ int64, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.eventlog.feedback.deletebefore")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	tag, err := r.db.Exec(ctx, `DELETE FROM routine_feedback WHERE timestamp < $1`, before)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
