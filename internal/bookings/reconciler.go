package bookings

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/MyatBhoneThet/ai-receptionist/internal/conversation"
	"github.com/MyatBhoneThet/ai-receptionist/internal/observability/metrics"
	"github.com/MyatBhoneThet/ai-receptionist/pkg/logging"
)

var reconcilerTracer = otel.Tracer("receptionist.internal.bookings")

// Reconciler maps completed drafts onto persisted booking rows and keeps the
// external calendar in step. The calendar is optional and always
// best-effort.
type Reconciler struct {
	repo     *Repository
	calendar CalendarSync
	metrics  *metrics.ChatMetrics
	logger   *logging.Logger
}

// NewReconciler constructs a reconciler. A nil calendar disables sync.
func NewReconciler(repo *Repository, calendar CalendarSync, m *metrics.ChatMetrics, logger *logging.Logger) *Reconciler {
	if repo == nil {
		panic("bookings: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Reconciler{repo: repo, calendar: calendar, metrics: m, logger: logger}
}

// Reconcile upserts the pending booking for (session, date): an existing
// pending row on the same date is updated in place, anything else inserts a
// new row. The write is followed by a best-effort calendar sync whose
// failure never rolls back or surfaces.
func (r *Reconciler) Reconcile(ctx context.Context, sessionID string, intent conversation.Intent, draft conversation.Draft) (*Booking, error) {
	ctx, span := reconcilerTracer.Start(ctx, "bookings.reconcile")
	defer span.End()
	span.SetAttributes(
		attribute.String("receptionist.session_id", sessionID),
		attribute.String("receptionist.intent", string(intent)),
	)

	candidate, err := draftToBooking(sessionID, intent, draft)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	existing, err := r.repo.FindPendingForDate(ctx, sessionID, candidate.Date)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	var row *Booking
	if existing != nil {
		row, err = r.repo.UpdateFields(ctx, existing.ID, candidate)
		if err == nil {
			row.GoogleEventID = existing.GoogleEventID
		}
	} else {
		row, err = r.repo.Insert(ctx, candidate)
	}
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	r.syncCalendar(ctx, row)
	r.logger.Info("booking reconciled",
		"session_id", sessionID,
		"booking_id", row.ID,
		"service_type", row.ServiceType,
		"updated", existing != nil,
	)
	return row, nil
}

// syncCalendar pushes the row to the calendar and records the returned event
// id when it changed. Failures are logged and swallowed.
func (r *Reconciler) syncCalendar(ctx context.Context, row *Booking) {
	if r.calendar == nil {
		return
	}
	eventID, err := r.calendar.Upsert(ctx, row)
	if err != nil {
		r.metrics.ObserveCalendarSync("upsert", "error")
		r.logger.Warn("calendar sync failed", "booking_id", row.ID, "error", err)
		return
	}
	r.metrics.ObserveCalendarSync("upsert", "ok")
	if eventID == "" {
		return
	}
	if row.GoogleEventID != nil && *row.GoogleEventID == eventID {
		return
	}
	if err := r.repo.SetEventID(ctx, row.ID, &eventID); err != nil {
		r.logger.Warn("failed to store calendar event id", "booking_id", row.ID, "error", err)
		return
	}
	row.GoogleEventID = &eventID
}

// Cancel soft-deletes the booking, then best-effort cancels its calendar
// event and clears the stored id. The status change never waits on the
// calendar.
func (r *Reconciler) Cancel(ctx context.Context, id uuid.UUID) (*Booking, error) {
	ctx, span := reconcilerTracer.Start(ctx, "bookings.cancel")
	defer span.End()
	span.SetAttributes(attribute.String("receptionist.booking_id", id.String()))

	row, err := r.repo.MarkCancelled(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	r.cancelCalendar(ctx, row)
	r.logger.Info("booking cancelled", "booking_id", row.ID)
	return row, nil
}

// cancelCalendar best-effort deletes the row's calendar event and clears the
// stored id. Failures are logged and swallowed.
func (r *Reconciler) cancelCalendar(ctx context.Context, row *Booking) {
	if r.calendar == nil || row.GoogleEventID == nil || *row.GoogleEventID == "" {
		return
	}
	if err := r.calendar.Cancel(ctx, *row.GoogleEventID); err != nil {
		r.metrics.ObserveCalendarSync("cancel", "error")
		r.logger.Warn("calendar cancel failed", "booking_id", row.ID, "error", err)
	} else {
		r.metrics.ObserveCalendarSync("cancel", "ok")
	}
	if err := r.repo.SetEventID(ctx, row.ID, nil); err != nil {
		r.logger.Warn("failed to clear calendar event id", "booking_id", row.ID, "error", err)
	} else {
		row.GoogleEventID = nil
	}
}

// Patch applies an allow-listed field subset to a booking row. Only rows
// still pending are mirrored to the calendar; a patch that cancels the
// booking tears the event down the same way a DELETE does.
func (r *Reconciler) Patch(ctx context.Context, id uuid.UUID, fields map[string]any) (*Booking, error) {
	row, err := r.repo.Patch(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	switch row.Status {
	case StatusCancelled:
		r.cancelCalendar(ctx, row)
	case StatusPending:
		r.syncCalendar(ctx, row)
	}
	return row, nil
}

// List returns a session's bookings, newest first.
func (r *Reconciler) List(ctx context.Context, sessionID string) ([]Booking, error) {
	return r.repo.ListBySession(ctx, sessionID)
}

// draftToBooking projects a completed draft onto a booking row: the date
// token is parsed, a hotel checkout token moves from end_time to end_date,
// and the time defaulting policy fills the clock fields.
func draftToBooking(sessionID string, intent conversation.Intent, draft conversation.Draft) (*Booking, error) {
	date, ok := conversation.ParseCanonicalDate(draft.Date)
	if !ok {
		return nil, fmt.Errorf("bookings: draft date %q is not canonical", draft.Date)
	}

	var endDate *time.Time
	if checkout, ok := conversation.ParseCanonicalDate(draft.EndTime); ok {
		endDate = &checkout
	}

	defaulted := conversation.ApplyTimeDefaults(intent, draft)

	return &Booking{
		SessionID:   sessionID,
		ServiceType: defaulted.ServiceType,
		Date:        date,
		EndDate:     endDate,
		StartTime:   defaulted.StartTime,
		EndTime:     defaulted.EndTime,
		People:      defaulted.People,
		Location:    defaulted.Location,
		Notes:       defaulted.Notes,
		Status:      StatusPending,
	}, nil
}
