package bookings

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/MyatBhoneThet/ai-receptionist/pkg/logging"
)

// CalendarSync upserts and cancels the external calendar event mirroring a
// booking. Every implementation is best-effort: the booking row is the
// source of truth and callers never fail a write over a sync error.
type CalendarSync interface {
	// Upsert creates or updates the event and returns its external id.
	Upsert(ctx context.Context, b *Booking) (string, error)
	// Cancel deletes the event.
	Cancel(ctx context.Context, eventID string) error
}

// GoogleCalendarSync implements CalendarSync against the Google Calendar v3
// API with service-account credentials.
type GoogleCalendarSync struct {
	service    *calendar.Service
	calendarID string
	logger     *logging.Logger
}

// NewGoogleCalendarSync builds a sync client for the given calendar.
func NewGoogleCalendarSync(ctx context.Context, credentialsJSON []byte, calendarID string, logger *logging.Logger) (*GoogleCalendarSync, error) {
	if strings.TrimSpace(calendarID) == "" {
		return nil, errors.New("bookings: calendar id is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	service, err := calendar.NewService(ctx,
		option.WithCredentialsJSON(credentialsJSON),
		option.WithScopes(calendar.CalendarScope),
	)
	if err != nil {
		return nil, fmt.Errorf("bookings: create calendar service: %w", err)
	}

	return &GoogleCalendarSync{
		service:    service,
		calendarID: calendarID,
		logger:     logger,
	}, nil
}

// buildEvent renders the stable event payload. The description format must
// not drift: it makes re-creation after manual deletion idempotent.
func buildEvent(b *Booking) *calendar.Event {
	serviceName := b.ServiceType
	if serviceName != "" {
		serviceName = strings.ToUpper(serviceName[:1]) + serviceName[1:]
	}

	people := "?"
	if b.People != nil {
		people = fmt.Sprintf("%d", *b.People)
	}
	notes := b.Notes
	if notes == "" {
		notes = "None"
	}
	description := fmt.Sprintf("Service: %s\nPeople: %s\nNotes: %s\nInternal ID: %s",
		b.ServiceType, people, notes, b.ID)

	startDate := b.Date.Format("2006-01-02")
	endDate := startDate
	if b.EndDate != nil {
		endDate = b.EndDate.Format("2006-01-02")
	}

	return &calendar.Event{
		Summary:     fmt.Sprintf("AI Receptionist: %s Booking (#%s)", serviceName, b.ID),
		Location:    b.Location,
		Description: description,
		Start: &calendar.EventDateTime{
			DateTime: eventDateTime(startDate, b.StartTime),
			TimeZone: "UTC",
		},
		End: &calendar.EventDateTime{
			DateTime: eventDateTime(endDate, b.EndTime),
			TimeZone: "UTC",
		},
	}
}

// eventDateTime renders an RFC3339-style local datetime from a date and a
// clock token that may or may not already carry seconds.
func eventDateTime(date, clock string) string {
	if len(clock) == len("15:04") {
		clock += ":00"
	}
	return date + "T" + clock
}

// Upsert creates the event, or updates it when the booking already carries
// an event id. An event deleted out-of-band (404 on update) is transparently
// recreated.
func (g *GoogleCalendarSync) Upsert(ctx context.Context, b *Booking) (string, error) {
	event := buildEvent(b)

	if b.GoogleEventID != nil && *b.GoogleEventID != "" {
		_, err := g.service.Events.Update(g.calendarID, *b.GoogleEventID, event).Context(ctx).Do()
		if err == nil {
			return *b.GoogleEventID, nil
		}
		if !isNotFound(err) {
			return "", fmt.Errorf("bookings: calendar update: %w", err)
		}
		g.logger.Info("calendar event missing, recreating", "booking_id", b.ID)
	}

	created, err := g.service.Events.Insert(g.calendarID, event).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("bookings: calendar insert: %w", err)
	}
	return created.Id, nil
}

// Cancel deletes the event.
func (g *GoogleCalendarSync) Cancel(ctx context.Context, eventID string) error {
	if err := g.service.Events.Delete(g.calendarID, eventID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("bookings: calendar delete: %w", err)
	}
	return nil
}

func isNotFound(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && (gerr.Code == http.StatusNotFound || gerr.Code == http.StatusGone)
}
