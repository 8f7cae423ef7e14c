package bookings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MyatBhoneThet/ai-receptionist/internal/conversation"
)

// ErrBookingNotFound signals a lookup by id that matched no row.
var ErrBookingNotFound = errors.New("bookings: booking not found")

// ErrNoUpdatableFields signals a patch that carried no recognized column.
var ErrNoUpdatableFields = errors.New("bookings: no updatable fields supplied")

// patchableColumns is the fixed allow-list of mutable columns; anything else
// in a patch body is ignored so a generic merge endpoint can never inject
// arbitrary columns.
var patchableColumns = []string{
	"service_type", "date", "end_date", "start_time", "end_time",
	"people", "location", "notes", "status",
}

const bookingColumns = `id, session_id, service_type, date, end_date, start_time, end_time,
	       people, location, notes, status, google_event_id, created_at, updated_at`

type rowQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository persists bookings with parameterized SQL over pgx.
type Repository struct {
	db rowQuerier
}

// NewRepository creates a repository backed by pgx pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("bookings: pgx pool required")
	}
	return &Repository{db: pool}
}

func newRepositoryWithQuerier(q rowQuerier) *Repository {
	if q == nil {
		panic("bookings: querier required")
	}
	return &Repository{db: q}
}

type bookingScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row bookingScanner) (*Booking, error) {
	var b Booking
	err := row.Scan(
		&b.ID,
		&b.SessionID,
		&b.ServiceType,
		&b.Date,
		&b.EndDate,
		&b.StartTime,
		&b.EndTime,
		&b.People,
		&b.Location,
		&b.Notes,
		&b.Status,
		&b.GoogleEventID,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// FindPendingForDate returns the most recent pending booking for the session
// on the given date, or nil when there is none. A pending row for a
// different date is a new trip, not an edit target.
func (r *Repository) FindPendingForDate(ctx context.Context, sessionID string, date time.Time) (*Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE session_id = $1 AND status = 'pending' AND date = $2
		ORDER BY created_at DESC
		LIMIT 1
	`
	b, err := scanBooking(r.db.QueryRow(ctx, query, sessionID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("bookings: find pending: %w", err)
	}
	return b, nil
}

// Insert creates a new pending booking row.
func (r *Repository) Insert(ctx context.Context, b *Booking) (*Booking, error) {
	query := `
		INSERT INTO bookings
			(id, session_id, service_type, date, end_date, start_time, end_time, people, location, notes, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + bookingColumns + `
	`
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.Status == "" {
		b.Status = StatusPending
	}
	row, err := scanBooking(r.db.QueryRow(ctx, query,
		b.ID,
		b.SessionID,
		b.ServiceType,
		b.Date,
		b.EndDate,
		b.StartTime,
		b.EndTime,
		b.People,
		b.Location,
		b.Notes,
		b.Status,
	))
	if err != nil {
		return nil, fmt.Errorf("bookings: insert: %w", err)
	}
	return row, nil
}

// UpdateFields overwrites the draft-derived columns of an existing row.
func (r *Repository) UpdateFields(ctx context.Context, id uuid.UUID, b *Booking) (*Booking, error) {
	query := `
		UPDATE bookings SET
			service_type = $1,
			date = $2,
			end_date = $3,
			start_time = $4,
			end_time = $5,
			people = $6,
			location = $7,
			notes = $8,
			updated_at = now()
		WHERE id = $9
		RETURNING ` + bookingColumns + `
	`
	row, err := scanBooking(r.db.QueryRow(ctx, query,
		b.ServiceType,
		b.Date,
		b.EndDate,
		b.StartTime,
		b.EndTime,
		b.People,
		b.Location,
		b.Notes,
		id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("bookings: update fields: %w", err)
	}
	return row, nil
}

// ListBySession returns all bookings for a session, newest first.
func (r *Repository) ListBySession(ctx context.Context, sessionID string) ([]Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE session_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("bookings: list by session: %w", err)
	}
	defer rows.Close()

	bookings := []Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("bookings: scan row: %w", err)
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

// Patch applies a subset of the mutable allow-list to a row. Unrecognized
// fields are dropped; a patch with nothing recognized is rejected.
func (r *Repository) Patch(ctx context.Context, id uuid.UUID, fields map[string]any) (*Booking, error) {
	assignments := []string{}
	values := []any{}
	for _, col := range patchableColumns {
		val, ok := fields[col]
		if !ok {
			continue
		}
		values = append(values, coercePatchValue(col, val))
		assignments = append(assignments, fmt.Sprintf("%s = $%d", col, len(values)))
	}
	if len(assignments) == 0 {
		return nil, ErrNoUpdatableFields
	}

	values = append(values, id)
	query := fmt.Sprintf(
		"UPDATE bookings SET %s, updated_at = now() WHERE id = $%d RETURNING %s",
		strings.Join(assignments, ", "), len(values), bookingColumns,
	)
	row, err := scanBooking(r.db.QueryRow(ctx, query, values...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("bookings: patch: %w", err)
	}
	return row, nil
}

// MarkCancelled soft-deletes a booking.
func (r *Repository) MarkCancelled(ctx context.Context, id uuid.UUID) (*Booking, error) {
	query := `
		UPDATE bookings
		SET status = 'cancelled', updated_at = now()
		WHERE id = $1
		RETURNING ` + bookingColumns + `
	`
	row, err := scanBooking(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("bookings: cancel: %w", err)
	}
	return row, nil
}

// SetEventID stores (or clears, with nil) the external calendar event id.
func (r *Repository) SetEventID(ctx context.Context, id uuid.UUID, eventID *string) error {
	query := `
		UPDATE bookings
		SET google_event_id = $1, updated_at = now()
		WHERE id = $2
	`
	if _, err := r.db.Exec(ctx, query, eventID, id); err != nil {
		return fmt.Errorf("bookings: set event id: %w", err)
	}
	return nil
}

// coercePatchValue converts JSON-decoded patch values into types the
// database columns expect.
func coercePatchValue(col string, val any) any {
	switch col {
	case "people":
		if f, ok := val.(float64); ok {
			return int(f)
		}
	case "date", "end_date":
		if s, ok := val.(string); ok {
			if t, ok := conversation.ParseCanonicalDate(s); ok {
				return t
			}
		}
	}
	return val
}
