package bookings

import (
	"time"

	"github.com/google/uuid"
)

// Booking statuses. Rows are never hard-deleted; cancellation is a status
// change.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// Booking is a persisted booking row. EndDate is the distinct checkout date
// for multi-day stays; GoogleEventID references the synced calendar event.
type Booking struct {
	ID            uuid.UUID  `json:"id"`
	SessionID     string     `json:"session_id"`
	ServiceType   string     `json:"service_type"`
	Date          time.Time  `json:"date"`
	EndDate       *time.Time `json:"end_date"`
	StartTime     string     `json:"start_time"`
	EndTime       string     `json:"end_time"`
	People        *int       `json:"people"`
	Location      string     `json:"location"`
	Notes         string     `json:"notes"`
	Status        string     `json:"status"`
	GoogleEventID *string    `json:"google_event_id"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
