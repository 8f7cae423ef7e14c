package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MyatBhoneThet/ai-receptionist/internal/bookings"
	"github.com/MyatBhoneThet/ai-receptionist/pkg/logging"
)

// BookingService is the booking side the HTTP surface needs.
type BookingService interface {
	List(ctx context.Context, sessionID string) ([]bookings.Booking, error)
	Patch(ctx context.Context, id uuid.UUID, fields map[string]any) (*bookings.Booking, error)
	Cancel(ctx context.Context, id uuid.UUID) (*bookings.Booking, error)
}

// BookingsHandler serves booking reads, patches, and cancellations.
type BookingsHandler struct {
	reconciler BookingService
	logger     *logging.Logger
}

// NewBookingsHandler creates the /bookings handlers.
func NewBookingsHandler(reconciler BookingService, logger *logging.Logger) *BookingsHandler {
	if reconciler == nil {
		panic("handlers: reconciler required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &BookingsHandler{reconciler: reconciler, logger: logger}
}

// List returns a session's bookings, newest first.
// GET /bookings/{session_id}
func (h *BookingsHandler) List(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "session id is required")
		return
	}

	rows, err := h.reconciler.List(r.Context(), sessionID)
	if err != nil {
		h.logger.Error("list bookings failed", "session_id", sessionID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch bookings.")
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// Patch modifies an allow-listed subset of a booking's fields.
// PATCH /bookings/{id}
func (h *BookingsHandler) Patch(w http.ResponseWriter, r *http.Request) {
	id, ok := parseBookingID(w, r)
	if !ok {
		return
	}

	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	row, err := h.reconciler.Patch(r.Context(), id, fields)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrNoUpdatableFields):
			writeError(w, http.StatusBadRequest, "No valid fields to update.")
		case errors.Is(err, bookings.ErrBookingNotFound):
			writeError(w, http.StatusNotFound, "Booking not found.")
		default:
			h.logger.Error("patch booking failed", "booking_id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to update booking.")
		}
		return
	}
	writeJSON(w, http.StatusOK, row)
}

// Cancel soft-cancels a booking; rows are never hard-deleted.
// DELETE /bookings/{id}
func (h *BookingsHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := parseBookingID(w, r)
	if !ok {
		return
	}

	row, err := h.reconciler.Cancel(r.Context(), id)
	if err != nil {
		if errors.Is(err, bookings.ErrBookingNotFound) {
			writeError(w, http.StatusNotFound, "Booking not found.")
			return
		}
		h.logger.Error("cancel booking failed", "booking_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to cancel booking.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"booking": row,
	})
}

func parseBookingID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid booking id")
		return uuid.Nil, false
	}
	return id, true
}
