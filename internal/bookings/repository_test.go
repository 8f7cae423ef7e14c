package bookings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bookingColumnNames = []string{
	"id", "session_id", "service_type", "date", "end_date", "start_time", "end_time",
	"people", "location", "notes", "status", "google_event_id", "created_at", "updated_at",
}

func bookingRow(b Booking) *pgxmock.Rows {
	return pgxmock.NewRows(bookingColumnNames).AddRow(
		b.ID, b.SessionID, b.ServiceType, b.Date, b.EndDate, b.StartTime, b.EndTime,
		b.People, b.Location, b.Notes, b.Status, b.GoogleEventID, b.CreatedAt, b.UpdatedAt,
	)
}

func sampleBooking() Booking {
	people := 2
	return Booking{
		ID:          uuid.New(),
		SessionID:   "s1",
		ServiceType: "restaurant",
		Date:        time.Date(2030, time.January, 2, 0, 0, 0, 0, time.UTC),
		StartTime:   "19:00",
		EndTime:     "20:00",
		People:      &people,
		Status:      StatusPending,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
}

func TestFindPendingForDate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	want := sampleBooking()
	mock.ExpectQuery(`SELECT .+ FROM bookings`).
		WithArgs("s1", want.Date).
		WillReturnRows(bookingRow(want))

	repo := newRepositoryWithQuerier(mock)
	got, err := repo.FindPendingForDate(context.Background(), "s1", want.Date)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, StatusPending, got.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindPendingForDateNoRow(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	date := time.Date(2030, time.January, 2, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT .+ FROM bookings`).
		WithArgs("s1", date).
		WillReturnError(pgx.ErrNoRows)

	repo := newRepositoryWithQuerier(mock)
	got, err := repo.FindPendingForDate(context.Background(), "s1", date)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestInsertDefaultsIDAndStatus(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	b := sampleBooking()
	b.ID = uuid.Nil
	b.Status = ""

	returned := sampleBooking()
	mock.ExpectQuery(`INSERT INTO bookings`).
		WithArgs(pgxmock.AnyArg(), b.SessionID, b.ServiceType, b.Date, b.EndDate,
			b.StartTime, b.EndTime, b.People, b.Location, b.Notes, StatusPending).
		WillReturnRows(bookingRow(returned))

	repo := newRepositoryWithQuerier(mock)
	got, err := repo.Insert(context.Background(), &b)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, b.ID)
	assert.Equal(t, StatusPending, got.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateFieldsNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	b := sampleBooking()
	mock.ExpectQuery(`UPDATE bookings SET`).
		WithArgs(b.ServiceType, b.Date, b.EndDate, b.StartTime, b.EndTime,
			b.People, b.Location, b.Notes, b.ID).
		WillReturnError(pgx.ErrNoRows)

	repo := newRepositoryWithQuerier(mock)
	_, err = repo.UpdateFields(context.Background(), b.ID, &b)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestListBySession(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	first := sampleBooking()
	second := sampleBooking()
	rows := bookingRow(first).AddRow(
		second.ID, second.SessionID, second.ServiceType, second.Date, second.EndDate,
		second.StartTime, second.EndTime, second.People, second.Location, second.Notes,
		second.Status, second.GoogleEventID, second.CreatedAt, second.UpdatedAt,
	)
	mock.ExpectQuery(`SELECT .+ FROM bookings`).
		WithArgs("s1").
		WillReturnRows(rows)

	repo := newRepositoryWithQuerier(mock)
	got, err := repo.ListBySession(context.Background(), "s1")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestListBySessionEmpty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT .+ FROM bookings`).
		WithArgs("nobody").
		WillReturnRows(pgxmock.NewRows(bookingColumnNames))

	repo := newRepositoryWithQuerier(mock)
	got, err := repo.ListBySession(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestPatchAllowListOrder(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	b := sampleBooking()
	// Recognized columns bind in fixed allow-list order regardless of map
	// iteration; unknown keys are dropped.
	mock.ExpectQuery(`UPDATE bookings SET service_type = \$1, people = \$2, updated_at = now\(\) WHERE id = \$3`).
		WithArgs("hotel", 4, b.ID).
		WillReturnRows(bookingRow(b))

	repo := newRepositoryWithQuerier(mock)
	_, err = repo.Patch(context.Background(), b.ID, map[string]any{
		"people":       float64(4),
		"service_type": "hotel",
		"id":           "nope",
		"session_id":   "nope",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPatchCoercesDates(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	b := sampleBooking()
	want := time.Date(2030, time.March, 5, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`UPDATE bookings SET date = \$1`).
		WithArgs(want, b.ID).
		WillReturnRows(bookingRow(b))

	repo := newRepositoryWithQuerier(mock)
	_, err = repo.Patch(context.Background(), b.ID, map[string]any{"date": "05-03-2030"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPatchNothingRecognized(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := newRepositoryWithQuerier(mock)
	_, err = repo.Patch(context.Background(), uuid.New(), map[string]any{"google_event_id": "x"})
	assert.ErrorIs(t, err, ErrNoUpdatableFields)
}

func TestMarkCancelled(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	b := sampleBooking()
	b.Status = StatusCancelled
	mock.ExpectQuery(`UPDATE bookings`).
		WithArgs(b.ID).
		WillReturnRows(bookingRow(b))

	repo := newRepositoryWithQuerier(mock)
	got, err := repo.MarkCancelled(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, got.Status)
}

func TestMarkCancelledNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	mock.ExpectQuery(`UPDATE bookings`).
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)

	repo := newRepositoryWithQuerier(mock)
	_, err = repo.MarkCancelled(context.Background(), id)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestSetEventID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	eventID := "evt-123"
	mock.ExpectExec(`UPDATE bookings`).
		WithArgs(&eventID, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	repo := newRepositoryWithQuerier(mock)
	require.NoError(t, repo.SetEventID(context.Background(), id, &eventID))

	mock.ExpectExec(`UPDATE bookings`).
		WithArgs((*string)(nil), id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, repo.SetEventID(context.Background(), id, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertQueryFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	b := sampleBooking()
	mock.ExpectQuery(`INSERT INTO bookings`).
		WithArgs(b.ID, b.SessionID, b.ServiceType, b.Date, b.EndDate,
			b.StartTime, b.EndTime, b.People, b.Location, b.Notes, b.Status).
		WillReturnError(errors.New("deadlock"))

	repo := newRepositoryWithQuerier(mock)
	_, err = repo.Insert(context.Background(), &b)
	assert.ErrorContains(t, err, "bookings: insert")
}
