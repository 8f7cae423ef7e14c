package conversation

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranscriptStoreAppend(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`INSERT INTO conversations`).
		WithArgs("s1", ChatRoleUser, "hello").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	store := newTranscriptStoreWithQuerier(mock)
	err = store.Append(context.Background(), "s1", ChatRoleUser, "hello")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTranscriptStoreAppendError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`INSERT INTO conversations`).
		WithArgs("s1", ChatRoleUser, "hello").
		WillReturnError(errors.New("connection reset"))

	store := newTranscriptStoreWithQuerier(mock)
	err = store.Append(context.Background(), "s1", ChatRoleUser, "hello")
	assert.ErrorContains(t, err, "append transcript")
}

func TestTranscriptStoreHistory(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rows := pgxmock.NewRows([]string{"role", "content"}).
		AddRow(ChatRoleUser, "table for two").
		AddRow(ChatRoleAssistant, "What date?")
	mock.ExpectQuery(`SELECT role, content`).
		WithArgs("s1").
		WillReturnRows(rows)

	store := newTranscriptStoreWithQuerier(mock)
	history, err := store.History(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, ChatMessage{Role: ChatRoleUser, Content: "table for two"}, history[0])
	assert.Equal(t, ChatMessage{Role: ChatRoleAssistant, Content: "What date?"}, history[1])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTranscriptStoreHistoryEmpty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT role, content`).
		WithArgs("absent").
		WillReturnRows(pgxmock.NewRows([]string{"role", "content"}))

	store := newTranscriptStoreWithQuerier(mock)
	history, err := store.History(context.Background(), "absent")
	require.NoError(t, err)
	assert.Empty(t, history)
}
