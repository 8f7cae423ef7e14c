package conversation

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TranscriptStore appends and reads the per-session conversation log.
type transcriptQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type TranscriptStore struct {
	db transcriptQuerier
}

// NewTranscriptStore creates a store backed by pgx pool.
func NewTranscriptStore(pool *pgxpool.Pool) *TranscriptStore {
	if pool == nil {
		panic("conversation: pgx pool required")
	}
	return &TranscriptStore{db: pool}
}

func newTranscriptStoreWithQuerier(q transcriptQuerier) *TranscriptStore {
	if q == nil {
		panic("conversation: querier required")
	}
	return &TranscriptStore{db: q}
}

// Append records one transcript entry. The caller keeps ordering: the user
// message is appended before the assistant's reply.
func (s *TranscriptStore) Append(ctx context.Context, sessionID, role, content string) error {
	query := `
		INSERT INTO conversations (session_id, role, content)
		VALUES ($1, $2, $3)
	`
	if _, err := s.db.Exec(ctx, query, sessionID, role, content); err != nil {
		return fmt.Errorf("conversation: append transcript: %w", err)
	}
	return nil
}

// History returns the session transcript oldest first.
func (s *TranscriptStore) History(ctx context.Context, sessionID string) ([]ChatMessage, error) {
	query := `
		SELECT role, content
		FROM conversations
		WHERE session_id = $1
		ORDER BY created_at ASC
	`
	rows, err := s.db.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("conversation: load transcript: %w", err)
	}
	defer rows.Close()

	var history []ChatMessage
	for rows.Next() {
		var msg ChatMessage
		if err := rows.Scan(&msg.Role, &msg.Content); err != nil {
			return nil, fmt.Errorf("conversation: scan transcript: %w", err)
		}
		history = append(history, msg)
	}
	return history, rows.Err()
}
