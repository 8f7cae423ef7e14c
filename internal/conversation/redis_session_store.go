package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const sessionTTL = 24 * time.Hour

// RedisSessionStore externalizes session drafts into Redis as JSON blobs
// with a rolling 24h TTL. The read-modify-write in Update is serialized per
// session by an in-process keyed lock; a turn is a single logical request,
// so cross-process contention on one conversation is a correctness bug the
// deployment avoids, not something this store arbitrates.
type RedisSessionStore struct {
	redis  *redis.Client
	tracer trace.Tracer

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewRedisSessionStore wraps a Redis client as a SessionStore.
func NewRedisSessionStore(client *redis.Client, tracer trace.Tracer) *RedisSessionStore {
	if client == nil {
		panic("conversation: redis client cannot be nil")
	}
	if tracer == nil {
		tracer = otel.Tracer("receptionist.internal.conversation.sessions")
	}
	return &RedisSessionStore{
		redis:  client,
		tracer: tracer,
		locks:  make(map[string]*sync.Mutex),
	}
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("session:%s", sessionID)
}

func (s *RedisSessionStore) lock(sessionID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[sessionID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[sessionID] = l
	}
	return l
}

// Get loads the draft, returning an empty draft for an unseen session.
func (s *RedisSessionStore) Get(ctx context.Context, sessionID string) (Draft, error) {
	ctx, span := s.tracer.Start(ctx, "conversation.session_get")
	defer span.End()

	data, err := s.redis.Get(ctx, sessionKey(sessionID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return Draft{}, nil
		}
		span.RecordError(err)
		return Draft{}, fmt.Errorf("conversation: load session: %w", err)
	}

	var d Draft
	if err := json.Unmarshal(data, &d); err != nil {
		span.RecordError(err)
		return Draft{}, fmt.Errorf("conversation: decode session: %w", err)
	}
	return d, nil
}

// Update applies fn under the session's lock and writes the result back with
// a refreshed TTL.
func (s *RedisSessionStore) Update(ctx context.Context, sessionID string, fn func(*Draft)) (Draft, error) {
	ctx, span := s.tracer.Start(ctx, "conversation.session_update")
	defer span.End()

	l := s.lock(sessionID)
	l.Lock()
	defer l.Unlock()

	d, err := s.Get(ctx, sessionID)
	if err != nil {
		return Draft{}, err
	}
	fn(&d)

	data, err := json.Marshal(d)
	if err != nil {
		span.RecordError(err)
		return Draft{}, fmt.Errorf("conversation: marshal session: %w", err)
	}
	if err := s.redis.Set(ctx, sessionKey(sessionID), data, sessionTTL).Err(); err != nil {
		span.RecordError(err)
		return Draft{}, fmt.Errorf("conversation: persist session: %w", err)
	}
	return d, nil
}

// Clear removes the session state and its lock.
func (s *RedisSessionStore) Clear(ctx context.Context, sessionID string) error {
	ctx, span := s.tracer.Start(ctx, "conversation.session_clear")
	defer span.End()

	if err := s.redis.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: clear session: %w", err)
	}
	s.mu.Lock()
	delete(s.locks, sessionID)
	s.mu.Unlock()
	return nil
}
