// internal/history/session.go
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"survey-analyst/internal/models"
)

var ErrSessionStore = errors.New("SESSION_STORE_FAILED")

// SessionStore keeps the ordered turns of a conversation.
type SessionStore interface {
	Append(ctx context.Context, sessionID string, turn models.Turn) error
	History(ctx context.Context, sessionID string) ([]models.Turn, error)
}

// RedisSessionStore keeps each session as a capped Redis list that expires
// after ttl of inactivity.
type RedisSessionStore struct {
	redis    redis.Cmdable
	ttl      time.Duration
	maxTurns int
	prefix   string
}

func NewRedisSessionStore(rdb redis.Cmdable, ttl time.Duration, maxTurns int) *RedisSessionStore {
	return &RedisSessionStore{
		redis:    rdb,
		ttl:      ttl,
		maxTurns: maxTurns,
		prefix:   "analyst:session:",
	}
}

func (s *RedisSessionStore) key(sessionID string) string {
	return s.prefix + sessionID
}

func (s *RedisSessionStore) Append(ctx context.Context, sessionID string, turn models.Turn) error {
	data, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSessionStore, err)
	}

	key := s.key(sessionID)
	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, data)
		if s.maxTurns > 0 {
			pipe.LTrim(ctx, key, int64(-s.maxTurns), -1)
		}
		if s.ttl > 0 {
			pipe.Expire(ctx, key, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSessionStore, err)
	}
	return nil
}

func (s *RedisSessionStore) History(ctx context.Context, sessionID string) ([]models.Turn, error) {
	items, err := s.redis.LRange(ctx, s.key(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionStore, err)
	}

	turns := make([]models.Turn, 0, len(items))
	for _, item := range items {
		var t models.Turn
		if err := json.Unmarshal([]byte(item), &t); err != nil {
			return nil, fmt.Errorf("%w: corrupt turn: %v", ErrSessionStore, err)
		}
		turns = append(turns, t)
	}
	return turns, nil
}

// MemorySessionStore is the single-process fallback when Redis is disabled.
type MemorySessionStore struct {
	mu       sync.RWMutex
	maxTurns int
	sessions map[string][]models.Turn
}

func NewMemorySessionStore(maxTurns int) *MemorySessionStore {
	return &MemorySessionStore{
		maxTurns: maxTurns,
		sessions: make(map[string][]models.Turn),
	}
}

func (s *MemorySessionStore) Append(_ context.Context, sessionID string, turn models.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns := append(s.sessions[sessionID], turn)
	if s.maxTurns > 0 && len(turns) > s.maxTurns {
		turns = append([]models.Turn(nil), turns[len(turns)-s.maxTurns:]...)
	}
	s.sessions[sessionID] = turns
	return nil
}

func (s *MemorySessionStore) History(_ context.Context, sessionID string) ([]models.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Turn, len(s.sessions[sessionID]))
	copy(out, s.sessions[sessionID])
	return out, nil
}
