package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"google.golang.org/genai"

	"stratego_oracle/internal/domain/analysis"
	errs "stratego_oracle/internal/errors"
)

// SessionStorage keeps session metadata and the chat transcript of each game.
type SessionStorage interface {
	StoreSession(ctx context.Context, session analysis.Session) error
	GetSession(ctx context.Context, gameID string) (analysis.Session, error)
	DeleteSession(ctx context.Context, gameID string) error
	LoadHistory(ctx context.Context, gameID string) ([]*genai.Content, error)
	SaveHistory(ctx context.Context, gameID string, history []*genai.Content) error
}

type RedisSessionStorage struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionRedisStorage(client *redis.Client, ttl time.Duration) *RedisSessionStorage {
	return &RedisSessionStorage{
		client: client,
		ttl:    ttl,
	}
}

func sessionKey(gameID string) string { return "stratego:session:" + gameID }
func historyKey(gameID string) string { return "stratego:history:" + gameID }

func (r *RedisSessionStorage) StoreSession(ctx context.Context, session analysis.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	return r.client.Set(ctx, sessionKey(session.ID), data, r.ttl).Err()
}

func (r *RedisSessionStorage) GetSession(ctx context.Context, gameID string) (analysis.Session, error) {
	v, err := r.client.Get(ctx, sessionKey(gameID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return analysis.Session{}, errs.ErrSessionNotFound
	}
	if err != nil {
		return analysis.Session{}, fmt.Errorf("failed to load session %s: %w", gameID, err)
	}

	var session analysis.Session
	if err := json.Unmarshal(v, &session); err != nil {
		return analysis.Session{}, fmt.Errorf("failed to unmarshal session %s: %w", gameID, err)
	}
	return session, nil
}

func (r *RedisSessionStorage) DeleteSession(ctx context.Context, gameID string) error {
	return r.client.Del(ctx, sessionKey(gameID), historyKey(gameID)).Err()
}

func (r *RedisSessionStorage) LoadHistory(ctx context.Context, gameID string) ([]*genai.Content, error) {
	v, err := r.client.Get(ctx, historyKey(gameID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load history %s: %w", gameID, err)
	}

	var history []*genai.Content
	if err := json.Unmarshal(v, &history); err != nil {
		return nil, fmt.Errorf("failed to unmarshal history %s: %w", gameID, err)
	}
	return history, nil
}

// SaveHistory also refreshes the session TTL so active games do not expire.
func (r *RedisSessionStorage) SaveHistory(ctx context.Context, gameID string, history []*genai.Content) error {
	data, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, historyKey(gameID), data, r.ttl)
	if r.ttl > 0 {
		pipe.Expire(ctx, sessionKey(gameID), r.ttl)
	}
	_, err = pipe.Exec(ctx)
	return err
}

// MemorySessionStorage is used when no redis is configured. Sessions do not
// survive a restart and are not shared between replicas. Like the redis store,
// a game expires ttl after its last write; a zero ttl keeps games forever.
type MemorySessionStorage struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]memorySession
}

type memorySession struct {
	session   analysis.Session
	history   []*genai.Content
	expiresAt time.Time
}

func NewMemorySessionStorage(ttl time.Duration) *MemorySessionStorage {
	return &MemorySessionStorage{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]memorySession),
	}
}

func (m *MemorySessionStorage) expired(entry memorySession) bool {
	return !entry.expiresAt.IsZero() && !m.now().Before(entry.expiresAt)
}

func (m *MemorySessionStorage) deadline() time.Time {
	if m.ttl <= 0 {
		return time.Time{}
	}
	return m.now().Add(m.ttl)
}

// lookup returns the live entry for gameID, dropping it if it has expired.
// Callers hold m.mu.
func (m *MemorySessionStorage) lookup(gameID string) (memorySession, bool) {
	entry, ok := m.sessions[gameID]
	if !ok {
		return memorySession{}, false
	}
	if m.expired(entry) {
		delete(m.sessions, gameID)
		return memorySession{}, false
	}
	return entry, true
}

// StoreSession also sweeps expired games, so sessions nobody asks about again
// are still released.
func (m *MemorySessionStorage) StoreSession(_ context.Context, session analysis.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, entry := range m.sessions {
		if m.expired(entry) {
			delete(m.sessions, id)
		}
	}
	m.sessions[session.ID] = memorySession{session: session, expiresAt: m.deadline()}
	return nil
}

func (m *MemorySessionStorage) GetSession(_ context.Context, gameID string) (analysis.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.lookup(gameID)
	if !ok {
		return analysis.Session{}, errs.ErrSessionNotFound
	}
	return entry.session, nil
}

func (m *MemorySessionStorage) DeleteSession(_ context.Context, gameID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, gameID)
	return nil
}

func (m *MemorySessionStorage) LoadHistory(_ context.Context, gameID string) ([]*genai.Content, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, _ := m.lookup(gameID)
	return append([]*genai.Content(nil), entry.history...), nil
}

// SaveHistory refreshes the game's expiry. A transcript for an unknown or
// expired game is dropped.
func (m *MemorySessionStorage) SaveHistory(_ context.Context, gameID string, history []*genai.Content) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.lookup(gameID)
	if !ok {
		return errs.ErrSessionNotFound
	}
	entry.history = append([]*genai.Content(nil), history...)
	entry.expiresAt = m.deadline()
	m.sessions[gameID] = entry
	return nil
}

func (m *MemorySessionStorage) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
