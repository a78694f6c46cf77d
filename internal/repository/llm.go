package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"stratego_oracle/internal/adapters"
	"stratego_oracle/internal/domain/analysis"
)

// LlmRepo talks to Gemini through one chat per game. The transcript lives in
// SessionStorage, so a chat is rebuilt from history on every call.
type LlmRepo struct {
	adapter  *adapters.LlmAdapter
	sessions SessionStorage
	log      *zap.SugaredLogger
	locks    *gameLocks
}

func NewLlmRepository(adapter *adapters.LlmAdapter, sessions SessionStorage, log *zap.SugaredLogger) *LlmRepo {
	return &LlmRepo{
		adapter:  adapter,
		sessions: sessions,
		log:      log,
		locks:    newGameLocks(),
	}
}

func (l *LlmRepo) NewSession(ctx context.Context) (analysis.Session, error) {
	session := analysis.Session{
		ID:        uuid.New().String(),
		Model:     l.adapter.Model,
		CreatedAt: time.Now(),
	}
	if err := l.sessions.StoreSession(ctx, session); err != nil {
		return analysis.Session{}, fmt.Errorf("failed to store session: %w", err)
	}
	return session, nil
}

func (l *LlmRepo) GetSession(ctx context.Context, gameID string) (analysis.Session, error) {
	return l.sessions.GetSession(ctx, gameID)
}

func (l *LlmRepo) EndSession(ctx context.Context, gameID string) error {
	unlock := l.locks.lock(gameID)
	defer unlock()
	return l.sessions.DeleteSession(ctx, gameID)
}

// Send appends prompt to the game's chat and returns the reply text. Calls for
// the same game are serialized; different games never block each other.
func (l *LlmRepo) Send(ctx context.Context, session analysis.Session, prompt string) (string, error) {
	unlock := l.locks.lock(session.ID)
	defer unlock()

	// the game may have ended while this call waited for the lock
	if _, err := l.sessions.GetSession(ctx, session.ID); err != nil {
		return "", err
	}

	history, err := l.sessions.LoadHistory(ctx, session.ID)
	if err != nil {
		return "", err
	}

	chat, err := l.adapter.Client.Chats.Create(ctx, session.Model, nil, history)
	if err != nil {
		return "", fmt.Errorf("failed to create chat: %w", err)
	}

	resp, err := chat.SendMessage(ctx, genai.Part{Text: prompt})
	if err != nil {
		return "", fmt.Errorf("send request to llm: %w", err)
	}

	if err := l.sessions.SaveHistory(ctx, session.ID, chat.History(false)); err != nil {
		l.log.Warnw("failed to save chat history", "gameID", session.ID, "error", err)
	}

	return resp.Text(), nil
}

// gameLocks hands out one mutex per game id and forgets it when unused.
type gameLocks struct {
	mu    sync.Mutex
	locks map[string]*gameLock
}

type gameLock struct {
	mu   sync.Mutex
	refs int
}

func newGameLocks() *gameLocks {
	return &gameLocks{locks: make(map[string]*gameLock)}
}

func (g *gameLocks) lock(gameID string) (unlock func()) {
	g.mu.Lock()
	l, ok := g.locks[gameID]
	if !ok {
		l = &gameLock{}
		g.locks[gameID] = l
	}
	l.refs++
	g.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		g.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(g.locks, gameID)
		}
		g.mu.Unlock()
	}
}

func (g *gameLocks) size() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.locks)
}
