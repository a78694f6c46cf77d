package strategist

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"stratego_oracle/internal/domain/analysis"
	"stratego_oracle/internal/domain/stratego"
	errs "stratego_oracle/internal/errors"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var fixedTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type replyFunc func(ctx context.Context, session analysis.Session, prompt string, call int) (string, error)

func constReply(text string) replyFunc {
	return func(context.Context, analysis.Session, string, int) (string, error) {
		return text, nil
	}
}

type fakeOracle struct {
	mu       sync.Mutex
	sessions map[string]analysis.Session
	created  int
	calls    int
	prompts  map[string][]string
	reply    replyFunc
}

func newFakeOracle(reply replyFunc) *fakeOracle {
	return &fakeOracle{
		sessions: make(map[string]analysis.Session),
		prompts:  make(map[string][]string),
		reply:    reply,
	}
}

func (f *fakeOracle) NewSession(context.Context) (analysis.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created++
	s := analysis.Session{ID: fmt.Sprintf("game-%d", f.created), Model: "test-model", CreatedAt: fixedTime}
	f.sessions[s.ID] = s
	return s, nil
}

func (f *fakeOracle) GetSession(_ context.Context, gameID string) (analysis.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[gameID]
	if !ok {
		return analysis.Session{}, errs.ErrSessionNotFound
	}
	return s, nil
}

func (f *fakeOracle) EndSession(_ context.Context, gameID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, gameID)
	return nil
}

func (f *fakeOracle) Send(ctx context.Context, session analysis.Session, prompt string) (string, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	f.prompts[session.ID] = append(f.prompts[session.ID], prompt)
	f.mu.Unlock()
	return f.reply(ctx, session, prompt, call)
}

func (f *fakeOracle) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeArchive struct {
	mu      sync.Mutex
	records []analysis.Record
	err     error
}

func (f *fakeArchive) SaveAnalysis(_ context.Context, record analysis.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, record)
	return nil
}

func (f *fakeArchive) ListAnalyses(_ context.Context, gameID string) ([]analysis.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []analysis.Record
	for _, r := range f.records {
		if r.GameID == gameID {
			out = append(out, r)
		}
	}
	return out, nil
}

func newTestStrategist(oracle OracleStore, archive ArchiveStore, opts Options) *Strategist {
	s := NewStrategist(oracle, archive, zap.NewNop().Sugar(), opts)
	s.now = func() time.Time { return fixedTime }
	return s
}

// newRequest is the smallest realistic turn: our Marshal at (0,0) facing an
// unrevealed enemy General at (1,0).
func newRequest(turn int) *analysis.Request {
	var board stratego.Board
	marshal := place(&board, stratego.Marshal, stratego.Self, 0, 0)
	place(&board, stratego.General, stratego.Opponent, 1, 0)

	return &analysis.Request{
		Board: &board,
		LegalMoves: []stratego.LegalMove{
			{Piece: marshal, From: pos(0, 0), To: pos(1, 0)},
		},
		KnownPieces:    stratego.KnownPieces{},
		BattleHistory:  []stratego.BattleRecord{},
		ConfirmedBombs: []stratego.Position{},
		TurnCount:      &turn,
	}
}

func TestAnalyzeNewGame(t *testing.T) {
	oracle := newFakeOracle(constReply("MOVE (0,0) TO (1,0)"))
	archive := &fakeArchive{}
	s := newTestStrategist(oracle, archive, Options{})

	move, session, err := s.Analyze(context.Background(), newRequest(3))
	require.NoError(t, err)

	assert.Equal(t, stratego.RecommendedMove{From: pos(0, 0), To: pos(1, 0)}, move)
	assert.Equal(t, "game-1", session.ID)
	assert.Equal(t, 1, oracle.created)

	require.Len(t, archive.records, 1)
	want := analysis.Record{
		GameID:    "game-1",
		Turn:      3,
		Reply:     "MOVE (0,0) TO (1,0)",
		Move:      &move,
		CreatedAt: fixedTime,
	}
	if diff := cmp.Diff(want, archive.records[0], cmpopts.IgnoreFields(analysis.Record{}, "ID", "Prompt")); diff != "" {
		t.Errorf("archived record mismatch (-want +got):\n%s", diff)
	}
	assert.NotEmpty(t, archive.records[0].ID)
	assert.True(t, strings.HasSuffix(archive.records[0].Prompt, OutputInstruction))
}

func TestAnalyzeReusesSession(t *testing.T) {
	oracle := newFakeOracle(constReply("MOVE (0,0) TO (1,0)"))
	s := newTestStrategist(oracle, &fakeArchive{}, Options{})
	ctx := context.Background()

	session, err := s.StartGame(ctx)
	require.NoError(t, err)

	for turn := 1; turn <= 2; turn++ {
		req := newRequest(turn)
		req.GameID = session.ID
		_, got, err := s.Analyze(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, session.ID, got.ID)
	}

	assert.Equal(t, 1, oracle.created)
	require.Len(t, oracle.prompts[session.ID], 2)
	assert.Contains(t, oracle.prompts[session.ID][0], "Turn: 1")
	assert.Contains(t, oracle.prompts[session.ID][1], "Turn: 2")
}

func TestAnalyzeUnknownGame(t *testing.T) {
	oracle := newFakeOracle(constReply("MOVE (0,0) TO (1,0)"))
	s := newTestStrategist(oracle, &fakeArchive{}, Options{})

	req := newRequest(1)
	req.GameID = "missing"
	_, _, err := s.Analyze(context.Background(), req)

	assert.ErrorIs(t, err, errs.ErrSessionNotFound)
	assert.Zero(t, oracle.callCount())
}

func TestAnalyzeMissingField(t *testing.T) {
	oracle := newFakeOracle(constReply("MOVE (0,0) TO (1,0)"))
	archive := &fakeArchive{}
	s := newTestStrategist(oracle, archive, Options{})

	req := newRequest(1)
	req.ConfirmedBombs = nil
	_, session, err := s.Analyze(context.Background(), req)

	require.ErrorIs(t, err, errs.ErrMissingField)
	assert.Contains(t, err.Error(), "confirmedBombs")
	assert.Empty(t, session.ID)
	assert.Zero(t, oracle.created)
	assert.Zero(t, oracle.callCount())
	assert.Empty(t, archive.records)
}

func TestAnalyzeNegativeTurn(t *testing.T) {
	oracle := newFakeOracle(constReply("MOVE (0,0) TO (1,0)"))
	s := newTestStrategist(oracle, &fakeArchive{}, Options{})

	_, _, err := s.Analyze(context.Background(), newRequest(-3))

	assert.ErrorIs(t, err, errs.ErrInvalidRequest)
	assert.Zero(t, oracle.created)
	assert.Zero(t, oracle.callCount())
}

func TestAnalyzeOracleFailure(t *testing.T) {
	oracle := newFakeOracle(func(context.Context, analysis.Session, string, int) (string, error) {
		return "", errors.New("quota exceeded")
	})
	archive := &fakeArchive{}
	s := newTestStrategist(oracle, archive, Options{})

	_, session, err := s.Analyze(context.Background(), newRequest(5))

	require.ErrorIs(t, err, errs.ErrOracleFailed)
	assert.Contains(t, err.Error(), "quota exceeded")
	assert.Equal(t, "game-1", session.ID)
	assert.Equal(t, 1, oracle.callCount())

	require.Len(t, archive.records, 1)
	assert.Equal(t, "quota exceeded", archive.records[0].Error)
	assert.Nil(t, archive.records[0].Move)
}

func TestAnalyzeUnparseableReply(t *testing.T) {
	oracle := newFakeOracle(constReply("I pass this turn."))
	archive := &fakeArchive{}
	s := newTestStrategist(oracle, archive, Options{})

	_, session, err := s.Analyze(context.Background(), newRequest(2))

	require.ErrorIs(t, err, errs.ErrMoveNotFound)
	assert.Equal(t, "game-1", session.ID)
	require.Len(t, archive.records, 1)
	assert.Equal(t, "I pass this turn.", archive.records[0].Reply)
	assert.Equal(t, errs.ErrMoveNotFound.Error(), archive.records[0].Error)
}

func TestAnalyzeRetries(t *testing.T) {
	tests := []struct {
		name      string
		retries   int
		failures  int
		wantErr   bool
		wantCalls int
	}{
		{name: "no retries by default", retries: 0, failures: 1, wantErr: true, wantCalls: 1},
		{name: "retry recovers", retries: 2, failures: 1, wantErr: false, wantCalls: 2},
		{name: "retries exhausted", retries: 2, failures: 5, wantErr: true, wantCalls: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oracle := newFakeOracle(func(_ context.Context, _ analysis.Session, _ string, call int) (string, error) {
				if call <= tt.failures {
					return "", errors.New("unavailable")
				}
				return "MOVE (0,0) TO (1,0)", nil
			})
			s := newTestStrategist(oracle, &fakeArchive{}, Options{OracleRetries: tt.retries})

			_, _, err := s.Analyze(context.Background(), newRequest(1))
			if tt.wantErr {
				assert.ErrorIs(t, err, errs.ErrOracleFailed)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantCalls, oracle.callCount())
		})
	}
}

func TestAnalyzeOracleTimeout(t *testing.T) {
	oracle := newFakeOracle(func(ctx context.Context, _ analysis.Session, _ string, _ int) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	s := newTestStrategist(oracle, &fakeArchive{}, Options{OracleTimeout: 20 * time.Millisecond})

	start := time.Now()
	_, _, err := s.Analyze(context.Background(), newRequest(1))

	assert.ErrorIs(t, err, errs.ErrOracleFailed)
	assert.Contains(t, err.Error(), context.DeadlineExceeded.Error())
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestAnalyzeCancelledContextStopsRetrying(t *testing.T) {
	oracle := newFakeOracle(func(ctx context.Context, _ analysis.Session, _ string, _ int) (string, error) {
		return "", ctx.Err()
	})
	archive := &fakeArchive{}
	s := newTestStrategist(oracle, archive, Options{OracleRetries: 3})

	ctx, cancel := context.WithCancel(context.Background())
	session, err := s.StartGame(ctx)
	require.NoError(t, err)
	cancel()

	req := newRequest(1)
	req.GameID = session.ID
	_, _, err = s.Analyze(ctx, req)

	assert.ErrorIs(t, err, errs.ErrOracleFailed)
	assert.Equal(t, 1, oracle.callCount())
	// the record is still archived after the caller went away
	assert.Len(t, archive.records, 1)
}

func TestAnalyzeArchiveFailureIsNotFatal(t *testing.T) {
	oracle := newFakeOracle(constReply("MOVE (0,0) TO (1,0)"))
	s := newTestStrategist(oracle, &fakeArchive{err: errors.New("disk full")}, Options{})

	move, _, err := s.Analyze(context.Background(), newRequest(1))
	require.NoError(t, err)
	assert.Equal(t, pos(1, 0), move.To)
}

func TestAnalyzeConcurrentGames(t *testing.T) {
	// every game gets a reply derived from its own session id
	oracle := newFakeOracle(func(_ context.Context, session analysis.Session, _ string, _ int) (string, error) {
		n, err := strconv.Atoi(strings.TrimPrefix(session.ID, "game-"))
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("MOVE (%d,0) TO (%d,1)", n, n), nil
	})
	s := newTestStrategist(oracle, &fakeArchive{}, Options{})

	const games = 8
	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < games; i++ {
		g.Go(func() error {
			move, session, err := s.Analyze(ctx, newRequest(1))
			if err != nil {
				return err
			}
			if want := "game-" + strconv.Itoa(move.From.Row); session.ID != want {
				return fmt.Errorf("session %s got move for %s", session.ID, want)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, games, oracle.created)
}

func TestEndGame(t *testing.T) {
	oracle := newFakeOracle(constReply("MOVE (0,0) TO (1,0)"))
	archive := &fakeArchive{}
	s := newTestStrategist(oracle, archive, Options{})
	ctx := context.Background()

	session, err := s.StartGame(ctx)
	require.NoError(t, err)
	req := newRequest(1)
	req.GameID = session.ID
	_, _, err = s.Analyze(ctx, req)
	require.NoError(t, err)

	records, err := s.Analyses(ctx, session.ID)
	require.NoError(t, err)
	assert.Len(t, records, 1)

	require.NoError(t, s.EndGame(ctx, session.ID))

	assert.ErrorIs(t, s.EndGame(ctx, session.ID), errs.ErrSessionNotFound)
	_, err = s.Analyses(ctx, session.ID)
	assert.ErrorIs(t, err, errs.ErrSessionNotFound)
	_, err = s.Session(ctx, session.ID)
	assert.ErrorIs(t, err, errs.ErrSessionNotFound)
}
