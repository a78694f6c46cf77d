package strategist

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"stratego_oracle/internal/domain/analysis"
	"stratego_oracle/internal/domain/stratego"
	errs "stratego_oracle/internal/errors"
)

// OracleStore is the text-completion service plus its per-game sessions.
type OracleStore interface {
	NewSession(ctx context.Context) (analysis.Session, error)
	GetSession(ctx context.Context, gameID string) (analysis.Session, error)
	EndSession(ctx context.Context, gameID string) error
	Send(ctx context.Context, session analysis.Session, prompt string) (string, error)
}

type ArchiveStore interface {
	SaveAnalysis(ctx context.Context, record analysis.Record) error
	ListAnalyses(ctx context.Context, gameID string) ([]analysis.Record, error)
}

type Options struct {
	// OracleTimeout bounds one oracle call; zero means no bound.
	OracleTimeout time.Duration
	// OracleRetries is the number of extra attempts after a failed oracle call.
	OracleRetries int
}

type Strategist struct {
	oracle  OracleStore
	archive ArchiveStore
	log     *zap.SugaredLogger
	opts    Options
	now     func() time.Time
}

func NewStrategist(oracle OracleStore, archive ArchiveStore, log *zap.SugaredLogger, opts Options) *Strategist {
	return &Strategist{
		oracle:  oracle,
		archive: archive,
		log:     log,
		opts:    opts,
		now:     time.Now,
	}
}

func (s *Strategist) StartGame(ctx context.Context) (analysis.Session, error) {
	session, err := s.oracle.NewSession(ctx)
	if err != nil {
		return analysis.Session{}, fmt.Errorf("create session: %w", err)
	}
	s.log.Infow("game session created", "gameID", session.ID, "model", session.Model)
	return session, nil
}

func (s *Strategist) Session(ctx context.Context, gameID string) (analysis.Session, error) {
	return s.oracle.GetSession(ctx, gameID)
}

func (s *Strategist) EndGame(ctx context.Context, gameID string) error {
	if _, err := s.oracle.GetSession(ctx, gameID); err != nil {
		return err
	}
	if err := s.oracle.EndSession(ctx, gameID); err != nil {
		return fmt.Errorf("end session %s: %w", gameID, err)
	}
	s.log.Infow("game session ended", "gameID", gameID)
	return nil
}

// Analyze runs encode -> compose -> oracle -> decode for one turn. A request
// without a game id starts a new game session; the session used is returned
// in every case where one was resolved.
func (s *Strategist) Analyze(ctx context.Context, req *analysis.Request) (stratego.RecommendedMove, analysis.Session, error) {
	if err := req.Validate(); err != nil {
		return stratego.RecommendedMove{}, analysis.Session{}, err
	}

	var (
		session analysis.Session
		err     error
	)
	if req.GameID == "" {
		session, err = s.StartGame(ctx)
	} else {
		session, err = s.oracle.GetSession(ctx, req.GameID)
	}
	if err != nil {
		return stratego.RecommendedMove{}, analysis.Session{}, err
	}

	prompt := ComposePrompt(req)
	s.log.Debugw("composed prompt", "gameID", session.ID, "turn", req.Turn(), "prompt", prompt)

	record := analysis.Record{
		ID:        uuid.New().String(),
		GameID:    session.ID,
		Turn:      req.Turn(),
		Prompt:    prompt,
		CreatedAt: s.now(),
	}
	defer func() {
		s.saveRecord(ctx, record)
	}()

	reply, err := s.send(ctx, session, prompt)
	if err != nil {
		record.Error = err.Error()
		s.log.Errorw("oracle call failed", "gameID", session.ID, "turn", req.Turn(), "error", err)
		return stratego.RecommendedMove{}, session, fmt.Errorf("%w: %v", errs.ErrOracleFailed, err)
	}
	record.Reply = reply
	s.log.Debugw("oracle reply", "gameID", session.ID, "turn", req.Turn(), "reply", reply)

	move, err := Decode(reply)
	if err != nil {
		record.Error = err.Error()
		s.log.Warnw("no move in oracle reply", "gameID", session.ID, "turn", req.Turn())
		return stratego.RecommendedMove{}, session, err
	}
	record.Move = &move

	s.log.Infow("move suggested", "gameID", session.ID, "turn", req.Turn(), "move", FormatMove(move))
	return move, session, nil
}

func (s *Strategist) Analyses(ctx context.Context, gameID string) ([]analysis.Record, error) {
	if _, err := s.oracle.GetSession(ctx, gameID); err != nil {
		return nil, err
	}
	return s.archive.ListAnalyses(ctx, gameID)
}

func (s *Strategist) send(ctx context.Context, session analysis.Session, prompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= s.opts.OracleRetries; attempt++ {
		if attempt > 0 {
			s.log.Warnw("retrying oracle call", "gameID", session.ID, "attempt", attempt, "error", lastErr)
		}
		reply, err := s.sendOnce(ctx, session, prompt)
		if err == nil {
			return reply, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return "", lastErr
}

func (s *Strategist) sendOnce(ctx context.Context, session analysis.Session, prompt string) (string, error) {
	if s.opts.OracleTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.OracleTimeout)
		defer cancel()
	}
	return s.oracle.Send(ctx, session, prompt)
}

func (s *Strategist) saveRecord(ctx context.Context, record analysis.Record) {
	// the request context may already be cancelled when the caller went away
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.archive.SaveAnalysis(ctx, record); err != nil {
		s.log.Errorw("failed to archive analysis", "gameID", record.GameID, "error", err)
	}
}
