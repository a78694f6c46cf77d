package analysis

import (
	"fmt"
	"time"

	"stratego_oracle/internal/domain/stratego"
	errs "stratego_oracle/internal/errors"
)

// Request is one move-decision request from the game client.
// Pointer and nil-able fields distinguish "missing" from "empty".
type Request struct {
	GameID         string                      `json:"gameId,omitempty"`
	Board          *stratego.Board             `json:"board"`
	LegalMoves     []stratego.LegalMove        `json:"legalMoves"`
	KnownPieces    stratego.KnownPieces        `json:"knownPieces"`
	BattleHistory  []stratego.BattleRecord     `json:"battleHistory"`
	ConfirmedBombs []stratego.Position         `json:"confirmedBombs"`
	TurnCount      *int                        `json:"turnCount"`
	MoveHistory    []stratego.MoveHistoryEntry `json:"moveHistory,omitempty"`
}

// MissingField returns the wire name of the first absent required field, or "".
func (r *Request) MissingField() string {
	switch {
	case r.Board == nil:
		return "board"
	case r.LegalMoves == nil:
		return "legalMoves"
	case r.KnownPieces == nil:
		return "knownPieces"
	case r.BattleHistory == nil:
		return "battleHistory"
	case r.ConfirmedBombs == nil:
		return "confirmedBombs"
	case r.TurnCount == nil:
		return "turnCount"
	}
	return ""
}

// Validate rejects requests the pipeline cannot encode: absent required fields
// (ErrMissingField) and a negative turn counter (ErrInvalidRequest).
func (r *Request) Validate() error {
	if field := r.MissingField(); field != "" {
		return fmt.Errorf("%w: %s", errs.ErrMissingField, field)
	}
	if *r.TurnCount < 0 {
		return fmt.Errorf("%w: turnCount must be non-negative, got %d", errs.ErrInvalidRequest, *r.TurnCount)
	}
	return nil
}

func (r *Request) Turn() int {
	if r.TurnCount == nil {
		return 0
	}
	return *r.TurnCount
}

type Response struct {
	Move   *stratego.RecommendedMove `json:"move,omitempty"`
	GameID string                    `json:"gameId,omitempty"`
	Error  string                    `json:"error,omitempty"`
	Code   string                    `json:"code,omitempty"`
}

// Session is the per-game conversational handle.
type Session struct {
	ID        string    `json:"gameId" bson:"game_id"`
	Model     string    `json:"model" bson:"model"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
}

type SessionCreateResponse struct {
	GameID string `json:"gameId"`
	Model  string `json:"model"`
}

// Record is one archived analysis, kept for diagnosis.
type Record struct {
	ID        string                    `json:"id" bson:"_id"`
	GameID    string                    `json:"gameId" bson:"game_id"`
	Turn      int                       `json:"turn" bson:"turn"`
	Prompt    string                    `json:"prompt" bson:"prompt"`
	Reply     string                    `json:"reply,omitempty" bson:"reply,omitempty"`
	Move      *stratego.RecommendedMove `json:"move,omitempty" bson:"move,omitempty"`
	Error     string                    `json:"error,omitempty" bson:"error,omitempty"`
	CreatedAt time.Time                 `json:"createdAt" bson:"created_at"`
}
