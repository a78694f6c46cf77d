package strategist

import (
	"fmt"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"

	"stratego_oracle/internal/domain/analysis"
	"stratego_oracle/internal/domain/stratego"
)

// MoveFormat is the exact reply grammar Decode looks for.
const MoveFormat = "MOVE (fromRow,fromCol) TO (toRow,toCol)"

// OutputInstruction closes every prompt.
var OutputInstruction = fmt.Sprintf(
	`Answer with EXACTLY one line in this format: "%s". Use only coordinates from the Legal Moves list. Nothing else.`,
	MoveFormat)

var rulesPreamble = heredoc.Doc(`
	You are playing Stratego as the "ai" player against the "player".
	Rows and columns are numbered 0-9. Your pieces start on rows 0-3.

	Piece strength (lower rank is stronger):
	- Rank k beats every piece of rank greater than k; equal ranks remove each other.
	- Marshal (1) beats everything except a Bomb, and loses to a Spy that attacks it.
	- Scout (9) loses to every other ranked piece and beats only the Spy and the Flag. It moves any number of empty squares in a straight line.
	- Spy (S) wins against any non-Bomb piece only when the Spy attacks; it loses every battle as a defender.
	- Bomb (B) destroys any attacker except a Miner (8). Bombs never move.
	- Flag (F) never moves. Capturing the enemy Flag wins the game.
	- Lakes (~~~) are impassable.
`)

var strategyGuidance = heredoc.Doc(`
	Strategic guidance:
	- Keep your Marshal away from unrevealed pieces that may be the enemy Spy.
	- Use Scouts to uncover unrevealed enemy pieces before committing strong pieces.
	- Send Miners toward confirmed bombs; every other piece must avoid them.
	- Attack revealed enemy pieces only with a piece that beats them.
	- Guard the approaches to your Flag and keep some bombs around it intact.
	- Prefer moves that gain information or material over moves that shuffle pieces back and forth.
`)

// ComposePrompt deterministically builds the oracle request for one turn.
// Section order: turn, move history, known enemy pieces, battles, bombs,
// legal moves, board, then the output instruction.
func ComposePrompt(req *analysis.Request) string {
	board := req.Board
	if board == nil {
		board = &stratego.Board{}
	}

	sections := []string{
		rulesPreamble,
		strategyGuidance,
		fmt.Sprintf("Turn: %d", req.Turn()),
		FormatMoveHistory(req.MoveHistory),
		FormatKnownPieces(req.KnownPieces),
		FormatBattles(req.BattleHistory),
		FormatBombs(req.ConfirmedBombs),
		FormatLegalMoves(req.LegalMoves),
		"Board:\n" + RenderBoard(board, req.KnownPieces) + "\n" + BoardLegend,
		OutputInstruction,
	}
	for i, s := range sections {
		sections[i] = strings.TrimRight(s, "\n")
	}
	return strings.Join(sections, "\n\n")
}
