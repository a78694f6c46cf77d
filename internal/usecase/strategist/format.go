package strategist

import (
	"fmt"
	"sort"
	"strings"

	"stratego_oracle/internal/domain/stratego"
)

// Window sizes. Legal moves keep the leading window, the histories keep
// the trailing one.
const (
	BattleWindow      = 5
	MoveHistoryWindow = 10
	LegalMoveWindow   = 10
)

const (
	NoKnownPiecesText = "No enemy pieces have been revealed yet."
	NoBattlesText     = "No battles have occurred yet."
	NoBombsText       = "No bombs have been discovered yet."
	NoMovesText       = "No moves have been made yet."
	NoLegalMovesText  = "No legal moves are available."
)

func lastN[T any](items []T, n int) []T {
	if len(items) <= n {
		return items
	}
	return items[len(items)-n:]
}

func firstN[T any](items []T, n int) []T {
	if len(items) <= n {
		return items
	}
	return items[:n]
}

func section(header string, lines []string, empty string) string {
	if len(lines) == 0 {
		return header + "\n" + empty
	}
	return header + "\n" + strings.Join(lines, "\n")
}

// FormatKnownPieces lists disclosed opponent pieces ordered by board position.
// Entries owned by the AI itself are dropped.
func FormatKnownPieces(known stratego.KnownPieces) string {
	type entry struct {
		pos   stratego.Position
		piece stratego.Piece
	}
	entries := make([]entry, 0, len(known))
	for key, piece := range known {
		if piece.Player == stratego.Self {
			continue
		}
		pos, err := stratego.ParseKey(key)
		if err != nil {
			pos = piece.Position
		}
		entries = append(entries, entry{pos: pos, piece: piece})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].pos.Row != entries[j].pos.Row {
			return entries[i].pos.Row < entries[j].pos.Row
		}
		return entries[i].pos.Col < entries[j].pos.Col
	})

	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("- %s at %s", e.piece.Type.Label(), e.pos))
	}
	return section("Known Enemy Pieces:", lines, NoKnownPiecesText)
}

// FormatBattles renders the last BattleWindow battles, oldest first.
func FormatBattles(battles []stratego.BattleRecord) string {
	recent := lastN(battles, BattleWindow)
	lines := make([]string, 0, len(recent))
	for _, b := range recent {
		lines = append(lines, fmt.Sprintf("- %s %s attacked %s %s: %s won",
			b.Attacker.Player, b.Attacker.Type.Label(),
			b.Defender.Player, b.Defender.Type.Label(),
			b.Winner))
	}
	return section(fmt.Sprintf("Recent Battles (last %d):", BattleWindow), lines, NoBattlesText)
}

func FormatBombs(bombs []stratego.Position) string {
	lines := make([]string, 0, len(bombs))
	for _, b := range bombs {
		lines = append(lines, fmt.Sprintf("- Bomb at %s", b))
	}
	return section("Confirmed Bombs:", lines, NoBombsText)
}

// FormatMoveHistory numbers entries by their place in the trailing window, not by game turn.
func FormatMoveHistory(moves []stratego.MoveHistoryEntry) string {
	recent := lastN(moves, MoveHistoryWindow)
	lines := make([]string, 0, len(recent))
	for i, m := range recent {
		lines = append(lines, fmt.Sprintf("%d. %s moved from %s to %s", i+1, m.Player, m.From, m.To))
	}
	return section(fmt.Sprintf("Recent Moves (last %d):", MoveHistoryWindow), lines, NoMovesText)
}

// FormatLegalMoves keeps only the first LegalMoveWindow moves in caller order.
func FormatLegalMoves(moves []stratego.LegalMove) string {
	shown := firstN(moves, LegalMoveWindow)
	lines := make([]string, 0, len(shown))
	for _, m := range shown {
		lines = append(lines, fmt.Sprintf("- Move %s from %s to %s", m.Piece.Type.Label(), m.From, m.To))
	}
	header := fmt.Sprintf("Legal Moves (showing %d of %d):", len(shown), len(moves))
	return section(header, lines, NoLegalMovesText)
}
