package strategist

import (
	"fmt"
	"strconv"
	"strings"

	"stratego_oracle/internal/domain/stratego"
)

const (
	cellWidth = 3

	WaterGlyph   = "~~~"
	EmptyGlyph   = "--"
	UnknownGlyph = "?"

	selfMarker     = "a"
	opponentMarker = "p"
)

// BoardLegend explains the glyphs produced by RenderBoard.
const BoardLegend = "Legend: a<type> = your piece, p<type> = revealed enemy piece, p? = unrevealed enemy piece, -- = empty, ~~~ = lake (impassable)"

// CellGlyph renders one cell. Water wins over any content; an opponent
// piece shows its type only when known reveals it.
func CellGlyph(board *stratego.Board, known stratego.KnownPieces, pos stratego.Position) string {
	if pos.IsWater() {
		return WaterGlyph
	}
	piece := board.At(pos)
	if piece == nil {
		return pad(EmptyGlyph)
	}
	if piece.Player == stratego.Self {
		return pad(selfMarker + string(piece.Type))
	}
	if known.Reveals(pos) {
		return pad(opponentMarker + string(piece.Type))
	}
	return pad(opponentMarker + UnknownGlyph)
}

// RenderBoard returns a column header line followed by ten rows, all of equal width.
func RenderBoard(board *stratego.Board, known stratego.KnownPieces) string {
	var sb strings.Builder

	header := make([]string, stratego.BoardSize)
	for col := range header {
		header[col] = pad(strconv.Itoa(col))
	}
	sb.WriteString("   ")
	sb.WriteString(strings.Join(header, " "))

	cells := make([]string, stratego.BoardSize)
	for row := 0; row < stratego.BoardSize; row++ {
		for col := 0; col < stratego.BoardSize; col++ {
			cells[col] = CellGlyph(board, known, stratego.Position{Row: row, Col: col})
		}
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%2d ", row))
		sb.WriteString(strings.Join(cells, " "))
	}
	return sb.String()
}

// pad fixes a glyph to cellWidth bytes so every row has the same length.
func pad(s string) string {
	if len(s) > cellWidth {
		s = s[:cellWidth]
	}
	return fmt.Sprintf("%-*s", cellWidth, s)
}
