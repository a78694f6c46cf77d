package stratego

import (
	"fmt"
	"strconv"
	"strings"
)

const BoardSize = 10

// Position is a board cell, zero-based from the top-left corner.
type Position struct {
	Row int `json:"row" bson:"row"`
	Col int `json:"col" bson:"col"`
}

func (p Position) InBounds() bool {
	return p.Row >= 0 && p.Row < BoardSize && p.Col >= 0 && p.Col < BoardSize
}

// IsWater reports whether the cell belongs to one of the two 2x2 lakes
// (rows 4-5, columns 2-3 and 6-7).
func (p Position) IsWater() bool {
	return (p.Row == 4 || p.Row == 5) && (p.Col == 2 || p.Col == 3 || p.Col == 6 || p.Col == 7)
}

// Key returns the "row-col" form used by KnownPieces.
func (p Position) Key() string {
	return strconv.Itoa(p.Row) + "-" + strconv.Itoa(p.Col)
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// ParseKey is the inverse of Position.Key.
func ParseKey(key string) (Position, error) {
	rowStr, colStr, ok := strings.Cut(key, "-")
	if !ok {
		return Position{}, fmt.Errorf("position key %q: missing separator", key)
	}
	row, err := strconv.Atoi(rowStr)
	if err != nil {
		return Position{}, fmt.Errorf("position key %q: bad row: %w", key, err)
	}
	col, err := strconv.Atoi(colStr)
	if err != nil {
		return Position{}, fmt.Errorf("position key %q: bad col: %w", key, err)
	}
	return Position{Row: row, Col: col}, nil
}
