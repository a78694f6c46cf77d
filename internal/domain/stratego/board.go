package stratego

// Board is the full 10x10 grid; a nil cell is empty.
type Board [BoardSize][BoardSize]*Piece

func (b *Board) At(p Position) *Piece {
	if !p.InBounds() {
		return nil
	}
	return b[p.Row][p.Col]
}

// KnownPieces maps a "row-col" key to the piece believed to stand there.
// Only disclosed opponent pieces carry legitimate type information.
type KnownPieces map[string]Piece

// Reveals reports whether the opponent piece at p has a disclosed type.
func (k KnownPieces) Reveals(p Position) bool {
	known, ok := k[p.Key()]
	return ok && known.Player == Opponent
}
