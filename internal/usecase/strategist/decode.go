package strategist

import (
	"fmt"
	"regexp"
	"strconv"

	"stratego_oracle/internal/domain/stratego"
	errs "stratego_oracle/internal/errors"
)

var moveRe = regexp.MustCompile(`MOVE \((\d+),(\d+)\) TO \((\d+),(\d+)\)`)

// Decode extracts the first MOVE (r,c) TO (r,c) in text. Surrounding prose is
// ignored. Coordinates are not range checked; a match whose numbers do not
// fit in an int is skipped in favor of the next one.
func Decode(text string) (stratego.RecommendedMove, error) {
	matches := moveRe.FindAllStringSubmatch(text, -1)
	if matches == nil {
		return stratego.RecommendedMove{}, errs.ErrMoveNotFound
	}

	var lastErr error
	for _, match := range matches {
		move, err := moveFromMatch(match)
		if err == nil {
			return move, nil
		}
		lastErr = err
	}
	return stratego.RecommendedMove{}, lastErr
}

func moveFromMatch(match []string) (stratego.RecommendedMove, error) {
	var coords [4]int
	for i := range coords {
		n, err := strconv.Atoi(match[i+1])
		if err != nil {
			return stratego.RecommendedMove{}, fmt.Errorf("%w: coordinate %q: %v", errs.ErrMoveNotFound, match[i+1], err)
		}
		coords[i] = n
	}

	return stratego.RecommendedMove{
		From: stratego.Position{Row: coords[0], Col: coords[1]},
		To:   stratego.Position{Row: coords[2], Col: coords[3]},
	}, nil
}

// FormatMove writes m in the reply grammar Decode accepts.
func FormatMove(m stratego.RecommendedMove) string {
	return fmt.Sprintf("MOVE (%d,%d) TO (%d,%d)", m.From.Row, m.From.Col, m.To.Row, m.To.Col)
}
