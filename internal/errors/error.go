package errors

import "errors"

var (
	ErrMissingField    = errors.New("missing required field")
	ErrInvalidRequest  = errors.New("invalid request")
	ErrSessionNotFound = errors.New("game session was not found")
	ErrOracleFailed    = errors.New("oracle call failed")
	ErrMoveNotFound    = errors.New("could not parse move from response")
)
