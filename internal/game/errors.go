package game

import "errors"

var (
	// ErrGameNotFound is returned when a game ID is unknown to the engine.
	ErrGameNotFound = errors.New("game not found")

	// ErrIllegalAction is returned when an action fails its legality check.
	// Rejected before any mutation and surfaced only to the initiating actor.
	ErrIllegalAction = errors.New("illegal action")

	// ErrInvariantViolation marks a bug-class internal contradiction, such as
	// a card present in two zones. The offending queued entry is dropped and
	// the match continues.
	ErrInvariantViolation = errors.New("invariant violation")
)
