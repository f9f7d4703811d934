package game

import "errors"

// Error kinds raised by entity mutators and the services built on top of
// them. Repositories and the scorer never swallow these — they propagate so
// an enclosing store.Transaction rolls back.
var (
	// ErrNotFound is returned when a game, agent, finding, or dispute lookup
	// by id fails.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState is returned by an entity mutator called from a status
	// that does not permit it (e.g. validating an already-validated finding).
	ErrInvalidState = errors.New("invalid entity state")

	// ErrInvalidPhase is returned when a phase transition or phase-gated
	// operation is attempted from a phase that does not allow it.
	ErrInvalidPhase = errors.New("invalid phase")

	// ErrInvalidPrecondition is returned for submission-service preconditions:
	// an agent disputing its own finding, a double dispute, a missing
	// doc-drift snippet, or an agent that has already signalled done.
	ErrInvalidPrecondition = errors.New("invalid precondition")

	// ErrInvariantViolation indicates a programmer error — a stat counter
	// going negative, or an unknown phase reaching the transition table. It
	// is not meant to be recovered from.
	ErrInvariantViolation = errors.New("invariant violation")
)

// PhaseError carries both the phase an operation observed and the phase (or
// set of phases) it required, so callers can render a precise message.
type PhaseError struct {
	Observed Phase
	Required string
}

func (e *PhaseError) Error() string {
	return "invalid phase: observed " + string(e.Observed) + ", required " + e.Required
}

func (e *PhaseError) Unwrap() error { return ErrInvalidPhase }

// NewPhaseError builds a PhaseError describing the transition that failed.
func NewPhaseError(observed Phase, required string) error {
	return &PhaseError{Observed: observed, Required: required}
}
