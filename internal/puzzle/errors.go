package puzzle

import "errors"

// ConfigurationError reports a grid or size parameter the puzzle cannot be
// built from. It is fatal: the game cannot start.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "puzzle: invalid " + e.Field + ": " + e.Reason
}

// ErrPlacementConflict is reported when a drop lands on a cell another placed
// piece already holds. The drop is rejected; the piece stays where it was released.
var ErrPlacementConflict = errors.New("puzzle: cell already occupied")
