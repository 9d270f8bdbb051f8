package usecase

import "errors"

// Sentinel fault classes shared by the pipeline steps. Callers match them
// with errors.Is to tell bad requests apart from missing inputs and from
// upstream hosts that may recover.
var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNoGameData            = errors.New("no game data loaded")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
