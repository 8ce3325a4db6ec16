package grid

import "errors"

// Sentinel kinds for grid construction errors.
var (
	ErrBadEdges = errors.New("invalid grid edges")
)
