package render

import "errors"

// Sentinel kinds for render errors.
var (
	ErrLengthMismatch = errors.New("array length does not match grid")
)
