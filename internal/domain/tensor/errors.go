package tensor

import "errors"

// Sentinel kinds for tensor errors.
var (
	ErrBadShape   = errors.New("invalid tensor shape")
	ErrBadTimeBin = errors.New("invalid time bin")
)
