package app

import "errors"

// Sentinel kinds for session errors.
var (
	ErrBadChannel = errors.New("unknown statistic channel")
)
