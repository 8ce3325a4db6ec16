package compute

import "errors"

// Sentinel kinds for compute boundary errors.
var (
	ErrEmptyCluster = errors.New("cluster index set is empty")
	ErrRemote       = errors.New("remote compute failed")
	ErrBadResponse  = errors.New("malformed compute response")
)
