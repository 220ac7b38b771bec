package simulator

import "errors"

// Sentinel kinds for simulation failures.
var (
	ErrUnhealthy        = errors.New("service unhealthy")
	ErrUnexpectedStatus = errors.New("unexpected status")
	ErrMismatch         = errors.New("analytics mismatch")
)
