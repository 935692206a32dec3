package upstream

import "errors"

// Sentinel errors for upstream fetches.
var (
	ErrUnexpectedStatus = errors.New("unexpected upstream status")
	ErrMissingField     = errors.New("missing field in upstream response")
	ErrTrailingData     = errors.New("trailing data after JSON value")
)
