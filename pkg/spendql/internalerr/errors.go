package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrUnknownIntent = errors.New("unknown intent")
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrSchema        = errors.New("dataset schema error")
	ErrNoDataset     = errors.New("no dataset")
)
