package domain

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrExchangeUnavailable = errors.New("exchange unavailable")
	ErrNotExecutable       = errors.New("opportunity not in executable status")
	ErrExecutionFailed     = errors.New("execution failed")
)
