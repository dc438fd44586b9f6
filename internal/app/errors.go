package service

import "errors"

// Sentinel kinds for batch operation errors.
var (
	ErrReservedTable = errors.New("table is reserved and cannot be processed")
	ErrNoValidRows   = errors.New("no valid rows to archive")
	ErrNotConfigured = errors.New("service component not configured")
)
