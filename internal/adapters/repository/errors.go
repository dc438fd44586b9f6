package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound     = errors.New("athlete not found")
	ErrInvalidLimit = errors.New("invalid leaderboard limit")
)
