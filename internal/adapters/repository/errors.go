package repository

import "errors"

// Sentinel kinds for result-store errors.
var (
	ErrNotFound = errors.New("row not found")
)
