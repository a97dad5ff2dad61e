package store

import "errors"

// Error variables for store operations.
var (
	ErrNotOpen     = errors.New("store is not open")
	ErrNilContext  = errors.New("context is nil")
	ErrEmptyPath   = errors.New("database path is empty")
	ErrSchemaNewer = errors.New("database schema is newer than this build supports")
)
