package task

import "errors"

// State constants.
const (
	StateOpen    = "open"
	StateDone    = "done"
	StateDeleted = "deleted"
)

// Error variables for task operations.
var (
	ErrValidation       = errors.New("invalid task")
	ErrEmptyDescription = errors.New("task description cannot be empty")
	ErrTaskNotFound     = errors.New("no task found")
	ErrFilterRequired   = errors.New("a task filter is required")
	ErrInvalidState     = errors.New("invalid task state")
	ErrAlreadyClosed    = errors.New("task is already closed")
)
