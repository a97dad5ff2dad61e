package task

import (
	"fmt"
	"slices"
	"time"
)

// Task represents a single task with all its fields.
//
// IDs are allocated by the store at creation time and are unique across
// the full task history: a completed or deleted task keeps its row, so
// an id is never reassigned.
type Task struct {
	ID          int64
	Description string
	Tags        []string
	Projects    []string
	State       string
	CreatedAt   time.Time
	ClosedAt    *time.Time // nil while the task is open
}

// validStates are the allowed task states.
var validStates = []string{StateOpen, StateDone, StateDeleted}

// IsValidState checks if the state is valid.
func IsValidState(state string) bool {
	return slices.Contains(validStates, state)
}

// IsOpen reports whether the task can still be transitioned.
func (t *Task) IsOpen() bool {
	return t.State == StateOpen
}

// HasTag reports whether the task carries the given tag. Tag names are
// case-sensitive.
func (t *Task) HasTag(name string) bool {
	return slices.Contains(t.Tags, name)
}

// HasProject reports whether the task belongs to the given project.
// Project names are case-sensitive.
func (t *Task) HasProject(name string) bool {
	return slices.Contains(t.Projects, name)
}

// Close transitions the task out of the open state and stamps the
// closing time. Transitions are one-directional: a done or deleted task
// never re-opens, and closing it again is an error the lifecycle layer
// translates into a no-op.
func (t *Task) Close(state string, closedAt time.Time) error {
	if state != StateDone && state != StateDeleted {
		return fmt.Errorf("%w: %s", ErrInvalidState, state)
	}

	if !t.IsOpen() {
		return fmt.Errorf("%w: %d (state: %s)", ErrAlreadyClosed, t.ID, t.State)
	}

	t.State = state
	closed := closedAt.UTC()
	t.ClosedAt = &closed

	return nil
}

// dedupe returns the values with duplicates removed, preserving first
// occurrence order. nil stays nil so callers can distinguish "no tags"
// from "empty set".
func dedupe(values []string) []string {
	if values == nil {
		return nil
	}

	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))

	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}

		seen[v] = struct{}{}
		out = append(out, v)
	}

	return out
}

// New validates and builds an open task. The id is zero until the store
// persists the task and allocates one.
func New(description string, tags, projects []string, createdAt time.Time) (*Task, error) {
	if description == "" {
		return nil, fmt.Errorf("%w: %w", ErrValidation, ErrEmptyDescription)
	}

	return &Task{
		Description: description,
		Tags:        dedupe(tags),
		Projects:    dedupe(projects),
		State:       StateOpen,
		CreatedAt:   createdAt.UTC(),
	}, nil
}
