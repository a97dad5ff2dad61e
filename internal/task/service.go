package task

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Scope restricts the candidate pool a resolution operates over.
type Scope string

// Resolution scopes. ScopeAll is unrestricted and used by reporting.
const (
	ScopeOpen    Scope = StateOpen
	ScopeDone    Scope = StateDone
	ScopeDeleted Scope = StateDeleted
	ScopeAll     Scope = "all"
)

// Repository is the store contract the lifecycle engine needs. The
// SQLite store in internal/store implements it; tests substitute an
// in-memory fake.
type Repository interface {
	// AddTask persists a new task in one transaction and allocates its
	// id (set on the passed task before returning).
	AddTask(ctx context.Context, t *Task) error

	// GetTask looks a task up by id across the whole history, open or
	// closed. Returns an error wrapping ErrTaskNotFound when the id was
	// never allocated.
	GetTask(ctx context.Context, id int64) (*Task, error)

	// ScanTasks returns the tasks in the given state ("" means all) in
	// creation order.
	ScanTasks(ctx context.Context, state string) ([]*Task, error)

	// CloseTask transitions the task to the given state iff it is still
	// open, in one atomic transaction. Reports whether the row actually
	// transitioned, so repeated calls are idempotent.
	CloseTask(ctx context.Context, id int64, state string, closedAt time.Time) (bool, error)
}

// Service applies lifecycle transitions to tasks resolved by filter
// expressions. State lives in the injected repository; the clock is
// injected for deterministic tests.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a Service. A nil now defaults to time.Now.
func NewService(repo Repository, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}

	return &Service{repo: repo, now: now}
}

// Add creates a new open task with a freshly allocated identifier and
// the current timestamp. An empty description is a validation error and
// no task is created.
func (s *Service) Add(ctx context.Context, description string, tags, projects []string) (*Task, error) {
	t, err := New(description, tags, projects, s.now())
	if err != nil {
		return nil, err
	}

	err = s.repo.AddTask(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("adding task: %w", err)
	}

	return t, nil
}

// Complete resolves the filter against open tasks and transitions each
// match to done. Zero matches is a no-op, not an error.
func (s *Service) Complete(ctx context.Context, rawFilter string) ([]*Task, error) {
	return s.closeTasks(ctx, rawFilter, StateDone)
}

// Remove resolves the filter against open tasks and transitions each
// match to deleted. Zero matches is a no-op, not an error.
func (s *Service) Remove(ctx context.Context, rawFilter string) ([]*Task, error) {
	return s.closeTasks(ctx, rawFilter, StateDeleted)
}

// List resolves the filter against the given scope for reporting.
func (s *Service) List(ctx context.Context, rawFilter string, scope Scope) ([]*Task, error) {
	return s.Resolve(ctx, ParseFilter(rawFilter), scope)
}

// Resolve queries the store and returns the tasks matching the filter
// within scope, in creation order (the canonical deterministic
// tiebreak).
//
// An id filter bypasses the scope's state restriction and looks up
// across the whole history: a user referencing an explicit id expects
// an exact hit regardless of current state. A missing id resolves to an
// error wrapping ErrTaskNotFound.
func (s *Service) Resolve(ctx context.Context, f Filter, scope Scope) ([]*Task, error) {
	if id, ok := f.IDLookup(); ok {
		t, err := s.repo.GetTask(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("resolving filter: %w", err)
		}

		return []*Task{t}, nil
	}

	state := ""
	if scope != ScopeAll {
		state = string(scope)
	}

	tasks, err := s.repo.ScanTasks(ctx, state)
	if err != nil {
		return nil, fmt.Errorf("resolving filter: %w", err)
	}

	matched := make([]*Task, 0, len(tasks))

	for _, t := range tasks {
		if f.Matches(t) {
			matched = append(matched, t)
		}
	}

	return matched, nil
}

// closeTasks resolves the filter against open scope and applies the
// transition to every match. Each transition is its own atomic store
// transaction; a failure mid-batch leaves already-committed transitions
// committed.
//
// Already-closed tasks resolved via an explicit id are skipped rather
// than double-transitioned, which makes do/del idempotent under
// repetition with the same filter.
func (s *Service) closeTasks(ctx context.Context, rawFilter, state string) ([]*Task, error) {
	matched, err := s.Resolve(ctx, ParseFilter(rawFilter), ScopeOpen)
	if err != nil {
		return nil, err
	}

	closedAt := s.now().UTC()
	affected := make([]*Task, 0, len(matched))

	for _, t := range matched {
		transitioned, closeErr := s.repo.CloseTask(ctx, t.ID, state, closedAt)
		if closeErr != nil {
			return affected, fmt.Errorf("closing task %d: %w", t.ID, closeErr)
		}

		if !transitioned {
			// Raced with another process or resolved by id while
			// already closed.
			continue
		}

		t.State = state
		t.ClosedAt = &closedAt
		affected = append(affected, t)
	}

	return affected, nil
}

// IsNotFound reports whether the error is a not-found resolution,
// distinguishing it from validation or store failures at the CLI
// boundary.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrTaskNotFound)
}
