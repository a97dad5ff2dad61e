package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"pydo/internal/task"
)

// timeLayout is the canonical timestamp encoding in the database.
const timeLayout = time.RFC3339

// AddTask inserts the task and its tag/project sets in one transaction
// and sets the allocated id on t. The id comes from the store's
// AUTOINCREMENT sequence, never from process state.
func (s *Store) AddTask(ctx context.Context, t *task.Task) error {
	if err := s.ready(ctx); err != nil {
		return fmt.Errorf("add task: %w", err)
	}

	tx, err := s.sql.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("add task: begin: %w", err)
	}

	defer func() { _ = tx.Rollback() }()

	var closedAt any
	if t.ClosedAt != nil {
		closedAt = t.ClosedAt.UTC().Format(timeLayout)
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO tasks (description, state, created_at, closed_at) VALUES (?, ?, ?, ?)`,
		t.Description, t.State, t.CreatedAt.UTC().Format(timeLayout), closedAt,
	)
	if err != nil {
		return fmt.Errorf("add task: insert: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("add task: read id: %w", err)
	}

	for _, tag := range t.Tags {
		_, err = tx.ExecContext(ctx, `INSERT INTO task_tags (task_id, tag) VALUES (?, ?)`, id, tag)
		if err != nil {
			return fmt.Errorf("add task: insert tag %q: %w", tag, err)
		}
	}

	for _, project := range t.Projects {
		_, err = tx.ExecContext(ctx, `INSERT INTO task_projects (task_id, project) VALUES (?, ?)`, id, project)
		if err != nil {
			return fmt.Errorf("add task: insert project %q: %w", project, err)
		}
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("add task: commit: %w", err)
	}

	t.ID = id

	return nil
}

// GetTask looks up a task by id across the whole history, regardless of
// state. Returns an error wrapping task.ErrTaskNotFound when the id was
// never allocated.
func (s *Store) GetTask(ctx context.Context, id int64) (*task.Task, error) {
	if err := s.ready(ctx); err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}

	row := s.sql.QueryRowContext(ctx,
		`SELECT id, description, state, created_at, closed_at FROM tasks WHERE id = ?`, id)

	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", task.ErrTaskNotFound, id)
	}

	if err != nil {
		return nil, fmt.Errorf("get task %d: %w", id, err)
	}

	err = s.loadLabels(ctx, []*task.Task{t})
	if err != nil {
		return nil, fmt.Errorf("get task %d: %w", id, err)
	}

	return t, nil
}

// ScanTasks returns the tasks in the given state ("" = all states)
// ordered by id, which equals creation order and is the canonical
// deterministic tiebreak.
func (s *Store) ScanTasks(ctx context.Context, state string) ([]*task.Task, error) {
	if err := s.ready(ctx); err != nil {
		return nil, fmt.Errorf("scan tasks: %w", err)
	}

	query := `SELECT id, description, state, created_at, closed_at FROM tasks ORDER BY id`
	args := []any{}

	if state != "" {
		query = `SELECT id, description, state, created_at, closed_at FROM tasks WHERE state = ? ORDER BY id`
		args = append(args, state)
	}

	rows, err := s.sql.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("scan tasks: %w", err)
	}

	defer func() { _ = rows.Close() }()

	var tasks []*task.Task

	for rows.Next() {
		t, scanErr := scanTask(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan tasks: %w", scanErr)
		}

		tasks = append(tasks, t)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("scan tasks: %w", err)
	}

	err = s.loadLabels(ctx, tasks)
	if err != nil {
		return nil, fmt.Errorf("scan tasks: %w", err)
	}

	return tasks, nil
}

// CloseTask transitions the task to state iff it is still open, in one
// atomic transaction. The conditional UPDATE makes the transition
// idempotent: a task already done or deleted reports false instead of
// double-transitioning.
func (s *Store) CloseTask(ctx context.Context, id int64, state string, closedAt time.Time) (bool, error) {
	if err := s.ready(ctx); err != nil {
		return false, fmt.Errorf("close task: %w", err)
	}

	if state != task.StateDone && state != task.StateDeleted {
		return false, fmt.Errorf("close task: %w: %s", task.ErrInvalidState, state)
	}

	res, err := s.sql.ExecContext(ctx,
		`UPDATE tasks SET state = ?, closed_at = ? WHERE id = ? AND state = ?`,
		state, closedAt.UTC().Format(timeLayout), id, task.StateOpen,
	)
	if err != nil {
		return false, fmt.Errorf("close task %d: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("close task %d: %w", id, err)
	}

	return affected > 0, nil
}

// Tags returns the distinct tag names present in the store, sorted.
func (s *Store) Tags(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, `SELECT DISTINCT tag FROM task_tags ORDER BY tag`)
}

// Projects returns the distinct project names present in the store,
// sorted.
func (s *Store) Projects(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, `SELECT DISTINCT project FROM task_projects ORDER BY project`)
}

func (s *Store) distinct(ctx context.Context, query string) ([]string, error) {
	if err := s.ready(ctx); err != nil {
		return nil, fmt.Errorf("list names: %w", err)
	}

	rows, err := s.sql.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list names: %w", err)
	}

	defer func() { _ = rows.Close() }()

	var names []string

	for rows.Next() {
		var name string

		err = rows.Scan(&name)
		if err != nil {
			return nil, fmt.Errorf("list names: %w", err)
		}

		names = append(names, name)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("list names: %w", err)
	}

	return names, nil
}

// ready validates the handle and context before touching SQLite.
func (s *Store) ready(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}

	if s == nil || s.sql == nil {
		return ErrNotOpen
	}

	return nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*task.Task, error) {
	var (
		t         task.Task
		createdAt string
		closedAt  sql.NullString
	)

	err := row.Scan(&t.ID, &t.Description, &t.State, &createdAt, &closedAt)
	if err != nil {
		return nil, err
	}

	t.CreatedAt, err = time.Parse(timeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	if closedAt.Valid {
		closed, parseErr := time.Parse(timeLayout, closedAt.String)
		if parseErr != nil {
			return nil, fmt.Errorf("parse closed_at: %w", parseErr)
		}

		t.ClosedAt = &closed
	}

	return &t, nil
}

// loadLabels attaches tag and project sets to the given tasks with one
// query per junction table instead of one per task.
func (s *Store) loadLabels(ctx context.Context, tasks []*task.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	byID := make(map[int64]*task.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}

	err := s.loadJunction(ctx, `SELECT task_id, tag FROM task_tags ORDER BY task_id, tag`,
		func(id int64, name string) {
			if t, ok := byID[id]; ok {
				t.Tags = append(t.Tags, name)
			}
		})
	if err != nil {
		return err
	}

	return s.loadJunction(ctx, `SELECT task_id, project FROM task_projects ORDER BY task_id, project`,
		func(id int64, name string) {
			if t, ok := byID[id]; ok {
				t.Projects = append(t.Projects, name)
			}
		})
}

func (s *Store) loadJunction(ctx context.Context, query string, attach func(id int64, name string)) error {
	rows, err := s.sql.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("load labels: %w", err)
	}

	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			id   int64
			name string
		)

		err = rows.Scan(&id, &name)
		if err != nil {
			return fmt.Errorf("load labels: %w", err)
		}

		attach(id, name)
	}

	err = rows.Err()
	if err != nil {
		return fmt.Errorf("load labels: %w", err)
	}

	return nil
}
