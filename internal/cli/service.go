package cli

import (
	"context"

	"pydo/internal/config"
	"pydo/internal/store"
	"pydo/internal/task"
)

// withService opens the task store for one command invocation and hands
// a lifecycle service to fn, closing the store afterwards. One command
// runs per process, so there is no handle reuse to manage.
func withService(ctx context.Context, cfg config.Config, fn func(*store.Store, *task.Service) error) error {
	st, err := store.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}

	defer func() { _ = st.Close() }()

	return fn(st, task.NewService(st, nil))
}
