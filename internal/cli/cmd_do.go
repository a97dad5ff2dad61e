package cli

import (
	"context"
	"strings"

	"pydo/internal/config"
	"pydo/internal/store"
	"pydo/internal/task"
)

func cmdDo(ctx context.Context, o *IO, cfg config.Config, args []string) error {
	if hasHelpFlag(args) {
		o.Println("Usage: pydo do <filter...>")
		o.Println("")
		o.Println("Complete every open task matching the filter. A filter that")
		o.Println("matches nothing is a no-op.")

		return nil
	}

	if len(args) == 0 {
		return task.ErrFilterRequired
	}

	return withService(ctx, cfg, func(_ *store.Store, svc *task.Service) error {
		affected, err := svc.Complete(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}

		for _, t := range affected {
			o.Printf("Completed task %d: %s\n", t.ID, t.Description)
		}

		return nil
	})
}
