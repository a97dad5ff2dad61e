package cli

import (
	"context"
	"strings"

	"pydo/internal/config"
	"pydo/internal/store"
	"pydo/internal/task"
)

func cmdDel(ctx context.Context, o *IO, cfg config.Config, args []string) error {
	if hasHelpFlag(args) {
		o.Println("Usage: pydo del <filter...>")
		o.Println("")
		o.Println("Delete every open task matching the filter. Deleted tasks are")
		o.Println("kept in the database for history; their ids are never reused.")

		return nil
	}

	if len(args) == 0 {
		return task.ErrFilterRequired
	}

	return withService(ctx, cfg, func(_ *store.Store, svc *task.Service) error {
		affected, err := svc.Remove(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}

		for _, t := range affected {
			o.Printf("Deleted task %d: %s\n", t.ID, t.Description)
		}

		return nil
	})
}
