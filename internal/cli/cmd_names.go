package cli

import (
	"context"

	"pydo/internal/config"
	"pydo/internal/store"
	"pydo/internal/task"
)

func cmdProjects(ctx context.Context, o *IO, cfg config.Config, args []string) error {
	if hasHelpFlag(args) {
		o.Println("Usage: pydo projects")
		o.Println("")
		o.Println("List the project names in use, one per line.")

		return nil
	}

	return cmdNames(ctx, o, cfg, (*store.Store).Projects)
}

func cmdTags(ctx context.Context, o *IO, cfg config.Config, args []string) error {
	if hasHelpFlag(args) {
		o.Println("Usage: pydo tags")
		o.Println("")
		o.Println("List the tag names in use, one per line.")

		return nil
	}

	return cmdNames(ctx, o, cfg, (*store.Store).Tags)
}

func cmdNames(ctx context.Context, o *IO, cfg config.Config, list func(*store.Store, context.Context) ([]string, error)) error {
	return withService(ctx, cfg, func(st *store.Store, _ *task.Service) error {
		names, err := list(st, ctx)
		if err != nil {
			return err
		}

		for _, name := range names {
			o.Println(name)
		}

		return nil
	})
}
