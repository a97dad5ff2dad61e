package cli

import (
	"context"
	"strings"

	"pydo/internal/config"
	"pydo/internal/store"
	"pydo/internal/task"
)

func cmdAdd(ctx context.Context, o *IO, cfg config.Config, args []string) error {
	if hasHelpFlag(args) {
		o.Println("Usage: pydo add <description> [pro:<project>]... [+<tag>]...")
		o.Println("")
		o.Println("Add a new open task. Words without a pro: or + prefix form the")
		o.Println("task description.")

		return nil
	}

	if len(args) == 0 {
		return errNothingToAdd
	}

	description, tags, projects := parseAddArguments(args)

	return withService(ctx, cfg, func(_ *store.Store, svc *task.Service) error {
		t, err := svc.Add(ctx, description, tags, projects)
		if err != nil {
			return err
		}

		o.Printf("Added task %d: %s\n", t.ID, t.Description)

		return nil
	})
}

// parseAddArguments splits add arguments into description words, tags,
// and projects. Tokens carrying a sentinel prefix with no name stay in
// the description, mirroring the tolerant filter grammar.
func parseAddArguments(args []string) (description string, tags, projects []string) {
	var words []string

	for _, arg := range args {
		if name, ok := strings.CutPrefix(arg, "pro:"); ok && name != "" {
			projects = append(projects, name)

			continue
		}

		if name, ok := strings.CutPrefix(arg, "+"); ok && name != "" {
			tags = append(tags, name)

			continue
		}

		words = append(words, arg)
	}

	return strings.Join(words, " "), tags, projects
}
