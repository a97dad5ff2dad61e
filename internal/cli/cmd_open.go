package cli

import (
	"context"
	"io"
	"strings"

	"pydo/internal/config"
	"pydo/internal/store"
	"pydo/internal/task"

	flag "github.com/spf13/pflag"
)

const defaultLimit = 100

// reportOptions holds parsed report flags.
type reportOptions struct {
	limit  int
	offset int
	filter string
}

func cmdOpen(ctx context.Context, o *IO, cfg config.Config, args []string) error {
	return cmdReport(ctx, o, cfg, args, task.ScopeOpen, "open")
}

func cmdDone(ctx context.Context, o *IO, cfg config.Config, args []string) error {
	return cmdReport(ctx, o, cfg, args, task.ScopeDone, "done")
}

func cmdDeleted(ctx context.Context, o *IO, cfg config.Config, args []string) error {
	return cmdReport(ctx, o, cfg, args, task.ScopeDeleted, "deleted")
}

// cmdReport lists the tasks in scope matching the filter. An empty
// result is a normal outcome, not an error.
func cmdReport(ctx context.Context, o *IO, cfg config.Config, args []string, scope task.Scope, name string) error {
	if hasHelpFlag(args) {
		o.Println("Usage: pydo " + name + " [flags] [filter...]")
		o.Println("")
		o.Println("List " + name + " tasks matching the filter. With no filter, all")
		o.Println(name + " tasks are listed.")
		o.Println("")
		o.Println("Flags:")
		o.Println("      --limit int    Maximum tasks to show (default 100)")
		o.Println("      --offset int   Skip first N tasks")

		return nil
	}

	opts, err := parseReportFlags(args)
	if err != nil {
		return err
	}

	return withService(ctx, cfg, func(_ *store.Store, svc *task.Service) error {
		tasks, listErr := svc.List(ctx, opts.filter, scope)
		if listErr != nil {
			return listErr
		}

		tasks = applyWindow(tasks, opts.offset, opts.limit)

		renderTasks(o, cfg, tasks, scope)

		return nil
	})
}

func parseReportFlags(args []string) (reportOptions, error) {
	// Report flags come before the filter. Splitting them off by hand
	// keeps exclusion tokens like -shopping out of flag parsing, which
	// would otherwise reject them as unknown shorthands.
	flagArgs, filterArgs := splitReportArgs(args)

	flagSet := flag.NewFlagSet("report", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)

	limit := flagSet.Int("limit", defaultLimit, "Maximum tasks to show")
	offset := flagSet.Int("offset", 0, "Skip first N tasks")

	err := flagSet.Parse(flagArgs)
	if err != nil {
		return reportOptions{}, err
	}

	if *limit < 0 {
		return reportOptions{}, errNegativeLimit
	}

	if *offset < 0 {
		return reportOptions{}, errNegativeOffset
	}

	// The filter is the whitespace-joined remainder of the command
	// line, passed whole into the parser.
	return reportOptions{
		limit:  *limit,
		offset: *offset,
		filter: strings.Join(filterArgs, " "),
	}, nil
}

// splitReportArgs separates the leading --limit/--offset flags from the
// filter tokens. The first token that is not a report flag starts the
// filter.
func splitReportArgs(args []string) (flagArgs, filterArgs []string) {
	idx := 0

	for idx < len(args) {
		arg := args[idx]

		switch {
		case arg == "--limit" || arg == "--offset":
			flagArgs = append(flagArgs, arg)

			if idx+1 < len(args) {
				flagArgs = append(flagArgs, args[idx+1])
				idx += 2
			} else {
				idx++
			}
		case strings.HasPrefix(arg, "--limit=") || strings.HasPrefix(arg, "--offset="):
			flagArgs = append(flagArgs, arg)
			idx++
		default:
			return flagArgs, args[idx:]
		}
	}

	return flagArgs, nil
}

// applyWindow applies offset and limit to the result slice. limit=0
// means no limit.
func applyWindow(tasks []*task.Task, offset, limit int) []*task.Task {
	if offset >= len(tasks) {
		return nil
	}

	tasks = tasks[offset:]

	if limit > 0 && limit < len(tasks) {
		tasks = tasks[:limit]
	}

	return tasks
}
