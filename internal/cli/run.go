// Package cli implements the pydo command surface: global flag
// handling, command dispatch, and output rendering.
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"pydo/internal/config"
)

const (
	consumedOne  = 1
	consumedTwo  = 2
	consumedNone = 0
	helpFlag     = "--help"
)

// Run is the main entry point. Returns exit code.
func Run(ctx context.Context, out io.Writer, errOut io.Writer, args []string, env map[string]string) int {
	if len(args) == 0 {
		args = []string{"pydo"}
	}

	flags, err := parseGlobalFlags(args[1:])
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	cfg, err := config.Load(config.LoadInput{
		ConfigPath:       flags.configPath,
		DatabaseOverride: flags.database,
		Env:              env,
	})
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	// "open" is the default command when invoked with no subcommand.
	cmd := "open"
	cmdArgs := []string{}

	if len(flags.remaining) > 0 {
		cmd = flags.remaining[0]
		cmdArgs = flags.remaining[1:]
	}

	if cmd == "-h" || cmd == helpFlag || cmd == "help" {
		printUsage(out)

		return 0
	}

	ioCtx := NewIO(out, errOut)

	var cmdErr error

	switch cmd {
	case "add":
		cmdErr = cmdAdd(ctx, ioCtx, cfg, cmdArgs)
	case "open":
		cmdErr = cmdOpen(ctx, ioCtx, cfg, cmdArgs)
	case "do":
		cmdErr = cmdDo(ctx, ioCtx, cfg, cmdArgs)
	case "del":
		cmdErr = cmdDel(ctx, ioCtx, cfg, cmdArgs)
	case "done":
		cmdErr = cmdDone(ctx, ioCtx, cfg, cmdArgs)
	case "deleted":
		cmdErr = cmdDeleted(ctx, ioCtx, cfg, cmdArgs)
	case "projects":
		cmdErr = cmdProjects(ctx, ioCtx, cfg, cmdArgs)
	case "tags":
		cmdErr = cmdTags(ctx, ioCtx, cfg, cmdArgs)
	case "export":
		cmdErr = cmdExport(ctx, ioCtx, cfg, cmdArgs)
	case "install":
		cmdErr = cmdInstall(ioCtx, env, cmdArgs)
	default:
		fprintln(errOut, "error: unknown command:", cmd)
		printUsage(errOut)

		return 1
	}

	if cmdErr != nil {
		fprintln(errOut, "error:", cmdErr)

		return 1
	}

	return 0
}

type globalFlags struct {
	configPath string
	database   string
	remaining  []string
}

func parseGlobalFlags(args []string) (globalFlags, error) {
	var flags globalFlags

	idx := 0
	for idx < len(args) {
		consumed, err := parseFlag(args, idx, &flags)
		if err != nil {
			return globalFlags{}, err
		}

		if consumed == 0 {
			// Not a flag, this is the command
			flags.remaining = args[idx:]

			break
		}

		idx += consumed
	}

	return flags, nil
}

// parseFlag tries to parse a flag at args[idx]. Returns number of args
// consumed (0 if not a flag).
func parseFlag(args []string, idx int, flags *globalFlags) (int, error) {
	arg := args[idx]

	// -c/--config flag
	if arg == "-c" || arg == "--config" {
		if idx+1 >= len(args) {
			return consumedNone, fmt.Errorf("%w: %s", errFlagRequiresArg, arg)
		}

		flags.configPath = args[idx+1]

		return consumedTwo, nil
	}

	if after, ok := strings.CutPrefix(arg, "--config="); ok {
		flags.configPath = after

		return consumedOne, nil
	}

	// --db flag
	if arg == "--db" {
		if idx+1 >= len(args) {
			return consumedNone, fmt.Errorf("%w: %s", errFlagRequiresArg, arg)
		}

		flags.database = args[idx+1]

		return consumedTwo, nil
	}

	if after, ok := strings.CutPrefix(arg, "--db="); ok {
		flags.database = after

		return consumedOne, nil
	}

	// -h/--help flags
	if arg == "-h" || arg == helpFlag {
		flags.remaining = []string{helpFlag}

		return len(args) - idx, nil
	}

	// Unknown flag
	if strings.HasPrefix(arg, "-") && arg != "-" {
		return consumedNone, fmt.Errorf("%w: %s", errUnknownFlag, arg)
	}

	// Not a flag
	return consumedNone, nil
}

func fprintln(w io.Writer, a ...any) {
	_, _ = fmt.Fprintln(w, a...)
}

func hasHelpFlag(args []string) bool {
	for _, arg := range args {
		if arg == "-h" || arg == helpFlag {
			return true
		}
	}

	return false
}

func printUsage(writer io.Writer) {
	fprintln(writer, `pydo - CLI task manager

Usage: pydo [options] [command] [args]

Running pydo with no command lists open tasks.

Options:
  -c, --config <file>    Use specified config file
      --db <file>        Use specified task database

Commands:
  add <description> [pro:<project>]... [+<tag>]...
                         Add a new task
  open [filter...]       List open tasks matching the filter
  do <filter...>         Complete the tasks matching the filter
  del <filter...>        Delete the tasks matching the filter
  done [filter...]       List completed tasks
  deleted [filter...]    List deleted tasks
  projects               List project names in use
  tags                   List tag names in use
  export [-o <file>]     Dump the task database as JSON
  install                Create the default config file`)
}
