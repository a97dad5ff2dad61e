package cli

import "errors"

// Error variables for CLI argument handling.
var (
	errFlagRequiresArg = errors.New("flag requires an argument")
	errUnknownFlag     = errors.New("unknown flag")
	errNothingToAdd    = errors.New("add requires a task description")
	errNegativeLimit   = errors.New("--limit must be non-negative")
	errNegativeOffset  = errors.New("--offset must be non-negative")
)
