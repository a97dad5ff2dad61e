package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"pydo/internal/config"
	"pydo/internal/store"
	"pydo/internal/task"

	"github.com/natefinch/atomic"
	flag "github.com/spf13/pflag"
)

// exportTask is the stable JSON shape of one exported task.
type exportTask struct {
	ID          int64      `json:"id"`
	Description string     `json:"description"`
	State       string     `json:"state"`
	Tags        []string   `json:"tags,omitempty"`
	Projects    []string   `json:"projects,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	ClosedAt    *time.Time `json:"closed_at,omitempty"`
}

// exportDump is the top-level export document.
type exportDump struct {
	Tasks []exportTask `json:"tasks"`
}

// cmdExport dumps the full task history as JSON, to stdout or to a
// file. File writes go through an atomic rename so an interrupted
// export never leaves a truncated dump.
func cmdExport(ctx context.Context, o *IO, cfg config.Config, args []string) error {
	if hasHelpFlag(args) {
		o.Println("Usage: pydo export [-o <file>]")
		o.Println("")
		o.Println("Dump every task, open or closed, as JSON. Writes to stdout")
		o.Println("unless -o is given.")

		return nil
	}

	flagSet := flag.NewFlagSet("export", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)

	outPath := flagSet.StringP("output", "o", "", "Write the dump to a file")

	err := flagSet.Parse(args)
	if err != nil {
		return err
	}

	return withService(ctx, cfg, func(st *store.Store, _ *task.Service) error {
		tasks, scanErr := st.ScanTasks(ctx, "")
		if scanErr != nil {
			return scanErr
		}

		dump := exportDump{Tasks: make([]exportTask, 0, len(tasks))}

		for _, t := range tasks {
			dump.Tasks = append(dump.Tasks, exportTask{
				ID:          t.ID,
				Description: t.Description,
				State:       t.State,
				Tags:        t.Tags,
				Projects:    t.Projects,
				CreatedAt:   t.CreatedAt,
				ClosedAt:    t.ClosedAt,
			})
		}

		data, encErr := json.MarshalIndent(dump, "", "  ")
		if encErr != nil {
			return fmt.Errorf("encoding export: %w", encErr)
		}

		if *outPath == "" {
			o.Println(string(data))

			return nil
		}

		writeErr := atomic.WriteFile(*outPath, bytes.NewReader(append(data, '\n')))
		if writeErr != nil {
			return fmt.Errorf("writing export file: %w", writeErr)
		}

		o.Printf("Exported %d tasks to %s\n", len(dump.Tasks), *outPath)

		return nil
	})
}
