package cli

import (
	"fmt"
	"strings"

	"pydo/internal/config"
	"pydo/internal/task"
)

// renderTasks prints a task table. Open reports show creation time;
// closed reports show the closing time instead.
func renderTasks(o *IO, cfg config.Config, tasks []*task.Task, scope task.Scope) {
	if len(tasks) == 0 {
		return
	}

	layout := cfg.DateFormat
	if layout == "" {
		layout = config.DefaultDateFormat
	}

	timeHeader := "Created"
	if scope == task.ScopeDone || scope == task.ScopeDeleted {
		timeHeader = "Closed"
	}

	rows := make([][4]string, 0, len(tasks))

	for _, t := range tasks {
		when := t.CreatedAt.Format(layout)
		if timeHeader == "Closed" && t.ClosedAt != nil {
			when = t.ClosedAt.Format(layout)
		}

		rows = append(rows, [4]string{
			fmt.Sprintf("%d", t.ID),
			when,
			t.Description,
			labelColumn(t),
		})
	}

	widths := [4]int{len("ID"), len(timeHeader), len("Description"), len("Labels")}

	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	format := fmt.Sprintf("%%-%ds  %%-%ds  %%-%ds  %%s\n", widths[0], widths[1], widths[2])

	o.Printf(format, "ID", timeHeader, "Description", "Labels")

	for _, row := range rows {
		o.Printf(format, row[0], row[1], row[2], row[3])
	}
}

// labelColumn renders projects and tags in filter syntax, so a listing
// doubles as a reference for follow-up filters.
func labelColumn(t *task.Task) string {
	parts := make([]string, 0, len(t.Projects)+len(t.Tags))

	for _, project := range t.Projects {
		parts = append(parts, "pro:"+project)
	}

	for _, tag := range t.Tags {
		parts = append(parts, "+"+tag)
	}

	return strings.Join(parts, " ")
}
