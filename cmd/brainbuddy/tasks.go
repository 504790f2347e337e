package main

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/PabloGalante/brainbuddy/internal/domain"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "List tasks",
	RunE:  runTasks,
}

var (
	showAllTasks bool
)

func init() {
	tasksCmd.Flags().BoolVar(&showAllTasks, "all", false, "Include done tasks")
}

func runTasks(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	tasks, err := a.assistant.ListTasks(cmd.Context(), !showAllTasks)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No tasks.")
		return nil
	}

	renderTasks(cmd.OutOrStdout(), tasks, nil)
	return nil
}

// renderTasks prints tasks as a table. Rows whose ID is in highlight are
// marked as changed.
func renderTasks(out io.Writer, tasks []domain.Task, highlight map[domain.TaskID]bool) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleDouble)
	t.Style().Options.SeparateRows = false

	t.AppendHeader(table.Row{
		text.FgGreen.Sprintf("Name"), text.FgGreen.Sprintf("When"),
		text.FgGreen.Sprintf("Priority"), text.FgGreen.Sprintf("Stamina"),
		text.FgGreen.Sprintf("Minutes"), text.FgGreen.Sprintf("Status"),
	})

	for _, task := range tasks {
		name := task.Name
		if highlight[task.ID] {
			name = text.FgHiYellow.Sprintf("* %s", name)
		}

		status := string(task.Status)
		switch task.Status {
		case domain.StatusInProgress:
			status = text.FgHiBlue.Sprintf("%s", status)
		case domain.StatusDone:
			status = text.FgHiBlack.Sprintf("%s", status)
		}

		t.AppendRow(table.Row{
			name,
			formatWhen(task),
			task.Priority,
			task.RequiredStamina,
			task.EstimatedTime,
			status,
		})
	}

	t.Render()
}

func formatWhen(task domain.Task) string {
	if task.Date == nil {
		return "-"
	}
	when := task.Date.Format("Mon Jan 2 15:04")
	if task.DateType == domain.DateTypeDeadline {
		return "by " + when
	}
	return when
}
