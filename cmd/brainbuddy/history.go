package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent interpretation cycles",
	RunE:  runHistory,
}

var (
	historyLimit int
)

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Number of cycles to show")
}

func runHistory(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	cycles, err := a.history.Recent(cmd.Context(), historyLimit)
	if err != nil {
		return err
	}
	if len(cycles) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No history yet.")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleDouble)

	t.AppendHeader(table.Row{
		text.FgGreen.Sprintf("Time"), text.FgGreen.Sprintf("Heard"),
		text.FgGreen.Sprintf("Intent"), text.FgGreen.Sprintf("Ops"),
		text.FgGreen.Sprintf("Reply"),
	})
	for _, c := range cycles {
		intent := string(c.Intent)
		if intent == "" {
			intent = "unknown"
		}
		t.AppendRow(table.Row{
			c.CreatedAt.Format("2006-01-02 15:04"),
			c.Transcript,
			intent,
			len(c.Operations),
			c.Reply,
		})
	}

	t.Render()
	return nil
}
