package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "brainbuddy",
	Short: "BrainBuddy - voice task assistant",
	Long: `BrainBuddy turns spoken requests into changes to your task list and
suggests what to work on next.`,
	SilenceUsage: true,
}

var (
	seedFile string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&seedFile, "seed", "", "YAML file with starter tasks (overrides BRAINBUDDY_SEED_FILE)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(sayCmd)
	rootCmd.AddCommand(tasksCmd)
	rootCmd.AddCommand(historyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
