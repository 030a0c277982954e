package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dispatchd",
	Short: "Adaptive task orchestration engine",
	Long: `dispatchd classifies free-text task requests, routes them to
specialist agents by confidence, dispatches the agents concurrently,
and learns from every completion.

Core capabilities:
- Scores requests against weighted keyword lexicons per category
- Routes by confidence: auto-route, dual processing, or human escalation
- Isolates sensitive content on a secure local agent
- Adjusts thresholds, keyword weights, and agent profiles from feedback`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(agentsCmd)
	rootCmd.AddCommand(versionCmd)
}
