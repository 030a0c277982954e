package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dispatchd/dispatchd/internal/router"
)

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "List the agent registry",
	RunE:  runAgents,
}

func runAgents(cmd *cobra.Command, args []string) error {
	for _, info := range router.Catalog() {
		fmt.Printf("%s\n", bold(string(info.ID)))
		if info.Category != "" {
			fmt.Printf("  category:     %s\n", cyan(string(info.Category)))
		}
		fmt.Printf("  capabilities: %s\n", strings.Join(info.Capabilities, ", "))
	}
	return nil
}
