package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status <request-id>",
	Short: "Show a request's state, responses, and learning annotation",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	rt, err := buildRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	status, err := rt.manager.Status(args[0])
	if err != nil {
		return err
	}

	req := status.Request
	fmt.Printf("%s %s\n", bold("request"), req.ID)
	fmt.Printf("  submitter:  %s\n", req.SubmitterID)
	fmt.Printf("  state:      %s\n", stateColor(string(req.State)))
	fmt.Printf("  submitted:  %s\n", req.SubmittedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Printf("  text:       %s\n", req.Text)

	if len(status.Responses) == 0 {
		fmt.Printf("\n%s\n", gray("no responses yet"))
	} else {
		fmt.Printf("\n%s (%d, avg confidence %.2f)\n",
			bold("responses"), status.Aggregate.ResponseCount, status.Aggregate.AvgConfidence)
		for _, resp := range status.Responses {
			fmt.Printf("  %s %s %s\n", cyan(string(resp.AgentID)),
				gray(fmt.Sprintf("(%.2f, %s)", resp.Confidence, formatETA(resp.Duration))),
				resp.Content)
		}
	}

	if status.Learning != nil {
		fmt.Printf("\n%s %s\n", bold("learning"), status.Learning.Summary)
	}

	return nil
}
