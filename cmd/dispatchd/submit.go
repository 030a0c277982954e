package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dispatchd/dispatchd/internal/lifecycle"
	"github.com/dispatchd/dispatchd/pkg/models"
)

var (
	submitSubmitter string
	submitWait      bool
	submitTimeout   time.Duration
)

var submitCmd = &cobra.Command{
	Use:   "submit <text>...",
	Short: "Submit a task request for orchestration",
	Long: `Submit classifies the request text, routes it to specialist agents,
and dispatches them concurrently.

By default submit returns as soon as the request is accepted. With --wait
it follows the lifecycle events until the request completes.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSubmit,
}

func init() {
	submitCmd.Flags().StringVar(&submitSubmitter, "submitter", "cli", "Submitter identifier")
	submitCmd.Flags().BoolVar(&submitWait, "wait", false, "Wait for the request to complete")
	submitCmd.Flags().DurationVar(&submitTimeout, "timeout", 2*time.Minute, "Maximum time to wait with --wait")
}

func runSubmit(cmd *cobra.Command, args []string) error {
	rt, err := buildRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	text := strings.Join(args, " ")
	sub, err := rt.manager.Submit(submitSubmitter, text)
	if err != nil {
		return fmt.Errorf("submit request: %w", err)
	}

	fmt.Printf("%s %s\n", bold("request"), sub.Request.ID)
	fmt.Printf("  category:   %s %s\n", cyan(string(sub.Classification.Primary)),
		gray(fmt.Sprintf("(confidence %.2f)", sub.Classification.Confidence)))
	fmt.Printf("  mode:       %s\n", modeColor(sub.Decision.Mode))
	fmt.Printf("  agents:     %s\n", agentList(sub.Decision.Agents))
	fmt.Printf("  estimated:  %s\n", formatETA(sub.Decision.EstimatedTime))

	if !submitWait {
		// Give the background dispatch a chance to finish before the
		// runtime tears down; close() waits for in-flight requests.
		return nil
	}

	return followEvents(rt, sub.Request.ID)
}

// followEvents prints lifecycle events for one request until it reaches a
// terminal state or the wait timeout expires.
func followEvents(rt *runtime, requestID string) error {
	deadline := time.After(submitTimeout)
	for {
		select {
		case <-deadline:
			return fmt.Errorf("timed out waiting for request %s", requestID)
		case event, ok := <-rt.manager.Events():
			if !ok {
				return nil
			}
			if event.RequestID != requestID {
				continue
			}
			printEvent(event)
			switch event.Type {
			case lifecycle.EventRequestCompleted, lifecycle.EventRequestCancelled, lifecycle.EventRequestFailed:
				return nil
			}
		}
	}
}

func printEvent(event lifecycle.Event) {
	stamp := gray(event.Timestamp.Format("15:04:05.000"))
	switch event.Type {
	case lifecycle.EventAgentDispatched:
		fmt.Printf("%s %s %s\n", stamp, yellow("dispatch"), event.AgentID)
	case lifecycle.EventResponseRecorded:
		fmt.Printf("%s %s %s\n", stamp, green("response"), event.AgentID)
	case lifecycle.EventAgentFailed:
		fmt.Printf("%s %s %s: %v\n", stamp, red("failed"), event.AgentID, event.Error)
	case lifecycle.EventLearningCycle:
		fmt.Printf("%s %s %s\n", stamp, cyan("learning"), event.Message)
	case lifecycle.EventRequestCompleted:
		fmt.Printf("%s %s %s\n", stamp, green(bold("completed")), event.Message)
	case lifecycle.EventRequestCancelled:
		fmt.Printf("%s %s\n", stamp, red("cancelled"))
	case lifecycle.EventRequestFailed:
		fmt.Printf("%s %s %v\n", stamp, red("failed"), event.Error)
	}
}

func modeColor(mode models.DispatchMode) string {
	switch mode {
	case models.DispatchAutoRoute:
		return green(string(mode))
	case models.DispatchDualProcessing:
		return yellow(string(mode))
	case models.DispatchEscalation, models.DispatchFallback:
		return red(string(mode))
	case models.DispatchSecure:
		return cyan(string(mode))
	default:
		return string(mode)
	}
}

func agentList(ids []models.AgentID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, ", ")
}
