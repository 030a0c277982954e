package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dispatchd/dispatchd/pkg/models"
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Show system metrics and agent performance profiles",
	RunE:  runMetrics,
}

func runMetrics(cmd *cobra.Command, args []string) error {
	rt, err := buildRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	m, err := rt.manager.Metrics()
	if err != nil {
		return err
	}

	fmt.Printf("%s\n", bold("requests"))
	fmt.Printf("  total:      %d\n", m.TotalRequests)
	fmt.Printf("  completed:  %d\n", m.CompletedRequests)
	fmt.Printf("  responses:  %d\n", m.TotalResponses)
	fmt.Printf("  artifacts:  %d\n", m.TotalArtifacts)
	for _, state := range []models.RequestState{
		models.RequestStateProcessing, models.RequestStateFailed, models.RequestStateCancelled,
	} {
		if n, err := rt.db.CountRequestsByState(state); err == nil && n > 0 {
			fmt.Printf("  %-11s %d\n", string(state)+":", n)
		}
	}

	fmt.Printf("\n%s\n", bold("thresholds"))
	fmt.Printf("  high:       %.2f\n", m.HighThreshold)
	fmt.Printf("  medium:     %.2f\n", m.MediumThreshold)
	fmt.Printf("  learn rate: %.4f\n", m.LearningRate)

	if len(m.RoutingDistribution) > 0 {
		fmt.Printf("\n%s\n", bold("routing (recent)"))
		for _, mode := range []models.DispatchMode{
			models.DispatchAutoRoute, models.DispatchDualProcessing,
			models.DispatchEscalation, models.DispatchSecure, models.DispatchFallback,
		} {
			if n := m.RoutingDistribution[mode]; n > 0 {
				fmt.Printf("  %-16s %d\n", mode, n)
			}
		}
		fmt.Printf("  confidence: high=%d medium=%d low=%d\n",
			m.ConfidenceBuckets["high"], m.ConfidenceBuckets["medium"], m.ConfidenceBuckets["low"])
	}

	fmt.Printf("\n%s\n", bold("agents"))
	for _, id := range models.AgentIDs() {
		p, ok := m.Profiles[id]
		if !ok {
			continue
		}
		availability := green("available")
		if !p.Available {
			availability = red("disabled")
		}
		fmt.Printf("  %-24s %s  success=%.2f  avg=%s  requests=%d\n",
			id, availability, p.SuccessRate, formatETA(p.AvgResponseTime), p.TotalRequests)
	}

	if recent, err := rt.db.RecentRequests(5); err == nil && len(recent) > 0 {
		fmt.Printf("\n%s\n", bold("recent"))
		for _, req := range recent {
			fmt.Printf("  %s %s %s\n", gray(req.SubmittedAt.Format("15:04:05")),
				stateColor(string(req.State)), req.ID)
		}
	}

	if m.DroppedEvents > 0 {
		fmt.Printf("\n%s %d lifecycle events dropped\n", yellow("warning:"), m.DroppedEvents)
	}

	return nil
}
