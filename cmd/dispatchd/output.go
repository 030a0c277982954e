package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

// formatETA renders a duration estimate for humans.
func formatETA(d time.Duration) string {
	switch {
	case d <= 0:
		return "no estimate"
	case d < time.Second:
		return d.Round(time.Millisecond).String()
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return d.Round(time.Second).String()
	}
}

// stateColor renders a request state with its conventional color.
func stateColor(state string) string {
	switch state {
	case "completed":
		return green(state)
	case "failed", "cancelled":
		return red(state)
	case "processing":
		return yellow(state)
	default:
		return state
	}
}
