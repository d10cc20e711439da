package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fyrsmithlabs/contentd/internal/orchestrator"
)

// consoleObserver renders run progress for a terminal. It is purely
// presentational; all outcomes live in the run result.
type consoleObserver struct {
	w io.Writer
}

func newConsoleObserver(w io.Writer) *consoleObserver {
	return &consoleObserver{w: w}
}

func (o *consoleObserver) PhaseStart(pc orchestrator.PhaseContext, name string, steps int) {
	fmt.Fprintf(o.w, "\n=== Phase %d: %s ===\n", pc.Phase, name)
}

func (o *consoleObserver) Step(pc orchestrator.PhaseContext, description string) {
	fmt.Fprintf(o.w, "  [%d.%d] %s\n", pc.Phase, pc.Step, description)
}

func (o *consoleObserver) Status(level orchestrator.StatusLevel, message string) {
	marker := "-"
	switch level {
	case orchestrator.StatusSuccess:
		marker = "+"
	case orchestrator.StatusWarning:
		marker = "!"
	case orchestrator.StatusError:
		marker = "x"
	}
	fmt.Fprintf(o.w, "  %s %s\n", marker, message)
}

func (o *consoleObserver) Decision(d orchestrator.Decision) {
	fmt.Fprintf(o.w, "    %s %s", d.Action, d.Filename)
	if d.Reason != "" {
		fmt.Fprintf(o.w, " (%s)", d.Reason)
	}
	fmt.Fprintln(o.w)
}

func (o *consoleObserver) PhaseSummary(pc orchestrator.PhaseContext, name string, items []orchestrator.SummaryItem) {
	width := 0
	for _, item := range items {
		if len(item.Label) > width {
			width = len(item.Label)
		}
	}
	fmt.Fprintf(o.w, "  %s\n", strings.Repeat("-", len(name)+8))
	for _, item := range items {
		fmt.Fprintf(o.w, "  %-*s  %s\n", width, item.Label, item.Value)
	}
}

var _ orchestrator.Observer = (*consoleObserver)(nil)
