package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/aponysus/jobwatch/watch"
)

// printSummary writes one line describing how the watch ended. Colors are
// only used when w is a terminal.
func printSummary(w io.Writer, jobID string, res watch.Result, err error) {
	r := lipgloss.NewRenderer(w)
	okStyle := r.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	errStyle := r.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	mutedStyle := r.NewStyle().Foreground(lipgloss.Color("245"))

	jobID = strings.TrimSpace(jobID)
	if err == nil {
		fmt.Fprintf(w, "job %s %s %s\n", jobID, okStyle.Render(res.FinalStatus),
			mutedStyle.Render(fmt.Sprintf("(%d attempt(s), %d poll(s))", res.Attempts, res.Polls)))
		return
	}

	var (
		failed  *watch.JobFailedError
		timeout *watch.TimeoutError
	)
	switch {
	case errors.As(err, &failed):
		fmt.Fprintf(w, "job %s %s %s\n", jobID, errStyle.Render(failed.Status.String()),
			mutedStyle.Render(fmt.Sprintf("(%d attempt(s))", failed.AttemptCount)))
	case errors.As(err, &timeout):
		fmt.Fprintf(w, "job %s %s %s\n", jobID, errStyle.Render("TIMED OUT"),
			mutedStyle.Render(fmt.Sprintf("(last status %s after %s)", timeout.LastStatus, timeout.MaxDuration)))
	default:
		fmt.Fprintf(w, "job %s %s %s\n", jobID, errStyle.Render("ERROR"), mutedStyle.Render(err.Error()))
	}
}
