package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/hazyhaar/regard"
	"github.com/hazyhaar/regard/internal/store"
)

var (
	passStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#008000", Dark: "#55FF55"}).
			Bold(true)
	failStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#D00000", Dark: "#FF5555"}).
			Bold(true)
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#888888"})
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 2)
)

func renderCapture(out *regard.CaptureOutcome) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n", passStyle.Render("Baseline stored"), out.Name)
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Path:"), out.Path)
	fmt.Fprintf(&b, "%s %dx%d\n", labelStyle.Render("Size:"), out.Width, out.Height)
	fmt.Fprintf(&b, "%s %.2fs", labelStyle.Render("Duration:"), out.Duration)
	return panelStyle.Render(b.String())
}

func renderCompare(out *regard.CompareOutcome) string {
	result := passStyle.Render("PASSED")
	if !out.Matched {
		result = failStyle.Render("FAILED")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Result:"), result)
	fmt.Fprintf(&b, "%s %.2fs\n", labelStyle.Render("Duration:"), out.Duration)
	fmt.Fprintf(&b, "%s %.2f%% (threshold %.2f%%)",
		labelStyle.Render("Similarity Score:"), out.Score*100, out.Threshold*100)
	if out.DimensionMismatch {
		fmt.Fprintf(&b, "\n%s baseline and capture differ in size", labelStyle.Render("Note:"))
	}
	if out.DiffPath != "" {
		fmt.Fprintf(&b, "\n%s %s", labelStyle.Render("Diff:"), out.DiffPath)
	}
	if out.CompositePath != "" {
		fmt.Fprintf(&b, "\n%s %s", labelStyle.Render("Composite:"), out.CompositePath)
	}
	return panelStyle.Render(b.String())
}

func renderList(entries []store.Entry) string {
	if len(entries) == 0 {
		return labelStyle.Render("no baselines stored") + "\n"
	}
	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "%s  %s  %dx%d  %s  %s\n",
			lipgloss.NewStyle().Bold(true).Render(e.Name),
			labelStyle.Render(e.Kind),
			e.Width, e.Height,
			e.URL,
			labelStyle.Render(age(e.CapturedAt)))
	}
	return b.String()
}

func renderError(err error) string {
	return failStyle.Render("Error: ") + err.Error()
}

func age(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
