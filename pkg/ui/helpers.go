package ui

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

// truncateCells truncates a string to a maximum visual width (cells),
// adding an ellipsis when it was cut. Handles wide characters correctly.
func truncateCells(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth == 1 {
		return "…"
	}
	return runewidth.Truncate(s, maxWidth-1, "") + "…"
}

// padRight pads s with spaces to the given rune count.
func padRight(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

// formatDue renders a due date compactly, flagging overdue dates.
func formatDue(due time.Time, now time.Time) string {
	day := 24 * time.Hour
	switch d := due.Sub(now); {
	case d < 0:
		return "overdue"
	case d < day:
		return "today"
	case d < 2*day:
		return "tomorrow"
	default:
		return due.Format("Jan 2")
	}
}

// formatTimeRel returns a relative time string (e.g. "2h ago", "3d ago").
func formatTimeRel(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	d := time.Since(t)
	if d < 0 {
		return "now"
	}
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Format("2006-01-02")
	}
}
