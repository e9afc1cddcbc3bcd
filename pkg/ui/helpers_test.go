package ui

import (
	"os"
	"testing"
	"time"
)

// writeBlocker creates a plain file used by tests that need MkdirAll to fail.
func writeBlocker(path string) error {
	return os.WriteFile(path, []byte("x"), 0o644)
}

func TestTruncateCells(t *testing.T) {
	cases := []struct {
		name  string
		in    string
		width int
		want  string
	}{
		{"fits", "hello", 10, "hello"},
		{"exact", "hello", 5, "hello"},
		{"cut", "hello world", 8, "hello w…"},
		{"zero", "hello", 0, ""},
		{"one", "hello", 1, "…"},
		{"wide runes", "漢字漢字", 5, "漢字…"},
		{"empty", "", 5, ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := truncateCells(c.in, c.width); got != c.want {
				t.Fatalf("truncateCells(%q, %d) = %q, want %q", c.in, c.width, got, c.want)
			}
		})
	}
}

func TestPadRight(t *testing.T) {
	if got := padRight("ab", 5); got != "ab   " {
		t.Fatalf("padRight = %q", got)
	}
	if got := padRight("abcdef", 3); got != "abcdef" {
		t.Fatalf("padRight should not truncate, got %q", got)
	}
}

func TestFormatDue(t *testing.T) {
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		due  time.Time
		want string
	}{
		{"past", now.Add(-time.Hour), "overdue"},
		{"soon", now.Add(2 * time.Hour), "today"},
		{"next day", now.Add(30 * time.Hour), "tomorrow"},
		{"later", now.Add(10 * 24 * time.Hour), "Aug 30"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := formatDue(c.due, now); got != c.want {
				t.Fatalf("formatDue = %q, want %q", got, c.want)
			}
		})
	}
}

func TestFormatTimeRel(t *testing.T) {
	if got := formatTimeRel(time.Time{}); got != "unknown" {
		t.Fatalf("zero time = %q", got)
	}
	if got := formatTimeRel(time.Now().Add(-2 * time.Hour)); got != "2h ago" {
		t.Fatalf("2h = %q", got)
	}
	if got := formatTimeRel(time.Now().Add(-30 * time.Second)); got != "now" {
		t.Fatalf("recent = %q", got)
	}
}
