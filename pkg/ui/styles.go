package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/taskweave/pkg/model"
)

// Adaptive colors tuned for light and dark terminals.
var (
	colorText      = lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#F8F8F2"}
	colorMuted     = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#6272A4"}
	colorPrimary   = lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"}
	colorHighlight = lipgloss.AdaptiveColor{Light: "#D0D0D0", Dark: "#44475A"}
	colorDanger    = lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"}
	colorWarning   = lipgloss.AdaptiveColor{Light: "#B06800", Dark: "#FFB86C"}
	colorSuccess   = lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"}
	colorInfo      = lipgloss.AdaptiveColor{Light: "#006080", Dark: "#8BE9FD"}
)

// Theme bundles the styles the renderer uses.
type Theme struct {
	TitleBar  lipgloss.Style
	StatusBar lipgloss.Style
	Selected  lipgloss.Style
	Normal    lipgloss.Style
	Muted     lipgloss.Style
	Error     lipgloss.Style
	Warning   lipgloss.Style

	StatusTodo    lipgloss.Style
	StatusOngoing lipgloss.Style
	StatusDone    lipgloss.Style

	PrioHigh   lipgloss.Style
	PrioMedium lipgloss.Style
	PrioLow    lipgloss.Style

	PaneBorder lipgloss.Style
}

// DefaultTheme returns the standard theme.
func DefaultTheme() Theme {
	return Theme{
		TitleBar:  lipgloss.NewStyle().Bold(true).Foreground(colorPrimary),
		StatusBar: lipgloss.NewStyle().Foreground(colorMuted),
		Selected:  lipgloss.NewStyle().Background(colorHighlight).Foreground(colorText),
		Normal:    lipgloss.NewStyle().Foreground(colorText),
		Muted:     lipgloss.NewStyle().Foreground(colorMuted),
		Error:     lipgloss.NewStyle().Foreground(colorDanger).Bold(true),
		Warning:   lipgloss.NewStyle().Foreground(colorWarning),

		StatusTodo:    lipgloss.NewStyle().Foreground(colorDanger),
		StatusOngoing: lipgloss.NewStyle().Foreground(colorWarning),
		StatusDone:    lipgloss.NewStyle().Foreground(colorSuccess),

		PrioHigh:   lipgloss.NewStyle().Foreground(colorDanger).Bold(true),
		PrioMedium: lipgloss.NewStyle().Foreground(colorWarning),
		PrioLow:    lipgloss.NewStyle().Foreground(colorInfo),

		PaneBorder: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), false, false, false, true).
			BorderForeground(colorHighlight),
	}
}

// statusGlyph returns the checkbox-style marker for a status.
func statusGlyph(s model.Status) string {
	switch s {
	case model.StatusOngoing:
		return "[~]"
	case model.StatusDone:
		return "[x]"
	default:
		return "[ ]"
	}
}

func (t Theme) statusStyle(s model.Status) lipgloss.Style {
	switch s {
	case model.StatusOngoing:
		return t.StatusOngoing
	case model.StatusDone:
		return t.StatusDone
	default:
		return t.StatusTodo
	}
}

// priorityMarker returns the styled priority marker, empty for none.
func (t Theme) priorityMarker(p model.Priority) string {
	switch p {
	case model.PriorityHigh:
		return t.PrioHigh.Render("!!!")
	case model.PriorityMedium:
		return t.PrioMedium.Render("!!")
	case model.PriorityLow:
		return t.PrioLow.Render("!")
	default:
		return ""
	}
}
