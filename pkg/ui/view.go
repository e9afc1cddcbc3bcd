package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/taskweave/pkg/model"
	"github.com/vanderheijden86/taskweave/pkg/store"
)

const minWidth, minHeight = 40, 8

// chrome rows above and below the list: title bar, blank, status bar.
const chromeRows = 3

// listHeight is the number of task rows that fit in the current window.
func (m *Model) listHeight() int {
	if !m.ready {
		return 0
	}
	h := m.height - chromeRows
	if h < 1 {
		return 1
	}
	return h
}

// View renders the whole screen.
func (m Model) View() string {
	if !m.ready {
		return "loading…"
	}
	if m.width < minWidth || m.height < minHeight {
		return fmt.Sprintf("window too small (%dx%d, need %dx%d)",
			m.width, m.height, minWidth, minHeight)
	}
	if m.showHelp {
		return m.viewHelp()
	}

	listWidth := m.width
	if m.showNotes {
		listWidth = m.width * 3 / 5
	}

	var b strings.Builder
	b.WriteString(m.viewTitleBar(listWidth))
	b.WriteString("\n")

	list := m.viewList(listWidth)
	if m.showNotes {
		notes := m.viewNotesPane(m.width - listWidth)
		list = lipgloss.JoinHorizontal(lipgloss.Top, list, notes)
	}
	b.WriteString(list)
	b.WriteString("\n")
	b.WriteString(m.viewStatusBar())
	return b.String()
}

func (m Model) viewTitleBar(width int) string {
	title := m.theme.TitleBar.Render("tasks")
	info := fmt.Sprintf("%d tasks · sort: %s", m.store.Len(), m.sortKey)
	if m.filter.HideDone {
		info += " · done hidden"
	}
	if m.dirty() {
		info += " · unsaved"
	}
	gap := width - lipgloss.Width(title) - lipgloss.Width(info)
	if gap < 1 {
		gap = 1
	}
	return title + strings.Repeat(" ", gap) + m.theme.Muted.Render(info)
}

func (m Model) viewList(width int) string {
	h := m.listHeight()
	lines := make([]string, 0, h)

	if len(m.rows) == 0 {
		empty := m.theme.Muted.Render("no tasks · press a to add one")
		lines = append(lines, "", "  "+empty)
	}

	end := m.scroll + h
	if end > len(m.rows) {
		end = len(m.rows)
	}
	for i := m.scroll; i < end; i++ {
		lines = append(lines, m.viewRow(m.rows[i], width))
	}
	for len(lines) < h {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func (m Model) viewRow(row store.TaskView, width int) string {
	t := row.Task
	selected := t.ID == m.selected

	indent := strings.Repeat("  ", row.Depth)
	glyph := m.theme.statusStyle(t.Status).Render(statusGlyph(t.Status))

	// Inline edit replaces the title of the row being edited.
	if m.mode == modeEditing && !m.edit.creating && m.edit.target == t.ID {
		label := ""
		if m.edit.field == fieldNotes {
			label = m.theme.Muted.Render("notes: ")
		}
		return fmt.Sprintf("%s%s %s%s", indent, glyph, label, m.input.View())
	}

	title := t.Title
	if t.Status == model.StatusDone {
		title = m.theme.Muted.Strikethrough(true).Render(title)
	}

	var trailer []string
	if marker := m.theme.priorityMarker(t.Priority); marker != "" {
		trailer = append(trailer, marker)
	}
	if t.Due != nil {
		due := formatDue(*t.Due, time.Now())
		style := m.theme.Muted
		if due == "overdue" {
			style = m.theme.Error
		}
		trailer = append(trailer, style.Render(due))
	}
	if t.Notes != "" {
		trailer = append(trailer, m.theme.Muted.Render("≡"))
	}

	line := fmt.Sprintf("%s%s %s", indent, glyph, title)
	if len(trailer) > 0 {
		line += "  " + strings.Join(trailer, " ")
	}
	line = truncateCells(line, width-2)

	if selected {
		return m.theme.Selected.Render("▸ " + line)
	}
	return "  " + line
}

// viewNotesPane renders the selected task's notes as markdown.
func (m Model) viewNotesPane(width int) string {
	inner := width - 2
	if inner < 10 {
		return ""
	}
	t := m.store.Get(m.selected)
	body := ""
	switch {
	case t == nil:
		body = "nothing selected"
	case t.Notes == "":
		body = "no notes · press N to add"
	default:
		rendered, err := renderMarkdown(t.Notes, inner)
		if err != nil {
			body = t.Notes
		} else {
			body = rendered
		}
	}
	if t != nil && len(t.History) > 0 {
		lines := []string{"", m.theme.Muted.Render("history")}
		// Newest first, capped so the pane stays readable.
		for i := len(t.History) - 1; i >= 0 && len(lines) < 8; i-- {
			h := t.History[i]
			lines = append(lines, m.theme.Muted.Render(
				fmt.Sprintf("%s %s", statusGlyph(h.Status), formatTimeRel(h.At))))
		}
		body += strings.Join(lines, "\n")
	}
	pane := m.theme.PaneBorder.
		Width(inner).
		Height(m.listHeight()).
		Padding(0, 1).
		Render(body)
	return pane
}

func renderMarkdown(src string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	out, err := r.Render(src)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(out, "\n"), nil
}

func (m Model) viewStatusBar() string {
	switch m.mode {
	case modeEditing:
		hint := "enter save · esc cancel"
		if m.edit.creating {
			return m.theme.StatusBar.Render("new task: ") + m.input.View() + "  " + m.theme.Muted.Render(hint)
		}
		return m.theme.StatusBar.Render(hint)
	case modeConfirmDelete:
		t := m.store.Get(m.del.target)
		title := ""
		if t != nil {
			title = truncateCells(t.Title, 30)
		}
		prompt := fmt.Sprintf("delete %q", title)
		switch n := m.del.count - 1; {
		case n == 1:
			prompt += " and 1 subtask"
		case n > 1:
			prompt += fmt.Sprintf(" and %d subtasks", n)
		}
		return m.theme.Warning.Render(prompt + "? (y/N)")
	}

	if m.statusMsg != "" {
		if m.statusIsErr {
			return m.theme.Error.Render(m.statusMsg)
		}
		return m.theme.StatusBar.Render(m.statusMsg)
	}
	return m.theme.Muted.Render("j/k move · a add · > status · d delete · ? help")
}

func (m Model) viewHelp() string {
	var b strings.Builder
	b.WriteString(m.theme.TitleBar.Render("key bindings"))
	b.WriteString("\n\n")
	for _, bind := range m.keys.helpEntries() {
		h := bind.Help()
		b.WriteString(fmt.Sprintf("  %s %s\n",
			m.theme.Normal.Render(padRight(h.Key, 8)),
			m.theme.Muted.Render(h.Desc)))
	}
	b.WriteString("\n")
	b.WriteString(m.theme.Muted.Render("press ? to close"))
	return b.String()
}
