package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the normal-mode key bindings. The vocabulary follows the
// classic vim-style task list: j/k to move, J/K to reorder, >/< to cycle
// status.
type KeyMap struct {
	Up              key.Binding
	Down            key.Binding
	Top             key.Binding
	Bottom          key.Binding
	EditTitle       key.Binding
	EditNotes       key.Binding
	AddSibling      key.Binding
	AddChild        key.Binding
	StatusNext      key.Binding
	StatusPrev      key.Binding
	Priority        key.Binding
	CompleteSubtree key.Binding
	MoveUp          key.Binding
	MoveDown        key.Binding
	Indent          key.Binding
	Outdent         key.Binding
	Delete          key.Binding
	ToggleDone      key.Binding
	CycleSort       key.Binding
	Yank            key.Binding
	NotesPane       key.Binding
	Help            key.Binding
	Quit            key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:              key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
		Down:            key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
		Top:             key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "first")),
		Bottom:          key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "last")),
		EditTitle:       key.NewBinding(key.WithKeys("enter", "e"), key.WithHelp("enter", "edit title")),
		EditNotes:       key.NewBinding(key.WithKeys("N"), key.WithHelp("N", "edit notes")),
		AddSibling:      key.NewBinding(key.WithKeys("a", "+"), key.WithHelp("a", "add task")),
		AddChild:        key.NewBinding(key.WithKeys("A"), key.WithHelp("A", "add sub-task")),
		StatusNext:      key.NewBinding(key.WithKeys(">", " "), key.WithHelp(">", "advance status")),
		StatusPrev:      key.NewBinding(key.WithKeys("<"), key.WithHelp("<", "revert status")),
		Priority:        key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "cycle priority")),
		CompleteSubtree: key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "complete subtree")),
		MoveUp:          key.NewBinding(key.WithKeys("K", "shift+up"), key.WithHelp("K", "move up")),
		MoveDown:        key.NewBinding(key.WithKeys("J", "shift+down"), key.WithHelp("J", "move down")),
		Indent:          key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "indent")),
		Outdent:         key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("s-tab", "outdent")),
		Delete:          key.NewBinding(key.WithKeys("d", "-"), key.WithHelp("d", "delete")),
		ToggleDone:      key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "hide/show done")),
		CycleSort:       key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "cycle sort")),
		Yank:            key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yank title")),
		NotesPane:       key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "notes pane")),
		Help:            key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:            key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// helpEntries drives the help overlay, in display order.
func (k KeyMap) helpEntries() []key.Binding {
	return []key.Binding{
		k.Up, k.Down, k.Top, k.Bottom,
		k.EditTitle, k.EditNotes, k.AddSibling, k.AddChild,
		k.StatusNext, k.StatusPrev, k.Priority, k.CompleteSubtree,
		k.MoveUp, k.MoveDown, k.Indent, k.Outdent,
		k.Delete, k.ToggleDone, k.CycleSort, k.Yank,
		k.NotesPane, k.Help, k.Quit,
	}
}
