package ui

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/taskweave/pkg/config"
	"github.com/vanderheijden86/taskweave/pkg/model"
	"github.com/vanderheijden86/taskweave/pkg/store"
	"github.com/vanderheijden86/taskweave/pkg/watcher"
)

// mode is the interpreter state. Keys mean different things per mode and
// every transition is explicit in Update.
type mode int

const (
	modeNormal mode = iota
	modeEditing
	modeConfirmDelete
)

// editField says which task field the text input edits.
type editField int

const (
	fieldTitle editField = iota
	fieldNotes
)

// editContext captures everything needed to commit or cancel an edit.
// For creation, the task does not exist until the edit commits.
type editContext struct {
	field    editField
	target   model.ID // existing task, or None when creating
	parent   model.ID // parent for the new task when creating
	creating bool
}

// deleteContext captures the pending delete confirmation.
type deleteContext struct {
	target model.ID
	count  int // tasks that would be removed, subtree included
}

// Model is the Bubble Tea model for the task view. The event loop is the
// single writer of the store; background goroutines only ever see
// snapshots.
type Model struct {
	store *store.Store
	path  string
	cfg   config.Config

	mode  mode
	edit  editContext
	del   deleteContext
	input textinput.Model

	selected model.ID
	scroll   int
	rows     []store.TaskView

	filter  store.Filter
	sortKey store.SortKey

	showNotes bool
	showHelp  bool

	width  int
	height int
	ready  bool

	keys  KeyMap
	theme Theme

	saver   *saveWorker
	watcher *watcher.Watcher

	// savedRevision is the newest store revision confirmed on disk.
	savedRevision uint64
	lastSaveHash  string
	saveFailures  int

	statusMsg   string
	statusIsErr bool
	statusSeq   uint64

	quitting bool
}

// New builds the model around an already-loaded store.
func New(s *store.Store, path string, cfg config.Config, w *watcher.Watcher) Model {
	ti := textinput.New()
	ti.CharLimit = 512
	ti.Prompt = ""

	debounce := time.Duration(cfg.SaveDebounceMS) * time.Millisecond
	if debounce <= 0 {
		debounce = 400 * time.Millisecond
	}

	m := Model{
		store:         s,
		path:          path,
		cfg:           cfg,
		input:         ti,
		filter:        store.Filter{HideDone: cfg.UI.HideDone},
		sortKey:       parseSortKey(cfg.UI.Sort),
		showNotes:     cfg.UI.NotesPane,
		keys:          DefaultKeyMap(),
		theme:         DefaultTheme(),
		saver:         newSaveWorker(path, debounce),
		watcher:       w,
		savedRevision: s.Revision(),
	}
	m.refreshRows()
	if len(m.rows) > 0 {
		m.selected = m.rows[0].Task.ID
	}
	return m
}

func parseSortKey(s string) store.SortKey {
	switch s {
	case "priority":
		return store.SortPriority
	case "due":
		return store.SortDue
	case "created":
		return store.SortCreated
	default:
		return store.SortManual
	}
}

// Init starts the background listeners.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.waitForSaveResult()}
	if m.watcher != nil {
		cmds = append(cmds, m.waitForFileChange())
	}
	return tea.Batch(cmds...)
}

// waitForSaveResult relays one save result into the update loop. It is
// re-issued after each message so the channel stays drained.
func (m Model) waitForSaveResult() tea.Cmd {
	ch := m.saver.Results()
	return func() tea.Msg {
		res, ok := <-ch
		if !ok {
			return nil
		}
		return res
	}
}

// waitForFileChange relays one watcher notification.
func (m Model) waitForFileChange() tea.Cmd {
	ch := m.watcher.Changed()
	return func() tea.Msg {
		_, ok := <-ch
		if !ok {
			return watcherClosedMsg{}
		}
		return fileChangedMsg{}
	}
}

// refreshRows recomputes the visible row projection and keeps the
// selection on a visible task.
func (m *Model) refreshRows() {
	m.rows = m.store.Visible(m.filter, m.sortKey)
	if len(m.rows) == 0 {
		m.selected = model.None
		m.scroll = 0
		return
	}
	if m.selectedIndex() < 0 {
		// Selection vanished (deleted or filtered); snap to the nearest row.
		if m.scroll >= len(m.rows) {
			m.scroll = len(m.rows) - 1
		}
		m.selected = m.rows[min(m.scroll, len(m.rows)-1)].Task.ID
	}
	m.followSelection()
}

// selectedIndex returns the row index of the selected task, or -1.
func (m *Model) selectedIndex() int {
	for i, r := range m.rows {
		if r.Task.ID == m.selected {
			return i
		}
	}
	return -1
}

// moveSelection shifts the selection by delta rows, clamped.
func (m *Model) moveSelection(delta int) {
	if len(m.rows) == 0 {
		return
	}
	i := m.selectedIndex()
	if i < 0 {
		i = 0
	}
	i += delta
	if i < 0 {
		i = 0
	}
	if i > len(m.rows)-1 {
		i = len(m.rows) - 1
	}
	m.selected = m.rows[i].Task.ID
	m.followSelection()
}

// followSelection adjusts the scroll offset so the selected row is inside
// the visible window.
func (m *Model) followSelection() {
	i := m.selectedIndex()
	if i < 0 {
		return
	}
	h := m.listHeight()
	if h <= 0 {
		return
	}
	if i < m.scroll {
		m.scroll = i
	}
	if i >= m.scroll+h {
		m.scroll = i - h + 1
	}
}

// markDirty schedules a background save of the current store state.
func (m *Model) markDirty() {
	m.saver.Request(m.store.Snapshot(), m.store.Revision())
}

// retryDelay is how long to wait before re-requesting a failed save.
func (m *Model) retryDelay() time.Duration {
	return m.saver.debounce
}

// dirty reports whether the store has mutations not yet confirmed on disk.
func (m *Model) dirty() bool {
	return m.store.Revision() > m.savedRevision
}
