package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/taskweave/pkg/codec"
	"github.com/vanderheijden86/taskweave/pkg/debug"
	"github.com/vanderheijden86/taskweave/pkg/model"
	"github.com/vanderheijden86/taskweave/pkg/store"
)

const statusTTL = 3 * time.Second

// Update is the single entry point for all events. Store mutations happen
// here and nowhere else.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.followSelection()
		return m, nil

	case saveResultMsg:
		return m.handleSaveResult(msg)

	case saveRetryMsg:
		if m.dirty() {
			m.markDirty()
		}
		return m, nil

	case fileChangedMsg:
		return m.handleFileChanged()

	case watcherClosedMsg:
		return m, nil

	case statusClearMsg:
		if msg.seq == m.statusSeq {
			m.statusMsg = ""
			m.statusIsErr = false
		}
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeEditing:
			return m.updateEditing(msg)
		case modeConfirmDelete:
			return m.updateConfirmDelete(msg)
		default:
			return m.updateNormal(msg)
		}
	}
	return m, nil
}

func (m Model) handleSaveResult(res saveResultMsg) (tea.Model, tea.Cmd) {
	cmd := m.waitForSaveResult()
	if res.err != nil {
		m.saveFailures++
		debug.Log("save failed (%d): %v", m.saveFailures, res.err)
		// Keep retrying on the debounce cadence until a save lands;
		// otherwise committed mutations stay memory-only until the next
		// user action.
		retry := tea.Tick(m.retryDelay(), func(time.Time) tea.Msg {
			return saveRetryMsg{}
		})
		return m.withStatus(fmt.Sprintf("save failed: %v", res.err), true, tea.Batch(cmd, retry))
	}
	m.saveFailures = 0
	if res.revision > m.savedRevision {
		m.savedRevision = res.revision
	}
	if res.hash != "" {
		m.lastSaveHash = res.hash
	}
	return m, cmd
}

func (m Model) handleFileChanged() (tea.Model, tea.Cmd) {
	cmd := m.waitForFileChange()

	hash, err := codec.HashFile(m.path)
	if err == nil && hash == m.lastSaveHash {
		// Our own write coming back through the watcher.
		return m, cmd
	}
	if m.dirty() {
		return m.withStatus("document changed on disk; keeping unsaved edits", true, cmd)
	}
	s, err := codec.Load(m.path)
	if err != nil {
		return m.withStatus(fmt.Sprintf("reload failed: %v", err), true, cmd)
	}
	m.store = s
	m.savedRevision = s.Revision()
	m.lastSaveHash = hash
	m.refreshRows()
	return m.withStatus("document reloaded", false, cmd)
}

func (m Model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys

	// Any key dismisses the help overlay.
	if m.showHelp {
		m.showHelp = false
		if !key.Matches(msg, k.Quit) {
			return m, nil
		}
	}

	switch {
	case key.Matches(msg, k.Quit):
		return m.quit()

	case key.Matches(msg, k.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, k.Up):
		m.moveSelection(-1)
	case key.Matches(msg, k.Down):
		m.moveSelection(1)
	case key.Matches(msg, k.Top):
		m.moveSelection(-len(m.rows))
	case key.Matches(msg, k.Bottom):
		m.moveSelection(len(m.rows))

	case key.Matches(msg, k.EditTitle):
		return m.beginEdit(fieldTitle)
	case key.Matches(msg, k.EditNotes):
		return m.beginEdit(fieldNotes)

	case key.Matches(msg, k.AddSibling):
		parent := model.None
		if t := m.store.Get(m.selected); t != nil {
			parent = t.ParentID
		}
		return m.beginCreate(parent)
	case key.Matches(msg, k.AddChild):
		if m.selected == model.None {
			return m.beginCreate(model.None)
		}
		return m.beginCreate(m.selected)

	case key.Matches(msg, k.StatusNext):
		return m.mutate(func() error { return m.advanceStatus(1) })
	case key.Matches(msg, k.StatusPrev):
		return m.mutate(func() error { return m.advanceStatus(-1) })

	case key.Matches(msg, k.Priority):
		return m.mutate(func() error {
			t := m.store.Get(m.selected)
			if t == nil {
				return nil
			}
			return m.store.SetPriority(t.ID, t.Priority.Cycle())
		})

	case key.Matches(msg, k.CompleteSubtree):
		return m.mutate(func() error {
			if m.selected == model.None {
				return nil
			}
			return m.store.CompleteSubtree(m.selected)
		})

	case key.Matches(msg, k.MoveUp):
		return m.reorder(store.Up)
	case key.Matches(msg, k.MoveDown):
		return m.reorder(store.Down)
	case key.Matches(msg, k.Indent):
		return m.indent()
	case key.Matches(msg, k.Outdent):
		return m.outdent()

	case key.Matches(msg, k.Delete):
		return m.beginDelete()

	case key.Matches(msg, k.ToggleDone):
		m.filter.HideDone = !m.filter.HideDone
		m.refreshRows()
		if m.filter.HideDone {
			return m.status("hiding done tasks", false)
		}
		return m.status("showing done tasks", false)

	case key.Matches(msg, k.CycleSort):
		m.sortKey = m.sortKey.Cycle()
		m.refreshRows()
		return m.status("sort: "+m.sortKey.String(), false)

	case key.Matches(msg, k.Yank):
		t := m.store.Get(m.selected)
		if t == nil {
			return m, nil
		}
		if err := clipboard.WriteAll(t.Title); err != nil {
			return m.status(fmt.Sprintf("clipboard: %v", err), true)
		}
		return m.status("yanked title", false)

	case key.Matches(msg, k.NotesPane):
		m.showNotes = !m.showNotes
		return m, nil
	}
	return m, nil
}

// quit flushes any pending save synchronously before exiting. If the flush
// fails, the first press reports the error and a second press quits anyway.
func (m Model) quit() (tea.Model, tea.Cmd) {
	if m.quitting {
		m.teardown()
		return m, tea.Quit
	}
	if m.dirty() {
		m.markDirty()
	}
	res := m.saver.Flush()
	if res.err != nil {
		m.quitting = true
		return m.status(fmt.Sprintf("save failed: %v (press q again to discard)", res.err), true)
	}
	if res.revision > m.savedRevision {
		m.savedRevision = res.revision
	}
	m.teardown()
	return m, tea.Quit
}

func (m *Model) teardown() {
	m.saver.Stop()
	if m.watcher != nil {
		m.watcher.Stop()
	}
}

// mutate runs a store mutation, reports any error in the status bar, and
// schedules a save when the store changed.
func (m Model) mutate(fn func() error) (tea.Model, tea.Cmd) {
	before := m.store.Revision()
	err := fn()
	if err != nil {
		return m.status(errorMessage(err), true)
	}
	if m.store.Revision() != before {
		m.markDirty()
		m.refreshRows()
	}
	return m, nil
}

func (m Model) advanceStatus(dir int) error {
	t := m.store.Get(m.selected)
	if t == nil {
		return nil
	}
	next := t.Status.Next()
	if dir < 0 {
		next = t.Status.Prev()
	}
	return m.store.SetStatus(t.ID, next)
}

func (m Model) reorder(dir store.Direction) (tea.Model, tea.Cmd) {
	if m.sortKey != store.SortManual {
		return m.status("reordering needs manual sort", true)
	}
	return m.mutate(func() error {
		if m.selected == model.None {
			return nil
		}
		return m.store.MoveSibling(m.selected, dir)
	})
}

// indent makes the selected task a child of its previous sibling,
// appended after that sibling's existing children.
func (m Model) indent() (tea.Model, tea.Cmd) {
	if m.sortKey != store.SortManual {
		return m.status("indenting needs manual sort", true)
	}
	t := m.store.Get(m.selected)
	if t == nil {
		return m, nil
	}
	sibs := m.store.Children(t.ParentID)
	idx := indexIn(sibs, t.ID)
	if idx <= 0 {
		return m, nil
	}
	newParent := sibs[idx-1]
	return m.mutate(func() error {
		return m.store.Reparent(t.ID, newParent, len(m.store.Children(newParent)))
	})
}

// outdent lifts the selected task to its grandparent, right after its
// current parent.
func (m Model) outdent() (tea.Model, tea.Cmd) {
	if m.sortKey != store.SortManual {
		return m.status("outdenting needs manual sort", true)
	}
	t := m.store.Get(m.selected)
	if t == nil || t.ParentID == model.None {
		return m, nil
	}
	parent := m.store.Get(t.ParentID)
	grand := parent.ParentID
	pos := indexIn(m.store.Children(grand), parent.ID) + 1
	return m.mutate(func() error {
		return m.store.Reparent(t.ID, grand, pos)
	})
}

func indexIn(ids []model.ID, id model.ID) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

// beginEdit enters editing mode on the selected task's title or notes.
func (m Model) beginEdit(field editField) (tea.Model, tea.Cmd) {
	t := m.store.Get(m.selected)
	if t == nil {
		return m, nil
	}
	m.mode = modeEditing
	m.edit = editContext{field: field, target: t.ID}
	switch field {
	case fieldNotes:
		m.input.SetValue(t.Notes)
	default:
		m.input.SetValue(t.Title)
	}
	m.input.CursorEnd()
	m.input.Focus()
	return m, textinput.Blink
}

// beginCreate enters editing mode for a task that will be created on
// commit. Nothing exists in the store until then.
func (m Model) beginCreate(parent model.ID) (tea.Model, tea.Cmd) {
	m.mode = modeEditing
	m.edit = editContext{field: fieldTitle, parent: parent, creating: true}
	m.input.SetValue("")
	m.input.Focus()
	return m, textinput.Blink
}

func (m Model) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEscape:
		return m.cancelEdit()
	case tea.KeyEnter:
		return m.commitEdit()
	case tea.KeyCtrlC:
		return m.cancelEdit()
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) cancelEdit() (tea.Model, tea.Cmd) {
	m.mode = modeNormal
	m.edit = editContext{}
	m.input.Blur()
	m.input.SetValue("")
	return m, nil
}

func (m Model) commitEdit() (tea.Model, tea.Cmd) {
	value := m.input.Value()

	// An empty title on an existing task keeps the editor open so the
	// entered text is not lost to a slip of the enter key.
	if m.edit.field == fieldTitle && !m.edit.creating && strings.TrimSpace(value) == "" {
		return m.status("title must not be empty", true)
	}

	edit := m.edit
	m.mode = modeNormal
	m.edit = editContext{}
	m.input.Blur()
	m.input.SetValue("")

	if edit.creating {
		if strings.TrimSpace(value) == "" {
			// Empty input aborts creation silently.
			return m, nil
		}
		var created model.ID
		mm, cmd := m.mutate(func() error {
			id, err := m.store.Create(value, edit.parent)
			created = id
			return err
		})
		out := mm.(Model)
		if created != model.None {
			out.selected = created
			out.refreshRows()
		}
		return out, cmd
	}

	return m.mutate(func() error {
		switch edit.field {
		case fieldNotes:
			return m.store.SetNotes(edit.target, value)
		default:
			return m.store.SetTitle(edit.target, value)
		}
	})
}

// beginDelete enters the delete confirmation, reporting how many tasks
// the subtree removal would take with it.
func (m Model) beginDelete() (tea.Model, tea.Cmd) {
	t := m.store.Get(m.selected)
	if t == nil {
		return m, nil
	}
	count := 0
	var walk func(id model.ID)
	walk = func(id model.ID) {
		count++
		for _, c := range m.store.Children(id) {
			walk(c)
		}
	}
	walk(t.ID)
	m.mode = modeConfirmDelete
	m.del = deleteContext{target: t.ID, count: count}
	return m, nil
}

func (m Model) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	del := m.del
	m.mode = modeNormal
	m.del = deleteContext{}
	if msg.String() == "y" || msg.String() == "Y" {
		return m.mutate(func() error {
			return m.store.Delete(del.target)
		})
	}
	// Any other key cancels.
	return m, nil
}

// status sets a transient status-bar message that clears after statusTTL.
func (m Model) status(text string, isErr bool) (tea.Model, tea.Cmd) {
	return m.withStatus(text, isErr, nil)
}

func (m Model) withStatus(text string, isErr bool, extra tea.Cmd) (Model, tea.Cmd) {
	m.statusMsg = text
	m.statusIsErr = isErr
	m.statusSeq++
	seq := m.statusSeq
	expire := tea.Tick(statusTTL, func(time.Time) tea.Msg {
		return statusClearMsg{seq: seq}
	})
	if extra != nil {
		return m, tea.Batch(extra, expire)
	}
	return m, expire
}

// errorMessage renders store errors for the status bar without the Go
// error-chain noise.
func errorMessage(err error) string {
	var nf store.NotFoundError
	var cyc store.CycleError
	var inv store.InvalidInputError
	switch {
	case errors.As(err, &nf):
		return "task no longer exists"
	case errors.As(err, &cyc):
		return "cannot move a task under its own subtree"
	case errors.As(err, &inv):
		return inv.Reason
	default:
		return err.Error()
	}
}
