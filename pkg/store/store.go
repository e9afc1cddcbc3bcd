// Package store owns the in-memory task collection: an arena of tasks
// indexed by id, with parent/child relations kept as id links and sibling
// order kept as contiguous slices. All mutators preserve the structural
// invariants (unique ids, existing acyclic parents, no orphans) and bump a
// store-wide revision counter the event loop uses to schedule persistence
// and redraws.
package store

import (
	"sort"
	"strings"
	"time"

	"github.com/vanderheijden86/taskweave/pkg/model"
)

// Direction selects the neighbor for MoveSibling.
type Direction int

const (
	Up   Direction = -1
	Down Direction = 1
)

// Store is not safe for concurrent mutation; the event loop is the single
// writer. Snapshot produces deep copies for background readers.
type Store struct {
	tasks    map[model.ID]*model.Task
	children map[model.ID][]model.ID // key None holds top-level order
	nextID   model.ID
	revision uint64

	now func() time.Time // injectable for tests
}

// New returns an empty store.
func New() *Store {
	return &Store{
		tasks:    make(map[model.ID]*model.Task),
		children: make(map[model.ID][]model.ID),
		nextID:   1,
		now:      time.Now,
	}
}

// SetClock overrides the store's clock. Test hook.
func (s *Store) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Revision returns the mutation counter. It increments exactly once per
// successful mutating call; failed calls leave it untouched.
func (s *Store) Revision() uint64 { return s.revision }

// Len returns the number of tasks in the store.
func (s *Store) Len() int { return len(s.tasks) }

// NextID exposes the id counter for the codec header.
func (s *Store) NextID() model.ID { return s.nextID }

// Get returns the task with the given id, or nil. The returned pointer is
// owned by the store; callers must treat it as read-only.
func (s *Store) Get(id model.ID) *model.Task {
	return s.tasks[id]
}

// Children returns the ordered child ids under parent (None = top level).
// The returned slice is owned by the store.
func (s *Store) Children(parent model.ID) []model.ID {
	return s.children[parent]
}

// Create allocates a new id and appends the task as the last sibling under
// parent (None = top level).
func (s *Store) Create(title string, parent model.ID) (model.ID, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return model.None, InvalidInputError{Reason: "title must not be empty"}
	}
	if parent != model.None {
		if _, ok := s.tasks[parent]; !ok {
			return model.None, InvalidParentError{Parent: parent}
		}
	}

	id := s.nextID
	s.nextID++
	now := s.now()
	s.tasks[id] = &model.Task{
		ID:        id,
		ParentID:  parent,
		Title:     title,
		Status:    model.StatusTodo,
		CreatedAt: now,
		History:   []model.StatusChange{{Status: model.StatusTodo, At: now}},
	}
	s.children[parent] = append(s.children[parent], id)
	s.revision++
	return id, nil
}

// SetTitle replaces a task's title. Empty titles are rejected and the
// store is left unchanged.
func (s *Store) SetTitle(id model.ID, title string) error {
	t, ok := s.tasks[id]
	if !ok {
		return NotFoundError{ID: id}
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return InvalidInputError{Reason: "title must not be empty"}
	}
	t.Title = title
	s.revision++
	return nil
}

// SetNotes replaces a task's free-form notes.
func (s *Store) SetNotes(id model.ID, notes string) error {
	t, ok := s.tasks[id]
	if !ok {
		return NotFoundError{ID: id}
	}
	t.Notes = notes
	s.revision++
	return nil
}

// SetDue sets or clears (nil) a task's due date.
func (s *Store) SetDue(id model.ID, due *time.Time) error {
	t, ok := s.tasks[id]
	if !ok {
		return NotFoundError{ID: id}
	}
	if due != nil {
		d := *due
		t.Due = &d
	} else {
		t.Due = nil
	}
	s.revision++
	return nil
}

// SetPriority sets a task's priority.
func (s *Store) SetPriority(id model.ID, p model.Priority) error {
	t, ok := s.tasks[id]
	if !ok {
		return NotFoundError{ID: id}
	}
	if !p.Valid() {
		return InvalidInputError{Reason: "unknown priority " + string(p)}
	}
	t.Priority = p
	s.revision++
	return nil
}

// SetStatus changes a task's status and appends to its history. Changing a
// parent's status never cascades to children; CompleteSubtree is the
// explicit cascade command.
func (s *Store) SetStatus(id model.ID, status model.Status) error {
	t, ok := s.tasks[id]
	if !ok {
		return NotFoundError{ID: id}
	}
	if !status.Valid() {
		return InvalidInputError{Reason: "unknown status " + string(status)}
	}
	if t.Status == status {
		return nil // no mutation committed
	}
	t.Status = status
	t.History = append(t.History, model.StatusChange{Status: status, At: s.now()})
	s.revision++
	return nil
}

// CompleteSubtree marks the task and all of its descendants done. This is
// the deliberate cascade command; SetStatus on a parent touches only the
// parent.
func (s *Store) CompleteSubtree(id model.ID) error {
	if _, ok := s.tasks[id]; !ok {
		return NotFoundError{ID: id}
	}
	now := s.now()
	changed := false
	s.walk(id, func(t *model.Task) {
		if t.Status != model.StatusDone {
			t.Status = model.StatusDone
			t.History = append(t.History, model.StatusChange{Status: model.StatusDone, At: now})
			changed = true
		}
	})
	if changed {
		s.revision++
	}
	return nil
}

// Delete removes the task and, recursively, all of its descendants.
func (s *Store) Delete(id model.ID) error {
	t, ok := s.tasks[id]
	if !ok {
		return NotFoundError{ID: id}
	}
	s.detach(id, t.ParentID)
	s.deleteSubtree(id)
	s.revision++
	return nil
}

func (s *Store) deleteSubtree(id model.ID) {
	for _, c := range s.children[id] {
		s.deleteSubtree(c)
	}
	delete(s.children, id)
	delete(s.tasks, id)
}

// Reparent relocates id (and its subtree, order preserved) under newParent
// at the given position among the new siblings. Position is clamped to the
// sibling range. Moving a task under itself or one of its descendants is
// rejected with CycleError and leaves the store unchanged.
func (s *Store) Reparent(id, newParent model.ID, pos int) error {
	t, ok := s.tasks[id]
	if !ok {
		return NotFoundError{ID: id}
	}
	if newParent != model.None {
		if _, ok := s.tasks[newParent]; !ok {
			return InvalidParentError{Parent: newParent}
		}
		if id == newParent || s.isDescendant(newParent, id) {
			return CycleError{ID: id, Parent: newParent}
		}
	}

	s.detach(id, t.ParentID)
	t.ParentID = newParent

	sibs := s.children[newParent]
	if pos < 0 {
		pos = 0
	}
	if pos > len(sibs) {
		pos = len(sibs)
	}
	sibs = append(sibs, model.None)
	copy(sibs[pos+1:], sibs[pos:])
	sibs[pos] = id
	s.children[newParent] = sibs
	s.revision++
	return nil
}

// MoveSibling swaps the task with its adjacent sibling. At the first/last
// position the call is a no-op, never an error.
func (s *Store) MoveSibling(id model.ID, dir Direction) error {
	t, ok := s.tasks[id]
	if !ok {
		return NotFoundError{ID: id}
	}
	sibs := s.children[t.ParentID]
	i := indexOf(sibs, id)
	j := i + int(dir)
	if j < 0 || j >= len(sibs) {
		return nil
	}
	sibs[i], sibs[j] = sibs[j], sibs[i]
	s.revision++
	return nil
}

// isDescendant reports whether id is a (transitive) descendant of root.
func (s *Store) isDescendant(id, root model.ID) bool {
	for _, c := range s.children[root] {
		if c == id || s.isDescendant(id, c) {
			return true
		}
	}
	return false
}

// detach removes id from its parent's sibling list.
func (s *Store) detach(id, parent model.ID) {
	sibs := s.children[parent]
	i := indexOf(sibs, id)
	if i < 0 {
		return
	}
	s.children[parent] = append(sibs[:i], sibs[i+1:]...)
	if len(s.children[parent]) == 0 && parent != model.None {
		delete(s.children, parent)
	}
}

func indexOf(ids []model.ID, id model.ID) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

// walk visits id and all descendants depth-first in sibling order.
func (s *Store) walk(id model.ID, fn func(*model.Task)) {
	if t, ok := s.tasks[id]; ok {
		fn(t)
	}
	for _, c := range s.children[id] {
		s.walk(c, fn)
	}
}

// Tasks returns all tasks in document order: depth-first, siblings in
// stored order, copies safe to hand to the codec.
func (s *Store) Tasks() []model.Task {
	out := make([]model.Task, 0, len(s.tasks))
	var rec func(parent model.ID)
	rec = func(parent model.ID) {
		for _, id := range s.children[parent] {
			out = append(out, *s.tasks[id].Clone())
			rec(id)
		}
	}
	rec(model.None)
	return out
}

// Snapshot returns a deep copy for background readers (save worker,
// exporters). The copy carries the same revision and id counter.
func (s *Store) Snapshot() *Store {
	c := New()
	c.nextID = s.nextID
	c.revision = s.revision
	for id, t := range s.tasks {
		c.tasks[id] = t.Clone()
	}
	for parent, ids := range s.children {
		cp := make([]model.ID, len(ids))
		copy(cp, ids)
		c.children[parent] = cp
	}
	return c
}

// Equal reports structural equality: same tasks, same hierarchy, same
// sibling order, same id counter. Revision is ignored.
func (s *Store) Equal(o *Store) bool {
	if s.nextID != o.nextID || len(s.tasks) != len(o.tasks) {
		return false
	}
	for id, t := range s.tasks {
		ot, ok := o.tasks[id]
		if !ok || !t.Equal(ot) {
			return false
		}
	}
	for parent, ids := range s.children {
		oids := o.children[parent]
		if len(ids) != len(oids) {
			return false
		}
		for i := range ids {
			if ids[i] != oids[i] {
				return false
			}
		}
	}
	for parent := range o.children {
		if _, ok := s.children[parent]; !ok && len(o.children[parent]) > 0 {
			return false
		}
	}
	return true
}

// Rebuild constructs a store from tasks in document order, validating the
// structural invariants. The offending record is identified in the
// returned error so load failures can name it.
func Rebuild(tasks []model.Task, nextID model.ID) (*Store, error) {
	s := New()
	for i := range tasks {
		t := tasks[i]
		if _, dup := s.tasks[t.ID]; dup {
			return nil, DuplicateIDError{ID: t.ID}
		}
		if err := t.Validate(); err != nil {
			return nil, err
		}
		s.tasks[t.ID] = t.Clone()
		if t.ID >= s.nextID {
			s.nextID = t.ID + 1
		}
	}
	// Second pass: attach children in document order, now that parents are
	// known regardless of record order.
	for i := range tasks {
		t := tasks[i]
		if t.ParentID != model.None {
			if _, ok := s.tasks[t.ParentID]; !ok {
				return nil, InvalidParentError{Parent: t.ParentID}
			}
		}
		s.children[t.ParentID] = append(s.children[t.ParentID], t.ID)
	}
	// Cycle check: every task must reach the top level through parents.
	for id := range s.tasks {
		seen := make(map[model.ID]bool)
		for cur := id; cur != model.None; cur = s.tasks[cur].ParentID {
			if seen[cur] {
				return nil, CycleError{ID: id, Parent: s.tasks[id].ParentID}
			}
			seen[cur] = true
		}
	}
	if nextID > s.nextID {
		s.nextID = nextID
	}
	return s, nil
}

// Filter narrows Visible output.
type Filter struct {
	HideDone bool
}

// SortKey orders siblings in Visible output. Sorting is stable: equal keys
// preserve the stored sibling order.
type SortKey int

const (
	SortManual SortKey = iota // stored sibling order
	SortPriority
	SortDue
	SortCreated
)

func (k SortKey) String() string {
	switch k {
	case SortPriority:
		return "priority"
	case SortDue:
		return "due"
	case SortCreated:
		return "created"
	default:
		return "manual"
	}
}

// Cycle returns the next sort key.
func (k SortKey) Cycle() SortKey {
	return (k + 1) % 4
}

// TaskView is one row of the visible projection. Task points into the
// store and must be treated as read-only.
type TaskView struct {
	Task  *model.Task
	Depth int
}

// Visible projects the store through filter and sort into a flat,
// depth-annotated row list. It never mutates the store; a hidden parent
// hides its subtree.
func (s *Store) Visible(f Filter, key SortKey) []TaskView {
	var out []TaskView
	var rec func(parent model.ID, depth int)
	rec = func(parent model.ID, depth int) {
		ids := s.children[parent]
		if key != SortManual {
			ids = sortedSiblings(s, ids, key)
		}
		for _, id := range ids {
			t := s.tasks[id]
			if f.HideDone && t.Status == model.StatusDone {
				continue
			}
			out = append(out, TaskView{Task: t, Depth: depth})
			rec(id, depth+1)
		}
	}
	rec(model.None, 0)
	return out
}

func sortedSiblings(s *Store, ids []model.ID, key SortKey) []model.ID {
	sorted := make([]model.ID, len(ids))
	copy(sorted, ids)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := s.tasks[sorted[i]], s.tasks[sorted[j]]
		switch key {
		case SortPriority:
			return a.Priority.Rank() > b.Priority.Rank()
		case SortDue:
			// Tasks without a due date sort last.
			if (a.Due == nil) != (b.Due == nil) {
				return b.Due == nil
			}
			if a.Due == nil {
				return false
			}
			return a.Due.Before(*b.Due)
		case SortCreated:
			return a.CreatedAt.Before(b.CreatedAt)
		default:
			return false
		}
	})
	return sorted
}
