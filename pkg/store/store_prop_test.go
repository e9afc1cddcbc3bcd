package store

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/vanderheijden86/taskweave/pkg/model"
)

// checkInvariants verifies the structural invariants every mutation must
// preserve: child lists and the task arena agree, parent links match child
// lists, ids stay below the counter, and every task reaches the top level.
func checkInvariants(t *rapid.T, s *Store) {
	t.Helper()

	listed := 0
	for parent, ids := range s.children {
		if parent != model.None && s.Get(parent) == nil {
			t.Fatalf("child list under missing parent %d", parent)
		}
		seen := map[model.ID]bool{}
		for _, id := range ids {
			if seen[id] {
				t.Fatalf("id %d listed twice under parent %d", id, parent)
			}
			seen[id] = true
			task := s.Get(id)
			if task == nil {
				t.Fatalf("child list references missing task %d", id)
			}
			if task.ParentID != parent {
				t.Fatalf("task %d parent link %d but listed under %d", id, task.ParentID, parent)
			}
			if id >= s.NextID() {
				t.Fatalf("task id %d not below counter %d", id, s.NextID())
			}
			listed++
		}
	}
	if listed != s.Len() {
		t.Fatalf("%d tasks listed, arena has %d", listed, s.Len())
	}
	// Acyclic: every task reaches None through parent links.
	for id := range s.tasks {
		seen := map[model.ID]bool{}
		for cur := id; cur != model.None; cur = s.tasks[cur].ParentID {
			if seen[cur] {
				t.Fatalf("parent cycle reachable from %d", id)
			}
			seen[cur] = true
		}
	}
}

func TestStoreInvariantsUnderRandomOps(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := New()
		var ids []model.ID

		anyID := func(t *rapid.T) model.ID {
			// Mostly live ids with the occasional bogus one to exercise
			// error paths.
			if len(ids) == 0 || rapid.Float64().Draw(t, "bogus") < 0.1 {
				return model.ID(rapid.Int64Range(0, 50).Draw(t, "raw"))
			}
			return rapid.SampledFrom(ids).Draw(t, "id")
		}
		refresh := func() {
			ids = ids[:0]
			for id := range s.tasks {
				ids = append(ids, id)
			}
		}

		steps := rapid.IntRange(1, 60).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			before := s.Revision()
			op := rapid.IntRange(0, 7).Draw(t, "op")
			var err error
			switch op {
			case 0:
				parent := model.None
				if len(ids) > 0 && rapid.Bool().Draw(t, "nested") {
					parent = rapid.SampledFrom(ids).Draw(t, "parent")
				}
				_, err = s.Create(rapid.StringMatching(`[a-z ]{0,8}`).Draw(t, "title"), parent)
			case 1:
				err = s.SetTitle(anyID(t), rapid.StringMatching(`[a-z]{0,6}`).Draw(t, "title"))
			case 2:
				status := rapid.SampledFrom([]model.Status{
					model.StatusTodo, model.StatusOngoing, model.StatusDone,
				}).Draw(t, "status")
				err = s.SetStatus(anyID(t), status)
			case 3:
				err = s.Delete(anyID(t))
			case 4:
				parent := model.None
				if rapid.Bool().Draw(t, "toTask") {
					parent = anyID(t)
				}
				err = s.Reparent(anyID(t), parent, rapid.IntRange(-1, 10).Draw(t, "pos"))
			case 5:
				dir := Up
				if rapid.Bool().Draw(t, "down") {
					dir = Down
				}
				err = s.MoveSibling(anyID(t), dir)
			case 6:
				err = s.CompleteSubtree(anyID(t))
			case 7:
				p := rapid.SampledFrom([]model.Priority{
					model.PriorityNone, model.PriorityLow, model.PriorityMedium, model.PriorityHigh,
				}).Draw(t, "prio")
				err = s.SetPriority(anyID(t), p)
			}
			if err != nil && s.Revision() != before {
				t.Fatalf("failed op %d bumped revision", op)
			}
			refresh()
			checkInvariants(t, s)
		}

		// The visible projection with no filter lists every task exactly once.
		rows := s.Visible(Filter{}, SortManual)
		if len(rows) != s.Len() {
			t.Fatalf("visible rows %d != tasks %d", len(rows), s.Len())
		}
	})
}

func TestSnapshotEqualUnderRandomOps(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := New()
		n := rapid.IntRange(0, 20).Draw(t, "n")
		var ids []model.ID
		for i := 0; i < n; i++ {
			parent := model.None
			if len(ids) > 0 && rapid.Bool().Draw(t, "nested") {
				parent = rapid.SampledFrom(ids).Draw(t, "parent")
			}
			id, err := s.Create(rapid.StringMatching(`[a-z]{1,8}`).Draw(t, "title"), parent)
			if err != nil {
				t.Fatalf("create: %v", err)
			}
			ids = append(ids, id)
		}
		snap := s.Snapshot()
		if !s.Equal(snap) || !snap.Equal(s) {
			t.Fatalf("snapshot not equal to source")
		}
		if len(ids) > 0 {
			id := rapid.SampledFrom(ids).Draw(t, "mut")
			if err := s.SetNotes(id, "changed"); err != nil {
				t.Fatalf("set notes: %v", err)
			}
			if s.Equal(snap) {
				t.Fatalf("mutation not visible through Equal")
			}
		}
	})
}
