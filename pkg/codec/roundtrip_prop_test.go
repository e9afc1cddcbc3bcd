package codec

import (
	"bytes"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/vanderheijden86/taskweave/pkg/model"
	"github.com/vanderheijden86/taskweave/pkg/store"
)

// Titles and notes deliberately include newlines, quotes, and wide runes;
// JSON escaping has to carry all of them through unchanged.
var textGen = rapid.StringMatching(`[a-zA-Z0-9 "\\,{}\n漢字]{1,24}`)

func TestRoundTripLaw(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := store.New()
		base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		tick := 0
		s.SetClock(func() time.Time {
			tick++
			return base.Add(time.Duration(tick) * time.Second)
		})

		var ids []model.ID
		n := rapid.IntRange(0, 25).Draw(t, "n")
		for i := 0; i < n; i++ {
			parent := model.None
			if len(ids) > 0 && rapid.Bool().Draw(t, "nested") {
				parent = rapid.SampledFrom(ids).Draw(t, "parent")
			}
			title := textGen.Draw(t, "title")
			id, err := s.Create(title, parent)
			if err != nil {
				// Whitespace-only titles are rejected; skip them.
				continue
			}
			ids = append(ids, id)

			if rapid.Bool().Draw(t, "notes") {
				if err := s.SetNotes(id, textGen.Draw(t, "noteText")); err != nil {
					t.Fatalf("notes: %v", err)
				}
			}
			if rapid.Bool().Draw(t, "status") {
				status := rapid.SampledFrom([]model.Status{
					model.StatusTodo, model.StatusOngoing, model.StatusDone,
				}).Draw(t, "statusVal")
				if err := s.SetStatus(id, status); err != nil {
					t.Fatalf("status: %v", err)
				}
			}
			if rapid.Bool().Draw(t, "prio") {
				p := rapid.SampledFrom([]model.Priority{
					model.PriorityNone, model.PriorityLow, model.PriorityMedium, model.PriorityHigh,
				}).Draw(t, "prioVal")
				if err := s.SetPriority(id, p); err != nil {
					t.Fatalf("priority: %v", err)
				}
			}
			if rapid.Bool().Draw(t, "due") {
				due := base.Add(time.Duration(rapid.IntRange(-100, 100).Draw(t, "dueDays")) * 24 * time.Hour)
				if err := s.SetDue(id, &due); err != nil {
					t.Fatalf("due: %v", err)
				}
			}
		}

		var buf bytes.Buffer
		if err := Encode(&buf, s); err != nil {
			t.Fatalf("encode: %v", err)
		}
		got, err := Decode(bytes.NewReader(buf.Bytes()))
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !s.Equal(got) {
			t.Fatalf("decode(encode(s)) != s")
		}

		// Encoding is deterministic: same store, same bytes.
		var buf2 bytes.Buffer
		if err := Encode(&buf2, got); err != nil {
			t.Fatalf("re-encode: %v", err)
		}
		if !bytes.Equal(buf.Bytes(), buf2.Bytes()) {
			t.Fatalf("re-encoded document differs")
		}
	})
}
