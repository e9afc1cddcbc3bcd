package codec

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vanderheijden86/taskweave/pkg/model"
	"github.com/vanderheijden86/taskweave/pkg/store"
)

func fixedClock() func() time.Time {
	at := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)
	return func() time.Time { return at }
}

func buildStore(t *testing.T) *store.Store {
	t.Helper()
	s := store.New()
	s.SetClock(fixedClock())
	a, err := s.Create("write the report", model.None)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	a1, err := s.Create("gather numbers\nwith a newline", a)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.SetStatus(a1, model.StatusDone); err != nil {
		t.Fatalf("status: %v", err)
	}
	if err := s.SetNotes(a, "multi\nline\nnotes with \"quotes\""); err != nil {
		t.Fatalf("notes: %v", err)
	}
	if err := s.SetPriority(a, model.PriorityHigh); err != nil {
		t.Fatalf("priority: %v", err)
	}
	due := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	if err := s.SetDue(a, &due); err != nil {
		t.Fatalf("due: %v", err)
	}
	if _, err := s.Create("unrelated", model.None); err != nil {
		t.Fatalf("create: %v", err)
	}
	return s
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	s := buildStore(t)

	var buf bytes.Buffer
	if err := Encode(&buf, s); err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !s.Equal(got) {
		t.Fatalf("round trip changed the store")
	}
	if got.NextID() != s.NextID() {
		t.Fatalf("id counter lost: %d != %d", got.NextID(), s.NextID())
	}
}

func TestEncodeHeaderFirstLine(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, store.New()); err != nil {
		t.Fatalf("encode: %v", err)
	}
	first := strings.SplitN(buf.String(), "\n", 2)[0]
	if !strings.Contains(first, `"format":"taskweave"`) || !strings.Contains(first, `"version":1`) {
		t.Fatalf("header line = %s", first)
	}
}

func TestSaveLoadAtomicReplace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tasks.jsonl")
	s := buildStore(t)

	hash1, err := Save(path, s)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if hash1 == "" {
		t.Fatalf("expected content hash")
	}
	fileHash, err := HashFile(path)
	if err != nil || fileHash != hash1 {
		t.Fatalf("HashFile = %q, %v, want %q", fileHash, err, hash1)
	}

	// Second save replaces in place and leaves no temp files behind.
	if err := s.SetTitle(1, "retitled"); err != nil {
		t.Fatalf("set title: %v", err)
	}
	hash2, err := Save(path, s)
	if err != nil {
		t.Fatalf("save again: %v", err)
	}
	if hash2 == hash1 {
		t.Fatalf("different content, same hash")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %v", entries)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !s.Equal(got) {
		t.Fatalf("loaded store differs")
	}
}

func TestLoadMissingFileYieldsEmptyStore(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "absent.jsonl"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Len() != 0 || s.NextID() != 1 {
		t.Fatalf("expected pristine empty store")
	}
}

func TestDecodeEmptyAndBOM(t *testing.T) {
	s, err := Decode(strings.NewReader(""))
	if err != nil {
		t.Fatalf("empty document: %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("empty document produced tasks")
	}

	doc := "\xEF\xBB\xBF" + `{"format":"taskweave","version":1,"next_id":2}` + "\n" +
		`{"id":1,"title":"bom","status":"todo","created_at":"2026-08-10T09:00:00Z"}` + "\n"
	s, err = Decode(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("BOM document: %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("BOM document lost the task")
	}
}

func TestDecodeRejectsCorruptDocuments(t *testing.T) {
	head := `{"format":"taskweave","version":1,"next_id":9}` + "\n"
	task := func(s string) string { return head + s + "\n" }

	cases := []struct {
		name     string
		doc      string
		wantLine int
		wantID   model.ID
	}{
		{"garbage header", "not json\n", 1, 0},
		{"wrong format", `{"format":"other","version":1}` + "\n", 1, 0},
		{"malformed record", task(`{"id":`), 2, 0},
		{"invalid record", task(`{"id":1,"title":"","status":"todo","created_at":"2026-01-01T00:00:00Z"}`), 2, 1},
		{"duplicate id", task(`{"id":1,"title":"a","status":"todo","created_at":"2026-01-01T00:00:00Z"}`) +
			`{"id":1,"title":"b","status":"todo","created_at":"2026-01-01T00:00:00Z"}` + "\n", 3, 1},
		{"dangling parent", task(`{"id":1,"parent_id":5,"title":"a","status":"todo","created_at":"2026-01-01T00:00:00Z"}`), 2, 5},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(c.doc))
			var ce CorruptError
			if !errors.As(err, &ce) {
				t.Fatalf("expected CorruptError, got %v", err)
			}
			if ce.Line != c.wantLine {
				t.Errorf("line = %d, want %d", ce.Line, c.wantLine)
			}
			if ce.ID != c.wantID {
				t.Errorf("id = %d, want %d", ce.ID, c.wantID)
			}
		})
	}
}

func TestDecodeNewerVersionRefused(t *testing.T) {
	doc := `{"format":"taskweave","version":99,"next_id":1}` + "\n"
	_, err := Decode(strings.NewReader(doc))
	var uv UnsupportedVersionError
	if !errors.As(err, &uv) {
		t.Fatalf("expected UnsupportedVersionError, got %v", err)
	}
	if uv.Version != 99 {
		t.Fatalf("version = %d", uv.Version)
	}
}

func TestDecodeSkipsBlankLines(t *testing.T) {
	doc := `{"format":"taskweave","version":1,"next_id":2}` + "\n\n" +
		`{"id":1,"title":"a","status":"todo","created_at":"2026-01-01T00:00:00Z"}` + "\n\n"
	s, err := Decode(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("len = %d", s.Len())
	}
}

func TestBackupCorrupt(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tasks.jsonl")
	if err := os.WriteFile(path, []byte("broken"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	backup, err := BackupCorrupt(path)
	if err != nil {
		t.Fatalf("backup: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("original still present")
	}
	data, err := os.ReadFile(backup)
	if err != nil || string(data) != "broken" {
		t.Fatalf("backup content = %q, %v", data, err)
	}
	if !strings.Contains(filepath.Base(backup), ".corrupt-") {
		t.Fatalf("backup name = %s", backup)
	}

	// A second backup in the same second must not overwrite the first.
	if err := os.WriteFile(path, []byte("broken2"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	backup2, err := BackupCorrupt(path)
	if err != nil {
		t.Fatalf("second backup: %v", err)
	}
	if backup2 == backup {
		t.Fatalf("backup path collided")
	}
}
