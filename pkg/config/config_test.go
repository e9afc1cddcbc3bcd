package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadFromMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.SaveDebounceMS != 400 {
		t.Fatalf("debounce default = %d", cfg.SaveDebounceMS)
	}
	if cfg.Document != "" || cfg.UI.HideDone {
		t.Fatalf("unexpected non-zero defaults: %+v", cfg)
	}
}

func TestLoadFromParsesFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
document: ~/todo/tasks.jsonl
save_debounce_ms: 150
ui:
  hide_done: true
  sort: priority
  notes_pane: true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.SaveDebounceMS != 150 {
		t.Errorf("debounce = %d", cfg.SaveDebounceMS)
	}
	if !cfg.UI.HideDone || cfg.UI.Sort != "priority" || !cfg.UI.NotesPane {
		t.Errorf("ui = %+v", cfg.UI)
	}
	doc := cfg.DocumentPath()
	if strings.HasPrefix(doc, "~") {
		t.Errorf("tilde not expanded: %s", doc)
	}
	if !strings.HasSuffix(doc, filepath.Join("todo", "tasks.jsonl")) {
		t.Errorf("document path = %s", doc)
	}
}

func TestLoadFromRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("document: [unclosed"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestLoadFromClampsDebounce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("save_debounce_ms: -10"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.SaveDebounceMS != 400 {
		t.Fatalf("negative debounce not reset: %d", cfg.SaveDebounceMS)
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	in := DefaultConfig()
	in.Document = "/tmp/x.jsonl"
	in.UI.Sort = "due"
	if err := SaveTo(in, path); err != nil {
		t.Fatalf("save: %v", err)
	}
	out, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if out.Document != in.Document || out.UI.Sort != in.UI.Sort {
		t.Fatalf("round trip: %+v != %+v", out, in)
	}
}

func TestDocumentPathDefaultsToDataDir(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	cfg := DefaultConfig()
	doc := cfg.DocumentPath()
	if !strings.HasSuffix(doc, filepath.Join("taskweave", DefaultDocumentName)) {
		t.Fatalf("document path = %s", doc)
	}
}
