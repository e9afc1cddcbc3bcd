// Package codec serializes the task store to a versioned JSONL document
// and restores it losslessly. Saves are atomic: the document on disk is
// always either the previous or the new complete version, never a partial
// write.
//
// Document format, one JSON object per line:
//
//	{"format":"taskweave","version":1,"next_id":7}
//	{"id":1,"title":"...","status":"todo","created_at":"..."}
//	{"id":3,"parent_id":1,"title":"...","status":"done","created_at":"..."}
//
// Records appear in depth-first sibling order; sibling rank is the record
// order. JSON string escaping makes arbitrary titles and notes, including
// newlines and separators, round-trip exactly.
package codec

import (
	"bufio"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/taskweave/pkg/model"
	"github.com/vanderheijden86/taskweave/pkg/store"
)

// FormatName marks the document header.
const FormatName = "taskweave"

// Version is the current document format version.
const Version = 1

type header struct {
	Format  string   `json:"format"`
	Version int      `json:"version"`
	NextID  model.ID `json:"next_id"`
}

// UnsupportedVersionError reports a document written by a newer format.
type UnsupportedVersionError struct {
	Version int
}

func (e UnsupportedVersionError) Error() string {
	return fmt.Sprintf("document version %d is newer than supported version %d", e.Version, Version)
}

// CorruptError reports a structurally invalid document, identifying the
// offending line and, when known, the offending task record.
type CorruptError struct {
	Line int
	ID   model.ID
	Err  error
}

func (e CorruptError) Error() string {
	if e.ID != model.None {
		return fmt.Sprintf("corrupt document at line %d (task %d): %v", e.Line, e.ID, e.Err)
	}
	return fmt.Sprintf("corrupt document at line %d: %v", e.Line, e.Err)
}

func (e CorruptError) Unwrap() error { return e.Err }

// Encode writes the document for s to w.
func Encode(w io.Writer, s *store.Store) error {
	enc := json.NewEncoder(w)
	if err := enc.Encode(header{Format: FormatName, Version: Version, NextID: s.NextID()}); err != nil {
		return err
	}
	for _, t := range s.Tasks() {
		if err := enc.Encode(t); err != nil {
			return fmt.Errorf("encoding task %d: %w", t.ID, err)
		}
	}
	return nil
}

// Save atomically replaces the document at path with the serialized form
// of s: write to a temp file in the same directory, flush, then rename
// over the target. Returns the content hash of the written document so
// the file watcher can distinguish our own writes from external edits.
func Save(path string, s *store.Store) (string, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, s); err != nil {
		return "", err
	}
	data := buf.Bytes()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating document directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		// Best-effort cleanup when the rename did not happen.
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("writing document: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return "", fmt.Errorf("syncing document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return "", fmt.Errorf("setting document mode: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return "", fmt.Errorf("replacing document: %w", err)
	}
	syncDir(dir)

	return contentHash(data), nil
}

// syncDir flushes the directory entry so the rename survives a crash.
// Not all platforms allow fsync on directories; failures are ignored.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}

// Load reads and validates the document at path. A missing file yields an
// empty store to support first run.
func Load(path string) (*store.Store, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return store.New(), nil
		}
		return nil, fmt.Errorf("opening document: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode parses a document from r.
func Decode(r io.Reader) (*store.Store, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("reading document header: %w", err)
		}
		// Zero-length file: treat like a missing document.
		return store.New(), nil
	}
	var h header
	if err := json.Unmarshal(stripBOM(sc.Bytes()), &h); err != nil {
		return nil, CorruptError{Line: 1, Err: fmt.Errorf("malformed header: %w", err)}
	}
	if h.Format != FormatName {
		return nil, CorruptError{Line: 1, Err: fmt.Errorf("unknown format %q", h.Format)}
	}
	if h.Version > Version {
		return nil, UnsupportedVersionError{Version: h.Version}
	}

	var tasks []model.Task
	line := 1
	for sc.Scan() {
		line++
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}
		var t model.Task
		if err := json.Unmarshal(raw, &t); err != nil {
			return nil, CorruptError{Line: line, Err: err}
		}
		if err := t.Validate(); err != nil {
			return nil, CorruptError{Line: line, ID: t.ID, Err: err}
		}
		tasks = append(tasks, t)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}

	s, err := store.Rebuild(tasks, h.NextID)
	if err != nil {
		return nil, CorruptError{Line: line, ID: offendingID(err), Err: err}
	}
	return s, nil
}

func offendingID(err error) model.ID {
	switch e := err.(type) {
	case store.DuplicateIDError:
		return e.ID
	case store.CycleError:
		return e.ID
	case store.InvalidParentError:
		return e.Parent
	}
	return model.None
}

func stripBOM(b []byte) []byte {
	return bytes.TrimPrefix(b, []byte{0xEF, 0xBB, 0xBF})
}

func contentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashFile returns the content hash of the document at path, in the same
// form Save returns, for self-write deduplication in the watcher.
func HashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return contentHash(data), nil
}

// BackupCorrupt renames the document at path to a timestamped sibling so
// a fresh start never silently destroys data. Returns the backup path.
func BackupCorrupt(path string) (string, error) {
	stamp := time.Now().Format("20060102T150405")
	backup := fmt.Sprintf("%s.corrupt-%s", path, stamp)
	for i := 1; ; i++ {
		if _, err := os.Stat(backup); os.IsNotExist(err) {
			break
		}
		backup = fmt.Sprintf("%s.corrupt-%s.%d", path, stamp, i)
	}
	if err := os.Rename(path, backup); err != nil {
		return "", fmt.Errorf("backing up corrupt document: %w", err)
	}
	return backup, nil
}
