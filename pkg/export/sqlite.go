// Package export writes read-only snapshots of the task store for use
// outside the TUI: a queryable SQLite database and an SVG status chart.
package export

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/vanderheijden86/taskweave/pkg/model"
	"github.com/vanderheijden86/taskweave/pkg/store"
	"github.com/vanderheijden86/taskweave/pkg/version"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE tasks (
	id         INTEGER PRIMARY KEY,
	parent_id  INTEGER,
	rank       INTEGER NOT NULL,
	title      TEXT NOT NULL,
	status     TEXT NOT NULL,
	priority   TEXT NOT NULL DEFAULT '',
	due        TEXT,
	notes      TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL,
	FOREIGN KEY (parent_id) REFERENCES tasks(id)
);
CREATE TABLE status_history (
	task_id INTEGER NOT NULL,
	status  TEXT NOT NULL,
	at      TEXT NOT NULL,
	FOREIGN KEY (task_id) REFERENCES tasks(id)
);
CREATE INDEX idx_tasks_parent ON tasks(parent_id, rank);
CREATE INDEX idx_history_task ON status_history(task_id);
`

// WriteSQLite exports the snapshot to a fresh SQLite database at path. An
// existing database is replaced.
func WriteSQLite(ctx context.Context, snap *store.Store, path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing database: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin export transaction: %w", err)
	}
	defer tx.Rollback()

	meta := map[string]string{
		"format":      "taskweave",
		"version":     fmt.Sprint(1),
		"tool":        version.Version,
		"exported_at": time.Now().UTC().Format(time.RFC3339),
		"next_id":     fmt.Sprint(snap.NextID()),
	}
	for k, v := range meta {
		if _, err := tx.ExecContext(ctx, `INSERT INTO meta (key, value) VALUES (?, ?)`, k, v); err != nil {
			return fmt.Errorf("insert meta %s: %w", k, err)
		}
	}

	insertTask, err := tx.PrepareContext(ctx, `
		INSERT INTO tasks (id, parent_id, rank, title, status, priority, due, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare task insert: %w", err)
	}
	defer insertTask.Close()

	insertHist, err := tx.PrepareContext(ctx, `
		INSERT INTO status_history (task_id, status, at) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare history insert: %w", err)
	}
	defer insertHist.Close()

	rank := make(map[model.ID]int)
	for _, t := range snap.Tasks() {
		r := rank[t.ParentID]
		rank[t.ParentID] = r + 1

		var parent any
		if t.ParentID != model.None {
			parent = int64(t.ParentID)
		}
		var due any
		if t.Due != nil {
			due = t.Due.UTC().Format(time.RFC3339Nano)
		}
		if _, err := insertTask.ExecContext(ctx,
			int64(t.ID), parent, r, t.Title, string(t.Status), string(t.Priority),
			due, t.Notes, t.CreatedAt.UTC().Format(time.RFC3339Nano),
		); err != nil {
			return fmt.Errorf("insert task %d: %w", t.ID, err)
		}
		for _, h := range t.History {
			if _, err := insertHist.ExecContext(ctx,
				int64(t.ID), string(h.Status), h.At.UTC().Format(time.RFC3339Nano),
			); err != nil {
				return fmt.Errorf("insert history for task %d: %w", t.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit export: %w", err)
	}
	return nil
}
