package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/taskweave/pkg/store"
)

// Output filenames inside the export directory.
const (
	SQLiteName = "tasks.sqlite3"
	ChartName  = "status.svg"
)

// WriteAll writes all export artifacts into dir, creating it if needed.
// The SQLite database and the SVG chart are independent and written
// concurrently; the first failure cancels the other.
func WriteAll(ctx context.Context, snap *store.Store, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return WriteSQLite(ctx, snap, filepath.Join(dir, SQLiteName))
	})
	g.Go(func() error {
		f, err := os.Create(filepath.Join(dir, ChartName))
		if err != nil {
			return fmt.Errorf("create chart file: %w", err)
		}
		defer f.Close()
		if err := WriteStatusChartSVG(snap, f); err != nil {
			return err
		}
		return f.Close()
	})

	return g.Wait()
}
