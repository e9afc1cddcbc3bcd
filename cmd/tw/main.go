package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/vanderheijden86/taskweave/pkg/codec"
	"github.com/vanderheijden86/taskweave/pkg/config"
	"github.com/vanderheijden86/taskweave/pkg/debug"
	"github.com/vanderheijden86/taskweave/pkg/export"
	"github.com/vanderheijden86/taskweave/pkg/store"
	"github.com/vanderheijden86/taskweave/pkg/ui"
	"github.com/vanderheijden86/taskweave/pkg/version"
	"github.com/vanderheijden86/taskweave/pkg/watcher"
)

func main() {
	fileFlag := flag.String("file", "", "Task document path (overrides config)")
	exportFlag := flag.String("export", "", "Export the document to DIR (SQLite + SVG chart) and exit")
	versionFlag := flag.Bool("version", false, "Show version")
	helpFlag := flag.Bool("help", false, "Show help")
	flag.Parse()

	if *helpFlag {
		fmt.Println("Usage: tw [options]")
		fmt.Println("\nA terminal task manager with hierarchical tasks.")
		flag.PrintDefaults()
		os.Exit(0)
	}
	if *versionFlag {
		fmt.Printf("tw %s\n", version.Version)
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		cfg = config.DefaultConfig()
	}

	path := cfg.DocumentPath()
	if *fileFlag != "" {
		path = *fileFlag
	}

	s, err := loadDocument(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *exportFlag != "" {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		if err := export.WriteAll(ctx, s, *exportFlag); err != nil {
			fmt.Fprintf(os.Stderr, "Export failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Exported %d tasks to %s\n", s.Len(), *exportFlag)
		os.Exit(0)
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "Error: tw needs a terminal (use -export for non-interactive use)")
		os.Exit(1)
	}

	w, err := watcher.New(path)
	if err != nil {
		debug.Log("watcher unavailable: %v", err)
		w = nil
	} else if err := w.Start(); err != nil {
		debug.Log("watcher start failed: %v", err)
		w = nil
	}

	m := ui.New(s, path, cfg, w)
	if err := runTUIProgram(m); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadDocument reads the task document. A corrupt document is not
// overwritten silently: the user chooses between backing it up and
// starting fresh, or aborting to fix it by hand.
func loadDocument(path string) (*store.Store, error) {
	s, err := codec.Load(path)
	if err == nil {
		return s, nil
	}

	var corrupt codec.CorruptError
	var unsupported codec.UnsupportedVersionError
	if !errors.As(err, &corrupt) && !errors.As(err, &unsupported) {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	fmt.Fprintf(os.Stderr, "Document %s cannot be read: %v\n", path, err)
	startFresh := false
	prompt := huh.NewConfirm().
		Title("Back up the unreadable document and start fresh?").
		Description("The original is kept next to the document with a .corrupt suffix.").
		Affirmative("Back up and start fresh").
		Negative("Quit").
		Value(&startFresh)
	if perr := prompt.Run(); perr != nil || !startFresh {
		return nil, fmt.Errorf("document unreadable, not modified: %w", err)
	}

	backup, berr := codec.BackupCorrupt(path)
	if berr != nil {
		return nil, fmt.Errorf("back up document: %w", berr)
	}
	fmt.Fprintf(os.Stderr, "Backed up to %s\n", backup)
	return store.New(), nil
}

func runTUIProgram(m ui.Model) error {
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithoutSignalHandler(),
	)

	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM: first signal asks the program
	// to quit (flushing saves), a second one or a timeout kills it.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	// Auto-quit for automated tests: set TW_TUI_AUTOCLOSE_MS.
	if v := os.Getenv("TW_TUI_AUTOCLOSE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
				defer timer.Stop()

				select {
				case <-runDone:
					return
				case <-timer.C:
				}

				p.Quit()

				select {
				case <-runDone:
					return
				case <-time.After(2 * time.Second):
				}

				p.Kill()
			}()
		}
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
		return nil
	}
	return err
}
