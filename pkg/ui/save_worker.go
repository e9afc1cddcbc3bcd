package ui

import (
	"fmt"
	"time"

	"github.com/vanderheijden86/taskweave/pkg/codec"
	"github.com/vanderheijden86/taskweave/pkg/debug"
	"github.com/vanderheijden86/taskweave/pkg/store"
)

// saveRequest carries a snapshot to persist. The revision tags the store
// state the snapshot was taken from so the UI can tell which saves are
// already stale when the result arrives.
type saveRequest struct {
	snap     *store.Store
	revision uint64
}

// saveWorker serializes document writes on a single goroutine. Requests are
// debounced and coalesced: while a write is in flight or the debounce timer
// is pending, a newer request replaces any queued one, so at most one write
// runs at a time and intermediate states are skipped.
type saveWorker struct {
	path     string
	debounce time.Duration

	requests chan saveRequest
	flush    chan chan saveResultMsg
	stop     chan struct{}
	done     chan struct{}

	// results is buffered so the worker never blocks on a slow UI.
	results chan saveResultMsg
}

func newSaveWorker(path string, debounce time.Duration) *saveWorker {
	w := &saveWorker{
		path:     path,
		debounce: debounce,
		requests: make(chan saveRequest, 1),
		flush:    make(chan chan saveResultMsg),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
		results:  make(chan saveResultMsg, 8),
	}
	go w.run()
	return w
}

// Request schedules a save of snap. A pending unsaved request is replaced;
// the latest snapshot always wins.
func (w *saveWorker) Request(snap *store.Store, revision uint64) {
	req := saveRequest{snap: snap, revision: revision}
	for {
		select {
		case w.requests <- req:
			return
		default:
		}
		// Channel full: drop the stale queued request and retry.
		select {
		case <-w.requests:
		default:
		}
	}
}

// Flush writes any pending request synchronously and returns the result.
// A zero-revision result means there was nothing to write.
func (w *saveWorker) Flush() saveResultMsg {
	reply := make(chan saveResultMsg, 1)
	select {
	case w.flush <- reply:
		return <-reply
	case <-w.done:
		return saveResultMsg{}
	}
}

// Stop terminates the worker without flushing.
func (w *saveWorker) Stop() {
	select {
	case <-w.stop:
	default:
		close(w.stop)
	}
	<-w.done
}

// Results delivers one message per completed save.
func (w *saveWorker) Results() <-chan saveResultMsg {
	return w.results
}

func (w *saveWorker) run() {
	defer close(w.done)

	var (
		pending    *saveRequest
		timer      *time.Timer
		timerFired <-chan time.Time
	)
	stopTimer := func() {
		if timer != nil {
			timer.Stop()
			timer = nil
			timerFired = nil
		}
	}

	for {
		select {
		case req := <-w.requests:
			pending = &req
			stopTimer()
			timer = time.NewTimer(w.debounce)
			timerFired = timer.C

		case <-timerFired:
			stopTimer()
			if pending != nil {
				w.write(*pending)
				pending = nil
			}

		case reply := <-w.flush:
			stopTimer()
			// Absorb a request racing with the flush.
			select {
			case req := <-w.requests:
				pending = &req
			default:
			}
			var res saveResultMsg
			if pending != nil {
				res = w.write(*pending)
				pending = nil
			}
			reply <- res

		case <-w.stop:
			stopTimer()
			return
		}
	}
}

func (w *saveWorker) write(req saveRequest) saveResultMsg {
	start := time.Now()
	hash, err := codec.Save(w.path, req.snap)
	debug.LogTiming(fmt.Sprintf("save revision=%d", req.revision), time.Since(start))
	res := saveResultMsg{revision: req.revision, hash: hash, err: err}
	select {
	case w.results <- res:
	default:
		// UI is not draining; drop rather than deadlock the worker.
	}
	return res
}
