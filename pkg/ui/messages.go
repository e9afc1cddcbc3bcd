package ui

// Messages delivered to the Bubble Tea update loop by background goroutines.

// saveResultMsg reports the outcome of one background save.
type saveResultMsg struct {
	revision uint64
	hash     string
	err      error
}

// saveRetryMsg re-schedules persistence after a failed save, so committed
// mutations do not sit memory-only waiting for the next user action.
type saveRetryMsg struct{}

// fileChangedMsg signals that the document changed on disk.
type fileChangedMsg struct{}

// watcherClosedMsg signals that the watcher channel closed (watcher stopped).
type watcherClosedMsg struct{}

// statusClearMsg clears a transient status-bar message if it is still the
// one that scheduled it.
type statusClearMsg struct {
	seq uint64
}
