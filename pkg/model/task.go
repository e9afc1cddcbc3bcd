// Package model defines the task record shared by the store, codec,
// renderer, and exporters.
package model

import (
	"fmt"
	"strings"
	"time"
)

// ID identifies a task. Ids are allocated from a monotonic counter kept in
// the document header and are never reused. Zero is reserved for "no task"
// (top level when used as a parent reference).
type ID int64

// None is the zero ID, used as the parent of top-level tasks.
const None ID = 0

// Status is the tri-state lifecycle of a task.
type Status string

const (
	StatusTodo    Status = "todo"
	StatusOngoing Status = "ongoing"
	StatusDone    Status = "done"
)

// statusOrder is the cycling order for the next/previous status commands.
var statusOrder = []Status{StatusTodo, StatusOngoing, StatusDone}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusOngoing, StatusDone:
		return true
	}
	return false
}

// Next returns the following status, saturating at done.
func (s Status) Next() Status {
	for i, v := range statusOrder {
		if v == s && i+1 < len(statusOrder) {
			return statusOrder[i+1]
		}
	}
	return s
}

// Prev returns the preceding status, saturating at todo.
func (s Status) Prev() Status {
	for i, v := range statusOrder {
		if v == s && i > 0 {
			return statusOrder[i-1]
		}
	}
	return s
}

// Priority orders tasks by urgency. PriorityNone sorts last.
type Priority string

const (
	PriorityNone   Priority = ""
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityNone, PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Rank returns a sortable weight, higher = more urgent.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// Cycle returns the next priority in none -> low -> medium -> high -> none.
func (p Priority) Cycle() Priority {
	switch p {
	case PriorityNone:
		return PriorityLow
	case PriorityLow:
		return PriorityMedium
	case PriorityMedium:
		return PriorityHigh
	default:
		return PriorityNone
	}
}

// StatusChange is one entry in a task's status history.
type StatusChange struct {
	Status Status    `json:"status"`
	At     time.Time `json:"at"`
}

// Task is a single to-do item, possibly with sub-tasks. Parent/child
// relations are id links; the store owns sibling ordering.
type Task struct {
	ID        ID             `json:"id"`
	ParentID  ID             `json:"parent_id,omitempty"`
	Title     string         `json:"title"`
	Status    Status         `json:"status"`
	Priority  Priority       `json:"priority,omitempty"`
	Due       *time.Time     `json:"due,omitempty"`
	Notes     string         `json:"notes,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	History   []StatusChange `json:"history,omitempty"`
}

// Validate checks the fields that the codec and store both rely on.
func (t *Task) Validate() error {
	if t.ID <= 0 {
		return fmt.Errorf("task id must be positive, got %d", t.ID)
	}
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("task %d has an empty title", t.ID)
	}
	if !t.Status.Valid() {
		return fmt.Errorf("task %d has unknown status %q", t.ID, t.Status)
	}
	if !t.Priority.Valid() {
		return fmt.Errorf("task %d has unknown priority %q", t.ID, t.Priority)
	}
	return nil
}

// Clone returns a deep copy of the task.
func (t *Task) Clone() *Task {
	c := *t
	if t.Due != nil {
		due := *t.Due
		c.Due = &due
	}
	if len(t.History) > 0 {
		c.History = make([]StatusChange, len(t.History))
		copy(c.History, t.History)
	}
	return &c
}

// Equal reports structural equality, ignoring monotonic clock readings
// carried inside time.Time values.
func (t *Task) Equal(o *Task) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.ID != o.ID || t.ParentID != o.ParentID || t.Title != o.Title ||
		t.Status != o.Status || t.Priority != o.Priority || t.Notes != o.Notes {
		return false
	}
	if !t.CreatedAt.Equal(o.CreatedAt) {
		return false
	}
	if (t.Due == nil) != (o.Due == nil) {
		return false
	}
	if t.Due != nil && !t.Due.Equal(*o.Due) {
		return false
	}
	if len(t.History) != len(o.History) {
		return false
	}
	for i := range t.History {
		if t.History[i].Status != o.History[i].Status || !t.History[i].At.Equal(o.History[i].At) {
			return false
		}
	}
	return true
}
