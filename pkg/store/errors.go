package store

import (
	"fmt"

	"github.com/vanderheijden86/taskweave/pkg/model"
)

// NotFoundError reports a mutation against an id that is not in the store.
type NotFoundError struct {
	ID model.ID
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("task %d not found", e.ID)
}

// InvalidParentError reports a create/reparent against a missing parent.
type InvalidParentError struct {
	Parent model.ID
}

func (e InvalidParentError) Error() string {
	return fmt.Sprintf("parent task %d does not exist", e.Parent)
}

// CycleError reports a reparent that would make a task its own ancestor.
type CycleError struct {
	ID     model.ID
	Parent model.ID
}

func (e CycleError) Error() string {
	return fmt.Sprintf("cannot move task %d under %d: would create a cycle", e.ID, e.Parent)
}

// InvalidInputError reports a rejected field value, e.g. an empty title.
type InvalidInputError struct {
	Reason string
}

func (e InvalidInputError) Error() string {
	return e.Reason
}

// DuplicateIDError reports a duplicate id while rebuilding from a document.
type DuplicateIDError struct {
	ID model.ID
}

func (e DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate task id %d", e.ID)
}
