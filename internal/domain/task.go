package domain

import (
	"fmt"
	"time"
)

// Action is the kind of work an indexing task carries.
type Action string

const (
	// ActionIndex fully (re)writes a document from its source property.
	ActionIndex Action = "index"
	// ActionUpdate partially updates engagement fields of a document.
	ActionUpdate Action = "update"
	// ActionDelete removes a document from the index.
	ActionDelete Action = "delete"
)

// IsValid reports whether the action is one of the known kinds.
func (a Action) IsValid() bool {
	switch a {
	case ActionIndex, ActionUpdate, ActionDelete:
		return true
	}
	return false
}

// Task is a unit of indexing work for a single property.
// Delivery is at-least-once; application is idempotent.
type Task struct {
	EntityID   string
	Action     Action
	EnqueuedAt time.Time
	Attempts   int
}

// NewTask validates and creates an indexing task.
func NewTask(entityID string, action Action, now time.Time) (Task, error) {
	if entityID == "" {
		return Task{}, fmt.Errorf("entity id is required")
	}
	if !action.IsValid() {
		return Task{}, fmt.Errorf("invalid task action %q", action)
	}
	return Task{EntityID: entityID, Action: action, EnqueuedAt: now}, nil
}
