// Package plugin defines the plugin system for Roster.
// Plugins are notified of lifecycle events (assignment created, status
// toggled, collection invalidated, etc.) and can react, for example with
// logging, metrics, or cache warming.
//
// Each lifecycle hook is a separate interface so plugins opt in only
// to the events they care about.
package plugin

import (
	"context"

	"github.com/xraph/roster/assignment"
)

// Plugin is the base interface all plugins must implement.
type Plugin interface {
	// Name returns a unique human-readable name for the plugin.
	Name() string
}

// ──────────────────────────────────────────────────
// Assignment lifecycle hooks
// ──────────────────────────────────────────────────

// AssignmentCreated is called after a single assignment is created and
// applied to the container.
type AssignmentCreated interface {
	OnAssignmentCreated(ctx context.Context, a *assignment.Assignment) error
}

// AssignmentsBulkCreated is called after a bulk assign batch is created
// and applied to the container.
type AssignmentsBulkCreated interface {
	OnAssignmentsBulkCreated(ctx context.Context, batch []*assignment.Assignment) error
}

// AssignmentRemoved is called after an assignment is removed.
type AssignmentRemoved interface {
	OnAssignmentRemoved(ctx context.Context, req *assignment.RemoveRequest) error
}

// StatusToggled is called after an assignment's activation flag is flipped.
type StatusToggled interface {
	OnStatusToggled(ctx context.Context, req *assignment.ToggleRequest) error
}

// ──────────────────────────────────────────────────
// Container lifecycle hooks
// ──────────────────────────────────────────────────

// CollectionInvalidated is called when the container marks its aggregate
// collection as needing a re-fetch.
type CollectionInvalidated interface {
	OnCollectionInvalidated(ctx context.Context) error
}

// OperationFailed is called when any operation settles rejected.
// The op parameter is the operation kind (passed as string to avoid import cycle).
type OperationFailed interface {
	OnOperationFailed(ctx context.Context, op string, e *assignment.Error) error
}
