package plugin

import (
	"context"
	"log/slog"

	"github.com/xraph/roster/assignment"
)

// Named entry types pair a hook with the plugin name for logging.

type assignmentCreatedEntry struct {
	name string
	hook AssignmentCreated
}
type assignmentsBulkCreatedEntry struct {
	name string
	hook AssignmentsBulkCreated
}
type assignmentRemovedEntry struct {
	name string
	hook AssignmentRemoved
}
type statusToggledEntry struct {
	name string
	hook StatusToggled
}
type collectionInvalidatedEntry struct {
	name string
	hook CollectionInvalidated
}
type operationFailedEntry struct {
	name string
	hook OperationFailed
}

// Registry holds registered plugins and dispatches lifecycle events.
// It type-caches plugins at registration time so emit calls iterate
// only over plugins implementing the relevant hook.
type Registry struct {
	plugins []Plugin
	logger  *slog.Logger

	assignmentCreated      []assignmentCreatedEntry
	assignmentsBulkCreated []assignmentsBulkCreatedEntry
	assignmentRemoved      []assignmentRemovedEntry
	statusToggled          []statusToggledEntry
	collectionInvalidated  []collectionInvalidatedEntry
	operationFailed        []operationFailedEntry
}

// NewRegistry creates a plugin registry with the given logger.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{logger: logger}
}

// Register adds a plugin and type-asserts it into all applicable
// hook caches. Plugins are notified in registration order.
func (r *Registry) Register(p Plugin) {
	r.plugins = append(r.plugins, p)
	name := p.Name()

	if h, ok := p.(AssignmentCreated); ok {
		r.assignmentCreated = append(r.assignmentCreated, assignmentCreatedEntry{name, h})
	}
	if h, ok := p.(AssignmentsBulkCreated); ok {
		r.assignmentsBulkCreated = append(r.assignmentsBulkCreated, assignmentsBulkCreatedEntry{name, h})
	}
	if h, ok := p.(AssignmentRemoved); ok {
		r.assignmentRemoved = append(r.assignmentRemoved, assignmentRemovedEntry{name, h})
	}
	if h, ok := p.(StatusToggled); ok {
		r.statusToggled = append(r.statusToggled, statusToggledEntry{name, h})
	}
	if h, ok := p.(CollectionInvalidated); ok {
		r.collectionInvalidated = append(r.collectionInvalidated, collectionInvalidatedEntry{name, h})
	}
	if h, ok := p.(OperationFailed); ok {
		r.operationFailed = append(r.operationFailed, operationFailedEntry{name, h})
	}
}

// Plugins returns all registered plugins.
func (r *Registry) Plugins() []Plugin { return r.plugins }

// ──────────────────────────────────────────────────
// Assignment event emitters
// ──────────────────────────────────────────────────

// EmitAssignmentCreated notifies all plugins that implement AssignmentCreated.
func (r *Registry) EmitAssignmentCreated(ctx context.Context, a *assignment.Assignment) {
	for _, e := range r.assignmentCreated {
		if err := e.hook.OnAssignmentCreated(ctx, a); err != nil {
			r.logHookError("OnAssignmentCreated", e.name, err)
		}
	}
}

// EmitAssignmentsBulkCreated notifies all plugins that implement AssignmentsBulkCreated.
func (r *Registry) EmitAssignmentsBulkCreated(ctx context.Context, batch []*assignment.Assignment) {
	for _, e := range r.assignmentsBulkCreated {
		if err := e.hook.OnAssignmentsBulkCreated(ctx, batch); err != nil {
			r.logHookError("OnAssignmentsBulkCreated", e.name, err)
		}
	}
}

// EmitAssignmentRemoved notifies all plugins that implement AssignmentRemoved.
func (r *Registry) EmitAssignmentRemoved(ctx context.Context, req *assignment.RemoveRequest) {
	for _, e := range r.assignmentRemoved {
		if err := e.hook.OnAssignmentRemoved(ctx, req); err != nil {
			r.logHookError("OnAssignmentRemoved", e.name, err)
		}
	}
}

// EmitStatusToggled notifies all plugins that implement StatusToggled.
func (r *Registry) EmitStatusToggled(ctx context.Context, req *assignment.ToggleRequest) {
	for _, e := range r.statusToggled {
		if err := e.hook.OnStatusToggled(ctx, req); err != nil {
			r.logHookError("OnStatusToggled", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Container event emitters
// ──────────────────────────────────────────────────

// EmitCollectionInvalidated notifies all plugins that implement CollectionInvalidated.
func (r *Registry) EmitCollectionInvalidated(ctx context.Context) {
	for _, e := range r.collectionInvalidated {
		if err := e.hook.OnCollectionInvalidated(ctx); err != nil {
			r.logHookError("OnCollectionInvalidated", e.name, err)
		}
	}
}

// EmitOperationFailed notifies all plugins that implement OperationFailed.
func (r *Registry) EmitOperationFailed(ctx context.Context, op string, ae *assignment.Error) {
	for _, e := range r.operationFailed {
		if err := e.hook.OnOperationFailed(ctx, op, ae); err != nil {
			r.logHookError("OnOperationFailed", e.name, err)
		}
	}
}

// logHookError logs a warning when a lifecycle hook returns an error.
// Errors from hooks are never propagated; they must not block the pipeline.
func (r *Registry) logHookError(hook, pluginName string, err error) {
	r.logger.Warn("plugin hook error",
		slog.String("hook", hook),
		slog.String("plugin", pluginName),
		slog.String("error", err.Error()),
	)
}
