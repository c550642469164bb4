package assignment

import "context"

// Service defines the assignment operations the state container depends on.
// Implementations own persistence and transport; the container only reacts
// to their results.
type Service interface {
	// Assign creates one assignment and returns the persisted record
	// (with service-minted ID and timestamps).
	Assign(ctx context.Context, req *AssignRequest) (*Assignment, error)

	// Remove deletes an assignment. The response carries no entity, so
	// callers cannot learn the removed record's final state from it.
	Remove(ctx context.Context, req *RemoveRequest) error

	// ToggleStatus flips an assignment's activation flag. Like Remove,
	// the response carries no entity.
	ToggleStatus(ctx context.Context, req *ToggleRequest) error

	// BulkAssign creates many assignments atomically and returns all
	// created records. A failure creates nothing.
	BulkAssign(ctx context.Context, req *BulkAssignRequest) ([]*Assignment, error)

	// ListByStore returns the assignments scoped to one store.
	ListByStore(ctx context.Context, storeID string, params *ListParams) ([]*Assignment, error)

	// ListByUser returns the assignments scoped to one user.
	ListByUser(ctx context.Context, userID int64, params *ListParams) ([]*Assignment, error)
}
