// Package roster provides a client-side state container for user-role-store
// assignments.
//
// A State tracks the primary assignment collection plus two derived indices
// (by store, by user), the per-operation request lifecycle, and freshness
// timestamps that tell consumers when a view must be re-fetched. It performs
// no I/O itself: every mutation and query is delegated to an
// assignment.Service (in-memory, Postgres, MongoDB, or the REST client),
// and the container applies the result.
//
//	st, err := roster.NewState(
//	    roster.WithService(memory.New()),
//	)
//	a, err := st.Assign(ctx, &assignment.AssignRequest{
//	    UserID: 1, RoleID: 10, StoreID: "store_123",
//	})
//	rows := st.StoreAssignments("store_123")
package roster

import (
	"github.com/xraph/roster/assignment"
	"github.com/xraph/roster/id"
)

// ID is the primary identifier type for roster entities.
type ID = id.ID

// Prefix identifies the entity type encoded in a TypeID.
type Prefix = id.Prefix

// OpKind names one of the six commands/queries, each with an independent
// request lifecycle.
type OpKind string

const (
	// OpAssign is the single-assignment create command.
	OpAssign OpKind = "assign"

	// OpRemove is the assignment delete command.
	OpRemove OpKind = "remove"

	// OpToggle is the activation-flag flip command.
	OpToggle OpKind = "toggle"

	// OpBulkAssign is the batched create command.
	OpBulkAssign OpKind = "bulk_assign"

	// OpFetchStore is the store-scoped list query.
	OpFetchStore OpKind = "fetch_store"

	// OpFetchUser is the user-scoped list query.
	OpFetchUser OpKind = "fetch_user"
)

// OpKinds lists every operation kind, in a stable order.
func OpKinds() []OpKind {
	return []OpKind{OpAssign, OpRemove, OpToggle, OpBulkAssign, OpFetchStore, OpFetchUser}
}

// Loading is the request lifecycle phase of one operation kind.
type Loading string

const (
	// LoadingIdle means the operation has never been dispatched (or the
	// container was reset).
	LoadingIdle Loading = "idle"

	// LoadingPending means a call is in flight.
	LoadingPending Loading = "pending"

	// LoadingFulfilled means the last call settled successfully.
	LoadingFulfilled Loading = "fulfilled"

	// LoadingRejected means the last call settled with an error.
	LoadingRejected Loading = "rejected"
)

// OperationState is the lifecycle snapshot of one operation kind.
// Err is non-nil only when Loading is LoadingRejected: transitions into
// pending and fulfilled always clear it.
type OperationState struct {
	Loading Loading
	Err     *assignment.Error
}

func (o OperationState) clone() OperationState {
	c := o
	if o.Err != nil {
		e := *o.Err
		c.Err = &e
	}
	return c
}
