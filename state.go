package roster

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/xraph/roster/assignment"
	"github.com/xraph/roster/plugin"
)

// State is the assignment state container. It owns the primary assignment
// collection, the store- and user-keyed indices derived from it, per-scope
// freshness timestamps, and one lifecycle slot per operation kind.
//
// Commands are safe for concurrent use. The pending transition happens
// before the service call and the completion is applied under a single
// lock acquisition, so a command is atomic from any reader's point of
// view: it either fully applies (collection, both indices, timestamps)
// or not at all. Concurrent commands of the same kind are neither queued
// nor deduplicated; the last one to settle wins.
type State struct {
	svc     assignment.Service
	plugins *plugin.Registry
	logger  *slog.Logger
	config  Config
	now     func() time.Time

	mu           sync.Mutex
	assignments  []*assignment.Assignment
	byStore      map[string][]*assignment.Assignment
	byUser       map[int64][]*assignment.Assignment
	lastUpdated  *time.Time
	storeUpdated map[string]time.Time
	userUpdated  map[int64]time.Time
	ops          map[OpKind]OperationState
}

// NewState creates a new assignment state container with the given options.
func NewState(opts ...Option) (*State, error) {
	s := &State{
		logger: slog.Default(),
		config: DefaultConfig(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.svc == nil {
		return nil, errors.New("roster: assignment service is required")
	}
	s.initLocked()
	return s, nil
}

// initLocked (re)creates the empty initial lifecycle state.
// Callers must hold the lock, except during construction.
func (s *State) initLocked() {
	s.assignments = nil
	s.byStore = make(map[string][]*assignment.Assignment)
	s.byUser = make(map[int64][]*assignment.Assignment)
	s.lastUpdated = nil
	s.storeUpdated = make(map[string]time.Time)
	s.userUpdated = make(map[int64]time.Time)
	s.ops = make(map[OpKind]OperationState, 6)
	for _, kind := range OpKinds() {
		s.ops[kind] = OperationState{Loading: LoadingIdle}
	}
}

// Service returns the underlying assignment service.
func (s *State) Service() assignment.Service { return s.svc }

// ──────────────────────────────────────────────────
// Commands
// ──────────────────────────────────────────────────

// Assign creates one assignment through the service and, on success,
// appends it to the primary collection and both indices and stamps the
// aggregate, store, and user freshness timestamps.
func (s *State) Assign(ctx context.Context, req *assignment.AssignRequest) (*assignment.Assignment, error) {
	s.begin(OpAssign)

	created, err := s.svc.Assign(ctx, req)
	if err != nil {
		s.reject(ctx, OpAssign, "failed to assign user role", err)
		return nil, err
	}

	s.mu.Lock()
	now := s.now()
	s.appendLocked(created, now)
	s.lastUpdated = &now
	s.ops[OpAssign] = OperationState{Loading: LoadingFulfilled}
	s.mu.Unlock()

	if s.plugins != nil {
		s.plugins.EmitAssignmentCreated(ctx, created.Clone())
	}
	return created, nil
}

// BulkAssign creates many assignments as one unit. All returned records
// are applied in one batch and every touched scope shares a single
// freshness timestamp, so staleness checks see the batch as one update.
// A service failure applies nothing.
func (s *State) BulkAssign(ctx context.Context, req *assignment.BulkAssignRequest) ([]*assignment.Assignment, error) {
	s.begin(OpBulkAssign)

	created, err := s.svc.BulkAssign(ctx, req)
	if err != nil {
		s.reject(ctx, OpBulkAssign, "failed to bulk assign user roles", err)
		return nil, err
	}

	s.mu.Lock()
	now := s.now()
	for _, a := range created {
		s.appendLocked(a, now)
	}
	s.lastUpdated = &now
	s.ops[OpBulkAssign] = OperationState{Loading: LoadingFulfilled}
	s.mu.Unlock()

	if s.plugins != nil {
		s.plugins.EmitAssignmentsBulkCreated(ctx, cloneAll(created))
	}
	return created, nil
}

// Remove deletes an assignment through the service. The service response
// carries no entity, so the container cannot patch its views; it nulls
// the aggregate freshness timestamp instead. Consumers must re-fetch
// before trusting the collection again. Stale records stay visible until
// then.
func (s *State) Remove(ctx context.Context, req *assignment.RemoveRequest) error {
	s.begin(OpRemove)

	if err := s.svc.Remove(ctx, req); err != nil {
		s.reject(ctx, OpRemove, "failed to remove user role", err)
		return err
	}

	s.mu.Lock()
	s.lastUpdated = nil
	s.ops[OpRemove] = OperationState{Loading: LoadingFulfilled}
	s.mu.Unlock()

	if s.plugins != nil {
		s.plugins.EmitAssignmentRemoved(ctx, req)
		s.plugins.EmitCollectionInvalidated(ctx)
	}
	return nil
}

// ToggleStatus flips an assignment's activation flag through the service.
// Same partial-information handling as Remove: the aggregate freshness
// timestamp is nulled, existing records are left untouched.
func (s *State) ToggleStatus(ctx context.Context, req *assignment.ToggleRequest) error {
	s.begin(OpToggle)

	if err := s.svc.ToggleStatus(ctx, req); err != nil {
		s.reject(ctx, OpToggle, "failed to toggle user role status", err)
		return err
	}

	s.mu.Lock()
	s.lastUpdated = nil
	s.ops[OpToggle] = OperationState{Loading: LoadingFulfilled}
	s.mu.Unlock()

	if s.plugins != nil {
		s.plugins.EmitStatusToggled(ctx, req)
		s.plugins.EmitCollectionInvalidated(ctx)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Queries
// ──────────────────────────────────────────────────

// FetchStoreAssignments fetches the authoritative list for one store and
// replaces that store's index bucket with it. The bucket is keyed by the
// requested store ID, never by the response contents, so an empty result
// still replaces the bucket and stamps its timestamp. The primary
// collection and the user index are not touched.
func (s *State) FetchStoreAssignments(ctx context.Context, storeID string, params *assignment.ListParams) ([]*assignment.Assignment, error) {
	s.begin(OpFetchStore)

	list, err := s.svc.ListByStore(ctx, storeID, params)
	if err != nil {
		s.reject(ctx, OpFetchStore, "failed to fetch store assignments", err)
		return nil, err
	}

	s.mu.Lock()
	s.byStore[storeID] = cloneAll(list)
	s.storeUpdated[storeID] = s.now()
	s.ops[OpFetchStore] = OperationState{Loading: LoadingFulfilled}
	s.mu.Unlock()

	return list, nil
}

// FetchUserAssignments is the user-scoped counterpart of
// FetchStoreAssignments.
func (s *State) FetchUserAssignments(ctx context.Context, userID int64, params *assignment.ListParams) ([]*assignment.Assignment, error) {
	s.begin(OpFetchUser)

	list, err := s.svc.ListByUser(ctx, userID, params)
	if err != nil {
		s.reject(ctx, OpFetchUser, "failed to fetch user assignments", err)
		return nil, err
	}

	s.mu.Lock()
	s.byUser[userID] = cloneAll(list)
	s.userUpdated[userID] = s.now()
	s.ops[OpFetchUser] = OperationState{Loading: LoadingFulfilled}
	s.mu.Unlock()

	return list, nil
}

// ──────────────────────────────────────────────────
// Selectors
// ──────────────────────────────────────────────────

// AllAssignments returns a copy of the primary collection.
func (s *State) AllAssignments() []*assignment.Assignment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAll(s.assignments)
}

// StoreAssignments returns a copy of one store's index bucket.
// An absent bucket yields an empty result.
func (s *State) StoreAssignments(storeID string) []*assignment.Assignment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAll(s.byStore[storeID])
}

// UserAssignments returns a copy of one user's index bucket.
// An absent bucket yields an empty result.
func (s *State) UserAssignments(userID int64) []*assignment.Assignment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAll(s.byUser[userID])
}

// Operation returns the lifecycle snapshot for one operation kind.
// Kinds never dispatched report LoadingIdle.
func (s *State) Operation(kind OpKind) OperationState {
	s.mu.Lock()
	defer s.mu.Unlock()
	op, ok := s.ops[kind]
	if !ok {
		return OperationState{Loading: LoadingIdle}
	}
	return op.clone()
}

// ErrorFor returns the last recorded error for one operation kind, or nil.
func (s *State) ErrorFor(kind OpKind) *assignment.Error {
	return s.Operation(kind).Err
}

// AnyPending reports whether any operation kind has a call in flight.
func (s *State) AnyPending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, op := range s.ops {
		if op.Loading == LoadingPending {
			return true
		}
	}
	return false
}

// LastUpdated returns the aggregate freshness timestamp. ok is false when
// the collection has been invalidated (or never populated) and must be
// re-fetched before it can be trusted.
func (s *State) LastUpdated() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastUpdated == nil {
		return time.Time{}, false
	}
	return *s.lastUpdated, true
}

// StoreUpdatedAt returns the freshness timestamp of one store bucket.
func (s *State) StoreUpdatedAt(storeID string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.storeUpdated[storeID]
	return t, ok
}

// UserUpdatedAt returns the freshness timestamp of one user bucket.
func (s *State) UserUpdatedAt(userID int64) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.userUpdated[userID]
	return t, ok
}

// Stale reports whether the aggregate collection must be re-fetched:
// its timestamp is absent, or older than Config.FreshnessTTL (when set).
func (s *State) Stale() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastUpdated == nil {
		return true
	}
	if s.config.FreshnessTTL > 0 && s.now().Sub(*s.lastUpdated) > s.config.FreshnessTTL {
		return true
	}
	return false
}

// ──────────────────────────────────────────────────
// Clears
// ──────────────────────────────────────────────────

// ClearAssignments empties the primary collection, both indices, and all
// freshness timestamps. Operation lifecycle state is kept.
func (s *State) ClearAssignments() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assignments = nil
	s.byStore = make(map[string][]*assignment.Assignment)
	s.byUser = make(map[int64][]*assignment.Assignment)
	s.lastUpdated = nil
	s.storeUpdated = make(map[string]time.Time)
	s.userUpdated = make(map[int64]time.Time)
}

// ClearStoreAssignments evicts one store's index bucket and its timestamp.
// This is a cache-eviction hint, not a consistency operation: records for
// that store stay reachable through the primary collection and the user
// index until the next fetch.
func (s *State) ClearStoreAssignments(storeID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byStore, storeID)
	delete(s.storeUpdated, storeID)
}

// ClearUserAssignments evicts one user's index bucket and its timestamp.
// Same caveats as ClearStoreAssignments.
func (s *State) ClearUserAssignments(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byUser, userID)
	delete(s.userUpdated, userID)
}

// Reset restores the exact initial empty lifecycle state, discarding all
// collections, timestamps, operation states, and errors.
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initLocked()
}

// ──────────────────────────────────────────────────
// Internals
// ──────────────────────────────────────────────────

// begin moves one operation kind to pending and clears its error.
func (s *State) begin(kind OpKind) {
	s.mu.Lock()
	s.ops[kind] = OperationState{Loading: LoadingPending}
	s.mu.Unlock()
}

// reject records a normalized error against one operation kind.
func (s *State) reject(ctx context.Context, kind OpKind, fallback string, err error) {
	e := s.normalize(fallback, err)
	s.mu.Lock()
	s.ops[kind] = OperationState{Loading: LoadingRejected, Err: e}
	s.mu.Unlock()

	s.logger.Debug("roster: operation rejected", "op", string(kind), "err", err)
	if s.plugins != nil {
		ec := *e
		s.plugins.EmitOperationFailed(ctx, string(kind), &ec)
	}
}

// normalize converts a service failure to wire form. Errors the service
// already reported in wire form pass through; anything unexpected becomes
// a synthetic message naming the failed operation.
func (s *State) normalize(fallback string, err error) *assignment.Error {
	var ae *assignment.Error
	if errors.As(err, &ae) {
		c := *ae
		return &c
	}
	return assignment.NewError(fallback, s.now())
}

// appendLocked adds one record to the primary collection and both index
// buckets (created lazily) and stamps the two scope timestamps.
// Callers must hold the lock.
func (s *State) appendLocked(a *assignment.Assignment, now time.Time) {
	c := a.Clone()
	s.assignments = append(s.assignments, c)
	s.byStore[c.StoreID] = append(s.byStore[c.StoreID], c)
	s.byUser[c.UserID] = append(s.byUser[c.UserID], c)
	s.storeUpdated[c.StoreID] = now
	s.userUpdated[c.UserID] = now
}

func cloneAll(in []*assignment.Assignment) []*assignment.Assignment {
	if len(in) == 0 {
		return nil
	}
	out := make([]*assignment.Assignment, len(in))
	for i, a := range in {
		out[i] = a.Clone()
	}
	return out
}
