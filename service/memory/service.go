// Package memory provides an in-memory implementation of the Roster
// assignment service. It is intended for testing and development.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/xraph/roster"
	"github.com/xraph/roster/assignment"
	"github.com/xraph/roster/id"
)

// Compile-time interface check.
var _ assignment.Service = (*Service)(nil)

// Service is a thread-safe in-memory assignment service.
type Service struct {
	mu          sync.RWMutex
	assignments map[string]*assignment.Assignment
}

// New creates a new in-memory assignment service.
func New() *Service {
	return &Service{
		assignments: make(map[string]*assignment.Assignment),
	}
}

// Migrate is a no-op for the memory service.
func (s *Service) Migrate(_ context.Context) error { return nil }

// Ping is a no-op for the memory service.
func (s *Service) Ping(_ context.Context) error { return nil }

// Close is a no-op for the memory service.
func (s *Service) Close() error { return nil }

func (s *Service) Assign(ctx context.Context, req *assignment.AssignRequest) (*assignment.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findByTripleLocked(req.UserID, req.RoleID, req.StoreID) != nil {
		return nil, fmt.Errorf("user %d role %d store %q: %w", req.UserID, req.RoleID, req.StoreID, roster.ErrDuplicateAssignment)
	}

	a := s.mintLocked(req, time.Now(), roster.ActorFromContext(ctx))
	s.assignments[a.ID.String()] = a
	return copyAssignment(a), nil
}

func (s *Service) Remove(_ context.Context, req *assignment.RemoveRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.resolveLocked(req.ID, req.UserID, req.RoleID, req.StoreID)
	if err != nil {
		return err
	}
	delete(s.assignments, a.ID.String())
	return nil
}

func (s *Service) ToggleStatus(_ context.Context, req *assignment.ToggleRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.resolveLocked(req.ID, req.UserID, req.RoleID, req.StoreID)
	if err != nil {
		return err
	}
	a.IsActive = !a.IsActive
	a.UpdatedAt = time.Now()
	return nil
}

// BulkAssign validates the whole batch before applying any item, so a
// conflicting item rejects the batch without partial writes.
func (s *Service) BulkAssign(ctx context.Context, req *assignment.BulkAssignRequest) ([]*assignment.Assignment, error) {
	if len(req.Items) == 0 {
		return nil, roster.ErrEmptyBulkRequest
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(req.Items))
	for i := range req.Items {
		it := &req.Items[i]
		key := tripleKey(it.UserID, it.RoleID, it.StoreID)
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("user %d role %d store %q: %w", it.UserID, it.RoleID, it.StoreID, roster.ErrDuplicateAssignment)
		}
		seen[key] = struct{}{}
		if s.findByTripleLocked(it.UserID, it.RoleID, it.StoreID) != nil {
			return nil, fmt.Errorf("user %d role %d store %q: %w", it.UserID, it.RoleID, it.StoreID, roster.ErrDuplicateAssignment)
		}
	}

	now := time.Now()
	actor := roster.ActorFromContext(ctx)
	out := make([]*assignment.Assignment, 0, len(req.Items))
	for i := range req.Items {
		a := s.mintLocked(&req.Items[i], now, actor)
		s.assignments[a.ID.String()] = a
		out = append(out, copyAssignment(a))
	}
	return out, nil
}

func (s *Service) ListByStore(_ context.Context, storeID string, params *assignment.ListParams) ([]*assignment.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*assignment.Assignment, 0)
	for _, a := range s.assignments {
		if a.StoreID != storeID {
			continue
		}
		if params != nil && params.IsActive != nil && a.IsActive != *params.IsActive {
			continue
		}
		result = append(result, copyAssignment(a))
	}
	sortByCreated(result)
	return applyPagination(result, params), nil
}

func (s *Service) ListByUser(_ context.Context, userID int64, params *assignment.ListParams) ([]*assignment.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*assignment.Assignment, 0)
	for _, a := range s.assignments {
		if a.UserID != userID {
			continue
		}
		if params != nil && params.IsActive != nil && a.IsActive != *params.IsActive {
			continue
		}
		result = append(result, copyAssignment(a))
	}
	sortByCreated(result)
	return applyPagination(result, params), nil
}

// ──────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────

func (s *Service) mintLocked(req *assignment.AssignRequest, now time.Time, actor string) *assignment.Assignment {
	return &assignment.Assignment{
		ID:        id.NewAssignmentID(),
		UserID:    req.UserID,
		RoleID:    req.RoleID,
		StoreID:   req.StoreID,
		IsActive:  true,
		GrantedBy: actor,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// resolveLocked finds the target of a remove/toggle: by ID when given,
// falling back to the (user, role, store) triple.
func (s *Service) resolveLocked(assID id.AssignmentID, userID, roleID int64, storeID string) (*assignment.Assignment, error) {
	if !assID.IsNil() {
		a, ok := s.assignments[assID.String()]
		if !ok {
			return nil, fmt.Errorf("assignment %s: %w", assID, roster.ErrAssignmentNotFound)
		}
		return a, nil
	}
	if a := s.findByTripleLocked(userID, roleID, storeID); a != nil {
		return a, nil
	}
	return nil, fmt.Errorf("user %d role %d store %q: %w", userID, roleID, storeID, roster.ErrAssignmentNotFound)
}

func (s *Service) findByTripleLocked(userID, roleID int64, storeID string) *assignment.Assignment {
	for _, a := range s.assignments {
		if a.UserID == userID && a.RoleID == roleID && a.StoreID == storeID {
			return a
		}
	}
	return nil
}

func tripleKey(userID, roleID int64, storeID string) string {
	return fmt.Sprintf("%d/%d/%s", userID, roleID, storeID)
}

func copyAssignment(a *assignment.Assignment) *assignment.Assignment {
	c := *a
	return &c
}

// sortByCreated orders oldest first, with the ID as a tie-breaker so
// batches created in the same instant list deterministically.
func sortByCreated(items []*assignment.Assignment) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID.String() < items[j].ID.String()
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
}

func applyPagination(items []*assignment.Assignment, p *assignment.ListParams) []*assignment.Assignment {
	if p == nil {
		return items
	}
	if p.Offset > 0 && p.Offset < len(items) {
		items = items[p.Offset:]
	} else if p.Offset >= len(items) && p.Offset > 0 {
		return nil
	}
	if p.Limit > 0 && p.Limit < len(items) {
		items = items[:p.Limit]
	}
	return items
}
