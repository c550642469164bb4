// Package postgres provides a PostgreSQL implementation of the Roster
// assignment service using grove ORM with Go-based migrations.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/pgdriver"
	"github.com/xraph/grove/migrate"

	"github.com/xraph/roster"
	"github.com/xraph/roster/assignment"
	"github.com/xraph/roster/id"
)

// Compile-time interface check.
var _ assignment.Service = (*Service)(nil)

// Service is a PostgreSQL implementation of the assignment service.
type Service struct {
	db   *grove.DB
	pgdb *pgdriver.PgDB
}

// New creates a new PostgreSQL assignment service.
func New(db *grove.DB) *Service {
	return &Service{
		db:   db,
		pgdb: pgdriver.Unwrap(db),
	}
}

// Migrate runs programmatic migrations via the grove orchestrator.
func (s *Service) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.pgdb)
	if err != nil {
		return fmt.Errorf("roster: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("roster: migration failed: %w", err)
	}
	return nil
}

// Ping verifies the database connection.
func (s *Service) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Service) Close() error {
	return s.db.Close()
}

func (s *Service) Assign(ctx context.Context, req *assignment.AssignRequest) (*assignment.Assignment, error) {
	now := time.Now().UTC()
	a := &assignment.Assignment{
		ID:        id.NewAssignmentID(),
		UserID:    req.UserID,
		RoleID:    req.RoleID,
		StoreID:   req.StoreID,
		IsActive:  true,
		GrantedBy: roster.ActorFromContext(ctx),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.pgdb.NewInsert(assignmentToModel(a)).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("user %d role %d store %q: %w", req.UserID, req.RoleID, req.StoreID, roster.ErrDuplicateAssignment)
		}
		return nil, fmt.Errorf("roster: create assignment: %w", err)
	}
	return a, nil
}

func (s *Service) Remove(ctx context.Context, req *assignment.RemoveRequest) error {
	m, err := s.resolve(ctx, req.ID, req.UserID, req.RoleID, req.StoreID)
	if err != nil {
		return err
	}
	if _, err := s.pgdb.NewDelete((*assignmentModel)(nil)).Where("id = ?", m.ID).Exec(ctx); err != nil {
		return fmt.Errorf("roster: delete assignment: %w", err)
	}
	return nil
}

func (s *Service) ToggleStatus(ctx context.Context, req *assignment.ToggleRequest) error {
	m, err := s.resolve(ctx, req.ID, req.UserID, req.RoleID, req.StoreID)
	if err != nil {
		return err
	}
	m.IsActive = !m.IsActive
	m.UpdatedAt = time.Now().UTC()
	if _, err := s.pgdb.NewUpdate(m).WherePK().Exec(ctx); err != nil {
		return fmt.Errorf("roster: update assignment: %w", err)
	}
	return nil
}

// BulkAssign inserts the whole batch in one transaction. The unique
// (user_id, role_id, store_id) constraint rejects conflicts with stored
// rows and duplicates within the batch alike, rolling everything back.
func (s *Service) BulkAssign(ctx context.Context, req *assignment.BulkAssignRequest) ([]*assignment.Assignment, error) {
	if len(req.Items) == 0 {
		return nil, roster.ErrEmptyBulkRequest
	}

	now := time.Now().UTC()
	actor := roster.ActorFromContext(ctx)
	out := make([]*assignment.Assignment, len(req.Items))
	models := make([]assignmentModel, len(req.Items))
	for i := range req.Items {
		it := &req.Items[i]
		out[i] = &assignment.Assignment{
			ID:        id.NewAssignmentID(),
			UserID:    it.UserID,
			RoleID:    it.RoleID,
			StoreID:   it.StoreID,
			IsActive:  true,
			GrantedBy: actor,
			CreatedAt: now,
			UpdatedAt: now,
		}
		models[i] = *assignmentToModel(out[i])
	}

	tx, err := s.pgdb.BeginTxQuery(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("roster: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback on error is intentional

	if _, err := tx.NewInsert(&models).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("bulk assign: %w", roster.ErrDuplicateAssignment)
		}
		return nil, fmt.Errorf("roster: bulk create assignments: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("roster: commit tx: %w", err)
	}
	return out, nil
}

func (s *Service) ListByStore(ctx context.Context, storeID string, params *assignment.ListParams) ([]*assignment.Assignment, error) {
	var models []assignmentModel
	q := s.pgdb.NewSelect(&models).
		Where("store_id = ?", storeID).
		OrderExpr("created_at ASC")
	if params != nil {
		if params.IsActive != nil {
			q = q.Where("is_active = ?", *params.IsActive)
		}
		if params.Limit > 0 {
			q = q.Limit(params.Limit)
		}
		if params.Offset > 0 {
			q = q.Offset(params.Offset)
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("roster: list assignments by store: %w", err)
	}
	return fromModels(models), nil
}

func (s *Service) ListByUser(ctx context.Context, userID int64, params *assignment.ListParams) ([]*assignment.Assignment, error) {
	var models []assignmentModel
	q := s.pgdb.NewSelect(&models).
		Where("user_id = ?", userID).
		OrderExpr("created_at ASC")
	if params != nil {
		if params.IsActive != nil {
			q = q.Where("is_active = ?", *params.IsActive)
		}
		if params.Limit > 0 {
			q = q.Limit(params.Limit)
		}
		if params.Offset > 0 {
			q = q.Offset(params.Offset)
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("roster: list assignments by user: %w", err)
	}
	return fromModels(models), nil
}

// ──────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────

// resolve loads the target of a remove/toggle: by ID when given, falling
// back to the (user, role, store) triple.
func (s *Service) resolve(ctx context.Context, assID id.AssignmentID, userID, roleID int64, storeID string) (*assignmentModel, error) {
	m := new(assignmentModel)
	q := s.pgdb.NewSelect(m)
	if !assID.IsNil() {
		q = q.Where("id = ?", assID.String())
	} else {
		q = q.Where("user_id = ?", userID).
			Where("role_id = ?", roleID).
			Where("store_id = ?", storeID)
	}
	if err := q.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %d role %d store %q: %w", userID, roleID, storeID, roster.ErrAssignmentNotFound)
		}
		return nil, fmt.Errorf("roster: get assignment: %w", err)
	}
	return m, nil
}

func fromModels(models []assignmentModel) []*assignment.Assignment {
	result := make([]*assignment.Assignment, len(models))
	for i := range models {
		result[i] = assignmentFromModel(&models[i])
	}
	return result
}

// isUniqueViolation reports whether err is a Postgres unique_violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
