// Package mongo provides a MongoDB implementation of the Roster
// assignment service backed by Grove ORM.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	mongod "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	"github.com/xraph/roster"
	"github.com/xraph/roster/assignment"
	"github.com/xraph/roster/id"
)

// colAssignments is the assignment collection name.
const colAssignments = "roster_assignments"

// Compile-time interface check.
var _ assignment.Service = (*Service)(nil)

// Service is a MongoDB implementation of the assignment service.
type Service struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB assignment service backed by Grove ORM.
func New(db *grove.DB) *Service {
	return &Service{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// Migrate creates the assignment collection indexes.
func (s *Service) Migrate(ctx context.Context) error {
	models := migrationIndexes()
	_, err := s.mdb.Collection(colAssignments).Indexes().CreateMany(ctx, models)
	if err != nil {
		return fmt.Errorf("roster/mongo: migrate %s indexes: %w", colAssignments, err)
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

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongod.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for the assignment collection.
func migrationIndexes() []mongod.IndexModel {
	return []mongod.IndexModel{
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "role_id", Value: 1},
				{Key: "store_id", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "store_id", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
		{Keys: bson.D{{Key: "store_id", Value: 1}, {Key: "is_active", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: 1}}},
	}
}

func (s *Service) Assign(ctx context.Context, req *assignment.AssignRequest) (*assignment.Assignment, error) {
	t := now()
	a := &assignment.Assignment{
		ID:        id.NewAssignmentID(),
		UserID:    req.UserID,
		RoleID:    req.RoleID,
		StoreID:   req.StoreID,
		IsActive:  true,
		GrantedBy: roster.ActorFromContext(ctx),
		CreatedAt: t,
		UpdatedAt: t,
	}
	if _, err := s.mdb.NewInsert(assignmentToModel(a)).Exec(ctx); err != nil {
		if mongod.IsDuplicateKeyError(err) {
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
	if _, err := s.mdb.NewDelete((*assignmentModel)(nil)).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx); err != nil {
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
	m.UpdatedAt = now()
	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("roster: update assignment: %w", err)
	}
	if res.MatchedCount() == 0 {
		return fmt.Errorf("assignment %s: %w", m.ID, roster.ErrAssignmentNotFound)
	}
	return nil
}

// BulkAssign pre-checks every item against stored documents and the batch
// itself, then inserts in one call. A duplicate slipping in between the
// check and the insert trips the unique index; the partial batch is then
// compensated with a best-effort delete so no item survives a failed batch.
func (s *Service) BulkAssign(ctx context.Context, req *assignment.BulkAssignRequest) ([]*assignment.Assignment, error) {
	if len(req.Items) == 0 {
		return nil, roster.ErrEmptyBulkRequest
	}

	seen := make(map[string]struct{}, len(req.Items))
	for i := range req.Items {
		it := &req.Items[i]
		key := fmt.Sprintf("%d/%d/%s", it.UserID, it.RoleID, it.StoreID)
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("user %d role %d store %q: %w", it.UserID, it.RoleID, it.StoreID, roster.ErrDuplicateAssignment)
		}
		seen[key] = struct{}{}

		count, err := s.mdb.NewFind((*assignmentModel)(nil)).
			Filter(bson.M{"user_id": it.UserID, "role_id": it.RoleID, "store_id": it.StoreID}).
			Count(ctx)
		if err != nil {
			return nil, fmt.Errorf("roster: check assignment conflict: %w", err)
		}
		if count > 0 {
			return nil, fmt.Errorf("user %d role %d store %q: %w", it.UserID, it.RoleID, it.StoreID, roster.ErrDuplicateAssignment)
		}
	}

	t := now()
	actor := roster.ActorFromContext(ctx)
	out := make([]*assignment.Assignment, len(req.Items))
	models := make([]assignmentModel, len(req.Items))
	ids := make([]string, len(req.Items))
	for i := range req.Items {
		it := &req.Items[i]
		out[i] = &assignment.Assignment{
			ID:        id.NewAssignmentID(),
			UserID:    it.UserID,
			RoleID:    it.RoleID,
			StoreID:   it.StoreID,
			IsActive:  true,
			GrantedBy: actor,
			CreatedAt: t,
			UpdatedAt: t,
		}
		models[i] = *assignmentToModel(out[i])
		ids[i] = models[i].ID
	}

	if _, err := s.mdb.NewInsert(&models).Exec(ctx); err != nil {
		//nolint:errcheck // compensation delete is best effort
		s.mdb.NewDelete((*assignmentModel)(nil)).
			Many().
			Filter(bson.M{"_id": bson.M{"$in": ids}}).
			Exec(ctx)
		if mongod.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("bulk assign: %w", roster.ErrDuplicateAssignment)
		}
		return nil, fmt.Errorf("roster: bulk create assignments: %w", err)
	}
	return out, nil
}

func (s *Service) ListByStore(ctx context.Context, storeID string, params *assignment.ListParams) ([]*assignment.Assignment, error) {
	f := bson.M{"store_id": storeID}
	return s.list(ctx, f, params, "store")
}

func (s *Service) ListByUser(ctx context.Context, userID int64, params *assignment.ListParams) ([]*assignment.Assignment, error) {
	f := bson.M{"user_id": userID}
	return s.list(ctx, f, params, "user")
}

func (s *Service) list(ctx context.Context, f bson.M, params *assignment.ListParams, scope string) ([]*assignment.Assignment, error) {
	if params != nil && params.IsActive != nil {
		f["is_active"] = *params.IsActive
	}
	var models []assignmentModel
	q := s.mdb.NewFind(&models).
		Filter(f).
		Sort(bson.D{{Key: "created_at", Value: 1}})
	if params != nil {
		if params.Limit > 0 {
			q = q.Limit(int64(params.Limit))
		}
		if params.Offset > 0 {
			q = q.Skip(int64(params.Offset))
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("roster: list assignments by %s: %w", scope, err)
	}
	result := make([]*assignment.Assignment, len(models))
	for i := range models {
		result[i] = assignmentFromModel(&models[i])
	}
	return result, nil
}

// resolve loads the target of a remove/toggle: by ID when given, falling
// back to the (user, role, store) triple.
func (s *Service) resolve(ctx context.Context, assID id.AssignmentID, userID, roleID int64, storeID string) (*assignmentModel, error) {
	var m assignmentModel
	f := bson.M{}
	if !assID.IsNil() {
		f["_id"] = assID.String()
	} else {
		f["user_id"] = userID
		f["role_id"] = roleID
		f["store_id"] = storeID
	}
	if err := s.mdb.NewFind(&m).Filter(f).Scan(ctx); err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("user %d role %d store %q: %w", userID, roleID, storeID, roster.ErrAssignmentNotFound)
		}
		return nil, fmt.Errorf("roster: get assignment: %w", err)
	}
	return &m, nil
}
