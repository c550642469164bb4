package postgres

import (
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/roster/assignment"
	"github.com/xraph/roster/id"
)

type assignmentModel struct {
	grove.BaseModel `grove:"table:roster_assignments"`
	ID              string    `grove:"id,pk"`
	UserID          int64     `grove:"user_id,notnull"`
	RoleID          int64     `grove:"role_id,notnull"`
	StoreID         string    `grove:"store_id,notnull"`
	IsActive        bool      `grove:"is_active,notnull"`
	GrantedBy       string    `grove:"granted_by"`
	CreatedAt       time.Time `grove:"created_at,notnull"`
	UpdatedAt       time.Time `grove:"updated_at,notnull"`
}

func assignmentToModel(a *assignment.Assignment) *assignmentModel {
	return &assignmentModel{
		ID:        a.ID.String(),
		UserID:    a.UserID,
		RoleID:    a.RoleID,
		StoreID:   a.StoreID,
		IsActive:  a.IsActive,
		GrantedBy: a.GrantedBy,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func assignmentFromModel(m *assignmentModel) *assignment.Assignment {
	aid, _ := id.ParseAssignmentID(m.ID) //nolint:errcheck // stored IDs are always valid
	return &assignment.Assignment{
		ID:        aid,
		UserID:    m.UserID,
		RoleID:    m.RoleID,
		StoreID:   m.StoreID,
		IsActive:  m.IsActive,
		GrantedBy: m.GrantedBy,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
