// Package assignment defines the Assignment entity (user→role grant scoped
// to a store) and the request/response shapes of the assignment service.
package assignment

import (
	"time"

	"github.com/xraph/roster/id"
)

// Assignment grants a role to a user within a single store.
// The activation flag is toggled independently of existence.
type Assignment struct {
	ID        id.AssignmentID `json:"id,omitempty" db:"id"`
	UserID    int64           `json:"user_id" db:"user_id"`
	RoleID    int64           `json:"role_id" db:"role_id"`
	StoreID   string          `json:"store_id" db:"store_id"`
	IsActive  bool            `json:"is_active" db:"is_active"`
	GrantedBy string          `json:"granted_by,omitempty" db:"granted_by"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

// Clone returns a shallow copy. All fields are value types, so a shallow
// copy is a full copy.
func (a *Assignment) Clone() *Assignment {
	c := *a
	return &c
}

// AssignRequest creates a single assignment.
type AssignRequest struct {
	UserID  int64  `json:"user_id"`
	RoleID  int64  `json:"role_id"`
	StoreID string `json:"store_id"`
}

// RemoveRequest deletes an assignment. When ID is Nil the service falls
// back to matching the (user, role, store) triple.
type RemoveRequest struct {
	ID      id.AssignmentID `json:"id,omitempty"`
	UserID  int64           `json:"user_id"`
	RoleID  int64           `json:"role_id"`
	StoreID string          `json:"store_id"`
}

// ToggleRequest flips an assignment's activation flag. Same addressing
// rules as RemoveRequest.
type ToggleRequest struct {
	ID      id.AssignmentID `json:"id,omitempty"`
	UserID  int64           `json:"user_id"`
	RoleID  int64           `json:"role_id"`
	StoreID string          `json:"store_id"`
}

// BulkAssignRequest creates many assignments as a single unit.
// Services apply it all-or-nothing.
type BulkAssignRequest struct {
	Items []AssignRequest `json:"items"`
}

// ListParams filters and paginates scope listings.
type ListParams struct {
	IsActive *bool `json:"is_active,omitempty"`
	Limit    int   `json:"limit,omitempty"`
	Offset   int   `json:"offset,omitempty"`
}

// Error is a service-reported failure in wire form. Services and the HTTP
// API exchange it verbatim; the state container stores it per operation.
type Error struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// NewError builds an Error with the given message and time.
func NewError(message string, at time.Time) *Error {
	return &Error{Message: message, Timestamp: at}
}

// Error implements the error interface.
func (e *Error) Error() string { return e.Message }
