package api

// ──────────────────────────────────────────────────
// Assignment requests
// ──────────────────────────────────────────────────

// AssignRequest is the body for assigning a role to a user at a store.
type AssignRequest struct {
	UserID  int64  `json:"user_id" description:"User identifier"`
	RoleID  int64  `json:"role_id" description:"Role identifier"`
	StoreID string `json:"store_id" description:"Store identifier"`
}

// BulkAssignRequest is the body for assigning many roles in one batch.
type BulkAssignRequest struct {
	Items []AssignRequest `json:"items" description:"Assignments to create as one unit"`
}

// RemoveAssignmentRequest targets an assignment by path ID, or by the
// (user, role, store) triple in the body when the path segment is "-".
type RemoveAssignmentRequest struct {
	AssignmentID string `path:"assignmentId" description:"Assignment ID, or - to target by triple"`
	UserID       int64  `json:"user_id,omitempty" description:"User identifier (triple targeting)"`
	RoleID       int64  `json:"role_id,omitempty" description:"Role identifier (triple targeting)"`
	StoreID      string `json:"store_id,omitempty" description:"Store identifier (triple targeting)"`
}

// ToggleStatusRequest has the same dual targeting as RemoveAssignmentRequest.
type ToggleStatusRequest struct {
	AssignmentID string `path:"assignmentId" description:"Assignment ID, or - to target by triple"`
	UserID       int64  `json:"user_id,omitempty" description:"User identifier (triple targeting)"`
	RoleID       int64  `json:"role_id,omitempty" description:"Role identifier (triple targeting)"`
	StoreID      string `json:"store_id,omitempty" description:"Store identifier (triple targeting)"`
}

// ListStoreAssignmentsRequest holds parameters for the store-scoped list.
type ListStoreAssignmentsRequest struct {
	StoreID  string `path:"storeId" description:"Store identifier"`
	IsActive *bool  `query:"is_active" description:"Filter by activation flag"`
	Limit    int    `query:"limit" description:"Maximum results (default: 50)"`
	Offset   int    `query:"offset" description:"Results to skip"`
}

// ListUserAssignmentsRequest holds parameters for the user-scoped list.
type ListUserAssignmentsRequest struct {
	UserID   int64 `path:"userId" description:"User identifier"`
	IsActive *bool `query:"is_active" description:"Filter by activation flag"`
	Limit    int   `query:"limit" description:"Maximum results (default: 50)"`
	Offset   int   `query:"offset" description:"Results to skip"`
}
