package api

import (
	"github.com/xraph/roster/assignment"
)

// Response is the wire envelope for every Roster endpoint. Exactly one of
// Data and Error is set, matching Success.
type Response struct {
	Success bool              `json:"success" description:"Whether the operation succeeded"`
	Data    any               `json:"data,omitempty" description:"Operation result"`
	Error   *assignment.Error `json:"error,omitempty" description:"Failure detail"`
}

// AssignmentData wraps a single created assignment in the envelope.
type AssignmentData struct {
	Assignment *assignment.Assignment `json:"assignment"`
}

// AssignmentListData wraps an assignment list in the envelope.
type AssignmentListData struct {
	Assignments []*assignment.Assignment `json:"assignments"`
}

func ok(data any) *Response {
	return &Response{Success: true, Data: data}
}
