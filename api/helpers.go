package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/xraph/forge"

	"github.com/xraph/roster"
	"github.com/xraph/roster/assignment"
)

// callContext derives the service call context for mutations, recording
// the authenticated user as the acting identity for the granted_by field.
func callContext(ctx forge.Context) context.Context {
	c := ctx.Context()
	if actor := forge.UserIDFromContext(c); actor != "" {
		return roster.WithActor(c, actor)
	}
	return c
}

// fail writes the failure envelope with a status derived from the domain error.
func fail(ctx forge.Context, err error) (*Response, error) {
	resp := &Response{
		Success: false,
		Error:   assignment.NewError(err.Error(), time.Now()),
	}
	return resp, ctx.JSON(statusFor(err), resp)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, roster.ErrAssignmentNotFound):
		return http.StatusNotFound
	case errors.Is(err, roster.ErrDuplicateAssignment),
		errors.Is(err, roster.ErrEmptyBulkRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func defaultLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	if limit > 1000 {
		return 1000
	}
	return limit
}
