// Package middleware provides HTTP middleware for the Roster API.
package middleware

import (
	"encoding/json"

	"github.com/xraph/forge"
)

// RequireActor rejects requests without an authenticated user. Mutation
// routes behind it always record a non-empty granted_by.
func RequireActor() forge.Middleware {
	return func(next forge.Handler) forge.Handler {
		return func(ctx forge.Context) error {
			if forge.UserIDFromContext(ctx.Context()) == "" {
				return denyResponse(ctx)
			}
			return next(ctx)
		}
	}
}

func denyResponse(ctx forge.Context) error {
	ctx.SetHeader("Content-Type", "application/json")
	ctx.Response().WriteHeader(403)
	return json.NewEncoder(ctx.Response()).Encode(map[string]string{"error": "authentication required"})
}
