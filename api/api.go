// Package api provides HTTP handlers for the Roster assignment service.
package api

import (
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/roster/assignment"
)

// API wires the Roster HTTP handlers together.
type API struct {
	svc    assignment.Service
	router forge.Router
}

// New creates an API from an assignment service and a Forge router.
func New(svc assignment.Service, router forge.Router) *API {
	return &API{svc: svc, router: router}
}

// Handler returns the fully assembled http.Handler with all routes.
func (a *API) Handler() http.Handler {
	if a.router == nil {
		a.router = forge.NewRouter()
	}
	if err := a.RegisterRoutes(a.router); err != nil {
		panic("roster: register routes: " + err.Error())
	}
	return a.router.Handler()
}

// RegisterRoutes registers all API routes into the given Forge router.
func (a *API) RegisterRoutes(router forge.Router) error {
	return a.registerAssignmentRoutes(router)
}
