// Package extension provides a Forge extension entry point for Roster.
package extension

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/xraph/forge"
	"github.com/xraph/vessel"

	"github.com/xraph/roster"
	"github.com/xraph/roster/api"
	"github.com/xraph/roster/assignment"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "roster"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "User-role-store assignment state container and REST API"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// migrator is implemented by services with schema migrations (postgres, mongo).
type migrator interface {
	Migrate(ctx context.Context) error
}

// pinger is implemented by services backed by a live connection.
type pinger interface {
	Ping(ctx context.Context) error
}

// closer is implemented by services holding a connection to release.
type closer interface {
	Close() error
}

// Extension adapts Roster as a Forge extension.
type Extension struct {
	config     Config
	svc        assignment.Service
	state      *roster.State
	apiHandler *api.API
	logger     *slog.Logger
	stateOpts  []roster.Option
}

// New creates a Roster Forge extension with the given options.
func New(opts ...ExtOption) *Extension {
	e := &Extension{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name returns the extension name.
func (e *Extension) Name() string { return ExtensionName }

// Description returns the extension description.
func (e *Extension) Description() string { return ExtensionDescription }

// Version returns the extension version.
func (e *Extension) Version() string { return ExtensionVersion }

// Dependencies returns the list of extension names this extension depends on.
func (e *Extension) Dependencies() []string { return []string{} }

// Service returns the underlying assignment service.
func (e *Extension) Service() assignment.Service { return e.svc }

// State returns the assignment state container.
func (e *Extension) State() *roster.State { return e.state }

// API returns the API handler.
func (e *Extension) API() *api.API { return e.apiHandler }

// Register implements [forge.Extension]. It builds the state container,
// registers it in the DI container, and optionally registers HTTP routes.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.init(fapp); err != nil {
		return err
	}

	if err := vessel.Provide(fapp.Container(), func() (*roster.State, error) {
		return e.state, nil
	}); err != nil {
		return fmt.Errorf("roster: register state in container: %w", err)
	}
	if err := vessel.Provide(fapp.Container(), func() (assignment.Service, error) {
		return e.svc, nil
	}); err != nil {
		return fmt.Errorf("roster: register service in container: %w", err)
	}

	return nil
}

func (e *Extension) init(fapp forge.App) error {
	logger := e.logger
	if logger == nil {
		logger = slog.Default()
	}

	// Fall back to a service registered in the DI container.
	if e.svc == nil {
		if svc, err := forge.Inject[assignment.Service](fapp.Container()); err == nil {
			e.svc = svc
		}
	}
	if e.svc == nil {
		return errors.New("roster: no assignment service configured")
	}

	opts := make([]roster.Option, 0, len(e.stateOpts)+2)
	opts = append(opts, roster.WithLogger(logger), roster.WithService(e.svc))
	opts = append(opts, e.stateOpts...)

	state, err := roster.NewState(opts...)
	if err != nil {
		return fmt.Errorf("roster: create state container: %w", err)
	}
	e.state = state

	e.apiHandler = api.New(e.svc, fapp.Router())

	if !e.config.DisableRoutes {
		if err := e.apiHandler.RegisterRoutes(fapp.Router()); err != nil {
			return fmt.Errorf("roster: register routes: %w", err)
		}
	}

	return nil
}

// Start runs service migrations if enabled and supported.
func (e *Extension) Start(ctx context.Context) error {
	if e.svc == nil {
		return errors.New("roster: extension not initialized")
	}

	if !e.config.DisableMigrate {
		if m, ok := e.svc.(migrator); ok {
			if err := m.Migrate(ctx); err != nil {
				return fmt.Errorf("roster: migration failed: %w", err)
			}
		}
	}

	return nil
}

// Stop releases the service's resources.
func (e *Extension) Stop(_ context.Context) error {
	if c, ok := e.svc.(closer); ok {
		return c.Close()
	}
	return nil
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.svc == nil {
		return errors.New("roster: extension not initialized")
	}
	if p, ok := e.svc.(pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Handler returns the HTTP handler for all API routes.
func (e *Extension) Handler() http.Handler {
	if e.apiHandler == nil {
		return http.NotFoundHandler()
	}
	return e.apiHandler.Handler()
}

// RegisterRoutes registers all roster API routes into a Forge router.
func (e *Extension) RegisterRoutes(router forge.Router) error {
	if e.apiHandler != nil {
		return e.apiHandler.RegisterRoutes(router)
	}
	return nil
}
