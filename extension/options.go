package extension

import (
	"log/slog"

	"github.com/xraph/roster"
	"github.com/xraph/roster/assignment"
	"github.com/xraph/roster/plugin"
)

// ExtOption configures the Roster Forge extension.
type ExtOption func(*Extension)

// WithService sets the assignment service backend.
func WithService(svc assignment.Service) ExtOption {
	return func(e *Extension) {
		e.svc = svc
	}
}

// WithConfig sets the extension configuration.
func WithConfig(cfg Config) ExtOption {
	return func(e *Extension) {
		e.config = cfg
	}
}

// WithStateOptions adds container-level options.
func WithStateOptions(opts ...roster.Option) ExtOption {
	return func(e *Extension) {
		e.stateOpts = append(e.stateOpts, opts...)
	}
}

// WithPlugin registers a lifecycle hook plugin.
func WithPlugin(x plugin.Plugin) ExtOption {
	return func(e *Extension) {
		e.stateOpts = append(e.stateOpts, roster.WithPlugin(x))
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) ExtOption {
	return func(e *Extension) {
		e.logger = l
	}
}

// WithDisableRoutes disables the registration of HTTP routes.
func WithDisableRoutes() ExtOption {
	return func(e *Extension) {
		e.config.DisableRoutes = true
	}
}

// WithDisableMigrate disables auto-migration on start.
func WithDisableMigrate() ExtOption {
	return func(e *Extension) {
		e.config.DisableMigrate = true
	}
}
