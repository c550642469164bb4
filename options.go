package roster

import (
	"log/slog"
	"time"

	"github.com/xraph/roster/assignment"
	"github.com/xraph/roster/plugin"
)

// Option is a functional option for the State.
type Option func(*State)

// WithService sets the assignment service collaborator.
func WithService(svc assignment.Service) Option { return func(s *State) { s.svc = svc } }

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option { return func(s *State) { s.logger = l } }

// WithConfig sets the container configuration.
func WithConfig(c Config) Option { return func(s *State) { s.config = c } }

// WithNow overrides the clock. Test hook.
func WithNow(now func() time.Time) Option { return func(s *State) { s.now = now } }

// WithPlugin registers a lifecycle hook plugin.
func WithPlugin(x plugin.Plugin) Option {
	return func(s *State) {
		if s.plugins == nil {
			s.plugins = plugin.NewRegistry(s.logger)
		}
		s.plugins.Register(x)
	}
}
