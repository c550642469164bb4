package roster

import "time"

// Config holds configuration for the assignment state container.
type Config struct {
	// FreshnessTTL bounds how long a stamped aggregate view counts as
	// fresh. Zero means a timestamp never ages out: only an invalidated
	// (nil) timestamp reports stale.
	FreshnessTTL time.Duration `json:"freshness_ttl,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{}
}
