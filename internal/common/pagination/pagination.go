// Package pagination provides offset-based pagination for entry listings.
// Callers build Params programmatically (there is no query-string surface),
// apply defaults from a Config and derive the database offset and the total
// page count from the helpers here.
package pagination

import (
	pkgconfig "homefeed/internal/pkg/config"
)

// Config holds pagination configuration settings.
type Config struct {
	DefaultPage  int // Default page number (typically 1)
	DefaultLimit int // Default entries per page
	MaxLimit     int // Maximum allowed entries per page
}

// DefaultConfig returns the default pagination configuration.
// Default values: page=1, limit=30, max=100.
func DefaultConfig() Config {
	return Config{
		DefaultPage:  1,
		DefaultLimit: 30,
		MaxLimit:     100,
	}
}

// LoadFromEnv loads pagination config from environment variables, falling
// back to DefaultConfig values when unset or invalid:
//   - PAGINATION_DEFAULT_LIMIT: entries per page
//   - PAGINATION_MAX_LIMIT: maximum entries per page
func LoadFromEnv() Config {
	defaults := DefaultConfig()

	maxLimit := pkgconfig.LoadEnvInt("PAGINATION_MAX_LIMIT", defaults.MaxLimit, func(v int) error {
		return pkgconfig.ValidateIntRange(v, 1, 1000)
	}).Value.(int)

	defaultLimit := pkgconfig.LoadEnvInt("PAGINATION_DEFAULT_LIMIT", defaults.DefaultLimit, func(v int) error {
		return pkgconfig.ValidateIntRange(v, 1, maxLimit)
	}).Value.(int)

	return Config{
		DefaultPage:  defaults.DefaultPage,
		DefaultLimit: defaultLimit,
		MaxLimit:     maxLimit,
	}
}
