// Package timeouts provides centralized timeout values for handler
// operations. Used with context.WithTimeout around database work so
// budgets stay consistent across features.
//
// Guidelines:
//   - Ping: health checks and connectivity verification
//   - Short: single-document reads or lookups
//   - Medium: list queries, moderate writes, aggregations
//   - Long: writes touching multiple collections (cascade deletes)
package timeouts

import "time"

const (
	ping   = 2 * time.Second
	short  = 5 * time.Second
	medium = 10 * time.Second
	long   = 30 * time.Second
)

// Ping returns the timeout for health checks.
func Ping() time.Duration { return ping }

// Short returns the timeout for simple single-document operations.
func Short() time.Duration { return short }

// Medium returns the timeout for list queries and aggregations.
func Medium() time.Duration { return medium }

// Long returns the timeout for multi-collection writes.
func Long() time.Duration { return long }
