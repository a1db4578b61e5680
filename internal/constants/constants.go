// Package constants provides a centralized location for configuration
// values and magic numbers used throughout prscore.
package constants

import "time"

// TUI update and display constants
const (
	// TUIUpdateInterval is the minimum time between TUI progress updates
	// to provide smooth progress display without excessive overhead.
	TUIUpdateInterval = 50 * time.Millisecond

	// LogThrottlePercent is the interval (in percent) at which progress
	// logs are emitted when not using the TUI.
	LogThrottlePercent = 5
)

// GitHub API constants
const (
	// RateLimitLowWatermark is the threshold below which rate limit
	// warnings are logged.
	RateLimitLowWatermark = 100

	// PerPage is the page size requested from paginated REST endpoints.
	PerPage = 100

	// ThreadPageSize is the page size of the review thread GraphQL query.
	ThreadPageSize = 100

	// RequestTimeout bounds a single GraphQL round trip.
	RequestTimeout = 30 * time.Second
)
