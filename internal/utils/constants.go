package utils

import "time"

// =============================================================================
// Timeout Constants
// =============================================================================

// Server lifecycle
const (
	// ShutdownTimeout bounds graceful shutdown of the HTTP server
	ShutdownTimeout = 10 * time.Second

	// StartupLoadTimeout bounds loading the default dataset at startup
	StartupLoadTimeout = 2 * time.Minute
)

// Backend timeouts
const (
	// BackendConnectTimeout is the timeout for the initial ping of Redis, NATS or MySQL
	BackendConnectTimeout = 5 * time.Second

	// EventPublishTimeout bounds a single event publish. Publishing outlives
	// request cancellation but not this timeout.
	EventPublishTimeout = 3 * time.Second
)

// =============================================================================
// Batch Size Constants
// =============================================================================

const (
	// CacheDeleteBatchSize is the number of keys deleted per round trip when
	// invalidating a dataset prefix
	CacheDeleteBatchSize = 500

	// ContextCheckInterval is how many rows are processed between context checks
	ContextCheckInterval = 1024
)
