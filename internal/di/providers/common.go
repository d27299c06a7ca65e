package providers

import "time"

const (
	// shutdownTimeout is the maximum time to wait for in-flight requests on shutdown.
	shutdownTimeout = 30 * time.Second

	// startupTimeout bounds connecting to network databases.
	startupTimeout = 15 * time.Second
)
