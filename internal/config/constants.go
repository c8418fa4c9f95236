package config

import "time"

// Default timeout and size constants. Nothing in the module references
// them: config.Load and cmd/api/main.go carry their own defaults.
const (
	DefaultServerReadTimeout  = 30 * time.Second
	DefaultServerWriteTimeout = 30 * time.Second
	DefaultShutdownTimeout    = 10 * time.Second

	DefaultSocketReadTimeout  = 5 * time.Second
	DefaultSocketWriteTimeout = 5 * time.Second

	DefaultRunMemoryLimit       = 256 * 1024 * 1024 // 256MB in bytes
	DefaultRunMaxExecutionTime  = 10 * time.Second
	DefaultRunMaxOutputSize     = 1 * 1024 * 1024 // 1MB
)
