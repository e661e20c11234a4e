package metrics

// Config holds configuration for metrics collection.
type Config struct {
	// Enabled controls whether metrics collection is active.
	Enabled bool

	// Registry holds the metric instances to record into. If nil,
	// DefaultRegistry is used.
	Registry *Registry
}

// DefaultConfig returns a default metrics configuration recording into
// DefaultRegistry.
func DefaultConfig() Config {
	return Config{
		Enabled: true,
	}
}
