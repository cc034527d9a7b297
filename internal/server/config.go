package server

// Config holds the HTTP front-end settings.
type Config struct {
	Port            int
	CacheTTLSeconds int
	// RateLimit is requests per second across all clients; zero disables it.
	RateLimit float64
	Burst     int
}

// DefaultConfig returns the default front-end configuration.
func DefaultConfig() Config {
	return Config{
		Port:            5000,
		CacheTTLSeconds: 300,
		RateLimit:       2,
		Burst:           5,
	}
}
