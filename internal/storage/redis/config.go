package redis

import "time"

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// TTL settings. Sessions and waiting entries are ephemeral by design;
	// the TTLs are a backstop against orphaned keys, not a lifecycle
	// mechanism.
	GuestPlayerTTL time.Duration
	SessionTTL     time.Duration
	WaitingTTL     time.Duration
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:            "redis://localhost:6379",
		PoolSize:       10,
		MinIdleConns:   2,
		GuestPlayerTTL: 24 * time.Hour,
		SessionTTL:     6 * time.Hour,
		WaitingTTL:     time.Hour,
	}
}
