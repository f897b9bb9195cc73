package proxy

import "time"

// DefaultTimeout bounds every upstream call.
const DefaultTimeout = 30 * time.Second

// Config is the HTTP transport configuration shared by every proxied call.
type Config struct {
	// Timeout bounds a whole call, from dial to the last body byte.
	Timeout time.Duration

	// Connection pool sizing for the single upstream host.
	MaxIdleConns    int
	IdleConnTimeout time.Duration
}

// DefaultConfig returns the transport settings used when none are configured.
func DefaultConfig() Config {
	return Config{
		Timeout:         DefaultTimeout,
		MaxIdleConns:    32,
		IdleConnTimeout: 90 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	if c.MaxIdleConns <= 0 {
		c.MaxIdleConns = d.MaxIdleConns
	}
	if c.IdleConnTimeout <= 0 {
		c.IdleConnTimeout = d.IdleConnTimeout
	}
	return c
}
