package proxy

import (
	"net/http"
)

// NewHTTPClient builds the pooled client. It is created once per process and
// shared by every call; building one per request would defeat the pool.
func NewHTTPClient(cfg Config) *http.Client {
	cfg = cfg.withDefaults()

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConns = cfg.MaxIdleConns
	transport.MaxIdleConnsPerHost = cfg.MaxIdleConns
	transport.IdleConnTimeout = cfg.IdleConnTimeout

	return &http.Client{
		Timeout:   cfg.Timeout,
		Transport: transport,
	}
}
