// Package shell is the command surface the UI process invokes: the proxied
// API verbs and the settings commands that keep the in-memory base URL in
// step with the settings on disk.
package shell

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/papercomputeco/relay/pkg/metrics"
	"github.com/papercomputeco/relay/pkg/settings"
	"github.com/papercomputeco/relay/pkg/upstream"
	"github.com/papercomputeco/relay/proxy"
)

// ErrInvalidSettings wraps a settings record rejected before it is saved.
var ErrInvalidSettings = errors.New("invalid settings")

// Commands composes the proxy, the settings store and the base URL store.
type Commands struct {
	proxy    *proxy.Client
	settings settings.Store
	config   *upstream.Store
	metrics  *metrics.Collector
	logger   *zap.Logger
}

// New creates the command surface. m may be nil.
func New(p *proxy.Client, s settings.Store, config *upstream.Store, m *metrics.Collector, logger *zap.Logger) *Commands {
	return &Commands{
		proxy:    p,
		settings: s,
		config:   config,
		metrics:  m,
		logger:   logger,
	}
}

func (c *Commands) APIGet(ctx context.Context, endpoint string) (any, error) {
	return c.proxy.Get(ctx, endpoint)
}

func (c *Commands) APIPost(ctx context.Context, endpoint string, body any) (any, error) {
	return c.proxy.Post(ctx, endpoint, body)
}

func (c *Commands) APIPut(ctx context.Context, endpoint string, body any) (any, error) {
	return c.proxy.Put(ctx, endpoint, body)
}

func (c *Commands) APIDelete(ctx context.Context, endpoint string) (any, error) {
	return c.proxy.Delete(ctx, endpoint)
}

func (c *Commands) APIDownload(ctx context.Context, endpoint string) ([]byte, error) {
	return c.proxy.Download(ctx, endpoint)
}

func (c *Commands) APIUpload(ctx context.Context, endpoint, filePath string) (any, error) {
	return c.proxy.Upload(ctx, endpoint, filePath)
}

// BaseURL returns the base URL proxied calls currently use.
func (c *Commands) BaseURL() (string, error) {
	return c.config.Get()
}

// GetSettings loads the settings (persisting the defaults on first run) and
// points the proxy at their api_url. A record that fails validation is
// returned with ErrInvalidSettings and the current base URL is kept.
func (c *Commands) GetSettings() (settings.Settings, error) {
	return c.load("load")
}

// Reload re-reads the settings after an external edit of the settings file.
// A hand edit that fails validation keeps the current base URL.
func (c *Commands) Reload() error {
	_, err := c.load("watch")
	return err
}

// SaveSettings validates and persists s, then points the proxy at its
// api_url. A failed save leaves the base URL unchanged.
func (c *Commands) SaveSettings(s settings.Settings) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}

	if err := c.settings.Save(s); err != nil {
		return fmt.Errorf("could not save settings: %w", err)
	}

	return c.apply(s, "save")
}

// ResetSettings persists the defaults and points the proxy at the default api_url.
func (c *Commands) ResetSettings() (settings.Settings, error) {
	s, err := c.settings.Reset()
	if err != nil {
		return settings.Settings{}, fmt.Errorf("could not reset settings: %w", err)
	}

	if err := c.apply(s, "reset"); err != nil {
		return settings.Settings{}, err
	}

	return s, nil
}

func (c *Commands) load(source string) (settings.Settings, error) {
	s, err := c.settings.Load()
	if err != nil {
		return settings.Settings{}, fmt.Errorf("could not load settings: %w", err)
	}

	if err := s.Validate(); err != nil {
		return s, fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}

	if err := c.apply(s, source); err != nil {
		return settings.Settings{}, err
	}

	return s, nil
}

func (c *Commands) apply(s settings.Settings, source string) error {
	if err := c.config.Set(s.APIURL); err != nil {
		return fmt.Errorf("could not update api url: %w", err)
	}

	c.metrics.RecordConfigUpdate(source)
	c.logger.Info("api url updated",
		zap.String("api_url", s.APIURL),
		zap.String("source", source),
	)

	return nil
}
