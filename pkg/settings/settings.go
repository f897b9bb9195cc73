// Package settings persists the user-facing application settings.
package settings

import (
	"fmt"
	"net/url"

	"github.com/papercomputeco/relay/pkg/upstream"
)

// FileName is the name of the settings file inside the data directory.
const FileName = "settings.json"

// Settings is the persisted settings record.
type Settings struct {
	// APIURL is the upstream base URL every proxied endpoint is appended to.
	APIURL string `json:"api_url"`

	// RefreshInterval is the UI polling interval in seconds.
	RefreshInterval uint32 `json:"refresh_interval"`

	Notifications bool `json:"notifications"`
	DarkMode      bool `json:"dark_mode"`
}

// Defaults returns the built-in settings used on first run and on reset.
func Defaults() Settings {
	return Settings{
		APIURL:          upstream.DefaultBaseURL,
		RefreshInterval: 30,
		Notifications:   true,
		DarkMode:        true,
	}
}

// Validate checks that the record can drive the proxy.
func (s Settings) Validate() error {
	u, err := url.Parse(s.APIURL)
	if err != nil {
		return fmt.Errorf("invalid api_url %q: %w", s.APIURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid api_url %q: scheme must be http or https", s.APIURL)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid api_url %q: missing host", s.APIURL)
	}
	if s.RefreshInterval == 0 {
		return fmt.Errorf("refresh_interval must be greater than zero")
	}

	return nil
}
