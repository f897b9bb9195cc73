// Package wiring builds the relay runtime shared by every subcommand.
package wiring

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/relay/pkg/config"
	"github.com/papercomputeco/relay/pkg/journal"
	"github.com/papercomputeco/relay/pkg/logger"
	"github.com/papercomputeco/relay/pkg/metrics"
	"github.com/papercomputeco/relay/pkg/settings"
	"github.com/papercomputeco/relay/pkg/shell"
	"github.com/papercomputeco/relay/pkg/upstream"
	"github.com/papercomputeco/relay/proxy"
)

// Options are the persistent flags of the root command.
type Options struct {
	ConfigPath string
	DataDir    string
	Debug      bool
	Ephemeral  bool
}

// Bind registers the options as persistent flags on cmd.
func (o *Options) Bind(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVarP(&o.ConfigPath, "config", "c", "", "Path to relay.toml (default: <data-dir>/relay.toml)")
	flags.StringVar(&o.DataDir, "data-dir", "", "Directory holding settings.json and journal.db")
	flags.BoolVar(&o.Debug, "debug", false, "Enable debug logging")
	flags.BoolVar(&o.Ephemeral, "ephemeral", false, "Keep settings and journal in memory only")
}

// Runtime is the wired relay process.
type Runtime struct {
	Config   config.Config
	Logger   *zap.Logger
	Upstream *upstream.Store
	Settings settings.Store
	Journal  journal.Storer
	Metrics  *metrics.Collector
	Proxy    *proxy.Client
	Commands *shell.Commands
}

// Build loads configuration, opens the stores, and applies the persisted
// settings to the base URL store. Unreadable or invalid settings are logged
// and leave the default base URL in place. Logs are written to logOut.
func Build(opts Options, logOut io.Writer) (*Runtime, error) {
	cfgPath := opts.ConfigPath
	switch {
	case cfgPath != "":
	case opts.DataDir != "":
		cfgPath = filepath.Join(opts.DataDir, config.FileName)
	default:
		p, err := config.DefaultPath()
		if err != nil {
			return nil, err
		}
		cfgPath = p
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("could not load config: %w", err)
	}
	if opts.DataDir != "" {
		cfg.DataDir = opts.DataDir
	}
	if opts.Debug {
		cfg.Debug = true
	}
	if opts.Ephemeral {
		cfg.Journal.Backend = "memory"
	}

	log := logger.NewLoggerTo(logOut, cfg.Debug)

	rt := &Runtime{
		Config:   cfg,
		Logger:   log,
		Upstream: upstream.NewStore(upstream.DefaultBaseURL),
		Metrics:  metrics.NewCollector(),
	}

	if opts.Ephemeral {
		rt.Settings = settings.NewMemoryStore()
	} else {
		rt.Settings = settings.NewFileStore(cfg.DataDir)
	}

	switch cfg.Journal.Backend {
	case "sqlite":
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, fmt.Errorf("could not create data dir %s: %w", cfg.DataDir, err)
		}
		j, err := journal.NewSQLiteStorer(cfg.JournalPath())
		if err != nil {
			return nil, fmt.Errorf("could not open journal %s: %w", cfg.JournalPath(), err)
		}
		rt.Journal = j
		log.Debug("using SQLite journal", zap.String("path", cfg.JournalPath()))
	case "memory":
		rt.Journal = journal.NewMemoryStorer(0)
		log.Debug("using in-memory journal")
	}

	popts := []proxy.Option{proxy.WithMetrics(rt.Metrics)}
	if rt.Journal != nil {
		popts = append(popts, proxy.WithJournal(rt.Journal))
	}
	rt.Proxy = proxy.New(cfg.Proxy(), rt.Upstream, log, popts...)
	rt.Commands = shell.New(rt.Proxy, rt.Settings, rt.Upstream, rt.Metrics, log)

	// A broken settings file must not lock the user out of "settings reset".
	if _, err := rt.Commands.GetSettings(); err != nil {
		log.Warn("could not apply persisted settings, using the default api url",
			zap.String("api_url", upstream.DefaultBaseURL),
			zap.Error(err),
		)
	}

	return rt, nil
}

// DataDir returns the data directory of a file-backed runtime, or "" when
// settings are kept in memory.
func (r *Runtime) DataDir() string {
	if fs, ok := r.Settings.(*settings.FileStore); ok {
		return fs.Dir()
	}
	return ""
}

// Close releases the journal and flushes the logger.
func (r *Runtime) Close() error {
	defer r.Logger.Sync()

	if r.Journal != nil {
		return r.Journal.Close()
	}
	return nil
}
