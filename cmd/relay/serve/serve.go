package servecmder

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/relay/api"
	"github.com/papercomputeco/relay/cmd/relay/wiring"
	"github.com/papercomputeco/relay/pkg/journal"
	"github.com/papercomputeco/relay/pkg/settings"
)

const serveLongDesc string = `Run the relay command server.

Serves the shell commands over HTTP for the UI process, watches
settings.json for edits, and prunes the request journal on a schedule.

Examples:
  relay serve
  relay serve --listen 127.0.0.1:9000 --debug`

const serveShortDesc string = "Run the relay command server"

type serveCommander struct {
	opts   *wiring.Options
	listen string
}

func NewServeCmd(opts *wiring.Options) *cobra.Command {
	cmder := &serveCommander{opts: opts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&cmder.listen, "listen", "l", "", "Address to listen on (overrides relay.toml)")

	return cmd
}

func (c *serveCommander) run(ctx context.Context) error {
	rt, err := wiring.Build(*c.opts, os.Stdout)
	if err != nil {
		return err
	}
	defer rt.Close()

	listen := rt.Config.ListenAddr
	if c.listen != "" {
		listen = c.listen
	}

	logger := rt.Logger
	base, _ := rt.Commands.BaseURL()
	logger.Info("relay starting",
		zap.String("listen", listen),
		zap.String("api_url", base),
		zap.String("journal", rt.Config.Journal.Backend),
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if dir := rt.DataDir(); dir != "" {
		watcher, err := settings.NewWatcher(dir, settings.DefaultDebounce, logger)
		if err != nil {
			return fmt.Errorf("could not watch settings: %w", err)
		}
		defer watcher.Close()

		go func() {
			if err := watcher.Watch(ctx, rt.Commands.Reload); err != nil {
				logger.Error("settings watcher stopped", zap.Error(err))
			}
		}()
	}

	if rt.Journal != nil {
		retention := journal.NewRetention(
			rt.Journal,
			rt.Config.Journal.PruneSchedule,
			rt.Config.Journal.MaxAge.Duration,
			logger,
		)
		if err := retention.Start(ctx); err != nil {
			return err
		}
		defer retention.Stop()
	}

	server := api.NewServer(api.Config{ListenAddr: listen}, rt.Commands, rt.Journal, rt.Metrics, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Run()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("command server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("relay shutting down")
	if err := server.Shutdown(); err != nil {
		return fmt.Errorf("could not shut down command server: %w", err)
	}

	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		logger.Debug("command server returned", zap.Error(err))
	}

	return nil
}
