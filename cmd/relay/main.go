package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	callcmder "github.com/papercomputeco/relay/cmd/relay/call"
	historycmder "github.com/papercomputeco/relay/cmd/relay/history"
	mcpcmder "github.com/papercomputeco/relay/cmd/relay/mcp"
	"github.com/papercomputeco/relay/cmd/relay/render"
	servecmder "github.com/papercomputeco/relay/cmd/relay/serve"
	settingscmder "github.com/papercomputeco/relay/cmd/relay/settings"
	"github.com/papercomputeco/relay/cmd/relay/wiring"
)

// Set at build time with -ldflags "-X main.version=..."
var version = "dev"

const rootLongDesc string = `relay forwards requests from the desktop UI to the configured API.

The API base URL comes from settings.json in the data directory and can be
changed at runtime without restarting.`

func newRootCmd() *cobra.Command {
	opts := &wiring.Options{}

	cmd := &cobra.Command{
		Use:           "relay",
		Short:         "Desktop API relay",
		Long:          rootLongDesc,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	opts.Bind(cmd)

	cmd.AddCommand(
		servecmder.NewServeCmd(opts),
		mcpcmder.NewMCPCmd(opts, version),
		callcmder.NewGetCmd(opts),
		callcmder.NewPostCmd(opts),
		callcmder.NewPutCmd(opts),
		callcmder.NewDeleteCmd(opts),
		callcmder.NewDownloadCmd(opts),
		callcmder.NewUploadCmd(opts),
		settingscmder.NewSettingsCmd(opts),
		historycmder.NewHistoryCmd(opts),
	)

	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		render.Error(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
