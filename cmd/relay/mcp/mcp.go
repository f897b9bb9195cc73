package mcpcmder

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/relay/cmd/relay/wiring"
	"github.com/papercomputeco/relay/pkg/mcptools"
)

const mcpLongDesc string = `Serve the relay commands as MCP tools over stdio.

Agents can call the upstream API and manage settings through the same
commands the UI uses. Logs are written to stderr.

Examples:
  relay mcp
  relay mcp --data-dir ~/.config/relay`

const mcpShortDesc string = "Serve relay commands as MCP tools over stdio"

type mcpCommander struct {
	opts    *wiring.Options
	version string
}

func NewMCPCmd(opts *wiring.Options, version string) *cobra.Command {
	cmder := &mcpCommander{opts: opts, version: version}

	return &cobra.Command{
		Use:   "mcp",
		Short: mcpShortDesc,
		Long:  mcpLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context())
		},
	}
}

func (c *mcpCommander) run(ctx context.Context) error {
	rt, err := wiring.Build(*c.opts, os.Stderr)
	if err != nil {
		return err
	}
	defer rt.Close()

	return mcptools.NewServer(rt.Commands, c.version, rt.Logger).Run(ctx)
}
