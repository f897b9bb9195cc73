package historycmder

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/relay/cmd/relay/render"
	"github.com/papercomputeco/relay/cmd/relay/wiring"
	"github.com/papercomputeco/relay/pkg/settings"
)

const historyLongDesc string = `Show the most recent proxied requests from the journal.

Renders a table of method, URL, status, and outcome, newest first.
The table is styled to match the dark_mode setting on a terminal.

Examples:
  relay history
  relay history --limit 100`

const historyShortDesc string = "Show recent proxied requests"

var ErrJournalDisabled = errors.New("the request journal is disabled (journal.backend = \"off\")")

type historyCommander struct {
	opts  *wiring.Options
	limit int
}

func NewHistoryCmd(opts *wiring.Options) *cobra.Command {
	cmder := &historyCommander{opts: opts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: historyShortDesc,
		Long:  historyLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context(), cmd)
		},
	}

	cmd.Flags().IntVarP(&cmder.limit, "limit", "n", 20, "Number of entries to show")

	return cmd
}

func (c *historyCommander) run(ctx context.Context, cmd *cobra.Command) error {
	rt, err := wiring.Build(*c.opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer rt.Close()

	if rt.Journal == nil {
		return ErrJournalDisabled
	}

	entries, err := rt.Journal.Recent(ctx, c.limit)
	if err != nil {
		return fmt.Errorf("could not read journal: %w", err)
	}

	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No requests recorded yet.")
		return nil
	}

	dark := settings.Defaults().DarkMode
	if s, err := rt.Commands.GetSettings(); err == nil {
		dark = s.DarkMode
	}

	return render.Journal(cmd.OutOrStdout(), entries, dark)
}
