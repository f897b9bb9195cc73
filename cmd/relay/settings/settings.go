package settingscmder

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/relay/cmd/relay/render"
	"github.com/papercomputeco/relay/cmd/relay/wiring"
	"github.com/papercomputeco/relay/pkg/settings"
)

const settingsLongDesc string = `Show, change, or reset the persisted relay settings.

Changes are written to settings.json and applied to the API base URL
immediately. A running "relay serve" picks them up from the file.

Examples:
  relay settings show
  relay settings save --api-url https://api.example.com
  relay settings reset`

const settingsShortDesc string = "Manage relay settings"

type settingsCommander struct {
	opts *wiring.Options

	apiURL          string
	refreshInterval uint32
	notifications   bool
	darkMode        bool
}

func NewSettingsCmd(opts *wiring.Options) *cobra.Command {
	cmder := &settingsCommander{opts: opts}

	cmd := &cobra.Command{
		Use:   "settings",
		Short: settingsShortDesc,
		Long:  settingsLongDesc,
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the current settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.show(cmd)
		},
	}

	save := &cobra.Command{
		Use:   "save",
		Short: "Change one or more settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.save(cmd)
		},
	}
	save.Flags().StringVar(&cmder.apiURL, "api-url", "", "Base URL of the upstream API")
	save.Flags().Uint32Var(&cmder.refreshInterval, "refresh-interval", 0, "UI refresh interval in seconds")
	save.Flags().BoolVar(&cmder.notifications, "notifications", false, "Enable notifications")
	save.Flags().BoolVar(&cmder.darkMode, "dark-mode", false, "Enable dark mode")

	reset := &cobra.Command{
		Use:   "reset",
		Short: "Restore the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.reset(cmd)
		},
	}

	cmd.AddCommand(show, save, reset)

	return cmd
}

func (c *settingsCommander) show(cmd *cobra.Command) error {
	rt, err := wiring.Build(*c.opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer rt.Close()

	s, err := rt.Commands.GetSettings()
	if err != nil {
		return err
	}

	render.Settings(cmd.OutOrStdout(), s)
	return nil
}

func (c *settingsCommander) save(cmd *cobra.Command) error {
	rt, err := wiring.Build(*c.opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer rt.Close()

	s, err := rt.Commands.GetSettings()
	if err != nil {
		rt.Logger.Warn("current settings are unusable, starting from the defaults", zap.Error(err))
		s = settings.Defaults()
	}

	flags := cmd.Flags()
	if flags.Changed("api-url") {
		s.APIURL = c.apiURL
	}
	if flags.Changed("refresh-interval") {
		s.RefreshInterval = c.refreshInterval
	}
	if flags.Changed("notifications") {
		s.Notifications = c.notifications
	}
	if flags.Changed("dark-mode") {
		s.DarkMode = c.darkMode
	}

	if err := rt.Commands.SaveSettings(s); err != nil {
		return err
	}

	render.Settings(cmd.OutOrStdout(), s)
	return nil
}

func (c *settingsCommander) reset(cmd *cobra.Command) error {
	rt, err := wiring.Build(*c.opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer rt.Close()

	s, err := rt.Commands.ResetSettings()
	if err != nil {
		return err
	}

	render.Settings(cmd.OutOrStdout(), s)
	return nil
}
