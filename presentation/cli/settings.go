package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cocbot-go/core/command"
	"cocbot-go/domain/coords"
	"cocbot-go/domain/settings"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change bot settings",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current bot settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		s, err := a.settings().Load(cmd.Context())
		if err != nil {
			return err
		}
		t := newTable("KEY", "VALUE")
		for _, key := range settings.Keys() {
			t.addRow(key, s.Value(key))
		}
		fmt.Fprint(os.Stdout, t.render())
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Change one setting",
	Long: `Changes one setting. Amounts accept k and m suffixes.

Examples:
  cocbot settings set gold_threshold 350k
  cocbot settings set upgrade_gold 8m
  cocbot settings set enable_wall false`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if err := newCalibrator(a, coords.NewMapper()).Dispatch(&command.UpdateSetting{Key: args[0], Value: args[1]}); err != nil {
			return err
		}
		s, err := a.settings().Load(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "%s %s = %s\n", styleSuccess.Render("set"), args[0], s.Value(args[0]))
		return nil
	},
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd, settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}
