package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cocbot-go/core/command"
	"cocbot-go/domain/coords"
)

var resolutionCmd = &cobra.Command{
	Use:   "resolution",
	Short: "Show or reset the stored game resolution",
}

var resolutionShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored game resolution and derived regions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.resolution().Load(cmd.Context())
		if err != nil {
			return err
		}
		if res.IsZero() {
			fmt.Fprintln(os.Stdout, styleMuted.Render("not established; it is measured on the next run"))
			return nil
		}

		fmt.Fprintf(os.Stdout, "%s %s\n\n", styleHeader.Render("game resolution"), res)
		regions := coords.DeriveRegions(res)
		t := newTable("REGION", "AREA")
		t.addRow("player gold", regions.PlayerGold.String())
		t.addRow("player elixir", regions.PlayerElixir.String())
		t.addRow("enemy gold", regions.EnemyGold.String())
		t.addRow("enemy elixir", regions.EnemyElixir.String())
		t.addRow("upgrade search", regions.UpgradeSearch.String())
		t.addRow("wall price", regions.WallPrice.String())
		fmt.Fprint(os.Stdout, t.render())
		return nil
	},
}

var resolutionResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget the stored game resolution",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if err := newCalibrator(a, coords.NewMapper()).Dispatch(&command.ResetResolution{}); err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, styleSuccess.Render("game resolution reset"))
		return nil
	},
}

func init() {
	resolutionCmd.AddCommand(resolutionShowCmd, resolutionResetCmd)
	rootCmd.AddCommand(resolutionCmd)
}
