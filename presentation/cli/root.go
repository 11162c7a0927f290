// Package cli contains the cobra command tree for cocbot.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var appVersion = "dev"

var (
	flagConfig  string
	flagVerbose bool
	flagNoColor bool
)

var rootCmd = &cobra.Command{
	Use:   "cocbot",
	Short: "Farm loot and upgrade walls on an emulated device",
	Long: `cocbot watches an emulated phone screen, reads resource counters with OCR,
skips opponents until one is worth attacking, replays recorded attack scripts
and spends surplus storage on wall upgrades.

Calibrate the buttons first ('cocbot button set'), then start the loop with
'cocbot run'.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the command tree with the build version.
func Execute(version string) {
	appVersion = version
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, styleError.Render("error:"), err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: ~/.config/cocbot/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
}
