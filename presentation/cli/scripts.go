package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"cocbot-go/domain/recording"
)

var scriptsCmd = &cobra.Command{
	Use:   "scripts",
	Short: "Inspect attack recordings",
}

var scriptsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List user recordings and bundled presets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		store, err := a.scriptStore()
		if err != nil {
			return err
		}
		infos := store.ListAll()
		if len(infos) == 0 {
			fmt.Fprintln(os.Stdout, styleMuted.Render("no recordings in "+store.Dir()))
			return nil
		}

		t := newTable("NAME", "SOURCE", "ACTIONS", "DURATION", "PATH")
		for _, info := range infos {
			t.addRow(info.Name, string(info.Source), strconv.Itoa(info.Actions),
				fmt.Sprintf("%.1fs", info.Duration), info.Path)
		}
		fmt.Fprint(os.Stdout, t.render())
		return nil
	},
}

var scriptsShowCmd = &cobra.Command{
	Use:   "show PATH",
	Short: "Print the gestures a recording replays",
	Long: `Prints the gestures a recording replays, in script coordinates (960x540).

Examples:
  cocbot scripts show preset:edge_spread.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		store, err := a.scriptStore()
		if err != nil {
			return err
		}
		rec := store.Load(args[0])
		if rec == nil {
			return fmt.Errorf("cannot load %s", args[0])
		}

		fmt.Fprintf(os.Stdout, "%s  %d actions, schema %d\n\n",
			styleHeader.Render(rec.Metadata.Name), len(rec.Actions), rec.Metadata.SchemaVersion)
		t := newTable("START", "TYPE", "FROM", "TO", "DURATION")
		for _, g := range recording.Summarize(rec.Actions) {
			t.addRow(
				fmt.Sprintf("%dms", g.StartTimeMs),
				string(g.Type),
				fmt.Sprintf("%d,%d", g.Start.X, g.Start.Y),
				fmt.Sprintf("%d,%d", g.End.X, g.End.Y),
				fmt.Sprintf("%dms", g.DurationMs),
			)
		}
		fmt.Fprint(os.Stdout, t.render())
		return nil
	},
}

func init() {
	scriptsCmd.AddCommand(scriptsListCmd, scriptsShowCmd)
	rootCmd.AddCommand(scriptsCmd)
}
