package cli

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/spf13/cobra"

	"cocbot-go/domain/coords"
	"cocbot-go/domain/settings"
)

var (
	ocrImage     string
	ocrWallPrice bool
)

var ocrCmd = &cobra.Command{
	Use:   "ocr",
	Short: "Debug the resource readers",
}

var ocrReadCmd = &cobra.Command{
	Use:   "read",
	Short: "Read the resource counters from a saved screenshot",
	Long: `Runs the player and enemy readers over a saved screenshot. The image size
is taken as the game resolution.

Examples:
  cocbot ocr read --image village.png
  cocbot ocr read --image upgrade_menu.png --wall-price`,
	Args: cobra.NoArgs,
	RunE: runOCRRead,
}

func init() {
	ocrReadCmd.Flags().StringVar(&ocrImage, "image", "", "PNG or JPEG screenshot")
	ocrReadCmd.Flags().BoolVar(&ocrWallPrice, "wall-price", false, "Also read the wall upgrade price")
	_ = ocrReadCmd.MarkFlagRequired("image")
	ocrCmd.AddCommand(ocrReadCmd)
	rootCmd.AddCommand(ocrCmd)
}

func runOCRRead(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	f, err := os.Open(ocrImage)
	if err != nil {
		return err
	}
	frame, _, err := image.Decode(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("decoding %s: %w", ocrImage, err)
	}

	rec, err := a.newRecognizer()
	if err != nil {
		return err
	}
	defer rec.Close()
	engine := a.newEngine(rec)

	b := frame.Bounds()
	regions := coords.DeriveRegions(coords.Resolution{Width: b.Dx(), Height: b.Dy()})

	player := engine.ReadPlayer(ctx, frame, regions)
	enemy := engine.ReadEnemy(ctx, frame, regions)

	t := newTable("READER", "GOLD", "ELIXIR")
	t.addRow("player", settings.FormatK(player.Gold), settings.FormatK(player.Elixir))
	t.addRow("enemy", settings.FormatK(enemy.Gold), settings.FormatK(enemy.Elixir))
	fmt.Fprintf(os.Stdout, "%s %dx%d\n\n", styleHeader.Render(ocrImage), b.Dx(), b.Dy())
	fmt.Fprint(os.Stdout, t.render())

	if ocrWallPrice {
		price, label := engine.ReadWallPrice(ctx, frame, regions.WallPrice)
		if price == 0 {
			fmt.Fprintln(os.Stdout, styleMuted.Render("wall price: not found"))
		} else {
			fmt.Fprintf(os.Stdout, "wall price: %s (%d)\n", label, price)
		}
	}
	return nil
}
