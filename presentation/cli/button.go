package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"cocbot-go/application"
	"cocbot-go/core/command"
	"cocbot-go/domain/calibration"
	"cocbot-go/domain/coords"
)

var buttonScreen bool

var buttonCmd = &cobra.Command{
	Use:   "button",
	Short: "Calibrate the positions of game buttons",
}

var buttonSetCmd = &cobra.Command{
	Use:   "set NAME X Y",
	Short: "Store a button position",
	Long: `Stores a button position in game coordinates (the pixel grid of the
captured frames). With --screen, X and Y are raw screen coordinates and are
converted using the connected device.

Examples:
  cocbot button set next 2210 880
  cocbot button set attack 120 980 --screen`,
	Args: cobra.ExactArgs(3),
	RunE: runButtonSet,
}

var buttonListCmd = &cobra.Command{
	Use:   "list",
	Short: "List calibrated buttons",
	Args:  cobra.NoArgs,
	RunE:  runButtonList,
}

var buttonClearCmd = &cobra.Command{
	Use:   "clear NAME",
	Short: "Forget a button position",
	Args:  cobra.ExactArgs(1),
	RunE:  runButtonClear,
}

func init() {
	buttonSetCmd.Flags().BoolVar(&buttonScreen, "screen", false, "Interpret X Y as raw screen coordinates")
	buttonCmd.AddCommand(buttonSetCmd, buttonListCmd, buttonClearCmd)
	rootCmd.AddCommand(buttonCmd)
}

func parsePoint(xs, ys string) (coords.Point, error) {
	x, err := strconv.ParseFloat(xs, 64)
	if err != nil {
		return coords.Point{}, fmt.Errorf("invalid x %q", xs)
	}
	y, err := strconv.ParseFloat(ys, 64)
	if err != nil {
		return coords.Point{}, fmt.Errorf("invalid y %q", ys)
	}
	if x < 0 || y < 0 {
		return coords.Point{}, fmt.Errorf("coordinates must not be negative")
	}
	return coords.Point{X: x, Y: y}, nil
}

// newCalibrator builds a coordinator without a bot for one-shot calibration commands.
func newCalibrator(a *app, mapper *coords.Mapper) *application.Coordinator {
	return application.NewCoordinator(&application.CoordinatorConfig{
		Buttons:    a.buttons(),
		Resolution: a.resolution(),
		Settings:   a.settings(),
		Mapper:     mapper,
		Logger:     a.logger,
	})
}

func runButtonSet(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	key, err := calibration.ParseButton(args[0])
	if err != nil {
		return err
	}
	p, err := parsePoint(args[1], args[2])
	if err != nil {
		return err
	}

	mapper := coords.NewMapper()
	if buttonScreen {
		if err := connectAndCalibrate(ctx, a, mapper); err != nil {
			return err
		}
	}

	// Without a calibrated mapper ScreenToGame is the identity.
	coord := newCalibrator(a, mapper)
	if err := coord.Dispatch(&command.SaveButton{Key: key.Name(), RawX: p.X, RawY: p.Y}); err != nil {
		return err
	}

	stored, _, err := a.buttons().Get(ctx, key)
	if err != nil {
		return err
	}
	at := stored.Round()
	fmt.Fprintf(os.Stdout, "%s %s at (%d, %d)\n", styleSuccess.Render("saved"), styleBold.Render(key.Name()), at.X, at.Y)
	return nil
}

// connectAndCalibrate starts the device and fills mapper from it.
func connectAndCalibrate(ctx context.Context, a *app, mapper *coords.Mapper) error {
	dev := a.newDevice()
	if err := dev.Start(ctx); err != nil {
		return fmt.Errorf("starting %s device: %w", dev.Name(), err)
	}
	a.onClose(dev.Close)
	return a.calibrate(ctx, dev, mapper)
}

func runButtonList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	all, err := a.buttons().All(ctx)
	if err != nil {
		return err
	}

	t := newTable("BUTTON", "X", "Y")
	for _, key := range calibration.AllButtons {
		p, ok := all[key]
		if !ok {
			t.addRow(key.Name(), styleMuted.Render("-"), styleMuted.Render("-"))
			continue
		}
		at := p.Round()
		t.addRow(key.Name(), strconv.Itoa(at.X), strconv.Itoa(at.Y))
	}
	fmt.Fprint(os.Stdout, t.render())
	return nil
}

func runButtonClear(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if err := newCalibrator(a, coords.NewMapper()).Dispatch(&command.ClearButton{Key: args[0]}); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "%s %s\n", styleSuccess.Render("cleared"), args[0])
	return nil
}
