package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"cocbot-go/application"
	"cocbot-go/application/bot"
	"cocbot-go/application/gesture"
	"cocbot-go/core/command"
	"cocbot-go/core/event"
	"cocbot-go/core/eventbus"
	"cocbot-go/domain/coords"
	"cocbot-go/infrastructure/device"
	"cocbot-go/infrastructure/ocr"
)

var runScripts []string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the farming loop",
	Long: `Connects to the configured device and runs the control loop until
interrupted. Attack scripts are replayed round-robin during each battle;
without any the deploy button is tapped instead.

Examples:
  cocbot run
  cocbot run --script preset:edge_spread.json --script ~/raids/left.json`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringArrayVar(&runScripts, "script", nil, "Attack recording path or preset:<file> (repeatable)")
	rootCmd.AddCommand(runCmd)
}

// startBackends starts the device and builds the recognizer concurrently.
func startBackends(ctx context.Context, a *app) (device.Device, ocr.Recognizer, error) {
	dev := a.newDevice()
	var rec ocr.Recognizer

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := dev.Start(gctx); err != nil {
			return fmt.Errorf("starting %s device: %w", dev.Name(), err)
		}
		return nil
	})
	g.Go(func() error {
		r, err := a.newRecognizer()
		if err != nil {
			return fmt.Errorf("starting OCR: %w", err)
		}
		rec = r
		return nil
	})
	err := g.Wait()

	a.onClose(dev.Close)
	if rec != nil {
		a.onClose(func() error { rec.Close(); return nil })
	}
	if err != nil {
		return nil, nil, err
	}
	return dev, rec, nil
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	sequences, err := loadSequences()
	if err != nil {
		return err
	}
	store, err := a.scriptStore()
	if err != nil {
		return err
	}

	dev, rec, err := startBackends(ctx, a)
	if err != nil {
		return err
	}
	if !rec.IsHealthy() {
		fmt.Fprintln(os.Stdout, styleWarning.Render("OCR backend is not healthy yet; readings will be 0 until it is."))
	}

	bus := eventbus.New(256, a.logger)
	defer bus.Close()
	printer := &eventPrinter{w: os.Stdout}
	bus.SubscribeNames(printer.handle,
		(&event.LogMessage{}).EventName(),
		(&event.StateChanged{}).EventName(),
		(&event.BotStopped{}).EventName(),
	)
	stopped := make(chan *event.BotStopped, 1)
	bus.SubscribeNames(func(e event.Event) {
		select {
		case stopped <- e.(*event.BotStopped):
		default:
		}
	}, (&event.BotStopped{}).EventName())

	mapper := coords.NewMapper()
	b := bot.New(&bot.Config{
		Screen:     dev,
		Gestures:   gesture.NewDispatcher(dev, mapper, a.logger),
		Perception: a.newEngine(rec),
		Scripts:    store,
		Buttons:    a.buttons(),
		Resolution: a.resolution(),
		Settings:   a.settings(),
		Sequences:  sequences,
		Mapper:     mapper,
		EventBus:   bus,
		Loop:       loopConfig(a.cfg.Loop),
		Logger:     a.logger,
	})
	coord := application.NewCoordinator(&application.CoordinatorConfig{
		Bot:        b,
		Buttons:    a.buttons(),
		Resolution: a.resolution(),
		Settings:   a.settings(),
		Mapper:     mapper,
		EventBus:   bus,
		Logger:     a.logger,
	})
	coord.Start()
	defer coord.Stop()

	fmt.Fprintln(os.Stdout, styleHeader.Render(fmt.Sprintf("cocbot %s on %s", appVersion, dev.Name())))
	if err := coord.Dispatch(command.NewStartBot(runScripts...)); err != nil {
		return err
	}

	select {
	case e := <-stopped:
		return stopError(e)
	case <-ctx.Done():
	}

	fmt.Fprintln(os.Stdout, styleMuted.Render("Stopping..."))
	if err := coord.Dispatch(&command.StopBot{}); err != nil {
		return err
	}
	select {
	case e := <-stopped:
		return stopError(e)
	case <-time.After(10 * time.Second):
		return fmt.Errorf("bot did not stop in time")
	}
}

func stopError(e *event.BotStopped) error {
	if e.Reason == event.StopReasonBootstrapFailed {
		return e.Error
	}
	return nil
}
