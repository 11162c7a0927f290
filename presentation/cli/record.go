package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"cocbot-go/application"
	"cocbot-go/application/gesture"
	"cocbot-go/application/recorder"
	"cocbot-go/core/command"
	"cocbot-go/domain/coords"
)

var (
	recordName          string
	recordNoPassThrough bool
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record an attack script from touch samples on stdin",
	Long: `Reads raw screen touches from stdin, one per line as "<down|move|up> X Y",
until end of input, and saves them as an attack recording. Samples are timed
as they arrive. Each down is also tapped on the device unless
--no-pass-through is set.

Examples:
  touch-feed | cocbot record --name left_flank`,
	Args: cobra.NoArgs,
	RunE: runRecord,
}

func init() {
	recordCmd.Flags().StringVar(&recordName, "name", "attack", "Name of the recording")
	recordCmd.Flags().BoolVar(&recordNoPassThrough, "no-pass-through", false, "Do not forward downs to the device")
	rootCmd.AddCommand(recordCmd)
}

// touchSample is one parsed stdin line.
type touchSample struct {
	kind string
	x, y float64
}

// parseTouchLine parses "<kind> X Y". Blank lines and # comments yield ok=false.
func parseTouchLine(line string) (touchSample, bool, error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return touchSample{}, false, nil
	}
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return touchSample{}, false, fmt.Errorf("want \"<kind> X Y\", got %q", line)
	}
	x, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return touchSample{}, false, fmt.Errorf("invalid x in %q", line)
	}
	y, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return touchSample{}, false, fmt.Errorf("invalid y in %q", line)
	}
	return touchSample{kind: strings.ToLower(fields[0]), x: x, y: y}, true, nil
}

func runRecord(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	store, err := a.scriptStore()
	if err != nil {
		return err
	}

	dev := a.newDevice()
	if err := dev.Start(ctx); err != nil {
		return fmt.Errorf("starting %s device: %w", dev.Name(), err)
	}
	a.onClose(dev.Close)

	mapper := coords.NewMapper()
	if err := a.calibrate(ctx, dev, mapper); err != nil {
		return err
	}

	recCfg := &recorder.Config{Mapper: mapper, Store: store, Logger: a.logger}
	if !recordNoPassThrough {
		recCfg.PassThrough = gesture.NewDispatcher(dev, mapper, a.logger)
	}
	coord := application.NewCoordinator(&application.CoordinatorConfig{
		Recorder:   recorder.New(recCfg),
		Buttons:    a.buttons(),
		Resolution: a.resolution(),
		Settings:   a.settings(),
		Mapper:     mapper,
		Logger:     a.logger,
	})
	coord.Start()
	defer coord.Stop()

	if err := coord.Dispatch(&command.StartRecording{}); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "%s game %s, screen %s. End input to save.\n",
		styleHeader.Render("recording"), mapper.Game(), mapper.Physical())

	count, err := feedTouches(ctx, os.Stdin, coord)
	if err != nil {
		return err
	}

	if err := coord.Dispatch(&command.StopRecording{Name: recordName}); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "%s %d samples as %s\n", styleSuccess.Render("saved"), count, recordName)
	return nil
}

// feedTouches dispatches each stdin sample until EOF or cancellation.
// Malformed lines are reported and skipped.
func feedTouches(ctx context.Context, r io.Reader, coord *application.Coordinator) (int, error) {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- sc.Err()
	}()

	count := 0
	for {
		select {
		case <-ctx.Done():
			return count, ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return count, err
				default:
					return count, nil
				}
			}
			sample, ok, err := parseTouchLine(line)
			if err != nil {
				fmt.Fprintln(os.Stderr, styleWarning.Render(err.Error()))
				continue
			}
			if !ok {
				continue
			}
			if err := coord.Dispatch(&command.RecordTouch{Type: sample.kind, RawX: sample.x, RawY: sample.y}); err != nil {
				fmt.Fprintln(os.Stderr, styleWarning.Render(err.Error()))
				continue
			}
			count++
		}
	}
}
