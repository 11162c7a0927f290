package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"cocbot-go/application/bot"
	"cocbot-go/application/perception"
	"cocbot-go/domain/calibration"
	"cocbot-go/domain/coords"
	"cocbot-go/domain/prefs"
	"cocbot-go/domain/sequence"
	"cocbot-go/domain/settings"
	"cocbot-go/infrastructure/browser"
	"cocbot-go/infrastructure/config"
	"cocbot-go/infrastructure/device"
	"cocbot-go/infrastructure/device/desktop"
	"cocbot-go/infrastructure/logging"
	"cocbot-go/infrastructure/ocr"
	"cocbot-go/infrastructure/ocr/tesseract"
	"cocbot-go/infrastructure/repository"
	"cocbot-go/infrastructure/scriptstore"
	"cocbot-go/infrastructure/vision/cv"
	"cocbot-go/resources"
)

// app holds the configuration, logger and prefs repository shared by every
// command, plus the cleanup of whatever a command opened.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	repo    prefs.Repository
	closers []func() error
}

// openApp loads the config, sets up logging and output styling and opens the
// prefs repository.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if flagNoColor || !colorEnabled(os.Stdout) {
		setNoColor()
	}

	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	if flagVerbose {
		level = slog.LevelDebug
	}
	logCfg := logging.DefaultConfig()
	logCfg.Level = level
	logger, closeLog, err := logging.Setup(logCfg)
	if err != nil {
		return nil, fmt.Errorf("setting up logging: %w", err)
	}

	a := &app{cfg: cfg, logger: logger}
	a.onClose(closeLog)

	repo, closeRepo, err := openRepository(ctx, cfg.Storage, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.repo = repo
	a.onClose(closeRepo)
	return a, nil
}

func (a *app) onClose(fn func() error) {
	a.closers = append(a.closers, fn)
}

// Close runs the cleanups in reverse order.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("Cleanup failed", "error", err)
		}
	}
	a.closers = nil
}

func (a *app) buttons() *calibration.ButtonStore {
	return calibration.NewButtonStore(a.repo)
}

func (a *app) resolution() *calibration.ResolutionStore {
	return calibration.NewResolutionStore(a.repo)
}

func (a *app) settings() *settings.Service {
	return settings.NewService(a.repo)
}

func openRepository(ctx context.Context, cfg config.Storage, logger *slog.Logger) (prefs.Repository, func() error, error) {
	switch cfg.Backend {
	case config.StorageMongoDB:
		db, err := repository.NewMongoDB(ctx, mongoConfig(cfg.Mongo), logger)
		if err != nil {
			return nil, nil, err
		}
		repo, err := db.OpenPrefs(ctx)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return repo, db.Close, nil
	default:
		repo, err := repository.OpenSQLite(cfg.SQLitePath, logger)
		if err != nil {
			return nil, nil, err
		}
		return repo, repo.Close, nil
	}
}

func mongoConfig(c config.Mongo) *repository.MongoDBConfig {
	return &repository.MongoDBConfig{
		URI:            c.URI,
		Database:       c.Database,
		Collection:     c.Collection,
		ConnectTimeout: c.ConnectTimeout,
		PingTimeout:    c.PingTimeout,
	}
}

// newDevice builds the configured backend without starting it.
func (a *app) newDevice() device.Device {
	c := a.cfg.Device
	switch c.Backend {
	case config.DeviceDesktop:
		return desktop.New(&desktop.Config{
			Display: c.Desktop.Display,
			Window:  coords.Region{X: c.Desktop.Window.X, Y: c.Desktop.Window.Y, W: c.Desktop.Window.W, H: c.Desktop.Window.H},
			Logger:  a.logger,
		})
	case config.DeviceBrowser:
		bc := browser.DefaultConfig()
		bc.URL = c.Browser.URL
		bc.Headless = c.Browser.Headless
		bc.ViewportWidth = c.Browser.Width
		bc.ViewportHeight = c.Browser.Height
		bc.UserDataDir = c.Browser.UserDataDir
		bc.LoadTimeout = c.Browser.LoadTimeout
		bc.Logger = a.logger
		return browser.New(bc)
	default:
		return device.NewADBDevice(&device.ADBConfig{
			Path:           c.ADB.Path,
			Serial:         c.ADB.Serial,
			CaptureTimeout: c.ADB.CaptureTimeout,
			Logger:         a.logger,
		})
	}
}

// newRecognizer builds the configured OCR backend.
func (a *app) newRecognizer() (ocr.Recognizer, error) {
	c := a.cfg.OCR
	if c.Backend == config.OCRHTTP {
		hc := ocr.DefaultHTTPConfig()
		hc.BaseURL = c.HTTP.BaseURL
		if c.HTTP.Timeout > 0 {
			hc.Timeout = c.HTTP.Timeout
		}
		hc.Logger = a.logger
		return ocr.NewHTTPRecognizer(hc), nil
	}
	return tesseract.New(&tesseract.Config{
		Languages:      c.Languages,
		TessdataPrefix: c.TessdataPrefix,
		Logger:         a.logger,
	})
}

// newEngine pairs the preprocessor with rec. The preprocessor is closed with the app.
func (a *app) newEngine(rec ocr.Recognizer) *perception.Engine {
	tuning := a.cfg.OCR.Tuning
	pre := cv.New(&tuning, a.logger)
	a.onClose(pre.Close)
	return perception.NewEngine(&perception.Config{
		Preprocessor: pre,
		Recognizer:   rec,
		Logger:       a.logger,
	})
}

func (a *app) scriptStore() (*scriptstore.Store, error) {
	return scriptstore.New(&scriptstore.Config{
		Dir:     a.cfg.Recordings.Dir,
		Presets: resources.PresetFiles,
		Logger:  a.logger,
	})
}

func loadSequences() (*sequence.Registry, error) {
	reg := sequence.NewRegistry()
	if err := sequence.NewLoader(reg).LoadFromFS(resources.SequenceFiles); err != nil {
		return nil, fmt.Errorf("loading sequences: %w", err)
	}
	return reg, nil
}

func loopConfig(c config.Loop) *bot.LoopConfig {
	return &bot.LoopConfig{
		StartDelay:         c.StartDelay,
		BootstrapAttempts:  c.BootstrapAttempts,
		BootstrapBackoff:   c.BootstrapBackoff,
		NullFrameDelay:     c.NullFrameDelay,
		IterationDelay:     c.IterationDelay,
		PostReinvestDelay:  c.PostReinvestDelay,
		MaxSearches:        c.MaxSearches,
		NextSettle:         c.NextSettle,
		AttackCycleGap:     c.AttackCycleGap,
		MinPlaybackWait:    c.MinPlaybackWait,
		UpgradeMenuSettle:  c.UpgradeMenuSettle,
		UpgradeTapSettle:   c.UpgradeTapSettle,
		WallText:           c.WallText,
		SwipesPerDirection: c.SwipesPerDirection,
		MaxScrollAttempts:  c.MaxScrollAttempts,
		ScrollDuration:     c.ScrollDuration,
		ScrollSettle:       c.ScrollSettle,
	}
}

// calibrate sets the physical size from dev and the game resolution from the
// stored value or, failing that, from one live frame.
func (a *app) calibrate(ctx context.Context, dev device.Device, mapper *coords.Mapper) error {
	size, err := dev.ScreenSize(ctx)
	if err != nil {
		return fmt.Errorf("reading screen size: %w", err)
	}
	mapper.SetPhysical(size.Width, size.Height)

	res, err := a.resolution().Load(ctx)
	if err != nil {
		return err
	}
	if !res.IsZero() {
		mapper.Establish(res.Width, res.Height)
		return nil
	}

	frame, err := dev.Capture(ctx)
	if err != nil {
		return fmt.Errorf("capturing a reference frame: %w", err)
	}
	if frame == nil {
		return fmt.Errorf("no frame available from %s", dev.Name())
	}
	b := frame.Bounds()
	mapper.Establish(b.Dx(), b.Dy())
	return a.resolution().Save(ctx, mapper.Game())
}
