package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"

	"cocbot-go/infrastructure/vision"
)

// Config is the top-level cocbot configuration.
type Config struct {
	Device     Device     `mapstructure:"device"`
	Storage    Storage    `mapstructure:"storage"`
	OCR        OCR        `mapstructure:"ocr"`
	Recordings Recordings `mapstructure:"recordings"`
	Loop       Loop       `mapstructure:"loop"`
	Logging    Logging    `mapstructure:"logging"`
}

// Device selects and configures the screen backend.
type Device struct {
	Backend string  `mapstructure:"backend"`
	ADB     ADB     `mapstructure:"adb"`
	Desktop Desktop `mapstructure:"desktop"`
	Browser Browser `mapstructure:"browser"`
}

// ADB configures an Android device reached through adb.
type ADB struct {
	Path           string        `mapstructure:"path"`
	Serial         string        `mapstructure:"serial"`
	CaptureTimeout time.Duration `mapstructure:"capture_timeout"`
}

// Desktop configures an emulator window on the local display.
type Desktop struct {
	Display int    `mapstructure:"display"`
	Window  Window `mapstructure:"window"`
}

// Window is a rectangle relative to the display origin.
type Window struct {
	X int `mapstructure:"x"`
	Y int `mapstructure:"y"`
	W int `mapstructure:"w"`
	H int `mapstructure:"h"`
}

// Browser configures an emulator page driven through Chrome.
type Browser struct {
	URL         string        `mapstructure:"url"`
	Headless    bool          `mapstructure:"headless"`
	Width       int           `mapstructure:"width"`
	Height      int           `mapstructure:"height"`
	UserDataDir string        `mapstructure:"user_data_dir"`
	LoadTimeout time.Duration `mapstructure:"load_timeout"`
}

// Storage selects the prefs repository.
type Storage struct {
	Backend    string `mapstructure:"backend"`
	SQLitePath string `mapstructure:"sqlite_path"`
	Mongo      Mongo  `mapstructure:"mongo"`
}

// Mongo holds MongoDB connection settings.
type Mongo struct {
	URI            string        `mapstructure:"uri"`
	Database       string        `mapstructure:"database"`
	Collection     string        `mapstructure:"collection"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	PingTimeout    time.Duration `mapstructure:"ping_timeout"`
}

// OCR selects the recognizer and the preprocessing constants.
type OCR struct {
	Backend        string        `mapstructure:"backend"`
	Languages      []string      `mapstructure:"languages"`
	TessdataPrefix string        `mapstructure:"tessdata_prefix"`
	HTTP           OCRHTTPConfig `mapstructure:"http"`
	Tuning         vision.Tuning `mapstructure:"tuning"`
}

// OCRHTTPConfig points at a remote recognition service.
type OCRHTTPConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Recordings locates user attack recordings. Empty uses the platform default.
type Recordings struct {
	Dir string `mapstructure:"dir"`
}

// Loop mirrors the control loop's delays and caps.
type Loop struct {
	StartDelay         time.Duration `mapstructure:"start_delay"`
	BootstrapAttempts  int           `mapstructure:"bootstrap_attempts"`
	BootstrapBackoff   time.Duration `mapstructure:"bootstrap_backoff"`
	NullFrameDelay     time.Duration `mapstructure:"null_frame_delay"`
	IterationDelay     time.Duration `mapstructure:"iteration_delay"`
	PostReinvestDelay  time.Duration `mapstructure:"post_reinvest_delay"`
	MaxSearches        int           `mapstructure:"max_searches"`
	NextSettle         time.Duration `mapstructure:"next_settle"`
	AttackCycleGap     time.Duration `mapstructure:"attack_cycle_gap"`
	MinPlaybackWait    time.Duration `mapstructure:"min_playback_wait"`
	UpgradeMenuSettle  time.Duration `mapstructure:"upgrade_menu_settle"`
	UpgradeTapSettle   time.Duration `mapstructure:"upgrade_tap_settle"`
	WallText           string        `mapstructure:"wall_text"`
	SwipesPerDirection int           `mapstructure:"swipes_per_direction"`
	MaxScrollAttempts  int           `mapstructure:"max_scroll_attempts"`
	ScrollDuration     time.Duration `mapstructure:"scroll_duration"`
	ScrollSettle       time.Duration `mapstructure:"scroll_settle"`
}

// Logging holds the log level name.
type Logging struct {
	Level string `mapstructure:"level"`
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Load reads configuration from cfgFile, or from the default location when
// empty, and applies defaults and COCBOT_ environment overrides. A missing
// file is not an error.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(expandPath(cfgFile))
	} else {
		v.AddConfigPath(expandPath(DefaultConfigDir))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	// Tuning keys are optional overrides of the hand-tuned pipelines.
	cfg := Config{}
	cfg.OCR.Tuning = *vision.DefaultTuning()
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.Storage.SQLitePath = expandPath(cfg.Storage.SQLitePath)
	cfg.Recordings.Dir = expandPath(cfg.Recordings.Dir)
	cfg.Device.Browser.UserDataDir = expandPath(cfg.Device.Browser.UserDataDir)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the backend names.
func (c *Config) Validate() error {
	if !slices.Contains([]string{DeviceADB, DeviceDesktop, DeviceBrowser}, c.Device.Backend) {
		return fmt.Errorf("unknown device backend %q", c.Device.Backend)
	}
	if !slices.Contains([]string{StorageSQLite, StorageMongoDB}, c.Storage.Backend) {
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if !slices.Contains([]string{OCRTesseract, OCRHTTP}, c.OCR.Backend) {
		return fmt.Errorf("unknown ocr backend %q", c.OCR.Backend)
	}
	if c.Device.Backend == DeviceBrowser && c.Device.Browser.URL == "" {
		return errors.New("device.browser.url is required for the browser backend")
	}
	return nil
}

// ConfigDir returns the expanded configuration directory.
func ConfigDir() string {
	return expandPath(DefaultConfigDir)
}
