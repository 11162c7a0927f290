// Package config loads the cocbot configuration file.
package config

import "time"

// DefaultConfigDir is the default location for cocbot configuration.
const DefaultConfigDir = "~/.config/cocbot"

// DefaultDBName is the filename of the SQLite prefs database.
const DefaultDBName = "cocbot.db"

// EnvPrefix prefixes environment overrides, e.g. COCBOT_DEVICE_BACKEND.
const EnvPrefix = "COCBOT"

// Device backends.
const (
	DeviceADB     = "adb"
	DeviceDesktop = "desktop"
	DeviceBrowser = "browser"
)

// Storage backends.
const (
	StorageSQLite  = "sqlite"
	StorageMongoDB = "mongodb"
)

// OCR backends.
const (
	OCRTesseract = "tesseract"
	OCRHTTP      = "http"
)

var defaults = map[string]any{
	"device.backend":                DeviceADB,
	"device.adb.path":               "adb",
	"device.adb.serial":             "",
	"device.adb.capture_timeout":    5 * time.Second,
	"device.desktop.display":        0,
	"device.desktop.window.x":       0,
	"device.desktop.window.y":       0,
	"device.desktop.window.w":       0,
	"device.desktop.window.h":       0,
	"device.browser.url":            "",
	"device.browser.headless":       true,
	"device.browser.width":          1280,
	"device.browser.height":         720,
	"device.browser.user_data_dir":  "",
	"device.browser.load_timeout":   30 * time.Second,
	"storage.backend":               StorageSQLite,
	"storage.sqlite_path":           DefaultConfigDir + "/" + DefaultDBName,
	"storage.mongo.uri":             "mongodb://localhost:27017",
	"storage.mongo.database":        "cocbot",
	"storage.mongo.collection":      "prefs",
	"storage.mongo.connect_timeout": 10 * time.Second,
	"storage.mongo.ping_timeout":    5 * time.Second,
	"ocr.backend":                   OCRTesseract,
	"ocr.languages":                 []string{"eng"},
	"ocr.tessdata_prefix":           "",
	"ocr.http.base_url":             "http://localhost:8000",
	"ocr.http.timeout":              10 * time.Second,
	"recordings.dir":                "",
	"loop.start_delay":              time.Second,
	"loop.bootstrap_attempts":       5,
	"loop.bootstrap_backoff":        500 * time.Millisecond,
	"loop.null_frame_delay":         2 * time.Second,
	"loop.iteration_delay":          3 * time.Second,
	"loop.post_reinvest_delay":      2 * time.Second,
	"loop.max_searches":             99,
	"loop.next_settle":              5 * time.Second,
	"loop.attack_cycle_gap":         200 * time.Millisecond,
	"loop.min_playback_wait":        10 * time.Millisecond,
	"loop.upgrade_menu_settle":      time.Second,
	"loop.upgrade_tap_settle":       time.Second,
	"loop.wall_text":                "wall",
	"loop.swipes_per_direction":     3,
	"loop.max_scroll_attempts":      12,
	"loop.scroll_duration":          400 * time.Millisecond,
	"loop.scroll_settle":            800 * time.Millisecond,
	"logging.level":                 "info",
}
