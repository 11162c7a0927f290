// Package perception reads numbers and words from captured frames.
//
// Every read crops a region, runs several preprocessing pipelines over the
// crop, recognizes each output independently and votes on the candidates.
// Failures inside a pipeline only remove that pipeline's candidate.
package perception

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"cocbot-go/domain/coords"
	"cocbot-go/infrastructure/ocr"
	"cocbot-go/infrastructure/vision"
)

// Background selects the primary pipeline for a resource counter.
type Background int

const (
	// BackgroundDark is white text on a dark or colored background.
	BackgroundDark Background = iota
	// BackgroundPurple is white text on the purple loot banner.
	BackgroundPurple
)

// Reading is a pair of resource counters.
type Reading struct {
	Gold   int
	Elixir int
}

func (r Reading) String() string {
	return fmt.Sprintf("gold=%d elixir=%d", r.Gold, r.Elixir)
}

// Config holds configuration for an Engine.
type Config struct {
	Preprocessor vision.Preprocessor
	Recognizer   ocr.Recognizer
	Logger       *slog.Logger
	// AltWhiteScale is the upscale factor of the second white-text pipeline.
	AltWhiteScale float64
	// WallWhiteScale is the upscale factor of the white-text wall price pipeline.
	WallWhiteScale float64
	// TextBands splits a search region into this many rows for FindTextRow.
	TextBands int
}

// DefaultConfig returns the default pipeline parameters without backends.
func DefaultConfig() *Config {
	return &Config{
		AltWhiteScale:  12,
		WallWhiteScale: 9,
		TextBands:      6,
	}
}

// Engine is the OCR ensemble.
type Engine struct {
	pre            vision.Preprocessor
	rec            ocr.Recognizer
	logger         *slog.Logger
	altWhiteScale  float64
	wallWhiteScale float64
	textBands      int
}

// NewEngine creates an engine. Zero numeric fields fall back to DefaultConfig.
func NewEngine(cfg *Config) *Engine {
	def := DefaultConfig()
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.AltWhiteScale <= 0 {
		cfg.AltWhiteScale = def.AltWhiteScale
	}
	if cfg.WallWhiteScale <= 0 {
		cfg.WallWhiteScale = def.WallWhiteScale
	}
	if cfg.TextBands <= 0 {
		cfg.TextBands = def.TextBands
	}
	return &Engine{
		pre:            cfg.Preprocessor,
		rec:            cfg.Recognizer,
		logger:         cfg.Logger.With("component", "ocr"),
		altWhiteScale:  cfg.AltWhiteScale,
		wallWhiteScale: cfg.WallWhiteScale,
		textBands:      cfg.TextBands,
	}
}

// resourcePipelines returns the four pipelines voted on for a counter.
func (e *Engine) resourcePipelines(bg Background) []vision.Spec {
	primary := vision.Spec{Kind: vision.KindWhiteText}
	if bg == BackgroundPurple {
		primary = vision.Spec{Kind: vision.KindPurple}
	}
	return []vision.Spec{
		primary,
		{Kind: vision.KindWhiteText, Scale: e.altWhiteScale},
		{Kind: vision.KindGray},
		{Kind: vision.KindInverted},
	}
}

// ReadResource reads one counter. It returns 0 when the region is outside
// the frame or no pipeline produced a number.
func (e *Engine) ReadResource(ctx context.Context, frame image.Image, region coords.Region, bg Background) int {
	roi, ok := e.crop(frame, region)
	if !ok {
		return 0
	}

	var candidates []int
	for _, spec := range e.resourcePipelines(bg) {
		if ctx.Err() != nil {
			return 0
		}
		if v := e.recognizeNumber(ctx, roi, spec); v > 0 {
			candidates = append(candidates, v)
		}
	}

	value := Vote(candidates)
	e.logger.Debug("Resource read", "region", region, "candidates", candidates, "value", value)
	return value
}

// ReadResources reads a gold and an elixir counter.
func (e *Engine) ReadResources(ctx context.Context, frame image.Image, gold, elixir coords.Region, elixirBg Background) Reading {
	return Reading{
		Gold:   e.ReadResource(ctx, frame, gold, BackgroundDark),
		Elixir: e.ReadResource(ctx, frame, elixir, elixirBg),
	}
}

// ReadPlayer reads the player's own counters.
func (e *Engine) ReadPlayer(ctx context.Context, frame image.Image, regions coords.RegionSet) Reading {
	return e.ReadResources(ctx, frame, regions.PlayerGold, regions.PlayerElixir, BackgroundDark)
}

// ReadEnemy reads the opponent's available loot. Elixir sits on a purple banner.
func (e *Engine) ReadEnemy(ctx context.Context, frame image.Image, regions coords.RegionSet) Reading {
	return e.ReadResources(ctx, frame, regions.EnemyGold, regions.EnemyElixir, BackgroundPurple)
}

// FindText reports whether needle appears in region (or the whole frame when
// region is nil) and returns the region's centroid in frame coordinates.
func (e *Engine) FindText(ctx context.Context, frame image.Image, needle string, region *coords.Region) (coords.Point, bool) {
	if frame == nil {
		return coords.Point{}, false
	}
	area := regionOf(frame.Bounds())
	if region != nil {
		area = *region
	}

	roi, ok := e.crop(frame, area)
	if !ok {
		return coords.Point{}, false
	}

	text, err := e.recognize(ctx, roi, vision.Spec{Kind: vision.KindText}, ocr.CharsetLetters, ocr.SegAuto)
	if err != nil {
		e.logger.Debug("Text search failed", "needle", needle, "error", err)
		return coords.Point{}, false
	}
	if !strings.Contains(strings.ToLower(text), strings.ToLower(needle)) {
		return coords.Point{}, false
	}

	center := area.Center()
	e.logger.Debug("Text found", "needle", needle, "at", center)
	return center, true
}

// FindTextRow scans region in horizontal bands and returns the centroid of
// the first band containing needle. When no single band matches, a match on
// the whole region still returns the region centroid.
func (e *Engine) FindTextRow(ctx context.Context, frame image.Image, needle string, region coords.Region) (coords.Point, bool) {
	for _, band := range region.Bands(e.textBands) {
		if ctx.Err() != nil {
			return coords.Point{}, false
		}
		if p, ok := e.FindText(ctx, frame, needle, &band); ok {
			return p, true
		}
	}
	if e.textBands <= 1 {
		return coords.Point{}, false
	}
	return e.FindText(ctx, frame, needle, &region)
}

// ReadWallPrice reads an upgrade price restricted to AllowedWallPrices.
// It returns (0, "") when nothing valid was read.
func (e *Engine) ReadWallPrice(ctx context.Context, frame image.Image, region coords.Region) (int, string) {
	roi, ok := e.crop(frame, region)
	if !ok {
		return 0, ""
	}

	specs := []vision.Spec{
		{Kind: vision.KindGold},
		{Kind: vision.KindWhiteText, Scale: e.wallWhiteScale},
	}

	var valid []int
	for _, spec := range specs {
		v := e.recognizeNumber(ctx, roi, spec)
		if IsAllowedWallPrice(v) {
			valid = append(valid, v)
		}
	}

	price := Vote(valid)
	if price == 0 {
		return 0, ""
	}
	return price, strconv.Itoa(price)
}

// recognizeNumber runs one pipeline and parses its digits. Errors and panics
// yield 0.
func (e *Engine) recognizeNumber(ctx context.Context, roi image.Image, spec vision.Spec) int {
	text, err := e.recognize(ctx, roi, spec, ocr.CharsetDigits, ocr.SegSingleLine)
	if err != nil {
		e.logger.Debug("Pipeline produced no candidate", "pipeline", spec, "error", err)
		return 0
	}
	return parseDigits(text)
}

func (e *Engine) recognize(ctx context.Context, roi image.Image, spec vision.Spec, charset string, mode ocr.SegMode) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pipeline %s panicked: %v", spec, r)
		}
	}()

	processed, err := e.pre.Process(roi, spec)
	if err != nil {
		return "", fmt.Errorf("failed to preprocess: %w", err)
	}
	return e.rec.Recognize(ctx, processed, charset, mode)
}

// crop validates region against the frame and returns a copy of that area.
func (e *Engine) crop(frame image.Image, region coords.Region) (image.Image, bool) {
	if frame == nil {
		e.logger.Warn("No frame to read")
		return nil, false
	}
	b := frame.Bounds()
	local := region.Rect().Add(b.Min)
	if !region.Within(image.Rect(0, 0, b.Dx(), b.Dy())) {
		e.logger.Warn("Invalid region bounds", "region", region, "frame", fmt.Sprintf("%dx%d", b.Dx(), b.Dy()))
		return nil, false
	}

	dst := image.NewRGBA(image.Rect(0, 0, local.Dx(), local.Dy()))
	draw.Draw(dst, dst.Bounds(), frame, local.Min, draw.Src)
	return dst, true
}

func regionOf(r image.Rectangle) coords.Region {
	return coords.Region{X: 0, Y: 0, W: r.Dx(), H: r.Dy()}
}

var nonDigits = regexp.MustCompile(`[^0-9]`)

// parseDigits keeps only digits; unparsable or empty text is 0.
func parseDigits(text string) int {
	clean := nonDigits.ReplaceAllString(text, "")
	if clean == "" {
		return 0
	}
	v, err := strconv.Atoi(clean)
	if err != nil || v < 0 {
		return 0
	}
	return v
}
