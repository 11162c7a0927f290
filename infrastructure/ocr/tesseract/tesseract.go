// Package tesseract implements ocr.Recognizer with the Tesseract engine.
package tesseract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"sync"

	"github.com/otiai10/gosseract/v2"

	"cocbot-go/infrastructure/ocr"
)

// Config holds Tesseract options.
type Config struct {
	// Languages passed to SetLanguage. Defaults to "eng".
	Languages []string
	// TessdataPrefix overrides the tessdata directory when set.
	TessdataPrefix string
	Logger         *slog.Logger
}

// Recognizer wraps a single gosseract client.
// The client is not safe for concurrent use, so calls are serialized.
type Recognizer struct {
	mu     sync.Mutex
	client *gosseract.Client
	logger *slog.Logger
}

// New creates a Tesseract recognizer.
func New(cfg *Config) (*Recognizer, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if len(cfg.Languages) == 0 {
		cfg.Languages = []string{"eng"}
	}

	client := gosseract.NewClient()
	if cfg.TessdataPrefix != "" {
		client.TessdataPrefix = cfg.TessdataPrefix
	}
	if err := client.SetLanguage(cfg.Languages...); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set OCR language: %w", err)
	}

	return &Recognizer{
		client: client,
		logger: cfg.Logger.With("component", "tesseract"),
	}, nil
}

// Recognize runs Tesseract over img with the given whitelist and segmentation.
func (r *Recognizer) Recognize(ctx context.Context, img image.Image, charset string, mode ocr.SegMode) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.client == nil {
		return "", ocr.ErrClosed
	}
	if err := r.client.SetWhitelist(charset); err != nil {
		return "", fmt.Errorf("failed to set whitelist: %w", err)
	}
	if err := r.client.SetPageSegMode(pageSegMode(mode)); err != nil {
		return "", fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	if err := r.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := r.client.Text()
	if err != nil {
		return "", fmt.Errorf("failed to recognize text: %w", err)
	}
	return text, nil
}

func pageSegMode(mode ocr.SegMode) gosseract.PageSegMode {
	if mode == ocr.SegAuto {
		return gosseract.PSM_AUTO
	}
	return gosseract.PSM_SINGLE_LINE
}

// IsHealthy reports whether the recognizer is still open.
func (r *Recognizer) IsHealthy() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.client != nil
}

// Close releases the Tesseract handle.
func (r *Recognizer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.client != nil {
		if err := r.client.Close(); err != nil {
			r.logger.Warn("Failed to close tesseract client", "error", err)
		}
		r.client = nil
	}
}

var _ ocr.Recognizer = (*Recognizer)(nil)
