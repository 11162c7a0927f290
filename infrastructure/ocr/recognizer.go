// Package ocr provides text recognizer backends.
package ocr

import (
	"context"
	"errors"
	"image"
)

// SegMode is the page segmentation mode requested from the backend.
type SegMode int

const (
	// SegSingleLine treats the image as one line of text.
	SegSingleLine SegMode = iota
	// SegAuto lets the backend find text blocks itself.
	SegAuto
)

func (m SegMode) String() string {
	switch m {
	case SegSingleLine:
		return "single_line"
	case SegAuto:
		return "auto"
	default:
		return "unknown"
	}
}

// Character whitelists.
const (
	CharsetDigits  = "0123456789"
	CharsetLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
)

var (
	// ErrDisabled is returned by NoOpRecognizer.
	ErrDisabled = errors.New("OCR is disabled")
	// ErrClosed is returned by a recognizer used after Close.
	ErrClosed = errors.New("recognizer is closed")
)

// Recognizer turns a preprocessed image into text restricted to charset.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image, charset string, mode SegMode) (string, error)

	// IsHealthy returns true if the backend can serve requests.
	IsHealthy() bool

	// Close releases resources.
	Close()
}

// NoOpRecognizer is a recognizer for dry runs or when OCR is disabled.
type NoOpRecognizer struct{}

// NewNoOpRecognizer creates a no-operation recognizer.
func NewNoOpRecognizer() *NoOpRecognizer {
	return &NoOpRecognizer{}
}

func (r *NoOpRecognizer) Recognize(context.Context, image.Image, string, SegMode) (string, error) {
	return "", ErrDisabled
}

func (r *NoOpRecognizer) IsHealthy() bool {
	return false
}

func (r *NoOpRecognizer) Close() {}

var _ Recognizer = (*NoOpRecognizer)(nil)
