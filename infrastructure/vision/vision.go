// Package vision describes the image preprocessing pipelines used before OCR.
// Implementations live in subpackages; this package has no cgo dependency.
package vision

import (
	"errors"
	"fmt"
	"image"
)

// Kind selects a preprocessing pipeline.
type Kind int

const (
	// KindWhiteText isolates white digits on a dark or colored background.
	KindWhiteText Kind = iota
	// KindPurple isolates white digits on the purple loot banner.
	KindPurple
	// KindGold isolates gold-hued price digits.
	KindGold
	// KindGray is a fixed-threshold grayscale binarization.
	KindGray
	// KindInverted is the bitwise inversion of KindGray.
	KindInverted
	// KindText is an Otsu binarization used for word search.
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindWhiteText:
		return "white"
	case KindPurple:
		return "purple"
	case KindGold:
		return "gold"
	case KindGray:
		return "gray"
	case KindInverted:
		return "inverted"
	case KindText:
		return "text"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Spec is one pipeline invocation. A zero Scale uses the tuning default for Kind.
type Spec struct {
	Kind  Kind
	Scale float64
}

func (s Spec) String() string {
	if s.Scale > 0 {
		return fmt.Sprintf("%s@%gx", s.Kind, s.Scale)
	}
	return s.Kind.String()
}

// ErrEmptyImage is returned when the input has no pixels.
var ErrEmptyImage = errors.New("empty image")

// Preprocessor turns a cropped region into a binarized image suitable for OCR.
type Preprocessor interface {
	Process(img image.Image, spec Spec) (image.Image, error)
	Close() error
}
