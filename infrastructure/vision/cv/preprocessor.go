// Package cv implements the preprocessing pipelines with OpenCV via gocv.
package cv

import (
	"fmt"
	"image"
	"log/slog"

	"gocv.io/x/gocv"

	"cocbot-go/infrastructure/vision"
)

// Preprocessor runs the vision pipelines on OpenCV matrices.
// It is safe for concurrent use; every call allocates its own matrices.
type Preprocessor struct {
	tuning *vision.Tuning
	logger *slog.Logger
}

// New creates a gocv-backed preprocessor. A nil tuning uses the defaults.
func New(tuning *vision.Tuning, logger *slog.Logger) *Preprocessor {
	if tuning == nil {
		tuning = vision.DefaultTuning()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Preprocessor{tuning: tuning, logger: logger.With("component", "vision")}
}

// Process runs the pipeline named by spec over img.
func (p *Preprocessor) Process(img image.Image, spec vision.Spec) (image.Image, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, vision.ErrEmptyImage
	}

	src, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("failed to convert image: %w", err)
	}
	defer src.Close()

	var out gocv.Mat
	switch spec.Kind {
	case vision.KindWhiteText:
		out = p.whiteText(src, p.tuning.ScaleFor(spec))
	case vision.KindPurple:
		out = p.purple(src, p.tuning.ScaleFor(spec))
	case vision.KindGold:
		out = p.gold(src, p.tuning.ScaleFor(spec))
	case vision.KindGray:
		out = p.grayThreshold(src, false)
	case vision.KindInverted:
		out = p.grayThreshold(src, true)
	case vision.KindText:
		out = p.text(src)
	default:
		return nil, fmt.Errorf("unknown pipeline %s", spec)
	}
	defer out.Close()

	if out.Empty() {
		return nil, fmt.Errorf("pipeline %s produced no output", spec)
	}
	result, err := out.ToImage()
	if err != nil {
		return nil, fmt.Errorf("failed to convert pipeline output: %w", err)
	}
	return result, nil
}

// Close releases nothing; matrices are freed per call.
func (p *Preprocessor) Close() error {
	return nil
}

// upscale resizes with cubic interpolation, then applies edge-aware smoothing.
func upscaleSmooth(src gocv.Mat, scale float64, b vision.Bilateral) gocv.Mat {
	large := gocv.NewMat()
	defer large.Close()
	gocv.Resize(src, &large, image.Point{}, scale, scale, gocv.InterpolationCubic)

	filtered := gocv.NewMat()
	gocv.BilateralFilter(large, &filtered, b.Diameter, b.SigmaColor, b.SigmaSpace)
	return filtered
}

func inRange(hsv gocv.Mat, r vision.HSVRange) gocv.Mat {
	mask := gocv.NewMat()
	lower := gocv.NewScalar(r.Lower[0], r.Lower[1], r.Lower[2], 0)
	upper := gocv.NewScalar(r.Upper[0], r.Upper[1], r.Upper[2], 0)
	gocv.InRangeWithScalar(hsv, lower, upper, &mask)
	return mask
}

func gaussian(m *gocv.Mat, k int) {
	if k > 0 {
		gocv.GaussianBlur(*m, m, image.Pt(k, k), 0, 0, gocv.BorderDefault)
	}
}

func median(m *gocv.Mat, k int) {
	if k > 0 {
		gocv.MedianBlur(*m, m, k)
	}
}

func morph(m *gocv.Mat, op gocv.MorphType, k int) {
	if k <= 0 {
		return
	}
	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(k, k))
	defer kernel.Close()
	gocv.MorphologyEx(*m, m, op, kernel)
}

func otsu(src gocv.Mat) gocv.Mat {
	binary := gocv.NewMat()
	gocv.Threshold(src, &binary, 0, 255, gocv.ThresholdBinary+gocv.ThresholdOtsu)
	return binary
}

// whiteText: upscale, bilateral, HSV white band, Gaussian, Otsu, close, open.
func (p *Preprocessor) whiteText(src gocv.Mat, scale float64) gocv.Mat {
	t := p.tuning.White

	filtered := upscaleSmooth(src, scale, t.Bilateral)
	defer filtered.Close()

	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(filtered, &hsv, gocv.ColorBGRToHSV)

	mask := inRange(hsv, t.HSV)
	defer mask.Close()
	gaussian(&mask, t.Gaussian)

	binary := otsu(mask)
	morph(&binary, gocv.MorphClose, t.Close)
	morph(&binary, gocv.MorphOpen, t.Open)
	return binary
}

// purple: upscale, bilateral, HSV white band OR Lab lightness, median,
// Gaussian, Otsu, open, close.
func (p *Preprocessor) purple(src gocv.Mat, scale float64) gocv.Mat {
	t := p.tuning.Purple

	filtered := upscaleSmooth(src, scale, t.Bilateral)
	defer filtered.Close()

	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(filtered, &hsv, gocv.ColorBGRToHSV)
	maskWhite := inRange(hsv, t.HSV)
	defer maskWhite.Close()

	lab := gocv.NewMat()
	defer lab.Close()
	gocv.CvtColor(filtered, &lab, gocv.ColorBGRToLab)
	lightness := gocv.NewMat()
	defer lightness.Close()
	gocv.ExtractChannel(lab, &lightness, 0)
	maskLab := gocv.NewMat()
	defer maskLab.Close()
	gocv.Threshold(lightness, &maskLab, float32(t.LabLightness), 255, gocv.ThresholdBinary)

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.BitwiseOr(maskWhite, maskLab, &mask)
	median(&mask, t.Median)
	gaussian(&mask, t.Gaussian)

	binary := otsu(mask)
	morph(&binary, gocv.MorphOpen, t.Open)
	morph(&binary, gocv.MorphClose, t.Close)
	return binary
}

// gold: upscale, bilateral, HSV gold band, median, Gaussian, close, Otsu.
func (p *Preprocessor) gold(src gocv.Mat, scale float64) gocv.Mat {
	t := p.tuning.Gold

	filtered := upscaleSmooth(src, scale, t.Bilateral)
	defer filtered.Close()

	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(filtered, &hsv, gocv.ColorBGRToHSV)

	mask := inRange(hsv, t.HSV)
	defer mask.Close()
	median(&mask, t.Median)
	gaussian(&mask, t.Gaussian)
	morph(&mask, gocv.MorphClose, t.Close)

	return otsu(mask)
}

func (p *Preprocessor) grayThreshold(src gocv.Mat, invert bool) gocv.Mat {
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)

	binary := gocv.NewMat()
	gocv.Threshold(gray, &binary, float32(p.tuning.GrayThreshold), 255, gocv.ThresholdBinary)
	if !invert {
		return binary
	}
	defer binary.Close()

	inverted := gocv.NewMat()
	gocv.BitwiseNot(binary, &inverted)
	return inverted
}

func (p *Preprocessor) text(src gocv.Mat) gocv.Mat {
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)
	return otsu(gray)
}
