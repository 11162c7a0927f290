package vision

// HSVRange is an inclusive HSV band in OpenCV units (H 0-180, S and V 0-255).
type HSVRange struct {
	Lower [3]float64 `mapstructure:"lower"`
	Upper [3]float64 `mapstructure:"upper"`
}

// Bilateral holds edge-preserving smoothing parameters.
type Bilateral struct {
	Diameter   int     `mapstructure:"diameter"`
	SigmaColor float64 `mapstructure:"sigma_color"`
	SigmaSpace float64 `mapstructure:"sigma_space"`
}

// WhiteTuning configures the white-text pipeline.
type WhiteTuning struct {
	Scale     float64   `mapstructure:"scale"`
	Bilateral Bilateral `mapstructure:"bilateral"`
	HSV       HSVRange  `mapstructure:"hsv"`
	Gaussian  int       `mapstructure:"gaussian"`
	Close     int       `mapstructure:"close"`
	Open      int       `mapstructure:"open"`
}

// PurpleTuning configures the purple-background pipeline.
type PurpleTuning struct {
	Scale     float64   `mapstructure:"scale"`
	Bilateral Bilateral `mapstructure:"bilateral"`
	HSV       HSVRange  `mapstructure:"hsv"`
	// LabLightness is the L-channel threshold OR-ed with the HSV mask.
	LabLightness float64 `mapstructure:"lab_lightness"`
	Median       int     `mapstructure:"median"`
	Gaussian     int     `mapstructure:"gaussian"`
	Open         int     `mapstructure:"open"`
	Close        int     `mapstructure:"close"`
}

// GoldTuning configures the gold price pipeline.
type GoldTuning struct {
	Scale     float64   `mapstructure:"scale"`
	Bilateral Bilateral `mapstructure:"bilateral"`
	HSV       HSVRange  `mapstructure:"hsv"`
	Median    int       `mapstructure:"median"`
	Gaussian  int       `mapstructure:"gaussian"`
	Close     int       `mapstructure:"close"`
}

// Tuning holds every numeric constant of the pipelines.
type Tuning struct {
	White         WhiteTuning  `mapstructure:"white"`
	Purple        PurpleTuning `mapstructure:"purple"`
	Gold          GoldTuning   `mapstructure:"gold"`
	GrayThreshold float64      `mapstructure:"gray_threshold"`
}

// DefaultTuning returns the hand-tuned defaults.
func DefaultTuning() *Tuning {
	return &Tuning{
		White: WhiteTuning{
			Scale:     10,
			Bilateral: Bilateral{Diameter: 7, SigmaColor: 75, SigmaSpace: 75},
			HSV:       HSVRange{Lower: [3]float64{0, 0, 180}, Upper: [3]float64{180, 60, 255}},
			Gaussian:  3,
			Close:     3,
			Open:      2,
		},
		Purple: PurpleTuning{
			Scale:        12,
			Bilateral:    Bilateral{Diameter: 7, SigmaColor: 75, SigmaSpace: 75},
			HSV:          HSVRange{Lower: [3]float64{0, 0, 200}, Upper: [3]float64{180, 45, 255}},
			LabLightness: 175,
			Median:       3,
			Gaussian:     3,
			Open:         2,
			Close:        4,
		},
		Gold: GoldTuning{
			Scale:     8,
			Bilateral: Bilateral{Diameter: 5, SigmaColor: 60, SigmaSpace: 60},
			HSV:       HSVRange{Lower: [3]float64{15, 80, 150}, Upper: [3]float64{45, 255, 255}},
			Median:    3,
			Gaussian:  3,
			Close:     3,
		},
		GrayThreshold: 160,
	}
}

// ScaleFor returns the effective upscale factor of spec.
func (t *Tuning) ScaleFor(spec Spec) float64 {
	if spec.Scale > 0 {
		return spec.Scale
	}
	switch spec.Kind {
	case KindWhiteText:
		return t.White.Scale
	case KindPurple:
		return t.Purple.Scale
	case KindGold:
		return t.Gold.Scale
	default:
		return 1
	}
}
