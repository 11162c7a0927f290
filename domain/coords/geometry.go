// Package coords maps between physical screen, game and script coordinate spaces.
package coords

import (
	"fmt"
	"image"
	"math"
)

// Script space is the fixed authoring resolution of recorded attack scripts.
const (
	ScriptWidth  = 960
	ScriptHeight = 540
)

// Point is a coordinate in one of the three spaces. The space is implied by the caller.
type Point struct {
	X float64
	Y float64
}

// Round returns the point with both components rounded to the nearest pixel.
func (p Point) Round() image.Point {
	return image.Pt(int(math.Round(p.X)), int(math.Round(p.Y)))
}

// IsZero reports whether the point is the unset (0, 0) sentinel.
func (p Point) IsZero() bool {
	return p.X == 0 && p.Y == 0
}

func (p Point) String() string {
	return fmt.Sprintf("(%.0f, %.0f)", p.X, p.Y)
}

// Resolution is a width and height in pixels.
type Resolution struct {
	Width  int
	Height int
}

// IsZero reports whether the resolution is unset.
func (r Resolution) IsZero() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Landscape reports whether the resolution is wider than it is tall.
func (r Resolution) Landscape() bool {
	return r.Width >= r.Height
}

// Swap returns the resolution rotated by 90 degrees.
func (r Resolution) Swap() Resolution {
	return Resolution{Width: r.Height, Height: r.Width}
}

func (r Resolution) String() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

// Region is an axis-aligned rectangle.
type Region struct {
	X int
	Y int
	W int
	H int
}

// Rect converts the region to an image.Rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.W, r.Y+r.H)
}

// Empty reports whether the region has no area.
func (r Region) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Within reports whether the region is non-negative and fully contained in bounds.
func (r Region) Within(bounds image.Rectangle) bool {
	if r.X < 0 || r.Y < 0 || r.Empty() {
		return false
	}
	return r.Rect().In(bounds)
}

// Center returns the centroid of the region.
func (r Region) Center() Point {
	return Point{X: float64(r.X) + float64(r.W)/2, Y: float64(r.Y) + float64(r.H)/2}
}

// Bands splits the region into n horizontal strips of equal height.
// The last strip absorbs the remainder.
func (r Region) Bands(n int) []Region {
	if n <= 1 || r.H < n {
		return []Region{r}
	}
	step := r.H / n
	bands := make([]Region, 0, n)
	for i := 0; i < n; i++ {
		h := step
		if i == n-1 {
			h = r.H - step*(n-1)
		}
		bands = append(bands, Region{X: r.X, Y: r.Y + i*step, W: r.W, H: h})
	}
	return bands
}

func (r Region) String() string {
	return fmt.Sprintf("[%d,%d %dx%d]", r.X, r.Y, r.W, r.H)
}
