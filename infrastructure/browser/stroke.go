package browser

import (
	"time"

	"github.com/chromedp/cdproto/input"

	"cocbot-go/domain/coords"
)

type strokeStep struct {
	kind input.MouseType
	at   coords.Point
	wait time.Duration
}

// planStroke turns a path into press, move and release events. Segments are
// subdivided into frame-sized moves and the waits add up to duration.
func planStroke(path []coords.Point, duration, interval time.Duration) []strokeStep {
	if len(path) == 0 {
		return nil
	}
	if duration < 0 {
		duration = 0
	}

	points := []coords.Point{path[0]}
	if len(path) > 1 {
		perSegment := 1
		if interval > 0 {
			frames := int(duration / interval)
			if n := frames / (len(path) - 1); n > 1 {
				perSegment = n
			}
		}
		for i := 1; i < len(path); i++ {
			a, b := path[i-1], path[i]
			for s := 1; s <= perSegment; s++ {
				t := float64(s) / float64(perSegment)
				points = append(points, coords.Point{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t})
			}
		}
	}

	steps := make([]strokeStep, 0, len(points)+1)
	steps = append(steps, strokeStep{kind: input.MousePressed, at: points[0]})

	moves := len(points) - 1
	if moves == 0 {
		return append(steps, strokeStep{kind: input.MouseReleased, at: points[0], wait: duration})
	}

	wait := duration / time.Duration(moves)
	for _, p := range points[1:] {
		steps = append(steps, strokeStep{kind: input.MouseMoved, at: p, wait: wait})
	}
	return append(steps, strokeStep{kind: input.MouseReleased, at: points[len(points)-1]})
}
