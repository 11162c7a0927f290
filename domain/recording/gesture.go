package recording

// Classification thresholds, in script-space units and milliseconds.
const (
	TapSlop          = 10
	HoldThresholdMs  = 250
	MinSwipeDuration = 250
)

// GestureType is a classified replay unit.
type GestureType string

const (
	GestureTap   GestureType = "tap"
	GestureHold  GestureType = "hold"
	GestureSwipe GestureType = "swipe"
)

// ScriptPoint is an integer point in script space.
type ScriptPoint struct {
	X int
	Y int
}

// Gesture is a simplified replay unit derived from raw touch samples.
type Gesture struct {
	Type        GestureType
	StartTimeMs int64
	EndTimeMs   int64
	DurationMs  int64
	Start       ScriptPoint
	End         ScriptPoint
}

type contact struct {
	legacy *TouchAction
	down   *TouchAction
	moves  []TouchAction
	up     *TouchAction
}

// Summarize groups a flat action stream into gestures in start order.
//
// A down opens a contact, moves accumulate into it and an up closes it.
// Bare tap and hold samples become their own gesture. A contact without an
// up, whether trailing or cut short by the next down, is still emitted and
// ends at its last known point.
func Summarize(actions []TouchAction) []Gesture {
	var contacts []contact
	var open *contact

	for i := range actions {
		a := actions[i]
		switch a.Type {
		case ActionDown:
			if open != nil {
				contacts = append(contacts, *open)
			}
			open = &contact{down: &a}
		case ActionMove:
			if open != nil {
				open.moves = append(open.moves, a)
			}
		case ActionUp:
			if open != nil {
				open.up = &a
				contacts = append(contacts, *open)
				open = nil
			}
		case ActionTap, ActionHold:
			contacts = append(contacts, contact{legacy: &a})
		}
	}
	if open != nil {
		contacts = append(contacts, *open)
	}

	gestures := make([]Gesture, 0, len(contacts))
	for _, c := range contacts {
		if c.legacy != nil {
			gestures = append(gestures, legacyGesture(*c.legacy))
			continue
		}
		gestures = append(gestures, classify(c))
	}
	return gestures
}

func legacyGesture(a TouchAction) Gesture {
	duration := a.HoldMs
	if duration < 0 {
		duration = 0
	}
	typ := GestureTap
	if a.Type == ActionHold || duration >= HoldThresholdMs {
		typ = GestureHold
	}
	p := ScriptPoint{X: a.X, Y: a.Y}
	return Gesture{
		Type:        typ,
		StartTimeMs: a.TimestampMs,
		EndTimeMs:   a.TimestampMs + duration,
		DurationMs:  duration,
		Start:       p,
		End:         p,
	}
}

func classify(c contact) Gesture {
	down := *c.down
	end := down
	if c.up != nil {
		end = *c.up
	} else if len(c.moves) > 0 {
		end = c.moves[len(c.moves)-1]
	}

	start := down.TimestampMs
	finish := max(end.TimestampMs, start)
	duration := finish - start

	displacement := 0
	for _, m := range c.moves {
		displacement = max(displacement, chebyshev(down, m))
	}
	if c.up != nil {
		displacement = max(displacement, chebyshev(down, *c.up))
	}

	origin := ScriptPoint{X: down.X, Y: down.Y}
	if displacement <= TapSlop {
		typ := GestureTap
		if duration >= HoldThresholdMs {
			typ = GestureHold
		}
		return Gesture{
			Type:        typ,
			StartTimeMs: start,
			EndTimeMs:   start + duration,
			DurationMs:  duration,
			Start:       origin,
			End:         origin,
		}
	}

	return Gesture{
		Type:        GestureSwipe,
		StartTimeMs: start,
		EndTimeMs:   finish,
		DurationMs:  max(duration, MinSwipeDuration),
		Start:       origin,
		End:         ScriptPoint{X: end.X, Y: end.Y},
	}
}

// chebyshev returns the L-infinity distance between two samples.
func chebyshev(a, b TouchAction) int {
	return max(abs(a.X-b.X), abs(a.Y-b.Y))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
