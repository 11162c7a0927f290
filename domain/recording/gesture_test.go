package recording

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contactActions(dx, dy int, durationMs int64) []TouchAction {
	return []TouchAction{
		{Type: ActionDown, X: 100, Y: 100, TimestampMs: 1000},
		{Type: ActionMove, X: 100 + dx/2, Y: 100 + dy/2, TimestampMs: 1000 + durationMs/2},
		{Type: ActionUp, X: 100 + dx, Y: 100 + dy, TimestampMs: 1000 + durationMs},
	}
}

func TestSummarize_Empty(t *testing.T) {
	assert.Empty(t, Summarize(nil))
	assert.Empty(t, Summarize([]TouchAction{}))
}

func TestSummarize_DisplacementBoundary(t *testing.T) {
	tests := []struct {
		name string
		dx   int
		dy   int
		want GestureType
	}{
		{"still", 0, 0, GestureTap},
		{"exactly slop x", 10, 0, GestureTap},
		{"exactly slop y", 0, -10, GestureTap},
		{"one past slop", 11, 0, GestureSwipe},
		{"diagonal within slop", 10, 10, GestureTap},
		{"diagonal past slop", 6, 11, GestureSwipe},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summarize(contactActions(tt.dx, tt.dy, 100))
			require.Len(t, got, 1)
			assert.Equal(t, tt.want, got[0].Type)
		})
	}
}

func TestSummarize_TapHoldBoundary(t *testing.T) {
	hold := Summarize([]TouchAction{
		{Type: ActionDown, X: 50, Y: 60, TimestampMs: 0},
		{Type: ActionUp, X: 50, Y: 60, TimestampMs: 250},
	})
	require.Len(t, hold, 1)
	assert.Equal(t, GestureHold, hold[0].Type)
	assert.Equal(t, int64(250), hold[0].DurationMs)

	tap := Summarize([]TouchAction{
		{Type: ActionDown, X: 50, Y: 60, TimestampMs: 0},
		{Type: ActionUp, X: 50, Y: 60, TimestampMs: 249},
	})
	require.Len(t, tap, 1)
	assert.Equal(t, GestureTap, tap[0].Type)
}

func TestSummarize_SwipeMinimumDuration(t *testing.T) {
	got := Summarize(contactActions(200, 0, 40))
	require.Len(t, got, 1)

	g := got[0]
	assert.Equal(t, GestureSwipe, g.Type)
	assert.Equal(t, int64(MinSwipeDuration), g.DurationMs)
	assert.Equal(t, ScriptPoint{100, 100}, g.Start)
	assert.Equal(t, ScriptPoint{300, 100}, g.End)
	assert.Equal(t, int64(1040), g.EndTimeMs)
}

func TestSummarize_TapUsesDownPoint(t *testing.T) {
	got := Summarize(contactActions(5, 5, 30))
	require.Len(t, got, 1)
	assert.Equal(t, ScriptPoint{100, 100}, got[0].Start)
	assert.Equal(t, ScriptPoint{100, 100}, got[0].End)
}

func TestSummarize_LegacyActions(t *testing.T) {
	got := Summarize([]TouchAction{
		{Type: ActionTap, X: 10, Y: 20, TimestampMs: 100},
		{Type: ActionHold, X: 30, Y: 40, TimestampMs: 500, HoldMs: 100},
		{Type: ActionTap, X: 50, Y: 60, TimestampMs: 900, HoldMs: 300},
	})
	require.Len(t, got, 3)

	assert.Equal(t, GestureTap, got[0].Type)
	assert.Equal(t, int64(0), got[0].DurationMs)

	assert.Equal(t, GestureHold, got[1].Type)
	assert.Equal(t, int64(600), got[1].EndTimeMs)

	assert.Equal(t, GestureHold, got[2].Type, "a long legacy tap is a hold")
}

func TestSummarize_UnterminatedTrailingContact(t *testing.T) {
	got := Summarize([]TouchAction{
		{Type: ActionDown, X: 10, Y: 10, TimestampMs: 0},
		{Type: ActionUp, X: 10, Y: 10, TimestampMs: 40},
		{Type: ActionDown, X: 100, Y: 100, TimestampMs: 500},
		{Type: ActionMove, X: 150, Y: 120, TimestampMs: 600},
		{Type: ActionMove, X: 200, Y: 140, TimestampMs: 700},
	})
	require.Len(t, got, 2)

	last := got[1]
	assert.Equal(t, GestureSwipe, last.Type)
	assert.Equal(t, ScriptPoint{200, 140}, last.End)
	assert.Equal(t, int64(700), last.EndTimeMs)
	assert.Equal(t, int64(250), last.DurationMs)
}

func TestSummarize_DownInterruptsOpenContact(t *testing.T) {
	got := Summarize([]TouchAction{
		{Type: ActionDown, X: 10, Y: 10, TimestampMs: 0},
		{Type: ActionMove, X: 80, Y: 10, TimestampMs: 100},
		{Type: ActionDown, X: 300, Y: 300, TimestampMs: 500},
		{Type: ActionUp, X: 300, Y: 300, TimestampMs: 540},
	})
	require.Len(t, got, 2)

	interrupted := got[0]
	assert.Equal(t, GestureSwipe, interrupted.Type)
	assert.Equal(t, ScriptPoint{10, 10}, interrupted.Start)
	assert.Equal(t, ScriptPoint{80, 10}, interrupted.End)
	assert.Equal(t, int64(100), interrupted.EndTimeMs)

	assert.Equal(t, GestureTap, got[1].Type)
	assert.Equal(t, ScriptPoint{300, 300}, got[1].Start)
	assert.Equal(t, int64(500), got[1].StartTimeMs)
}

func TestSummarize_PreservesOrder(t *testing.T) {
	actions := []TouchAction{
		{Type: ActionDown, X: 1, Y: 1, TimestampMs: 10},
		{Type: ActionUp, X: 1, Y: 1, TimestampMs: 20},
		{Type: ActionTap, X: 2, Y: 2, TimestampMs: 30},
		{Type: ActionDown, X: 3, Y: 3, TimestampMs: 40},
		{Type: ActionMove, X: 90, Y: 3, TimestampMs: 50},
		{Type: ActionUp, X: 90, Y: 3, TimestampMs: 60},
	}
	got := Summarize(actions)
	require.Len(t, got, 3)
	for i := 1; i < len(got); i++ {
		assert.LessOrEqual(t, got[i-1].StartTimeMs, got[i].StartTimeMs)
	}
}

func TestSummarize_StrayMovesIgnored(t *testing.T) {
	got := Summarize([]TouchAction{
		{Type: ActionMove, X: 5, Y: 5, TimestampMs: 0},
		{Type: ActionUp, X: 5, Y: 5, TimestampMs: 10},
	})
	assert.Empty(t, got)
}
