package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cocbot-go/core/event"
	"cocbot-go/core/state"
	"cocbot-go/domain/coords"
	"cocbot-go/infrastructure/config"
	"cocbot-go/infrastructure/repository"
)

func TestParseTouchLine(t *testing.T) {
	tests := []struct {
		line    string
		want    touchSample
		ok      bool
		wantErr bool
	}{
		{"down 100 200", touchSample{kind: "down", x: 100, y: 200}, true, false},
		{"  MOVE 10.5 20.25 ", touchSample{kind: "move", x: 10.5, y: 20.25}, true, false},
		{"", touchSample{}, false, false},
		{"# comment", touchSample{}, false, false},
		{"up 1", touchSample{}, false, true},
		{"up x 1", touchSample{}, false, true},
		{"up 1 y", touchSample{}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, ok, err := parseTouchLine(tt.line)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePoint(t *testing.T) {
	p, err := parsePoint("12.5", "40")
	require.NoError(t, err)
	assert.Equal(t, coords.Point{X: 12.5, Y: 40}, p)

	_, err = parsePoint("a", "1")
	assert.Error(t, err)
	_, err = parsePoint("1", "-3")
	assert.Error(t, err)
}

func TestLoopConfigCopiesEveryField(t *testing.T) {
	c := config.Loop{
		StartDelay:         time.Second,
		BootstrapAttempts:  4,
		MaxSearches:        50,
		NextSettle:         2 * time.Second,
		WallText:           "mur",
		SwipesPerDirection: 2,
		MaxScrollAttempts:  8,
		ScrollDuration:     300 * time.Millisecond,
	}

	got := loopConfig(c)

	assert.Equal(t, time.Second, got.StartDelay)
	assert.Equal(t, 4, got.BootstrapAttempts)
	assert.Equal(t, 50, got.MaxSearches)
	assert.Equal(t, 2*time.Second, got.NextSettle)
	assert.Equal(t, "mur", got.WallText)
	assert.Equal(t, 2, got.SwipesPerDirection)
	assert.Equal(t, 8, got.MaxScrollAttempts)
	assert.Equal(t, 300*time.Millisecond, got.ScrollDuration)
}

func TestMongoConfigCarriesTimeouts(t *testing.T) {
	got := mongoConfig(config.Mongo{
		URI:            "mongodb://db:27017",
		Database:       "shared",
		Collection:     "calibration",
		ConnectTimeout: 3 * time.Second,
		PingTimeout:    time.Second,
	})

	assert.Equal(t, &repository.MongoDBConfig{
		URI:            "mongodb://db:27017",
		Database:       "shared",
		Collection:     "calibration",
		ConnectTimeout: 3 * time.Second,
		PingTimeout:    time.Second,
	}, got)
}

func TestTableRender(t *testing.T) {
	setNoColor()
	tb := newTable("NAME", "X")
	tb.addRow("find-match", "120")
	tb.addRow("next")

	lines := strings.Split(strings.TrimRight(tb.render(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "NAME        X  ", lines[0])
	assert.Equal(t, "──────────  ───", lines[1])
	assert.Equal(t, "find-match  120", lines[2])
	assert.Equal(t, "next           ", lines[3])
}

func TestEventPrinter(t *testing.T) {
	setNoColor()
	var buf bytes.Buffer
	p := &eventPrinter{w: &buf}

	p.handle(event.NewLogMessage("r", "ATTACK! (gold 300k  elixir 250k)"))
	p.handle(event.NewStateChanged("r", state.StateFarming, state.StateAttacking))
	p.handle(event.NewStateChanged("r", state.StateRunning, state.StateStopping))
	p.handle(event.NewBotStopped("r", event.StopReasonBootstrapFailed, errors.New("no frame")))

	assert.Equal(t,
		"ATTACK! (gold 300k  elixir 250k)\n[Stopping]\nStopped (BootstrapFailed): no frame\n",
		buf.String())
}

func TestStopError(t *testing.T) {
	boom := errors.New("no frame")
	assert.NoError(t, stopError(event.NewBotStopped("r", event.StopReasonManual, nil)))
	assert.Equal(t, boom, stopError(event.NewBotStopped("r", event.StopReasonBootstrapFailed, boom)))
}
