package bot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cocbot-go/core/command"
	"cocbot-go/core/event"
	"cocbot-go/core/eventbus"
	"cocbot-go/core/state"
	"cocbot-go/domain/settings"
)

func newTestBot(t *testing.T, h *harness) (*Bot, chan *event.BotStopped) {
	t.Helper()
	bus := eventbus.New(256, nil)
	stopped := make(chan *event.BotStopped, 4)
	bus.SubscribeNames(func(e event.Event) {
		stopped <- e.(*event.BotStopped)
	}, (&event.BotStopped{}).EventName())
	h.cfg.EventBus = bus

	b := New(h.cfg)
	b.Start()
	t.Cleanup(func() {
		b.Stop()
		bus.Close()
	})
	return b, stopped
}

func waitStopped(t *testing.T, ch chan *event.BotStopped) *event.BotStopped {
	t.Helper()
	select {
	case e := <-ch:
		return e
	case <-time.After(3 * time.Second):
		t.Fatal("bot did not stop")
		return nil
	}
}

func TestBot_BootstrapFailureReturnsToIdle(t *testing.T) {
	h := newHarness(true)
	h.screen.setFrame(nil)
	b, stopped := newTestBot(t, h)

	require.NoError(t, b.Send(command.NewStartBot("a.json")))
	e := waitStopped(t, stopped)

	assert.Equal(t, event.StopReasonBootstrapFailed, e.Reason)
	assert.ErrorIs(t, e.Error, ErrBootstrapFailed)
	assert.Equal(t, b.RunID(), e.RunID())
	assert.NotEmpty(t, e.RunID())
	assert.Equal(t, state.StateIdle, b.State())
	assert.Equal(t, []string{"a.json"}, b.Scripts())
}

func TestBot_StartThenStop(t *testing.T) {
	h := newHarness(true)
	h.saveSettings(t, func(s *settings.BotSettings) { s.EnableWallUpgrade = false })
	h.cfg.Loop.IterationDelay = 5 * time.Millisecond
	b, stopped := newTestBot(t, h)

	require.NoError(t, b.Send(command.NewStartBot()))
	require.Eventually(t, func() bool { return b.State().CanStop() }, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, b.Send(&command.StopBot{}))
	e := waitStopped(t, stopped)

	assert.Equal(t, event.StopReasonManual, e.Reason)
	assert.NoError(t, e.Error)
	assert.Equal(t, state.StateIdle, b.State())
}

func TestBot_RestartGetsNewRunID(t *testing.T) {
	h := newHarness(true)
	h.screen.setFrame(nil)
	b, stopped := newTestBot(t, h)

	require.NoError(t, b.Send(command.NewStartBot()))
	first := waitStopped(t, stopped).RunID()
	require.NoError(t, b.Send(command.NewStartBot()))
	second := waitStopped(t, stopped).RunID()

	assert.NotEqual(t, first, second)
}

func TestBot_SelectScripts(t *testing.T) {
	h := newHarness(true)
	b, _ := newTestBot(t, h)

	require.NoError(t, b.Send(&command.SelectScripts{Scripts: []string{"x.json", "y.json"}}))
	require.Eventually(t, func() bool { return len(b.Scripts()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, state.StateIdle, b.State())
}

func TestBot_SendAfterStop(t *testing.T) {
	h := newHarness(true)
	b := New(h.cfg)
	b.Start()
	b.Stop()

	assert.Error(t, b.Send(command.NewStartBot()))
}
