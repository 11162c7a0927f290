// Package event defines all events that can be published by the application.
// Events represent state changes and are consumed by the presentation layer.
package event

import "cocbot-go/core/state"

// Event is the base interface for all events.
type Event interface {
	// EventName returns the name of the event for logging/debugging
	EventName() string
}

// RunEvent is an event that originates from a specific bot run.
type RunEvent interface {
	Event
	// RunID returns the identifier of the run that produced the event
	RunID() string
}

type baseRunEvent struct {
	runID string
}

func (e *baseRunEvent) RunID() string {
	return e.runID
}

// BotStarted is published when the control loop starts.
type BotStarted struct {
	baseRunEvent
	Scripts []string
}

func NewBotStarted(runID string, scripts []string) *BotStarted {
	return &BotStarted{
		baseRunEvent: baseRunEvent{runID: runID},
		Scripts:      scripts,
	}
}

func (e *BotStarted) EventName() string {
	return "BotStarted"
}

// StopReason indicates why the control loop ended.
type StopReason int

const (
	// StopReasonManual indicates the loop was stopped by the user.
	StopReasonManual StopReason = iota
	// StopReasonBootstrapFailed indicates no reference frame could be captured.
	StopReasonBootstrapFailed
	// StopReasonShutdown indicates the application is exiting.
	StopReasonShutdown
)

func (r StopReason) String() string {
	switch r {
	case StopReasonManual:
		return "Manual"
	case StopReasonBootstrapFailed:
		return "BootstrapFailed"
	case StopReasonShutdown:
		return "Shutdown"
	default:
		return "Unknown"
	}
}

// BotStopped is published when the control loop exits.
type BotStopped struct {
	baseRunEvent
	Reason StopReason
	Error  error // Non-nil if Reason is StopReasonBootstrapFailed
}

func NewBotStopped(runID string, reason StopReason, err error) *BotStopped {
	return &BotStopped{
		baseRunEvent: baseRunEvent{runID: runID},
		Reason:       reason,
		Error:        err,
	}
}

func (e *BotStopped) EventName() string {
	return "BotStopped"
}

// StateChanged is published when the bot state changes.
type StateChanged struct {
	baseRunEvent
	OldState state.BotState
	NewState state.BotState
}

func NewStateChanged(runID string, oldState, newState state.BotState) *StateChanged {
	return &StateChanged{
		baseRunEvent: baseRunEvent{runID: runID},
		OldState:     oldState,
		NewState:     newState,
	}
}

func (e *StateChanged) EventName() string {
	return "StateChanged"
}
