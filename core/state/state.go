// Package state defines the bot lifecycle state machine.
package state

import (
	"fmt"
	"slices"
)

// BotState represents the state of the control loop.
type BotState int

const (
	// StateIdle is the state before start and after stop.
	StateIdle BotState = iota
	// StateBootstrapping indicates the game resolution is being established.
	StateBootstrapping
	// StateRunning indicates the loop is between decisions.
	StateRunning
	// StateFarming indicates the bot is searching for a target.
	StateFarming
	// StateAttacking indicates an attack script is being replayed.
	StateAttacking
	// StateUpgrading indicates surplus resources are being reinvested.
	StateUpgrading
	// StateStopping indicates the loop is unwinding.
	StateStopping
)

// String returns the string representation of the state.
func (s BotState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateBootstrapping:
		return "Bootstrapping"
	case StateRunning:
		return "Running"
	case StateFarming:
		return "Farming"
	case StateAttacking:
		return "Attacking"
	case StateUpgrading:
		return "Upgrading"
	case StateStopping:
		return "Stopping"
	default:
		return fmt.Sprintf("Unknown(%d)", s)
	}
}

// validTransitions defines the allowed state transitions.
// Every active state may move to Stopping.
var validTransitions = map[BotState][]BotState{
	StateIdle:          {StateBootstrapping},
	StateBootstrapping: {StateRunning, StateStopping},
	StateRunning:       {StateFarming, StateUpgrading, StateStopping},
	StateFarming:       {StateAttacking, StateRunning, StateStopping},
	StateAttacking:     {StateRunning, StateStopping},
	StateUpgrading:     {StateRunning, StateStopping},
	StateStopping:      {StateIdle},
}

// CanTransitionTo checks if transitioning from the current state to the target state is valid.
func (s BotState) CanTransitionTo(target BotState) bool {
	return slices.Contains(validTransitions[s], target)
}

// ValidTransitions returns the list of valid target states from the current state.
func (s BotState) ValidTransitions() []BotState {
	return validTransitions[s]
}

// IsActive returns true if the control loop is alive in this state.
func (s BotState) IsActive() bool {
	return s != StateIdle
}

// CanStart returns true if the bot can be started in this state.
func (s BotState) CanStart() bool {
	return s == StateIdle
}

// CanStop returns true if a stop request is meaningful in this state.
func (s BotState) CanStop() bool {
	return s != StateIdle && s != StateStopping
}

// IsBusy returns true while a sub-routine is driving the game UI.
func (s BotState) IsBusy() bool {
	return s == StateFarming || s == StateAttacking || s == StateUpgrading
}

// TransitionError represents an invalid state transition attempt.
type TransitionError struct {
	From   BotState
	To     BotState
	Reason string
}

func (e *TransitionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid state transition from %s to %s: %s", e.From, e.To, e.Reason)
	}
	return fmt.Sprintf("invalid state transition from %s to %s", e.From, e.To)
}

// NewTransitionError creates a new TransitionError.
func NewTransitionError(from, to BotState, reason string) *TransitionError {
	return &TransitionError{From: from, To: to, Reason: reason}
}

// Machine is a goroutine-safe holder of the current state.
// Only the control loop goroutine transitions it; readers may observe it concurrently.
type Machine struct {
	current atomicState
}

// NewMachine creates a machine in StateIdle.
func NewMachine() *Machine {
	return &Machine{}
}

// Current returns the current state.
func (m *Machine) Current() BotState {
	return m.current.Load()
}

// Transition moves to target if the transition is valid and returns the previous state.
func (m *Machine) Transition(target BotState) (BotState, error) {
	for {
		from := m.current.Load()
		if from == target {
			return from, nil
		}
		if !from.CanTransitionTo(target) {
			return from, NewTransitionError(from, target, "")
		}
		if m.current.CompareAndSwap(from, target) {
			return from, nil
		}
	}
}

// Force sets the state without validation. Used to recover to Idle after the loop exits.
func (m *Machine) Force(target BotState) BotState {
	return m.current.Swap(target)
}
