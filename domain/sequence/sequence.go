// Package sequence defines fixed UI tap sequences driven by calibrated buttons.
package sequence

import (
	"fmt"
	"time"

	"cocbot-go/domain/calibration"
)

// Names of the sequences the control loop runs.
const (
	// OpenAttack opens the attack flow, enters matchmaking and the deploy screen.
	OpenAttack = "open_attack"
	// FinishBattle ends a battle after the attack duration.
	FinishBattle = "finish_battle"
	// ReturnHome abandons a search and goes back to the village.
	ReturnHome = "return_home"
)

// Sequence is an ordered list of button taps.
type Sequence struct {
	// Name is the unique identifier for this sequence
	Name string

	// Description provides a human-readable explanation
	Description string

	// Steps are the taps in order
	Steps []Step
}

// Step taps one button and waits for the UI to settle.
type Step struct {
	Button calibration.ButtonKey

	// Settle is the wait after the tap before the next step
	Settle time.Duration

	// Optional steps are skipped when the button is not calibrated
	// instead of aborting the sequence.
	Optional bool
}

// Validate checks that the sequence has steps and sane waits.
func (s *Sequence) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("sequence has no name")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("sequence %s has no steps", s.Name)
	}
	for i, step := range s.Steps {
		if step.Button == "" {
			return fmt.Errorf("sequence %s step %d has no button", s.Name, i)
		}
		if step.Settle < 0 {
			return fmt.Errorf("sequence %s step %d has a negative settle time", s.Name, i)
		}
	}
	return nil
}

// Buttons returns the buttons the sequence needs, in order.
func (s *Sequence) Buttons() []calibration.ButtonKey {
	keys := make([]calibration.ButtonKey, len(s.Steps))
	for i, step := range s.Steps {
		keys[i] = step.Button
	}
	return keys
}
