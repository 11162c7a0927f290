package event

import "time"

// LogMessage is a user-facing progress line from the control loop.
type LogMessage struct {
	baseRunEvent
	Message string
	Time    time.Time
}

func NewLogMessage(runID, message string) *LogMessage {
	return &LogMessage{
		baseRunEvent: baseRunEvent{runID: runID},
		Message:      message,
		Time:         time.Now(),
	}
}

func (e *LogMessage) EventName() string {
	return "LogMessage"
}

// Owner identifies whose resource counters were read.
type Owner string

const (
	OwnerPlayer Owner = "player"
	OwnerEnemy  Owner = "enemy"
)

// ResourcesRead is published after the resource counters were read from a frame.
type ResourcesRead struct {
	baseRunEvent
	Owner  Owner
	Gold   int
	Elixir int
}

func NewResourcesRead(runID string, owner Owner, gold, elixir int) *ResourcesRead {
	return &ResourcesRead{
		baseRunEvent: baseRunEvent{runID: runID},
		Owner:        owner,
		Gold:         gold,
		Elixir:       elixir,
	}
}

func (e *ResourcesRead) EventName() string {
	return "ResourcesRead"
}

// TargetFound is published when an opponent meets the loot thresholds.
type TargetFound struct {
	baseRunEvent
	Attempt int
	Gold    int
	Elixir  int
}

func NewTargetFound(runID string, attempt, gold, elixir int) *TargetFound {
	return &TargetFound{
		baseRunEvent: baseRunEvent{runID: runID},
		Attempt:      attempt,
		Gold:         gold,
		Elixir:       elixir,
	}
}

func (e *TargetFound) EventName() string {
	return "TargetFound"
}

// UpgradeAttempted is published at the end of a reinvestment attempt.
type UpgradeAttempted struct {
	baseRunEvent
	Currency string
	Success  bool
	Reason   string
}

func NewUpgradeAttempted(runID, currency string, success bool, reason string) *UpgradeAttempted {
	return &UpgradeAttempted{
		baseRunEvent: baseRunEvent{runID: runID},
		Currency:     currency,
		Success:      success,
		Reason:       reason,
	}
}

func (e *UpgradeAttempted) EventName() string {
	return "UpgradeAttempted"
}
