package event

// RecordingStarted is published when touch recording begins.
type RecordingStarted struct{}

func (e *RecordingStarted) EventName() string {
	return "RecordingStarted"
}

// RecordingSaved is published when a recording has been written to storage.
type RecordingSaved struct {
	Name    string
	Path    string
	Actions int
}

func NewRecordingSaved(name, path string, actions int) *RecordingSaved {
	return &RecordingSaved{Name: name, Path: path, Actions: actions}
}

func (e *RecordingSaved) EventName() string {
	return "RecordingSaved"
}

// RecordingFailed is published when a recording could not be saved.
type RecordingFailed struct {
	Error error
}

func (e *RecordingFailed) EventName() string {
	return "RecordingFailed"
}

// ButtonSaved is published after a calibration action stored a button position.
type ButtonSaved struct {
	Key  string
	X, Y int
}

func (e *ButtonSaved) EventName() string {
	return "ButtonSaved"
}
