package command

// StartRecording begins capturing touches for a new attack script.
type StartRecording struct{}

func (c *StartRecording) CommandName() string {
	return "StartRecording"
}

// RecordTouch is one raw touch sample in physical screen pixels.
type RecordTouch struct {
	Type string // down, move or up
	RawX float64
	RawY float64
}

func (c *RecordTouch) CommandName() string {
	return "RecordTouch"
}

// StopRecording finishes the recording and saves it under Name.
type StopRecording struct {
	Name string
}

func (c *StopRecording) CommandName() string {
	return "StopRecording"
}
