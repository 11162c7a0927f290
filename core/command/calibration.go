package command

// SaveButton stores a named button from a raw physical screen touch.
type SaveButton struct {
	Key  string
	RawX float64
	RawY float64
}

func (c *SaveButton) CommandName() string {
	return "SaveButton"
}

// ClearButton removes a stored button position.
type ClearButton struct {
	Key string
}

func (c *ClearButton) CommandName() string {
	return "ClearButton"
}

// ResetResolution forgets the stored game resolution.
type ResetResolution struct{}

func (c *ResetResolution) CommandName() string {
	return "ResetResolution"
}

// UpdateSetting changes a single bot setting.
type UpdateSetting struct {
	Key   string
	Value string
}

func (c *UpdateSetting) CommandName() string {
	return "UpdateSetting"
}
