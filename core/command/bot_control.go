package command

// StartBot starts the control loop.
// Scripts are recording paths; when empty the current selection is used.
type StartBot struct {
	baseBotCommand
	Scripts []string
}

func NewStartBot(scripts ...string) *StartBot {
	return &StartBot{Scripts: scripts}
}

func (c *StartBot) CommandName() string {
	return "StartBot"
}

// StopBot cancels the control loop.
type StopBot struct {
	baseBotCommand
}

func (c *StopBot) CommandName() string {
	return "StopBot"
}

// SelectScripts replaces the attack script selection used by the next start.
type SelectScripts struct {
	baseBotCommand
	Scripts []string
}

func (c *SelectScripts) CommandName() string {
	return "SelectScripts"
}
