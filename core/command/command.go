// Package command defines all commands that can be sent to the application.
// Commands represent user intentions and are processed by the application layer.
package command

// Command is the base interface for all commands.
// Commands are sent from the presentation layer to the application layer.
type Command interface {
	// CommandName returns the name of the command for logging/debugging
	CommandName() string
}

// BotCommand is a command handled by the bot actor rather than the coordinator.
type BotCommand interface {
	Command
	botCommand()
}

type baseBotCommand struct{}

func (baseBotCommand) botCommand() {}
