package core

import "context"

// CmdRouter dispatches slash commands typed into any transport.
type CmdRouter interface {
	// Execute runs input when it starts with "/". The bool is false for plain
	// text, which the caller sends to the session as a turn.
	Execute(ctx context.Context, sessionID, input string) (string, bool)
	ListCommands() []Command
}

// Command is one slash command. Execute returns Markdown for the caller to render;
// an error is shown to the user as the command's failure line.
type Command interface {
	Name() string
	Description() string
	Execute(ctx context.Context, sessionID string, args []string) (string, error)
}
