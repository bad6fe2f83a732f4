package command

import (
	"context"
	"fmt"
)

const helpName = "help"

type helpCommand struct {
	router    *Router
	formatter *ResponseFormatter
}

func newHelpCommand(router *Router) *helpCommand {
	return &helpCommand{router: router, formatter: NewResponseFormatter()}
}

func (c *helpCommand) Name() string { return helpName }

func (c *helpCommand) Description() string {
	return "List available commands"
}

func (c *helpCommand) Execute(ctx context.Context, sessionID string, args []string) (string, error) {
	var items []string
	for _, cmd := range c.router.ListCommands() {
		items = append(items, fmt.Sprintf("`/%s` %s", cmd.Name(), cmd.Description()))
	}
	return c.formatter.Combine(
		c.formatter.Info("Commands"),
		c.formatter.List(items),
		c.formatter.Tip("anything else you type is a question about rainwater harvesting"),
	), nil
}
