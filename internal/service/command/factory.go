package command

import (
	"github.com/sandevgo/aquabot/internal/config"
	"github.com/sandevgo/aquabot/internal/core"
	"github.com/sandevgo/aquabot/internal/service/chat"
)

func NewCommands(
	cfg *config.GeminiConfig,
	sessions *chat.Manager,
) []core.Command {
	return []core.Command{
		NewSuggestCommand(sessions),
		NewTopicCommand(sessions),
		NewSummarizeCommand(sessions),
		NewResetCommand(sessions),
		NewModelCommand(cfg),
	}
}
