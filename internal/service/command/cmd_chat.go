package command

import (
	"context"
	"fmt"
	"strconv"

	"github.com/sandevgo/aquabot/internal/service/chat"
)

// chatStatus turns a session error into the inline status line, or "" for a
// cancelled request.
func chatStatus(f *ResponseFormatter, err error) string {
	status := chat.StatusText(err)
	if status == "" {
		return ""
	}
	return f.Status(status)
}

type SuggestCommand struct {
	sessions  *chat.Manager
	formatter *ResponseFormatter
}

func NewSuggestCommand(sessions *chat.Manager) *SuggestCommand {
	return &SuggestCommand{sessions: sessions, formatter: NewResponseFormatter()}
}

func (c *SuggestCommand) Name() string { return "suggest" }

func (c *SuggestCommand) Description() string {
	return "Suggest a few questions to get started"
}

func (c *SuggestCommand) Execute(ctx context.Context, sessionID string, args []string) (string, error) {
	topics, err := c.sessions.Get(sessionID).SuggestTopics(ctx)
	if err != nil {
		return chatStatus(c.formatter, err), nil
	}
	return c.formatter.Combine(
		c.formatter.Info("Suggested Topics"),
		c.formatter.Numbered(topics),
		c.formatter.Tip("send /topic 1 to ask the first one"),
	), nil
}

type TopicCommand struct {
	sessions  *chat.Manager
	formatter *ResponseFormatter
}

func NewTopicCommand(sessions *chat.Manager) *TopicCommand {
	return &TopicCommand{sessions: sessions, formatter: NewResponseFormatter()}
}

func (c *TopicCommand) Name() string { return "topic" }

func (c *TopicCommand) Description() string {
	return "Ask one of the suggested questions"
}

func (c *TopicCommand) Execute(ctx context.Context, sessionID string, args []string) (string, error) {
	session := c.sessions.Get(sessionID)
	topics := session.Suggestions()
	if len(topics) == 0 {
		return c.formatter.Combine(
			c.formatter.Status("No suggestions yet."),
			c.formatter.Tip("send /suggest first"),
		), nil
	}
	if len(args) != 1 {
		return c.formatter.Combine(
			c.formatter.Numbered(topics),
			c.formatter.Usage(fmt.Sprintf("/topic [1-%d]", len(topics))),
		), nil
	}

	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > len(topics) {
		return "", fmt.Errorf("pick a number between 1 and %d", len(topics))
	}

	reply, err := session.Send(ctx, topics[n-1])
	if err != nil {
		return chatStatus(c.formatter, err), nil
	}
	return reply.Text, nil
}

type SummarizeCommand struct {
	sessions  *chat.Manager
	formatter *ResponseFormatter
}

func NewSummarizeCommand(sessions *chat.Manager) *SummarizeCommand {
	return &SummarizeCommand{sessions: sessions, formatter: NewResponseFormatter()}
}

func (c *SummarizeCommand) Name() string { return "summarize" }

func (c *SummarizeCommand) Description() string {
	return "Summarize the conversation so far"
}

func (c *SummarizeCommand) Execute(ctx context.Context, sessionID string, args []string) (string, error) {
	msg, err := c.sessions.Get(sessionID).Summarize(ctx)
	if err != nil {
		return chatStatus(c.formatter, err), nil
	}
	return msg.Text, nil
}

type ResetCommand struct {
	sessions  *chat.Manager
	formatter *ResponseFormatter
}

func NewResetCommand(sessions *chat.Manager) *ResetCommand {
	return &ResetCommand{sessions: sessions, formatter: NewResponseFormatter()}
}

func (c *ResetCommand) Name() string { return "reset" }

func (c *ResetCommand) Description() string {
	return "Start a new conversation"
}

func (c *ResetCommand) Execute(ctx context.Context, sessionID string, args []string) (string, error) {
	msgs := c.sessions.Reset(sessionID).Messages()
	return msgs[0].Text, nil
}
