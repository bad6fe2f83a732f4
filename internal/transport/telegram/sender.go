package telegram

import (
	"context"
	"strings"

	"github.com/sandevgo/aquabot/pkg/conv"
	"github.com/sandevgo/aquabot/pkg/log"
	tele "gopkg.in/telebot.v3"
)

const maxTelegramMsgLen = 4000 // Safety margin below 4096

type sender struct {
	bot *tele.Bot
}

func newSender(bot *tele.Bot) *sender {
	return &sender{bot: bot}
}

// sendMarkdown converts Markdown to Telegram HTML and sends it in chunks if needed.
// markup, if any, is attached to the last chunk.
func (s *sender) sendMarkdown(ctx context.Context, to tele.Recipient, md string, markup *tele.ReplyMarkup) error {
	logger := log.FromCtx(ctx)

	mode := tele.ModeHTML
	text := strings.TrimSpace(conv.MarkdownToTelegramHTML([]byte(md)))
	if text == "" {
		// Sanitizing stripped everything; fall back to the raw text.
		mode = tele.ModeDefault
		text = strings.TrimSpace(md)
	}
	if text == "" {
		return nil
	}

	chunks := conv.SplitMessage(text, maxTelegramMsgLen)
	for i, chunk := range chunks {
		opts := []interface{}{mode}
		if markup != nil && i == len(chunks)-1 {
			opts = append(opts, markup)
		}

		if _, err := s.bot.Send(to, chunk, opts...); err != nil {
			logger.Error().Err(err).Int("chunk", i).Int("len", len(chunk)).Msg("failed to send telegram chunk")
			return err
		}
	}
	return nil
}

// sendStatus sends an inline status line, italic like the widget's error text.
func (s *sender) sendStatus(ctx context.Context, to tele.Recipient, status string) error {
	return s.sendMarkdown(ctx, to, "_"+status+"_", nil)
}
