package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sandevgo/aquabot/internal/config"
	"github.com/sandevgo/aquabot/internal/core"
	"github.com/sandevgo/aquabot/internal/service/chat"
	"github.com/sandevgo/aquabot/pkg/log"
	tele "gopkg.in/telebot.v3"
)

const (
	baseContextKey = "base_context"
	suggestLabel   = "💡 Suggest Topics"
	summarizeLabel = "📝 Summarize"
)

type Bot struct {
	bot      *tele.Bot
	cfg      *config.TelegramConfig
	sessions *chat.Manager
	router   core.CmdRouter
	sender   *sender
}

func NewBot(
	ctx context.Context,
	cfg *config.TelegramConfig,
	sessions *chat.Manager,
	router core.CmdRouter,
) (*Bot, error) {
	return newBot(ctx, cfg, sessions, router, false)
}

func newBot(
	ctx context.Context,
	cfg *config.TelegramConfig,
	sessions *chat.Manager,
	router core.CmdRouter,
	offline bool,
) (*Bot, error) {
	pref := tele.Settings{
		Token:   cfg.Token,
		Poller:  &tele.LongPoller{Timeout: 10 * time.Second},
		Offline: offline,
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	bot := &Bot{
		bot:      b,
		cfg:      cfg,
		sessions: sessions,
		router:   router,
		sender:   newSender(b),
	}

	// Use context from Signal with logger
	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if c.Chat() == nil {
				return nil
			}
			c.Set(baseContextKey, log.WithSession(ctx, sessionID(c.Chat().ID)))
			return next(c)
		}
	})

	// Middleware: only allowed chats
	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if !bot.cfg.IsChatAllowed(c.Chat().ID) {
				return nil // Ignore unauthorized chats
			}
			return next(c)
		}
	})

	b.Handle("/start", bot.handleStart)
	b.Handle("/suggest", bot.handleSuggest)
	b.Handle(tele.OnText, bot.handleMessage)

	return bot, nil
}

func (b *Bot) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Msg("starting telegram bot")
	b.bot.Start()
	return nil
}

func (b *Bot) Shutdown(ctx context.Context) error {
	b.bot.Stop()
	log.FromCtx(ctx).Debug().Strs("sessions", b.sessions.IDs()).Msg("closing chat sessions")
	b.sessions.CloseAll()
	return nil
}

func sessionID(chatID int64) string {
	return fmt.Sprintf("telegram-%d", chatID)
}

func requestContext(c tele.Context) context.Context {
	if ctx, ok := c.Get(baseContextKey).(context.Context); ok {
		return ctx
	}
	return context.Background()
}

// handleStart opens a fresh conversation, like opening the widget.
func (b *Bot) handleStart(c tele.Context) error {
	ctx := requestContext(c)
	session := b.sessions.Reset(sessionID(c.Chat().ID))
	return b.sender.sendMarkdown(ctx, c.Chat(), session.Messages()[0].Text, b.keyboard(session))
}

// handleSuggest offers the suggested questions as reply buttons. Tapping one sends
// it as an ordinary message.
func (b *Bot) handleSuggest(c tele.Context) error {
	ctx := requestContext(c)
	session := b.sessions.Get(sessionID(c.Chat().ID))

	_ = c.Notify(tele.Typing)
	topics, err := session.SuggestTopics(ctx)
	if err != nil {
		if status := chat.StatusText(err); status != "" {
			return b.sender.sendStatus(ctx, c.Chat(), status)
		}
		return nil
	}
	return b.sender.sendMarkdown(ctx, c.Chat(), "Here are a few ideas:", suggestionKeyboard(topics))
}

func (b *Bot) handleMessage(c tele.Context) error {
	ctx := requestContext(c)
	logger := log.FromCtx(ctx)
	id := sessionID(c.Chat().ID)

	text := strings.TrimSpace(c.Text())
	switch text {
	case suggestLabel:
		return b.handleSuggest(c)
	case summarizeLabel:
		text = "/summarize"
	}

	// Notify user we are working
	_ = c.Notify(tele.Typing)

	if out, ok := b.router.Execute(ctx, id, text); ok {
		if strings.TrimSpace(out) == "" {
			return nil
		}
		return b.sender.sendMarkdown(ctx, c.Chat(), out, nil)
	}

	session := b.sessions.Get(id)
	reply, err := session.Send(ctx, text)
	if err != nil {
		if status := chat.StatusText(err); status != "" {
			logger.Debug().Err(err).Msg("turn failed")
			return b.sender.sendStatus(ctx, c.Chat(), status)
		}
		return nil
	}
	return b.sender.sendMarkdown(ctx, c.Chat(), reply.Text, b.keyboard(session))
}

// keyboard mirrors the widget's header buttons for the session's current state.
func (b *Bot) keyboard(session *chat.Session) *tele.ReplyMarkup {
	var labels []string
	if session.CanSuggest() {
		labels = append(labels, suggestLabel)
	}
	if session.CanSummarize() {
		labels = append(labels, summarizeLabel)
	}
	if len(labels) == 0 {
		return &tele.ReplyMarkup{RemoveKeyboard: true}
	}
	return buttonKeyboard(labels, false)
}

func suggestionKeyboard(topics []string) *tele.ReplyMarkup {
	return buttonKeyboard(topics, true)
}

func buttonKeyboard(labels []string, oneTime bool) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{ResizeKeyboard: true, OneTimeKeyboard: oneTime}
	rows := make([]tele.Row, 0, len(labels))
	for _, label := range labels {
		rows = append(rows, markup.Row(markup.Text(label)))
	}
	markup.Reply(rows...)
	return markup
}
