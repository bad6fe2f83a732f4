package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/sandevgo/aquabot/internal/config"
	"github.com/sandevgo/aquabot/internal/core"
	"github.com/sandevgo/aquabot/internal/service/chat"
	"github.com/sandevgo/aquabot/internal/service/ui"
	"github.com/sandevgo/aquabot/pkg/conv"
	"github.com/sandevgo/aquabot/pkg/log"
)

const defaultSessionID = "cli-local"

type ReadLine struct {
	sessions *chat.Manager
	router   core.CmdRouter
	rl       *readline.Instance
	out      io.Writer
}

func NewReadLine(cfg *config.AppConfig, sessions *chat.Manager, router core.CmdRouter) (*ReadLine, error) {
	// Ensure runtime directory exists
	if err := os.MkdirAll(cfg.RuntimePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create runtime directory: %w", err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          ui.UserStyle.Render("you › "),
		HistoryFile:     cfg.GetHistoryPath(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, err
	}

	return &ReadLine{
		sessions: sessions,
		router:   router,
		rl:       rl,
		out:      rl.Stdout(),
	}, nil
}

func (r *ReadLine) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx)
	logger.Debug().Msg("readline chat started")

	r.greet()

	for {
		// Check context before blocking read
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line, err := r.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				if len(line) == 0 {
					return nil // Exit on Ctrl+C
				}
				continue
			} else if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		if quit := r.handleLine(ctx, line); quit {
			return nil
		}
	}
}

func (r *ReadLine) Shutdown(ctx context.Context) error {
	r.sessions.Close(defaultSessionID)
	if r.rl != nil {
		return r.rl.Close()
	}
	return nil
}

func (r *ReadLine) greet() {
	session := r.sessions.Get(defaultSessionID)
	r.printBot(session.Messages()[0].Text)
	if session.CanSuggest() {
		r.printHint("Type /suggest for ideas, /help for commands, exit to quit.")
	}
}

// handleLine processes one line of input and reports whether the user asked to quit.
func (r *ReadLine) handleLine(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	switch line {
	case "":
		return false
	case "exit", "quit":
		return true
	}

	if out, ok := r.router.Execute(ctx, defaultSessionID, line); ok {
		if strings.TrimSpace(out) != "" {
			r.printBot(out)
		}
		return false
	}

	session := r.sessions.Get(defaultSessionID)
	reply, err := session.Send(ctx, line)
	if err != nil {
		if status := chat.StatusText(err); status != "" {
			r.printStatus(status)
		}
		return false
	}

	r.printBot(reply.Text)
	if session.CanSummarize() && countUser(session.Messages()) == 2 {
		r.printHint("Tip: /summarize recaps the conversation.")
	}
	return false
}

func (r *ReadLine) printBot(md string) {
	fmt.Fprintf(r.out, "%s %s\n\n", ui.BotLabel(), conv.MarkdownToText(md))
}

func (r *ReadLine) printStatus(text string) {
	fmt.Fprintf(r.out, "%s\n\n", ui.StatusStyle.Render(text))
}

func (r *ReadLine) printHint(text string) {
	fmt.Fprintf(r.out, "%s\n\n", ui.DescStyle.Render(text))
}

func countUser(msgs []core.Message) int {
	n := 0
	for _, m := range msgs {
		if m.Sender == core.SenderUser {
			n++
		}
	}
	return n
}
