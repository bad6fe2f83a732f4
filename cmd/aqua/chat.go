package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sandevgo/aquabot/internal/service/chat"
	"github.com/sandevgo/aquabot/internal/service/ui"
	"github.com/sandevgo/aquabot/internal/transport/cli"
	"github.com/sandevgo/aquabot/pkg/conv"
	"github.com/spf13/cobra"
)

const oneShotSessionID = "cli-oneshot"

var errTurnFailed = errors.New("request failed")

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with AquaBot in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close(ctx)

		repl, err := cli.NewReadLine(a.cfg, a.sessions, a.router)
		if err != nil {
			return err
		}
		defer repl.Shutdown(ctx)

		return repl.Start(ctx)
	},
}

var askCmd = &cobra.Command{
	Use:          "ask <question>",
	Short:        "Ask a single question and print the answer",
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close(ctx)

		session := a.sessions.Get(oneShotSessionID)
		reply, err := session.Send(ctx, strings.Join(args, " "))
		if err != nil {
			return turnError(cmd, err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), conv.MarkdownToText(reply.Text))
		return nil
	},
}

var suggestCmd = &cobra.Command{
	Use:          "suggest",
	Short:        "Print a few starter questions",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close(ctx)

		topics, err := a.sessions.Get(oneShotSessionID).SuggestTopics(ctx)
		if err != nil {
			return turnError(cmd, err)
		}

		for i, topic := range topics {
			fmt.Fprintf(cmd.OutOrStdout(), "%d. %s\n", i+1, topic)
		}
		return nil
	},
}

// turnError prints the user-facing status and returns a short error so the
// process exits non-zero without repeating the underlying cause.
func turnError(cmd *cobra.Command, err error) error {
	if status := chat.StatusText(err); status != "" {
		fmt.Fprintln(cmd.ErrOrStderr(), ui.StatusStyle.Render(status))
	}
	cmd.SilenceErrors = true
	return fmt.Errorf("%w: %w", errTurnFailed, err)
}

func init() {
	rootCmd.AddCommand(chatCmd, askCmd, suggestCmd)
}
