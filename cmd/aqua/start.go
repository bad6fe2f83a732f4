package main

import (
	"context"

	"github.com/sandevgo/aquabot/pkg/log"
	"github.com/sandevgo/aquabot/pkg/srv"
	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start AquaBot on the configured transport",
	Long:  `Starts the transport selected by AQUA_TRANSPORT: the terminal chat (default) or the Telegram bot.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := context.WithCancel(cmd.Context())
		defer stop()

		// logger setup
		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)
		logger.Info().Msg("starting aquabot")

		a, err := newApp(ctx)
		if err != nil {
			return err
		}

		services, err := a.services(ctx, stop)
		if err != nil {
			a.close(ctx)
			return err
		}

		if err := srv.Run(ctx, services...); err != nil {
			return err
		}
		logger.Info().Msg("aquabot has been shut down gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
}
