package main

import (
	"errors"

	"github.com/joho/godotenv"
	"github.com/sandevgo/aquabot/internal/config"
	"github.com/sandevgo/aquabot/internal/service/installer"
	"github.com/sandevgo/aquabot/pkg/log"
	"github.com/spf13/cobra"
)

var installCmd = &cobra.Command{
	Use:           "install",
	Aliases:       []string{"setup"},
	Short:         "Configure AquaBot interactively",
	SilenceUsage:  true,
	SilenceErrors: false,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// Setup logger
		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)
		logger.Info().Msg("starting installation process")

		runtimePath := config.GetRuntimePath()

		// run wizard (includes save step)
		state, err := installer.RunWizard(runtimePath)
		if err != nil {
			if errors.Is(err, installer.ErrInterrupted) {
				logger.Info().Msg("installation cancelled")
				return nil
			}
			return err
		}

		// Sanity check that the written file parses back
		if _, err := godotenv.Read(state.EnvPath); err != nil {
			logger.Warn().Err(err).Str("path", state.EnvPath).Msg("failed to read back .env file")
		}

		logger.Info().Msgf("initialized runtime directory at: %s", runtimePath)
		logger.Info().Str("knowledge", state.KnowledgePath).Msg("Installation complete! You can now run 'aqua start'.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(installCmd)
}
