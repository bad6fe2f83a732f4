package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sandevgo/aquabot/internal/config"
	"github.com/sandevgo/aquabot/internal/core"
	"github.com/sandevgo/aquabot/internal/knowledge"
	"github.com/sandevgo/aquabot/internal/providers/llm"
	"github.com/sandevgo/aquabot/internal/service/chat"
	"github.com/sandevgo/aquabot/internal/service/command"
	"github.com/sandevgo/aquabot/internal/storage/sqlite"
	"github.com/sandevgo/aquabot/internal/transport/cli"
	"github.com/sandevgo/aquabot/internal/transport/telegram"
	"github.com/sandevgo/aquabot/pkg/log"
	"github.com/sandevgo/aquabot/pkg/srv"
)

// app holds the wiring shared by every subcommand that talks to users.
type app struct {
	cfg      *config.AppConfig
	gemini   *config.GeminiConfig
	sessions *chat.Manager
	router   *command.Router

	// cleanups run after the transports have stopped.
	cleanups []srv.Service
}

func newApp(ctx context.Context) (*app, error) {
	logger := log.FromCtx(ctx)

	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		return nil, fmt.Errorf("failed to init env: %w", err)
	}

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)
	geminiCfg := config.NewGeminiConfig(ctx)

	// 2. Knowledge table
	table, err := knowledge.LoadOrDefault(appCfg.GetKnowledgePath())
	if err != nil {
		return nil, fmt.Errorf("failed to load knowledge table: %w", err)
	}
	logger.Debug().Int("entries", table.Len()).Str("path", appCfg.GetKnowledgePath()).Msg("knowledge table ready")

	// 3. Completion client
	completer, err := llm.NewProvider(ctx, geminiCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize completion client: %w", err)
	}

	a := &app{cfg: appCfg, gemini: geminiCfg}

	// 4. Optional lookup statistics
	var stats core.StatsRecorder
	if appCfg.StatsEnabled {
		repo, closeDB, err := openStats(ctx, appCfg)
		if err != nil {
			return nil, err
		}
		stats = repo
		a.cleanups = append(a.cleanups, srv.NewCleanup(closeDB))
	}

	// 5. Conversations and commands
	a.sessions = chat.NewManager(chat.Options{
		Resolver:         table,
		Completer:        completer,
		Stats:            stats,
		ReplyDelay:       appCfg.ReplyDelay,
		SummaryMaxTokens: appCfg.SummaryMaxTokens,
	})
	a.router = command.New(command.NewCommands(geminiCfg, a.sessions))

	return a, nil
}

func openStats(ctx context.Context, cfg *config.AppConfig) (*sqlite.StatsRepo, func() error, error) {
	db, err := sqlite.NewDB(ctx, cfg.GetDatabasePath())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize stats storage: %w", err)
	}
	return sqlite.NewStatsRepo(db), db.Close, nil
}

// services returns the configured transport followed by the cleanups, so
// srv.Run shuts the transport down first.
func (a *app) services(ctx context.Context, stop context.CancelFunc) ([]srv.Service, error) {
	var services []srv.Service

	if a.cfg.IsTelegramSelected() {
		tgCfg := config.NewTelegramConfig(ctx)
		bot, err := telegram.NewBot(ctx, tgCfg, a.sessions, a.router)
		if err != nil {
			return nil, err
		}
		services = append(services, bot)
	} else {
		repl, err := cli.NewReadLine(a.cfg, a.sessions, a.router)
		if err != nil {
			return nil, err
		}
		services = append(services, &stopOnReturn{Service: repl, stop: stop})
	}

	return append(services, a.cleanups...), nil
}

// stopOnReturn ends the whole run when the wrapped service's Start returns,
// e.g. when the user leaves the terminal chat.
type stopOnReturn struct {
	srv.Service
	stop context.CancelFunc
}

func (s *stopOnReturn) Start(ctx context.Context) error {
	defer s.stop()
	return s.Service.Start(ctx)
}

func (a *app) close(ctx context.Context) {
	log.FromCtx(ctx).Debug().Strs("sessions", a.sessions.IDs()).Msg("closing chat sessions")
	a.sessions.CloseAll()
	if err := srv.ShutdownServices(ctx, a.cleanups); err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("cleanup failed")
	}
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
