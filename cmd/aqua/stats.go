package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/sandevgo/aquabot/internal/config"
	"github.com/sandevgo/aquabot/internal/service/ui"
	"github.com/spf13/cobra"
)

var resetStats bool

var statsCmd = &cobra.Command{
	Use:          "stats",
	Short:        "Show knowledge table lookup counters",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
			return err
		}
		appCfg := config.NewAppConfig(ctx)

		repo, closeDB, err := openStats(ctx, appCfg)
		if err != nil {
			return err
		}
		defer closeDB()

		out := cmd.OutOrStdout()

		if resetStats {
			if err := repo.Reset(ctx); err != nil {
				return err
			}
			fmt.Fprintln(out, "Lookup statistics cleared.")
			return nil
		}

		stats, err := repo.List(ctx)
		if err != nil {
			return err
		}
		if len(stats) == 0 {
			fmt.Fprintln(out, ui.DescStyle.Render("No lookups recorded yet."))
			if !appCfg.StatsEnabled {
				fmt.Fprintln(out, ui.DescStyle.Render("Set AQUA_STATS_ENABLED=true to start counting."))
			}
			return nil
		}

		t := table.New().
			Border(lipgloss.NormalBorder()).
			BorderStyle(ui.DescStyle).
			Headers("OUTCOME", "KEYWORD", "COUNT", "LAST SEEN")
		for _, s := range stats {
			keyword := s.Keyword
			if keyword == "" {
				keyword = "-"
			}
			t.Row(s.Outcome, keyword, strconv.FormatInt(s.Count, 10), s.LastSeenAt.Local().Format(time.DateTime))
		}
		fmt.Fprintln(out, t.Render())
		return nil
	},
}

func init() {
	statsCmd.Flags().BoolVar(&resetStats, "reset", false, "clear all counters")
	rootCmd.AddCommand(statsCmd)
}
