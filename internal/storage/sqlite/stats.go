package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sandevgo/aquabot/internal/core"
)

// StatsRepo keeps aggregate lookup counters. Conversation text is never stored.
type StatsRepo struct {
	db  *sql.DB
	now func() time.Time
}

func NewStatsRepo(db *sql.DB) *StatsRepo {
	return &StatsRepo{db: db, now: time.Now}
}

func (r *StatsRepo) Record(ctx context.Context, keyword, outcome string) error {
	query := `
		INSERT INTO lookup_stats (keyword, outcome, count, last_seen_at) VALUES (?, ?, 1, ?)
		ON CONFLICT(keyword, outcome) DO UPDATE SET
			count = count + 1,
			last_seen_at = excluded.last_seen_at`

	if _, err := r.db.ExecContext(ctx, query, keyword, outcome, r.now().UTC()); err != nil {
		return fmt.Errorf("failed to record lookup stat: %w", err)
	}
	return nil
}

// List returns all counters, most frequent first.
func (r *StatsRepo) List(ctx context.Context) ([]core.LookupStat, error) {
	query := `SELECT keyword, outcome, count, last_seen_at FROM lookup_stats ORDER BY count DESC, outcome, keyword`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query lookup stats: %w", err)
	}
	defer rows.Close()

	var stats []core.LookupStat
	for rows.Next() {
		var s core.LookupStat
		if err := rows.Scan(&s.Keyword, &s.Outcome, &s.Count, &s.LastSeenAt); err != nil {
			return nil, fmt.Errorf("failed to scan lookup stat: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

func (r *StatsRepo) Reset(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM lookup_stats`); err != nil {
		return fmt.Errorf("failed to reset lookup stats: %w", err)
	}
	return nil
}
