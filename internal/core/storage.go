package core

import (
	"context"
	"time"
)

// Lookup outcomes recorded per turn.
const (
	OutcomeResolved = "resolved"
	OutcomeFallback = "fallback"
	OutcomeFailed   = "failed"
)

type StatsRecorder interface {
	Record(ctx context.Context, keyword, outcome string) error
}

type LookupStat struct {
	Keyword    string    `json:"keyword"`
	Outcome    string    `json:"outcome"`
	Count      int64     `json:"count"`
	LastSeenAt time.Time `json:"last_seen_at"`
}
