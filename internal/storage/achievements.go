package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/bloom/internal/merge"
)

// Achievement statistic names.
const (
	StatMerges          = "merges"
	StatFailedMerges    = "failed_merges"
	StatLargeCombos     = "large_combos"
	StatQuickMerges     = "quick_merges"
	StatFastestMergeMs  = "fastest_merge_ms"
	StatMultiMerges     = "multi_merges"
	StatLargestChain    = "largest_chain"
	StatTopTiers        = "top_tiers_created"
	StatFastestTopMs    = "fastest_top_tier_ms"
	StatSessionsStarted = "sessions_started"
	StatSessionsEnded   = "sessions_ended"
	StatSessionsPaused  = "sessions_paused"
)

// QuickMergeWindow is the longest gap between two merges that still
// counts as a quick merge.
const QuickMergeWindow = 2 * time.Second

// IncrementStat adds by to a counter, creating it at zero.
func (s *Store) IncrementStat(name string, by int64) error {
	_, err := s.db.Exec(
		`INSERT INTO achievement_stats (name, value) VALUES (?, ?)
		 ON CONFLICT(name) DO UPDATE
		 SET value = value + excluded.value, updated_at = CURRENT_TIMESTAMP`,
		name, by,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot increment %s: %w", name, err)
	}
	return nil
}

// RecordMin keeps the smallest value ever recorded for name.
func (s *Store) RecordMin(name string, value int64) error {
	_, err := s.db.Exec(
		`INSERT INTO achievement_stats (name, value) VALUES (?, ?)
		 ON CONFLICT(name) DO UPDATE
		 SET value = MIN(value, excluded.value), updated_at = CURRENT_TIMESTAMP`,
		name, value,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot record %s: %w", name, err)
	}
	return nil
}

// RecordMax keeps the largest value ever recorded for name.
func (s *Store) RecordMax(name string, value int64) error {
	_, err := s.db.Exec(
		`INSERT INTO achievement_stats (name, value) VALUES (?, ?)
		 ON CONFLICT(name) DO UPDATE
		 SET value = MAX(value, excluded.value), updated_at = CURRENT_TIMESTAMP`,
		name, value,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot record %s: %w", name, err)
	}
	return nil
}

// Stat returns a single statistic and whether it has been recorded.
func (s *Store) Stat(name string) (int64, bool, error) {
	var v int64
	err := s.db.QueryRow("SELECT value FROM achievement_stats WHERE name = ?", name).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("storage: cannot query %s: %w", name, err)
	}
	return v, true, nil
}

// Stats returns every recorded statistic.
func (s *Store) Stats() (map[string]int64, error) {
	rows, err := s.db.Query("SELECT name, value FROM achievement_stats")
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]int64)
	for rows.Next() {
		var name string
		var v int64
		if err := rows.Scan(&name, &v); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		stats[name] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return stats, nil
}

// AchievementLog turns session notifications into persisted statistics.
// Write failures are logged and otherwise ignored so a broken database
// never interrupts play.
type AchievementLog struct {
	store *Store
	log   *log.Logger
}

var _ merge.AchievementSink = (*AchievementLog)(nil)

// NewAchievementLog creates a sink writing to store. A nil logger discards.
func NewAchievementLog(store *Store, logger *log.Logger) *AchievementLog {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &AchievementLog{store: store, log: logger}
}

func (a *AchievementLog) check(err error) {
	if err != nil {
		a.log.Warn("cannot record achievement stat", "error", err)
	}
}

func (a *AchievementLog) OnSuccessfulMerge() { a.check(a.store.IncrementStat(StatMerges, 1)) }
func (a *AchievementLog) OnFailedMerge()     { a.check(a.store.IncrementStat(StatFailedMerges, 1)) }
func (a *AchievementLog) OnLargeCombo()      { a.check(a.store.IncrementStat(StatLargeCombos, 1)) }

func (a *AchievementLog) OnQuickMerge(since time.Duration) {
	a.check(a.store.RecordMin(StatFastestMergeMs, since.Milliseconds()))
	if since < QuickMergeWindow {
		a.check(a.store.IncrementStat(StatQuickMerges, 1))
	}
}

func (a *AchievementLog) OnMultiMerge(count int) {
	a.check(a.store.IncrementStat(StatMultiMerges, 1))
	a.check(a.store.RecordMax(StatLargestChain, int64(count)))
}

func (a *AchievementLog) OnTopTierCreated(elapsed time.Duration) {
	a.check(a.store.IncrementStat(StatTopTiers, 1))
	a.check(a.store.RecordMin(StatFastestTopMs, elapsed.Milliseconds()))
}

func (a *AchievementLog) OnSessionStart() { a.check(a.store.IncrementStat(StatSessionsStarted, 1)) }
func (a *AchievementLog) OnSessionEnd()   { a.check(a.store.IncrementStat(StatSessionsEnded, 1)) }
func (a *AchievementLog) OnSessionPause() { a.check(a.store.IncrementStat(StatSessionsPaused, 1)) }
