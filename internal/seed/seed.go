package seed

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Brauhaus05/designfin/internal/finance"
)

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
}

// Run executes the startup seed in an idempotent way: it guarantees the
// persisted current-state singleton exists, initialized from the default
// calculator snapshot. Saved snapshots are user data and are never seeded.
func Run(db *sql.DB) (Stats, error) {
	tx, err := db.Begin()
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}
	if err := ensureCurrentState(tx, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func ensureCurrentState(tx *sql.Tx, stats *Stats) error {
	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM app_state WHERE id = 1)`).Scan(&exists); err != nil {
		return fmt.Errorf("check current state existence: %w", err)
	}
	if exists {
		return nil
	}

	payload, err := json.Marshal(finance.DefaultState())
	if err != nil {
		return fmt.Errorf("marshal default state: %w", err)
	}

	if _, err := tx.Exec(`INSERT INTO app_state (id, state_json) VALUES (1, ?)`, string(payload)); err != nil {
		return fmt.Errorf("insert current state singleton: %w", err)
	}
	stats.Inserts++
	return nil
}
