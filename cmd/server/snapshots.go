package main

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/Brauhaus05/designfin/internal/finance"
	"github.com/Brauhaus05/designfin/internal/money"
)

type snapshotListItem struct {
	ID        int64
	CreatedAt string
	Title     string
	Notes     string
	COGS      float64
}

// loadCurrentState reads the persisted live state. A missing or corrupt row
// falls back to the default snapshot instead of failing startup.
func (s *server) loadCurrentState() (finance.State, error) {
	var payload string
	err := s.db.QueryRow(`SELECT state_json FROM app_state WHERE id = 1`).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return finance.DefaultState(), nil
	}
	if err != nil {
		return finance.State{}, fmt.Errorf("query current state: %w", err)
	}

	var st finance.State
	if err := json.Unmarshal([]byte(payload), &st); err != nil {
		return finance.DefaultState(), nil
	}
	return st, nil
}

func (s *server) persistCurrentState(st finance.State) error {
	payload, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal current state: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO app_state (id, state_json)
		VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET
			state_json = excluded.state_json,
			updated_at = CURRENT_TIMESTAMP
	`, string(payload))
	if err != nil {
		return fmt.Errorf("upsert current state: %w", err)
	}
	return nil
}

// saveSnapshot stores a named copy of the full state, with the derived cost
// summary alongside so the list page reads totals without recalculating.
func (s *server) saveSnapshot(title, notes string, st finance.State) error {
	statePayload, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal snapshot state: %w", err)
	}

	sum := finance.DeriveCostSummary(st)
	sum.COGS = money.Round2(sum.COGS)
	summaryPayload, err := json.Marshal(sum)
	if err != nil {
		return fmt.Errorf("marshal snapshot summary: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO snapshots (title, notes, state_json, summary_json)
		VALUES (?, ?, ?, ?)
	`, title, notes, string(statePayload), string(summaryPayload))
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

func (s *server) listSnapshots(query string) ([]snapshotListItem, error) {
	search := "%" + query + "%"
	rows, err := s.db.Query(`
		SELECT
			id,
			created_at,
			COALESCE(title, ''),
			COALESCE(notes, ''),
			summary_json
		FROM snapshots
		WHERE (? = '' OR COALESCE(title, '') LIKE ? OR COALESCE(notes, '') LIKE ?)
		ORDER BY datetime(created_at) DESC, id DESC
	`, query, search, search)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	snapshots := make([]snapshotListItem, 0)
	for rows.Next() {
		var item snapshotListItem
		var summaryJSON string
		if err := rows.Scan(&item.ID, &item.CreatedAt, &item.Title, &item.Notes, &summaryJSON); err != nil {
			return nil, err
		}
		item.COGS = extractCOGSFromJSON(summaryJSON)
		snapshots = append(snapshots, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return snapshots, nil
}

func (s *server) loadSnapshot(rawID string) (finance.State, error) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id <= 0 {
		return finance.State{}, fmt.Errorf("invalid snapshot id %q", rawID)
	}

	var payload string
	if err := s.db.QueryRow(`SELECT state_json FROM snapshots WHERE id = ?`, id).Scan(&payload); err != nil {
		return finance.State{}, fmt.Errorf("query snapshot %d: %w", id, err)
	}

	var st finance.State
	if err := json.Unmarshal([]byte(payload), &st); err != nil {
		return finance.State{}, fmt.Errorf("unmarshal snapshot %d: %w", id, err)
	}
	return st, nil
}

func extractCOGSFromJSON(summaryJSON string) float64 {
	var values map[string]float64
	if err := json.Unmarshal([]byte(summaryJSON), &values); err != nil {
		return 0
	}

	return values["cogs"]
}
