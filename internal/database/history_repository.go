package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// HistoryRepository handles database operations for the study-time ledger
type HistoryRepository struct {
	db *sqlx.DB
}

// NewHistoryRepository creates a new repository instance
func NewHistoryRepository(db *sqlx.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Get returns the user's full ledger as a date -> milliseconds map
func (r *HistoryRepository) Get(username string) (map[string]int64, error) {
	query := r.db.Rebind("SELECT date_str, ms_spent FROM study_history WHERE username = ?")
	rows, err := r.db.Queryx(query, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %v", err)
	}
	defer rows.Close()

	history := make(map[string]int64)
	for rows.Next() {
		var dateStr string
		var msSpent int64
		if err := rows.Scan(&dateStr, &msSpent); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %v", err)
		}
		history[dateStr] = msSpent
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history rows: %v", err)
	}
	return history, nil
}

// Accumulate adds time to the (username, date) record, inserting it on first
// use. A single upsert statement so concurrent sessions ending on the same
// day never lose each other's update.
func (r *HistoryRepository) Accumulate(username, dateStr string, msSpent int64) error {
	query := r.db.Rebind(`
		INSERT INTO study_history (username, date_str, ms_spent)
		VALUES (?, ?, ?)
		ON CONFLICT (username, date_str)
		DO UPDATE SET ms_spent = study_history.ms_spent + excluded.ms_spent
	`)
	if _, err := r.db.Exec(query, username, dateStr, msSpent); err != nil {
		return fmt.Errorf("failed to accumulate history: %v", err)
	}
	return nil
}
