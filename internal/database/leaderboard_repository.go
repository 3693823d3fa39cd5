package database

import (
	"fmt"
	"sort"

	"github.com/jmoiron/sqlx"

	"github.com/adil-osmanov/german-app/pkg/models"
)

// LeaderboardRepository computes the cross-user rollup. Nothing is stored;
// every call recomputes from the two tables, which stays cheap at
// personal-vocabulary row counts.
type LeaderboardRepository struct {
	db *sqlx.DB
}

// NewLeaderboardRepository creates a new repository instance
func NewLeaderboardRepository(db *sqlx.DB) *LeaderboardRepository {
	return &LeaderboardRepository{db: db}
}

// Collect returns one entry per username seen in either table, ordered by
// total XP descending (ties broken by username for stable output)
func (r *LeaderboardRepository) Collect() ([]models.LeaderboardEntry, error) {
	entries := make(map[string]*models.LeaderboardEntry)
	get := func(username string) *models.LeaderboardEntry {
		e, ok := entries[username]
		if !ok {
			e = &models.LeaderboardEntry{Username: username, History: []string{}}
			entries[username] = e
		}
		return e
	}

	wordQuery := r.db.Rebind(`
		SELECT username,
			COALESCE(SUM(score), 0) AS total_xp,
			COUNT(*) AS all_words,
			SUM(CASE WHEN score >= ? THEN 1 ELSE 0 END) AS learned_words
		FROM words GROUP BY username
	`)
	wordRows, err := r.db.Queryx(wordQuery, models.LearnedScoreThreshold)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate words: %v", err)
	}
	defer wordRows.Close()
	for wordRows.Next() {
		var username string
		var totalXP int64
		var allWords, learnedWords int
		if err := wordRows.Scan(&username, &totalXP, &allWords, &learnedWords); err != nil {
			return nil, fmt.Errorf("failed to scan word aggregate: %v", err)
		}
		e := get(username)
		e.TotalXP = totalXP
		e.AllWords = allWords
		e.LearnedWords = learnedWords
	}
	if err := wordRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating word aggregates: %v", err)
	}

	historyRows, err := r.db.Queryx(`
		SELECT username, date_str, ms_spent FROM study_history ORDER BY username, date_str
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate history: %v", err)
	}
	defer historyRows.Close()
	for historyRows.Next() {
		var username, dateStr string
		var msSpent int64
		if err := historyRows.Scan(&username, &dateStr, &msSpent); err != nil {
			return nil, fmt.Errorf("failed to scan history aggregate: %v", err)
		}
		e := get(username)
		e.TotalMs += msSpent
		e.History = append(e.History, dateStr)
	}
	if err := historyRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history aggregates: %v", err)
	}

	result := make([]models.LeaderboardEntry, 0, len(entries))
	for _, e := range entries {
		result = append(result, *e)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].TotalXP != result[j].TotalXP {
			return result[i].TotalXP > result[j].TotalXP
		}
		return result[i].Username < result[j].Username
	})
	return result, nil
}
