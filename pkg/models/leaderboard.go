package models

// LearnedScoreThreshold is the score at which a word counts as learned
const LearnedScoreThreshold = 4

// LeaderboardEntry is the per-user rollup shown on the leaderboard.
// Users present in only one of the two tables still appear, with the
// missing side's aggregates left at zero/empty.
type LeaderboardEntry struct {
	Username     string   `json:"username"`
	TotalXP      int64    `json:"total_xp"`
	AllWords     int      `json:"all_words"`
	LearnedWords int      `json:"learned_words"`
	TotalMs      int64    `json:"total_ms"`
	History      []string `json:"history"`
}
