package models

// HistoryRecord accumulates study time for one user on one calendar day
type HistoryRecord struct {
	Username string `json:"username" db:"username"`
	DateStr  string `json:"date_str" db:"date_str"`
	MsSpent  int64  `json:"ms_spent" db:"ms_spent"`
}
