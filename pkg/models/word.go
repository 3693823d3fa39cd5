package models

// Scheduling defaults applied on creation and bulk reset.
const (
	DefaultScore      = 0
	DefaultNextReview = 0
	DefaultEaseFactor = 2.5
	DefaultInterval   = 0
	DefaultRepetition = 0
)

// Word represents a vocabulary entry owned by a single user
type Word struct {
	ID          int     `json:"id" db:"id"`
	Username    string  `json:"username" db:"username"`
	WordType    string  `json:"word_type" db:"word_type"`
	Article     string  `json:"article" db:"article"`
	WordDe      string  `json:"word_de" db:"word_de"`
	Plural      string  `json:"plural" db:"plural"`
	Praeteritum string  `json:"praeteritum" db:"praeteritum"`
	Partizip    string  `json:"partizip" db:"partizip"`
	WordRu      string  `json:"word_ru" db:"word_ru"`
	Folder      string  `json:"folder" db:"folder"`
	Level       string  `json:"level" db:"level"`
	Subfolder   string  `json:"subfolder" db:"subfolder"`
	Example     string  `json:"example" db:"example"`
	Score       int     `json:"score" db:"score"`
	NextReview  int64   `json:"next_review" db:"next_review"` // epoch milliseconds, 0 = due now
	EaseFactor  float64 `json:"ease_factor" db:"ease_factor"`
	Interval    int     `json:"interval" db:"interval"`
	Repetitions int     `json:"repetitions" db:"repetitions"`
}

// Review carries the five scheduling values applied by one review transition.
// The review algorithm itself lives in the client; the values are stored as given.
type Review struct {
	Score       int     `json:"score"`
	NextReview  int64   `json:"next_review"`
	EaseFactor  float64 `json:"ease_factor"`
	Interval    int     `json:"interval"`
	Repetitions int     `json:"repetitions"`
}

// Scope identifies a folder/level/subfolder group of words
type Scope struct {
	Folder    string `json:"folder"`
	Level     string `json:"level"`
	Subfolder string `json:"subfolder"`
}
