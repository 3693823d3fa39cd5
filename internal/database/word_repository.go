package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/adil-osmanov/german-app/pkg/models"
)

// WordRepository handles database operations for words
type WordRepository struct {
	db *sqlx.DB
}

// NewWordRepository creates a new repository instance
func NewWordRepository(db *sqlx.DB) *WordRepository {
	return &WordRepository{db: db}
}

// GetAll returns all words owned by the user, most recently created first
func (r *WordRepository) GetAll(username string) ([]models.Word, error) {
	words := []models.Word{}
	query := r.db.Rebind("SELECT * FROM words WHERE username = ? ORDER BY id DESC")
	if err := r.db.Select(&words, query, username); err != nil {
		return nil, fmt.Errorf("failed to get words: %v", err)
	}
	return words, nil
}

// Create inserts a new word. Scheduling fields always start at their
// defaults regardless of what the caller put into the struct.
func (r *WordRepository) Create(word *models.Word) error {
	word.Score = models.DefaultScore
	word.NextReview = models.DefaultNextReview
	word.EaseFactor = models.DefaultEaseFactor
	word.Interval = models.DefaultInterval
	word.Repetitions = models.DefaultRepetition

	if r.db.DriverName() == "postgres" {
		query := `
			INSERT INTO words (username, word_type, article, word_de, plural, praeteritum, partizip,
				word_ru, folder, level, subfolder, example, score, next_review, ease_factor, interval, repetitions)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
			RETURNING id
		`
		return r.db.QueryRow(
			query,
			word.Username, word.WordType, word.Article, word.WordDe, word.Plural,
			word.Praeteritum, word.Partizip, word.WordRu, word.Folder, word.Level,
			word.Subfolder, word.Example, word.Score, word.NextReview,
			word.EaseFactor, word.Interval, word.Repetitions,
		).Scan(&word.ID)
	}

	// SQLite path (no RETURNING)
	query := `
		INSERT INTO words (username, word_type, article, word_de, plural, praeteritum, partizip,
			word_ru, folder, level, subfolder, example, score, next_review, ease_factor, interval, repetitions)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.Exec(
		query,
		word.Username, word.WordType, word.Article, word.WordDe, word.Plural,
		word.Praeteritum, word.Partizip, word.WordRu, word.Folder, word.Level,
		word.Subfolder, word.Example, word.Score, word.NextReview,
		word.EaseFactor, word.Interval, word.Repetitions,
	)
	if err != nil {
		return fmt.Errorf("failed to create word: %v", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %v", err)
	}
	word.ID = int(id)
	return nil
}

// UpdateFull overwrites the descriptive fields of a word, leaving the
// scheduling fields untouched. Scoped to (id, username): updating a word
// that doesn't exist or belongs to someone else affects zero rows and is
// still acknowledged as success.
func (r *WordRepository) UpdateFull(username string, id int, word *models.Word) error {
	query := r.db.Rebind(`
		UPDATE words SET
			word_type = ?, article = ?, word_de = ?, plural = ?, praeteritum = ?,
			partizip = ?, word_ru = ?, folder = ?, level = ?, subfolder = ?, example = ?
		WHERE id = ? AND username = ?
	`)
	_, err := r.db.Exec(
		query,
		word.WordType, word.Article, word.WordDe, word.Plural, word.Praeteritum,
		word.Partizip, word.WordRu, word.Folder, word.Level, word.Subfolder,
		word.Example, id, username,
	)
	if err != nil {
		return fmt.Errorf("failed to update word: %v", err)
	}
	return nil
}

// Delete removes a word, scoped to (id, username)
func (r *WordRepository) Delete(username string, id int) error {
	query := r.db.Rebind("DELETE FROM words WHERE id = ? AND username = ?")
	if _, err := r.db.Exec(query, id, username); err != nil {
		return fmt.Errorf("failed to delete word: %v", err)
	}
	return nil
}

// ApplyReview persists the five scheduling fields of one review transition
// in a single statement. The values are trusted as given; the scheduling
// algorithm that produced them lives in the client.
func (r *WordRepository) ApplyReview(username string, id int, review models.Review) error {
	query := r.db.Rebind(`
		UPDATE words SET score = ?, next_review = ?, ease_factor = ?, interval = ?, repetitions = ?
		WHERE id = ? AND username = ?
	`)
	_, err := r.db.Exec(
		query,
		review.Score, review.NextReview, review.EaseFactor, review.Interval,
		review.Repetitions, id, username,
	)
	if err != nil {
		return fmt.Errorf("failed to apply review: %v", err)
	}
	return nil
}

// ResetScope resets the scheduling fields of every word in the scope back to
// their defaults. One statement, so the matched set resets atomically.
func (r *WordRepository) ResetScope(username string, scope models.Scope) error {
	query := r.db.Rebind(`
		UPDATE words SET score = ?, next_review = ?, ease_factor = ?, interval = ?, repetitions = ?
		WHERE username = ? AND folder = ? AND level = ? AND subfolder = ?
	`)
	_, err := r.db.Exec(
		query,
		models.DefaultScore, models.DefaultNextReview, models.DefaultEaseFactor,
		models.DefaultInterval, models.DefaultRepetition,
		username, scope.Folder, scope.Level, scope.Subfolder,
	)
	if err != nil {
		return fmt.Errorf("failed to reset folder: %v", err)
	}
	return nil
}

// DeleteScope removes every owned word in the exact scope
func (r *WordRepository) DeleteScope(username string, scope models.Scope) error {
	query := r.db.Rebind(`
		DELETE FROM words WHERE username = ? AND folder = ? AND level = ? AND subfolder = ?
	`)
	_, err := r.db.Exec(query, username, scope.Folder, scope.Level, scope.Subfolder)
	if err != nil {
		return fmt.Errorf("failed to delete folder: %v", err)
	}
	return nil
}

// RenameFolder relabels every owned word in the old folder. Renaming onto an
// existing folder merges the two; that behavior is intended.
func (r *WordRepository) RenameFolder(username, oldName, newName string) error {
	query := r.db.Rebind("UPDATE words SET folder = ? WHERE username = ? AND folder = ?")
	if _, err := r.db.Exec(query, newName, username, oldName); err != nil {
		return fmt.Errorf("failed to rename folder: %v", err)
	}
	return nil
}

// RenameSubfolder relabels a subfolder within one folder and level
func (r *WordRepository) RenameSubfolder(username, folder, level, oldName, newName string) error {
	query := r.db.Rebind(`
		UPDATE words SET subfolder = ?
		WHERE username = ? AND folder = ? AND level = ? AND subfolder = ?
	`)
	_, err := r.db.Exec(query, newName, username, folder, level, oldName)
	if err != nil {
		return fmt.Errorf("failed to rename subfolder: %v", err)
	}
	return nil
}

// ReplaceAll wipes the user's vocabulary and inserts the given words in one
// transaction, trusting the scheduling fields they carry. Used by restore:
// if any insert fails the previous vocabulary stays intact.
func (r *WordRepository) ReplaceAll(username string, words []models.Word) (int, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	deleteQuery := tx.Rebind("DELETE FROM words WHERE username = ?")
	if _, err := tx.Exec(deleteQuery, username); err != nil {
		return 0, fmt.Errorf("failed to clear words: %v", err)
	}

	insertQuery := tx.Rebind(`
		INSERT INTO words (username, word_type, article, word_de, plural, praeteritum, partizip,
			word_ru, folder, level, subfolder, example, score, next_review, ease_factor, interval, repetitions)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	for _, word := range words {
		_, err := tx.Exec(
			insertQuery,
			username, word.WordType, word.Article, word.WordDe, word.Plural,
			word.Praeteritum, word.Partizip, word.WordRu, word.Folder, word.Level,
			word.Subfolder, word.Example, word.Score, word.NextReview,
			word.EaseFactor, word.Interval, word.Repetitions,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert restored word: %v", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit restore: %v", err)
	}
	return len(words), nil
}

// BulkCreate inserts words additively with default scheduling fields,
// all into the scope each word already carries. Used by the CSV upload.
func (r *WordRepository) BulkCreate(words []models.Word) (int, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	query := tx.Rebind(`
		INSERT INTO words (username, word_type, article, word_de, plural, praeteritum, partizip,
			word_ru, folder, level, subfolder, example, score, next_review, ease_factor, interval, repetitions)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	for _, word := range words {
		_, err := tx.Exec(
			query,
			word.Username, word.WordType, word.Article, word.WordDe, word.Plural,
			word.Praeteritum, word.Partizip, word.WordRu, word.Folder, word.Level,
			word.Subfolder, word.Example,
			models.DefaultScore, models.DefaultNextReview, models.DefaultEaseFactor,
			models.DefaultInterval, models.DefaultRepetition,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert word: %v", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit upload: %v", err)
	}
	return len(words), nil
}
