package database

import (
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/adil-osmanov/german-app/pkg/models"
)

func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := Connect("", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestWord(username, wordDe, folder, level, subfolder string) *models.Word {
	return &models.Word{
		Username:  username,
		WordType:  "Nomen",
		Article:   "der",
		WordDe:    wordDe,
		WordRu:    "слово",
		Folder:    folder,
		Level:     level,
		Subfolder: subfolder,
	}
}

func TestCreateAppliesSchedulingDefaults(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWordRepository(db)

	word := newTestWord("anna", "Tisch", "A1", "", "home")
	// Caller-supplied scheduling values must be ignored on create
	word.Score = 9
	word.NextReview = 42
	word.EaseFactor = 1.1
	word.Interval = 7
	word.Repetitions = 3

	if err := repo.Create(word); err != nil {
		t.Fatalf("Failed to create word: %v", err)
	}
	if word.ID <= 0 {
		t.Error("Expected positive ID after insert")
	}

	words, err := repo.GetAll("anna")
	if err != nil {
		t.Fatalf("Failed to list words: %v", err)
	}
	if len(words) != 1 {
		t.Fatalf("Expected 1 word, got %d", len(words))
	}

	got := words[0]
	if got.Score != 0 || got.NextReview != 0 || got.EaseFactor != 2.5 || got.Interval != 0 || got.Repetitions != 0 {
		t.Errorf("Expected default scheduling fields (0, 0, 2.5, 0, 0), got (%d, %d, %g, %d, %d)",
			got.Score, got.NextReview, got.EaseFactor, got.Interval, got.Repetitions)
	}
	if got.WordDe != "Tisch" {
		t.Errorf("Expected word_de 'Tisch', got '%s'", got.WordDe)
	}
}

func TestGetAllOrderAndOwnership(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWordRepository(db)

	first := newTestWord("anna", "Tisch", "A1", "", "home")
	second := newTestWord("anna", "Stuhl", "A1", "", "home")
	other := newTestWord("boris", "Fenster", "A1", "", "home")
	for _, w := range []*models.Word{first, second, other} {
		if err := repo.Create(w); err != nil {
			t.Fatalf("Failed to create word: %v", err)
		}
	}

	words, err := repo.GetAll("anna")
	if err != nil {
		t.Fatalf("Failed to list words: %v", err)
	}
	if len(words) != 2 {
		t.Fatalf("Expected 2 words for anna, got %d", len(words))
	}
	// Most recently created first
	if words[0].WordDe != "Stuhl" || words[1].WordDe != "Tisch" {
		t.Errorf("Expected reverse creation order, got %s then %s", words[0].WordDe, words[1].WordDe)
	}
	for _, w := range words {
		if w.Username != "anna" {
			t.Errorf("Listed a word owned by '%s'", w.Username)
		}
	}
}

func TestApplyReview(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWordRepository(db)

	word := newTestWord("anna", "Tisch", "A1", "", "home")
	if err := repo.Create(word); err != nil {
		t.Fatalf("Failed to create word: %v", err)
	}

	review := models.Review{Score: 3, NextReview: 1700000000000, EaseFactor: 2.6, Interval: 1, Repetitions: 1}
	if err := repo.ApplyReview("anna", word.ID, review); err != nil {
		t.Fatalf("Failed to apply review: %v", err)
	}

	words, _ := repo.GetAll("anna")
	got := words[0]
	if got.Score != 3 || got.NextReview != 1700000000000 || got.EaseFactor != 2.6 || got.Interval != 1 || got.Repetitions != 1 {
		t.Errorf("Review fields not persisted, got (%d, %d, %g, %d, %d)",
			got.Score, got.NextReview, got.EaseFactor, got.Interval, got.Repetitions)
	}
	if got.WordDe != "Tisch" {
		t.Errorf("Descriptive field changed by review: %s", got.WordDe)
	}
}

func TestApplyReviewWrongOwnerIsNoOp(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWordRepository(db)

	word := newTestWord("anna", "Tisch", "A1", "", "home")
	if err := repo.Create(word); err != nil {
		t.Fatalf("Failed to create word: %v", err)
	}

	// Another owner's review must not touch the row, and still succeeds
	review := models.Review{Score: 5, NextReview: 1, EaseFactor: 3.0, Interval: 9, Repetitions: 9}
	if err := repo.ApplyReview("boris", word.ID, review); err != nil {
		t.Fatalf("Expected success for foreign id, got %v", err)
	}

	words, _ := repo.GetAll("anna")
	if words[0].Score != 0 {
		t.Errorf("Foreign review modified the word, score = %d", words[0].Score)
	}
}

func TestUpdateFullLeavesSchedulingFields(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWordRepository(db)

	word := newTestWord("anna", "Tisch", "A1", "", "home")
	if err := repo.Create(word); err != nil {
		t.Fatalf("Failed to create word: %v", err)
	}
	if err := repo.ApplyReview("anna", word.ID, models.Review{Score: 4, NextReview: 99, EaseFactor: 2.7, Interval: 2, Repetitions: 2}); err != nil {
		t.Fatalf("Failed to apply review: %v", err)
	}

	edited := newTestWord("anna", "Esstisch", "A2", "intermediate", "kitchen")
	edited.Example = "Der Esstisch ist groß."
	if err := repo.UpdateFull("anna", word.ID, edited); err != nil {
		t.Fatalf("Failed to update word: %v", err)
	}

	words, _ := repo.GetAll("anna")
	got := words[0]
	if got.WordDe != "Esstisch" || got.Folder != "A2" || got.Example != "Der Esstisch ist groß." {
		t.Errorf("Descriptive fields not updated: %+v", got)
	}
	if got.Score != 4 || got.NextReview != 99 || got.EaseFactor != 2.7 || got.Interval != 2 || got.Repetitions != 2 {
		t.Errorf("Full edit touched scheduling fields: (%d, %d, %g, %d, %d)",
			got.Score, got.NextReview, got.EaseFactor, got.Interval, got.Repetitions)
	}
}

func TestResetScope(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWordRepository(db)

	inScope := newTestWord("anna", "Tisch", "A1", "", "home")
	outOfScope := newTestWord("anna", "Stuhl", "A1", "", "office")
	foreign := newTestWord("boris", "Fenster", "A1", "", "home")
	for _, w := range []*models.Word{inScope, outOfScope, foreign} {
		if err := repo.Create(w); err != nil {
			t.Fatalf("Failed to create word: %v", err)
		}
		if err := repo.ApplyReview(w.Username, w.ID, models.Review{Score: 5, NextReview: 10, EaseFactor: 3.0, Interval: 4, Repetitions: 4}); err != nil {
			t.Fatalf("Failed to apply review: %v", err)
		}
	}

	if err := repo.ResetScope("anna", models.Scope{Folder: "A1", Level: "", Subfolder: "home"}); err != nil {
		t.Fatalf("Failed to reset scope: %v", err)
	}

	words, _ := repo.GetAll("anna")
	for _, w := range words {
		switch w.Subfolder {
		case "home":
			if w.Score != 0 || w.NextReview != 0 || w.EaseFactor != 2.5 || w.Interval != 0 || w.Repetitions != 0 {
				t.Errorf("Word in scope not reset: (%d, %d, %g, %d, %d)",
					w.Score, w.NextReview, w.EaseFactor, w.Interval, w.Repetitions)
			}
			if w.WordDe != "Tisch" {
				t.Errorf("Reset changed descriptive field: %s", w.WordDe)
			}
		case "office":
			if w.Score != 5 {
				t.Errorf("Word outside scope was reset, score = %d", w.Score)
			}
		}
	}

	foreignWords, _ := repo.GetAll("boris")
	if foreignWords[0].Score != 5 {
		t.Errorf("Another owner's word was reset, score = %d", foreignWords[0].Score)
	}
}

func TestRenameFolderMergesIntoExisting(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWordRepository(db)

	old1 := newTestWord("anna", "Tisch", "Alt", "", "home")
	old2 := newTestWord("anna", "Stuhl", "Alt", "", "home")
	existing := newTestWord("anna", "Fenster", "Neu", "", "home")
	for _, w := range []*models.Word{old1, old2, existing} {
		if err := repo.Create(w); err != nil {
			t.Fatalf("Failed to create word: %v", err)
		}
	}

	if err := repo.RenameFolder("anna", "Alt", "Neu"); err != nil {
		t.Fatalf("Failed to rename folder: %v", err)
	}

	words, _ := repo.GetAll("anna")
	if len(words) != 3 {
		t.Fatalf("Rows lost during merge: expected 3, got %d", len(words))
	}
	for _, w := range words {
		if w.Folder != "Neu" {
			t.Errorf("Word '%s' still in folder '%s'", w.WordDe, w.Folder)
		}
	}
}

func TestRenameSubfolderScopedByFolderAndLevel(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWordRepository(db)

	target := newTestWord("anna", "Tisch", "A1", "basic", "alt")
	sameNameOtherLevel := newTestWord("anna", "Stuhl", "A1", "advanced", "alt")
	if err := repo.Create(target); err != nil {
		t.Fatalf("Failed to create word: %v", err)
	}
	if err := repo.Create(sameNameOtherLevel); err != nil {
		t.Fatalf("Failed to create word: %v", err)
	}

	if err := repo.RenameSubfolder("anna", "A1", "basic", "alt", "neu"); err != nil {
		t.Fatalf("Failed to rename subfolder: %v", err)
	}

	words, _ := repo.GetAll("anna")
	for _, w := range words {
		if w.WordDe == "Tisch" && w.Subfolder != "neu" {
			t.Errorf("Target subfolder not renamed: %s", w.Subfolder)
		}
		if w.WordDe == "Stuhl" && w.Subfolder != "alt" {
			t.Errorf("Subfolder outside level was renamed: %s", w.Subfolder)
		}
	}
}

func TestDeleteScope(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWordRepository(db)

	inScope := newTestWord("anna", "Tisch", "A1", "", "home")
	outOfScope := newTestWord("anna", "Stuhl", "A2", "", "home")
	if err := repo.Create(inScope); err != nil {
		t.Fatalf("Failed to create word: %v", err)
	}
	if err := repo.Create(outOfScope); err != nil {
		t.Fatalf("Failed to create word: %v", err)
	}

	if err := repo.DeleteScope("anna", models.Scope{Folder: "A1", Level: "", Subfolder: "home"}); err != nil {
		t.Fatalf("Failed to delete scope: %v", err)
	}

	words, _ := repo.GetAll("anna")
	if len(words) != 1 || words[0].WordDe != "Stuhl" {
		t.Errorf("Expected only 'Stuhl' to remain, got %d words", len(words))
	}
}

func TestDeleteScopedToOwner(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWordRepository(db)

	word := newTestWord("anna", "Tisch", "A1", "", "home")
	if err := repo.Create(word); err != nil {
		t.Fatalf("Failed to create word: %v", err)
	}

	if err := repo.Delete("boris", word.ID); err != nil {
		t.Fatalf("Expected success for foreign delete, got %v", err)
	}
	words, _ := repo.GetAll("anna")
	if len(words) != 1 {
		t.Fatal("Foreign delete removed another owner's word")
	}

	if err := repo.Delete("anna", word.ID); err != nil {
		t.Fatalf("Failed to delete word: %v", err)
	}
	words, _ = repo.GetAll("anna")
	if len(words) != 0 {
		t.Errorf("Expected empty list after delete, got %d words", len(words))
	}
}

func TestReplaceAllTrustsSchedulingState(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWordRepository(db)

	stale := newTestWord("anna", "Alt", "A1", "", "home")
	foreign := newTestWord("boris", "Fenster", "A1", "", "home")
	if err := repo.Create(stale); err != nil {
		t.Fatalf("Failed to create word: %v", err)
	}
	if err := repo.Create(foreign); err != nil {
		t.Fatalf("Failed to create word: %v", err)
	}

	restored := models.Word{
		WordType: "Nomen", Article: "der", WordDe: "Tisch", WordRu: "стол",
		Folder: "A1", Subfolder: "home",
		Score: 4, NextReview: 1700000000000, EaseFactor: 2.8, Interval: 6, Repetitions: 3,
	}
	count, err := repo.ReplaceAll("anna", []models.Word{restored})
	if err != nil {
		t.Fatalf("Failed to replace words: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected restored count 1, got %d", count)
	}

	words, _ := repo.GetAll("anna")
	if len(words) != 1 {
		t.Fatalf("Expected 1 word after restore, got %d", len(words))
	}
	got := words[0]
	if got.WordDe != "Tisch" || got.Score != 4 || got.NextReview != 1700000000000 ||
		got.EaseFactor != 2.8 || got.Interval != 6 || got.Repetitions != 3 {
		t.Errorf("Restore did not preserve scheduling state: %+v", got)
	}

	// Restore is scoped to the owner
	foreignWords, _ := repo.GetAll("boris")
	if len(foreignWords) != 1 {
		t.Error("Restore wiped another owner's vocabulary")
	}
}

func TestReplaceAllKeepsPriorWordsOnInsertFailure(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWordRepository(db)

	existing := newTestWord("anna", "Tisch", "A1", "", "home")
	if err := repo.Create(existing); err != nil {
		t.Fatalf("Failed to create word: %v", err)
	}

	// Reject one marker word so the batch fails after the wipe and a
	// successful first insert
	_, err := db.Exec(`
		CREATE TRIGGER reject_marker BEFORE INSERT ON words
		WHEN NEW.word_de = 'Kaputt'
		BEGIN SELECT RAISE(ABORT, 'rejected'); END
	`)
	if err != nil {
		t.Fatalf("Failed to create trigger: %v", err)
	}

	batch := []models.Word{
		{WordType: "Nomen", WordDe: "Stuhl", WordRu: "стул", Folder: "A1", Subfolder: "home"},
		{WordType: "Nomen", WordDe: "Kaputt", WordRu: "сломан", Folder: "A1", Subfolder: "home"},
	}
	if _, err := repo.ReplaceAll("anna", batch); err == nil {
		t.Fatal("Expected error when a batch insert fails")
	}

	words, err := repo.GetAll("anna")
	if err != nil {
		t.Fatalf("Failed to list words: %v", err)
	}
	if len(words) != 1 || words[0].WordDe != "Tisch" {
		t.Errorf("Failed restore must leave the previous vocabulary intact, got %+v", words)
	}
}

func TestBulkCreateIgnoresSchedulingState(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWordRepository(db)

	existing := newTestWord("anna", "Alt", "A1", "", "home")
	if err := repo.Create(existing); err != nil {
		t.Fatalf("Failed to create word: %v", err)
	}

	imported := models.Word{
		Username: "anna", WordType: "Nomen", WordDe: "Tisch", WordRu: "стол",
		Folder: "A1", Subfolder: "home",
		Score: 9, EaseFactor: 1.0, // must be ignored
	}
	count, err := repo.BulkCreate([]models.Word{imported})
	if err != nil {
		t.Fatalf("Failed to bulk create: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected added count 1, got %d", count)
	}

	words, _ := repo.GetAll("anna")
	if len(words) != 2 {
		t.Fatalf("Additive import must not wipe existing words, got %d", len(words))
	}
	for _, w := range words {
		if w.Score != 0 || w.EaseFactor != 2.5 {
			t.Errorf("Imported word carries scheduling state: score=%d ease=%g", w.Score, w.EaseFactor)
		}
	}
}
