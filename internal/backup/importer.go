package backup

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/adil-osmanov/german-app/pkg/models"
)

// Additive import column layout: word_type;article;word_de;plural;praeteritum;partizip;word_ru;example
const uploadColumns = 8

// ParseUpload parses additive-import rows for one target scope. Short rows
// are padded with empty strings instead of skipped, a header row is
// recognized by its first cell, and scheduling state is never imported.
func ParseUpload(text, username string, scope models.Scope) []models.Word {
	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	words := []models.Word{}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		if word, ok := uploadRowToWord(row, username, scope); ok {
			words = append(words, word)
		}
	}
	return words
}

// ParseUploadXLSX parses the first sheet of a workbook with the same column
// layout and row handling as the CSV upload
func ParseUploadXLSX(content []byte, username string, scope models.Scope) ([]models.Word, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %v", err)
	}

	words := []models.Word{}
	for _, row := range rows {
		if word, ok := uploadRowToWord(row, username, scope); ok {
			words = append(words, word)
		}
	}
	return words, nil
}

func uploadRowToWord(row []string, username string, scope models.Scope) (models.Word, bool) {
	if len(row) < 3 {
		return models.Word{}, false
	}
	if strings.EqualFold(strings.TrimSpace(row[0]), "word_type") {
		// header row
		return models.Word{}, false
	}

	// Guard against trailing columns being dropped by the source
	for len(row) < uploadColumns {
		row = append(row, "")
	}

	return models.Word{
		Username:    username,
		WordType:    strings.TrimSpace(row[0]),
		Article:     strings.TrimSpace(row[1]),
		WordDe:      strings.TrimSpace(row[2]),
		Plural:      strings.TrimSpace(row[3]),
		Praeteritum: strings.TrimSpace(row[4]),
		Partizip:    strings.TrimSpace(row[5]),
		WordRu:      strings.TrimSpace(row[6]),
		Example:     strings.TrimSpace(row[7]),
		Folder:      scope.Folder,
		Level:       scope.Level,
		Subfolder:   scope.Subfolder,
	}, true
}
