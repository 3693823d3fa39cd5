// Package backup implements the CSV interchange format for the vocabulary:
// a semicolon-delimited, BOM-prefixed UTF-8 table that round-trips every
// word field including the scheduling state.
package backup

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/adil-osmanov/german-app/pkg/models"
)

// Column order of the backup file. This is the durable interchange format;
// changing it breaks round-tripping with existing backups.
var backupHeader = []string{
	"id", "word_type", "article", "word_de", "word_ru", "folder", "level", "subfolder",
	"score", "example", "next_review", "plural", "praeteritum", "partizip",
	"ease_factor", "interval", "repetitions",
}

const utf8BOM = "\xEF\xBB\xBF"

// Export writes the user's full vocabulary as a backup CSV
func Export(w io.Writer, words []models.Word) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return fmt.Errorf("failed to write BOM: %v", err)
	}

	writer := csv.NewWriter(w)
	writer.Comma = ';'

	if err := writer.Write(backupHeader); err != nil {
		return fmt.Errorf("failed to write header: %v", err)
	}
	for _, word := range words {
		record := []string{
			strconv.Itoa(word.ID),
			word.WordType,
			word.Article,
			word.WordDe,
			word.WordRu,
			word.Folder,
			word.Level,
			word.Subfolder,
			strconv.Itoa(word.Score),
			word.Example,
			strconv.FormatInt(word.NextReview, 10),
			word.Plural,
			word.Praeteritum,
			word.Partizip,
			strconv.FormatFloat(word.EaseFactor, 'g', -1, 64),
			strconv.Itoa(word.Interval),
			strconv.Itoa(word.Repetitions),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write word row: %v", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// DecodeText turns an uploaded file into text: UTF-8 with the BOM stripped
// when the content is valid UTF-8, otherwise Windows-1251 with undecodable
// bytes replaced. It always produces some text and never fails.
func DecodeText(content []byte) string {
	content = bytes.TrimPrefix(content, []byte(utf8BOM))
	if utf8.Valid(content) {
		return string(content)
	}
	decoded, err := charmap.Windows1251.NewDecoder().Bytes(content)
	if err != nil {
		// The charmap decoder substitutes rather than fails; this is a guard
		return string(content)
	}
	return string(decoded)
}

// ParseBackup parses restore input, skipping the header row. Rows with fewer
// than 10 fields are dropped, missing or empty numeric columns fall back to
// the scheduling defaults, and a row that fails to parse is skipped without
// aborting the batch. Skipped rows are logged but not reported to the caller.
func ParseBackup(text string) []models.Word {
	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	words := []models.Word{}
	line := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			log.Printf("restore: skipping unparseable row %d: %v", line, err)
			continue
		}
		if line == 1 {
			// header
			continue
		}
		if len(row) < 10 {
			log.Printf("restore: skipping short row %d (%d fields)", line, len(row))
			continue
		}

		word, err := parseBackupRow(row)
		if err != nil {
			log.Printf("restore: skipping row %d: %v", line, err)
			continue
		}
		words = append(words, word)
	}
	return words
}

func parseBackupRow(row []string) (models.Word, error) {
	score, err := intField(row, 8, models.DefaultScore)
	if err != nil {
		return models.Word{}, err
	}
	nextReview, err := int64Field(row, 10, models.DefaultNextReview)
	if err != nil {
		return models.Word{}, err
	}
	easeFactor, err := floatField(row, 14, models.DefaultEaseFactor)
	if err != nil {
		return models.Word{}, err
	}
	interval, err := intField(row, 15, models.DefaultInterval)
	if err != nil {
		return models.Word{}, err
	}
	repetitions, err := intField(row, 16, models.DefaultRepetition)
	if err != nil {
		return models.Word{}, err
	}

	return models.Word{
		WordType:    row[1],
		Article:     row[2],
		WordDe:      row[3],
		WordRu:      row[4],
		Folder:      row[5],
		Level:       row[6],
		Subfolder:   row[7],
		Score:       score,
		Example:     row[9],
		NextReview:  nextReview,
		Plural:      stringField(row, 11),
		Praeteritum: stringField(row, 12),
		Partizip:    stringField(row, 13),
		EaseFactor:  easeFactor,
		Interval:    interval,
		Repetitions: repetitions,
	}, nil
}

func stringField(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}

func intField(row []string, idx, defaultVal int) (int, error) {
	if idx >= len(row) || row[idx] == "" {
		return defaultVal, nil
	}
	val, err := strconv.Atoi(strings.TrimSpace(row[idx]))
	if err != nil {
		return 0, fmt.Errorf("bad integer in column %d: %v", idx, err)
	}
	return val, nil
}

func int64Field(row []string, idx int, defaultVal int64) (int64, error) {
	if idx >= len(row) || row[idx] == "" {
		return defaultVal, nil
	}
	val, err := strconv.ParseInt(strings.TrimSpace(row[idx]), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad integer in column %d: %v", idx, err)
	}
	return val, nil
}

func floatField(row []string, idx int, defaultVal float64) (float64, error) {
	if idx >= len(row) || row[idx] == "" {
		return defaultVal, nil
	}
	val, err := strconv.ParseFloat(strings.TrimSpace(row[idx]), 64)
	if err != nil {
		return 0, fmt.Errorf("bad number in column %d: %v", idx, err)
	}
	return val, nil
}
