package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"

	"github.com/adil-osmanov/german-app/internal/backup"
	"github.com/adil-osmanov/german-app/internal/database"
	appmetrics "github.com/adil-osmanov/german-app/internal/metrics"
	"github.com/adil-osmanov/german-app/pkg/models"
)

// Enricher provides best-effort example sentences for new words
type Enricher interface {
	Lookup(ctx context.Context, word string) string
}

// LessonGenerator is the AI proxy surface used by the handlers
type LessonGenerator interface {
	GenerateLesson(ctx context.Context, topic, level string) (string, error)
	ExtractWordsFromImage(ctx context.Context, image []byte, mediaType string) (string, error)
}

// Handler contains all HTTP handlers with their injected dependencies
type Handler struct {
	db              *sqlx.DB
	words           *database.WordRepository
	history         *database.HistoryRepository
	leaderboard     *database.LeaderboardRepository
	enricher        Enricher
	generator       LessonGenerator
	defaultUsername string
}

// NewHandler creates the handler set. generator may be nil when the AI proxy
// is not configured; its endpoints then answer with a soft error.
func NewHandler(db *sqlx.DB, enricher Enricher, generator LessonGenerator, defaultUsername string) *Handler {
	return &Handler{
		db:              db,
		words:           database.NewWordRepository(db),
		history:         database.NewHistoryRepository(db),
		leaderboard:     database.NewLeaderboardRepository(db),
		enricher:        enricher,
		generator:       generator,
		defaultUsername: defaultUsername,
	}
}

// RegisterRoutes wires all endpoints onto the router
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/words", h.ListWords)
	e.POST("/words", h.CreateWord)
	e.PUT("/words/:id/full", h.EditWordFull)
	e.PUT("/words/:id/score", h.UpdateScore)
	e.PUT("/words/reset_folder", h.ResetFolder)
	e.POST("/words/delete_folder", h.DeleteFolder)
	e.DELETE("/words/:id", h.DeleteWord)
	e.PUT("/words/rename_folder", h.RenameFolder)
	e.PUT("/words/rename_subfolder", h.RenameSubfolder)
	e.POST("/upload_csv", h.UploadCSV)
	e.POST("/restore_backup", h.RestoreBackup)
	e.GET("/export_csv", h.ExportCSV)
	e.GET("/history", h.GetHistory)
	e.POST("/history", h.PostHistory)
	e.GET("/leaderboard", h.Leaderboard)
	e.POST("/ai/lesson", h.GenerateLesson)
	e.POST("/ai/extract_image", h.ExtractImage)
	e.GET("/health", h.HealthCheck)
}

// MetricsMiddleware counts requests and observes handler duration
func MetricsMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		appmetrics.RequestsTotal.Inc()
		start := time.Now()
		err := next(c)
		appmetrics.RequestDurationSeconds.Observe(time.Since(start).Seconds())
		return err
	}
}

// username resolves the owner identity: X-Username header, then the
// username query/form value, then the configured single-tenant default.
// The value is an opaque tenant key; authentication happens upstream.
func (h *Handler) username(c echo.Context) string {
	if v := c.Request().Header.Get("X-Username"); v != "" {
		return v
	}
	if v := c.QueryParam("username"); v != "" {
		return v
	}
	if v := c.FormValue("username"); v != "" {
		return v
	}
	return h.defaultUsername
}

// wordRequest carries the descriptive fields of a word for create/edit
type wordRequest struct {
	WordType    string `json:"word_type"`
	Article     string `json:"article"`
	WordDe      string `json:"word_de"`
	Plural      string `json:"plural"`
	Praeteritum string `json:"praeteritum"`
	Partizip    string `json:"partizip"`
	WordRu      string `json:"word_ru"`
	Folder      string `json:"folder"`
	Level       string `json:"level"`
	Subfolder   string `json:"subfolder"`
	Example     string `json:"example"`
}

func (r *wordRequest) validate() error {
	// level may legitimately be empty
	missing := []string{}
	if r.WordType == "" {
		missing = append(missing, "word_type")
	}
	if r.WordDe == "" {
		missing = append(missing, "word_de")
	}
	if r.WordRu == "" {
		missing = append(missing, "word_ru")
	}
	if r.Folder == "" {
		missing = append(missing, "folder")
	}
	if r.Subfolder == "" {
		missing = append(missing, "subfolder")
	}
	if len(missing) > 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "missing required fields: "+strings.Join(missing, ", "))
	}
	return nil
}

func (r *wordRequest) toWord(username string) models.Word {
	return models.Word{
		Username:    username,
		WordType:    r.WordType,
		Article:     r.Article,
		WordDe:      r.WordDe,
		Plural:      r.Plural,
		Praeteritum: r.Praeteritum,
		Partizip:    r.Partizip,
		WordRu:      r.WordRu,
		Folder:      r.Folder,
		Level:       r.Level,
		Subfolder:   r.Subfolder,
		Example:     r.Example,
	}
}

func statusSuccess() map[string]string {
	return map[string]string{"status": "success"}
}

// ListWords handles GET /words
func (h *Handler) ListWords(c echo.Context) error {
	words, err := h.words.GetAll(h.username(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list words")
	}
	return c.JSON(http.StatusOK, words)
}

// CreateWord handles POST /words
func (h *Handler) CreateWord(c echo.Context) error {
	var req wordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := req.validate(); err != nil {
		return err
	}

	word := req.toWord(h.username(c))
	if word.Example == "" && word.WordDe != "" && h.enricher != nil {
		word.Example = h.enricher.Lookup(c.Request().Context(), word.WordDe)
		if word.Example == "" {
			appmetrics.EnrichmentMissesTotal.Inc()
		}
	}

	if err := h.words.Create(&word); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create word")
	}
	return c.JSON(http.StatusOK, statusSuccess())
}

// EditWordFull handles PUT /words/:id/full
func (h *Handler) EditWordFull(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid word id")
	}

	var req wordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := req.validate(); err != nil {
		return err
	}

	username := h.username(c)
	word := req.toWord(username)
	if word.Example == "" && word.WordDe != "" && h.enricher != nil {
		word.Example = h.enricher.Lookup(c.Request().Context(), word.WordDe)
	}

	if err := h.words.UpdateFull(username, id, &word); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update word")
	}
	return c.JSON(http.StatusOK, statusSuccess())
}

// UpdateScore handles PUT /words/:id/score, applying one review transition
func (h *Handler) UpdateScore(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid word id")
	}

	var review models.Review
	if err := c.Bind(&review); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := h.words.ApplyReview(h.username(c), id, review); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to apply review")
	}
	return c.JSON(http.StatusOK, statusSuccess())
}

// ResetFolder handles PUT /words/reset_folder
func (h *Handler) ResetFolder(c echo.Context) error {
	var scope models.Scope
	if err := c.Bind(&scope); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := h.words.ResetScope(h.username(c), scope); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to reset folder")
	}
	return c.JSON(http.StatusOK, statusSuccess())
}

// DeleteFolder handles POST /words/delete_folder
func (h *Handler) DeleteFolder(c echo.Context) error {
	var scope models.Scope
	if err := c.Bind(&scope); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := h.words.DeleteScope(h.username(c), scope); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete folder")
	}
	return c.JSON(http.StatusOK, statusSuccess())
}

// DeleteWord handles DELETE /words/:id
func (h *Handler) DeleteWord(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid word id")
	}

	if err := h.words.Delete(h.username(c), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete word")
	}
	return c.JSON(http.StatusOK, statusSuccess())
}

// renameFolderRequest carries a folder relabel
type renameFolderRequest struct {
	OldName string `json:"old_name"`
	NewName string `json:"new_name"`
}

// RenameFolder handles PUT /words/rename_folder
func (h *Handler) RenameFolder(c echo.Context) error {
	var req renameFolderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.OldName == "" || req.NewName == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "old_name and new_name are required")
	}

	if err := h.words.RenameFolder(h.username(c), req.OldName, req.NewName); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to rename folder")
	}
	return c.JSON(http.StatusOK, statusSuccess())
}

// renameSubfolderRequest carries a subfolder relabel within one folder/level
type renameSubfolderRequest struct {
	Folder       string `json:"folder"`
	Level        string `json:"level"`
	OldSubfolder string `json:"old_subfolder"`
	NewSubfolder string `json:"new_subfolder"`
}

// RenameSubfolder handles PUT /words/rename_subfolder
func (h *Handler) RenameSubfolder(c echo.Context) error {
	var req renameSubfolderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Folder == "" || req.OldSubfolder == "" || req.NewSubfolder == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "folder, old_subfolder and new_subfolder are required")
	}

	if err := h.words.RenameSubfolder(h.username(c), req.Folder, req.Level, req.OldSubfolder, req.NewSubfolder); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to rename subfolder")
	}
	return c.JSON(http.StatusOK, statusSuccess())
}

// UploadCSV handles POST /upload_csv: additive import into one target scope.
// Accepts semicolon-delimited CSV (UTF-8 or Windows-1251) and xlsx workbooks.
func (h *Handler) UploadCSV(c echo.Context) error {
	scope := models.Scope{
		Folder:    c.FormValue("folder"),
		Level:     c.FormValue("level"),
		Subfolder: c.FormValue("subfolder"),
	}
	if scope.Folder == "" || scope.Subfolder == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "folder and subfolder are required")
	}

	content, filename, err := readUpload(c, "file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}

	username := h.username(c)
	var words []models.Word
	if strings.HasSuffix(strings.ToLower(filename), ".xlsx") {
		words, err = backup.ParseUploadXLSX(content, username, scope)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "failed to read workbook")
		}
	} else {
		words = backup.ParseUpload(backup.DecodeText(content), username, scope)
	}

	added, err := h.words.BulkCreate(words)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to import words")
	}
	appmetrics.WordsImportedTotal.Add(float64(added))

	return c.JSON(http.StatusOK, map[string]interface{}{"status": "success", "added": added})
}

// RestoreBackup handles POST /restore_backup: destructive replace of the
// owner's vocabulary from a backup CSV
func (h *Handler) RestoreBackup(c echo.Context) error {
	content, _, err := readUpload(c, "file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}

	words := backup.ParseBackup(backup.DecodeText(content))
	restored, err := h.words.ReplaceAll(h.username(c), words)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to restore backup")
	}
	appmetrics.WordsImportedTotal.Add(float64(restored))

	return c.JSON(http.StatusOK, map[string]interface{}{"status": "success", "restored": restored})
}

// ExportCSV handles GET /export_csv, streaming the backup file
func (h *Handler) ExportCSV(c echo.Context) error {
	words, err := h.words.GetAll(h.username(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to export words")
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename=backup.csv`)
	c.Response().WriteHeader(http.StatusOK)
	return backup.Export(c.Response(), words)
}

// GetHistory handles GET /history
func (h *Handler) GetHistory(c echo.Context) error {
	history, err := h.history.Get(h.username(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to get history")
	}
	return c.JSON(http.StatusOK, history)
}

// historyRequest carries one study-time accumulation
type historyRequest struct {
	DateStr string `json:"date_str"`
	MsSpent int64  `json:"ms_spent"`
}

// PostHistory handles POST /history: additive upsert, never an overwrite
func (h *Handler) PostHistory(c echo.Context) error {
	var req historyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.DateStr == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "date_str is required")
	}
	if req.MsSpent < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "ms_spent must be non-negative")
	}

	if err := h.history.Accumulate(h.username(c), req.DateStr, req.MsSpent); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to record history")
	}
	return c.JSON(http.StatusOK, statusSuccess())
}

// Leaderboard handles GET /leaderboard
func (h *Handler) Leaderboard(c echo.Context) error {
	entries, err := h.leaderboard.Collect()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to build leaderboard")
	}
	return c.JSON(http.StatusOK, entries)
}

// lessonRequest asks the AI proxy for a lesson
type lessonRequest struct {
	Topic string `json:"topic"`
	Level string `json:"level"`
}

// GenerateLesson handles POST /ai/lesson. Remote failures and malformed
// model output become a structured {"error": ...} payload, not an HTTP
// failure status; callers inspect the payload shape.
func (h *Handler) GenerateLesson(c echo.Context) error {
	var req lessonRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Topic == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "topic is required")
	}
	if h.generator == nil {
		return c.JSON(http.StatusOK, map[string]string{"error": "AI service is not configured"})
	}

	lesson, err := h.generator.GenerateLesson(c.Request().Context(), req.Topic, req.Level)
	if err != nil {
		return c.JSON(http.StatusOK, map[string]string{"error": err.Error()})
	}
	if !json.Valid([]byte(lesson)) {
		return c.JSON(http.StatusOK, map[string]string{"error": "AI service returned a malformed response"})
	}
	return c.JSONBlob(http.StatusOK, []byte(lesson))
}

// ExtractImage handles POST /ai/extract_image
func (h *Handler) ExtractImage(c echo.Context) error {
	if h.generator == nil {
		return c.JSON(http.StatusOK, map[string]string{"error": "AI service is not configured"})
	}

	content, filename, err := readUpload(c, "file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}

	words, err := h.generator.ExtractWordsFromImage(c.Request().Context(), content, imageMediaType(filename))
	if err != nil {
		return c.JSON(http.StatusOK, map[string]string{"error": err.Error()})
	}
	if !json.Valid([]byte(words)) {
		return c.JSON(http.StatusOK, map[string]string{"error": "AI service returned a malformed response"})
	}
	return c.JSONBlob(http.StatusOK, []byte(words))
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(c echo.Context) error {
	dbStatus := "healthy"
	if err := h.db.Ping(); err != nil {
		dbStatus = "unhealthy"
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status":    "healthy",
		"database":  dbStatus,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// readUpload returns the content and filename of a multipart file field
func readUpload(c echo.Context, field string) ([]byte, string, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		return nil, "", err
	}
	file, err := fileHeader.Open()
	if err != nil {
		return nil, "", err
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, "", err
	}
	return content, fileHeader.Filename, nil
}

func imageMediaType(filename string) string {
	switch {
	case strings.HasSuffix(strings.ToLower(filename), ".png"):
		return "image/png"
	case strings.HasSuffix(strings.ToLower(filename), ".webp"):
		return "image/webp"
	case strings.HasSuffix(strings.ToLower(filename), ".gif"):
		return "image/gif"
	default:
		return "image/jpeg"
	}
}
