package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/quizforge/quiz-authoring-service/internal/middleware"
	"github.com/quizforge/quiz-authoring-service/internal/models"
	"github.com/quizforge/quiz-authoring-service/internal/registry"
	"github.com/quizforge/quiz-authoring-service/internal/repositories"
	"github.com/quizforge/quiz-authoring-service/internal/services"
	"github.com/quizforge/quiz-authoring-service/internal/utils"
)

// QuizHandler exposes the saved-quiz API: listing, lifecycle transitions, and
// resuming a quiz back into an editing session.
type QuizHandler struct {
	BaseHandler
	quizzes      services.QuizService
	sessions     services.DraftSessionService
	importExport services.ImportExportService
}

func NewQuizHandler(
	quizzes services.QuizService,
	sessions services.DraftSessionService,
	importExport services.ImportExportService,
	logger utils.Logger,
) *QuizHandler {
	return &QuizHandler{
		BaseHandler:  NewBaseHandler(logger),
		quizzes:      quizzes,
		sessions:     sessions,
		importExport: importExport,
	}
}

// ListQuestionTypes returns the question type catalog used by editors.
func (h *QuizHandler) ListQuestionTypes(c *gin.Context) {
	h.RespondWithSuccess(c, http.StatusOK, "Question types retrieved", gin.H{
		"types":             registry.Types(),
		"difficulty_levels": registry.DifficultyLevels(),
	})
}

// ListQuizzes returns the caller's quizzes.
func (h *QuizHandler) ListQuizzes(c *gin.Context) {
	filters := repositories.QuizFilters{
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filters.Limit = limit
	}
	if offset, err := strconv.Atoi(c.DefaultQuery("offset", "0")); err == nil {
		filters.Offset = offset
	}
	if field := c.Query("field"); field != "" {
		filters.Field = &field
	}
	if subject := c.Query("subject"); subject != "" {
		filters.Subject = &subject
	}
	if difficulty := c.Query("difficulty"); difficulty != "" {
		d := models.DifficultyLevel(difficulty)
		filters.Difficulty = &d
	}
	if published := c.Query("published"); published != "" {
		p := published == "true"
		filters.IsPublished = &p
	}

	quizzes, total, err := h.quizzes.ListByCreator(c.Request.Context(), middleware.UserID(c), filters)
	if err != nil {
		h.RespondWithServiceError(c, err, "Failed to list quizzes")
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Quizzes retrieved", gin.H{
		"quizzes": quizzes,
		"total":   total,
		"limit":   filters.Limit,
		"offset":  filters.Offset,
	})
}

// GetQuiz returns one quiz by id.
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	id, ok := ParseUintIDParam(c, "id")
	if !ok {
		return
	}

	quiz, err := h.quizzes.GetByID(c.Request.Context(), id)
	if err != nil {
		h.RespondWithServiceError(c, err, "Failed to get quiz")
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Quiz retrieved", quiz)
}

// GetQuizBySlug returns one quiz by its public slug.
func (h *QuizHandler) GetQuizBySlug(c *gin.Context) {
	slug := ParseStringIDParam(c, "slug")
	if slug == "" {
		return
	}

	quiz, err := h.quizzes.GetBySlug(c.Request.Context(), slug)
	if err != nil {
		h.RespondWithServiceError(c, err, "Failed to get quiz")
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Quiz retrieved", quiz)
}

// PublishQuiz makes a quiz live.
func (h *QuizHandler) PublishQuiz(c *gin.Context) {
	id, ok := ParseUintIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.quizzes.Publish(c.Request.Context(), id, middleware.UserID(c)); err != nil {
		h.RespondWithServiceError(c, err, "Failed to publish quiz")
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Quiz published", nil, "quiz_id", id)
}

// UnpublishQuiz takes a quiz offline.
func (h *QuizHandler) UnpublishQuiz(c *gin.Context) {
	id, ok := ParseUintIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.quizzes.Unpublish(c.Request.Context(), id, middleware.UserID(c)); err != nil {
		h.RespondWithServiceError(c, err, "Failed to unpublish quiz")
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Quiz unpublished", nil, "quiz_id", id)
}

// PinQuiz toggles the pinned flag.
func (h *QuizHandler) PinQuiz(c *gin.Context) {
	id, ok := ParseUintIDParam(c, "id")
	if !ok {
		return
	}
	pinned := c.DefaultQuery("pinned", "true") == "true"

	if err := h.quizzes.SetPinned(c.Request.Context(), id, middleware.UserID(c), pinned); err != nil {
		h.RespondWithServiceError(c, err, "Failed to pin quiz")
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Quiz pin updated", gin.H{"pinned": pinned}, "quiz_id", id)
}

// DeleteQuiz soft deletes a quiz.
func (h *QuizHandler) DeleteQuiz(c *gin.Context) {
	id, ok := ParseUintIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.quizzes.Delete(c.Request.Context(), id, middleware.UserID(c)); err != nil {
		h.RespondWithServiceError(c, err, "Failed to delete quiz")
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Quiz deleted", nil, "quiz_id", id)
}

// EditQuiz opens a new editing session seeded from the stored quiz.
func (h *QuizHandler) EditQuiz(c *gin.Context) {
	id, ok := ParseUintIDParam(c, "id")
	if !ok {
		return
	}
	userID := middleware.UserID(c)

	d, err := h.quizzes.DraftForEditing(c.Request.Context(), id, userID)
	if err != nil {
		h.RespondWithServiceError(c, err, "Failed to open quiz for editing")
		return
	}

	session, fixed, err := h.sessions.CreateFrom(c.Request.Context(), userID, d)
	if err != nil {
		h.RespondWithServiceError(c, err, "Failed to open quiz for editing")
		return
	}

	h.RespondWithSuccess(c, http.StatusCreated, "Editing session created", gin.H{
		"session":         session,
		"regenerated_ids": fixed,
	}, "quiz_id", id, "session_id", session.ID)
}

// ExportQuizSheet downloads a quiz's questions as CSV or Excel.
func (h *QuizHandler) ExportQuizSheet(c *gin.Context) {
	id, ok := ParseUintIDParam(c, "id")
	if !ok {
		return
	}

	quiz, err := h.quizzes.GetByID(c.Request.Context(), id)
	if err != nil {
		h.RespondWithServiceError(c, err, "Failed to export quiz")
		return
	}

	var questions []models.Question
	if len(quiz.Questions) > 0 {
		if err := json.Unmarshal(quiz.Questions, &questions); err != nil {
			h.RespondWithError(c, http.StatusInternalServerError, "Failed to export quiz", err)
			return
		}
	}

	format := c.DefaultQuery("format", "csv")
	switch format {
	case "csv":
		data, err := h.importExport.ExportQuestionsToCSV(c.Request.Context(), questions)
		if err != nil {
			h.RespondWithError(c, http.StatusInternalServerError, "Failed to export quiz", err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="questions.csv"`)
		c.Data(http.StatusOK, "text/csv", data)
	case "xlsx":
		data, err := h.importExport.ExportQuestionsToExcel(c.Request.Context(), questions)
		if err != nil {
			h.RespondWithError(c, http.StatusInternalServerError, "Failed to export quiz", err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="questions.xlsx"`)
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
	default:
		h.RespondWithError(c, http.StatusBadRequest, "Unsupported export format", nil, format)
	}
}
