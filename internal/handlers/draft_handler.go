package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quizforge/quiz-authoring-service/internal/draft"
	"github.com/quizforge/quiz-authoring-service/internal/middleware"
	"github.com/quizforge/quiz-authoring-service/internal/models"
	"github.com/quizforge/quiz-authoring-service/internal/services"
	"github.com/quizforge/quiz-authoring-service/internal/utils"
)

// DraftHandler exposes the quiz editing session API. All state lives in the
// draft session service; handlers only translate HTTP to session operations.
type DraftHandler struct {
	BaseHandler
	sessions     services.DraftSessionService
	quizzes      services.QuizService
	importExport services.ImportExportService
}

func NewDraftHandler(
	sessions services.DraftSessionService,
	quizzes services.QuizService,
	importExport services.ImportExportService,
	logger utils.Logger,
) *DraftHandler {
	return &DraftHandler{
		BaseHandler:  NewBaseHandler(logger),
		sessions:     sessions,
		quizzes:      quizzes,
		importExport: importExport,
	}
}

// ===== REQUEST STRUCTURES =====

type AddQuestionRequest struct {
	Type models.QuestionType `json:"type" validate:"required,question_type"`
}

type MarksModeRequest struct {
	EqualMarks       bool    `json:"equalMarks"`
	MarksPerQuestion float64 `json:"marksPerQuestion"`
}

type CursorRequest struct {
	Index int `json:"index"`
}

// CreateSession starts an empty editing session.
func (h *DraftHandler) CreateSession(c *gin.Context) {
	session, err := h.sessions.Create(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.RespondWithServiceError(c, err, "Failed to create draft session")
		return
	}
	h.RespondWithSuccess(c, http.StatusCreated, "Draft session created", session, "session_id", session.ID)
}

// GetSession returns the current session state.
func (h *DraftHandler) GetSession(c *gin.Context) {
	sessionID := ParseStringIDParam(c, "session_id")
	if sessionID == "" {
		return
	}

	session, err := h.sessions.Get(c.Request.Context(), middleware.UserID(c), sessionID)
	if err != nil {
		h.RespondWithServiceError(c, err, "Failed to get draft session")
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Draft session retrieved", session)
}

// DeleteSession discards an editing session.
func (h *DraftHandler) DeleteSession(c *gin.Context) {
	sessionID := ParseStringIDParam(c, "session_id")
	if sessionID == "" {
		return
	}

	if err := h.sessions.Delete(c.Request.Context(), middleware.UserID(c), sessionID); err != nil {
		h.RespondWithServiceError(c, err, "Failed to delete draft session")
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Draft session deleted", nil)
}

// AddQuestion appends a new question of the requested type.
func (h *DraftHandler) AddQuestion(c *gin.Context) {
	sessionID := ParseStringIDParam(c, "session_id")
	if sessionID == "" {
		return
	}

	var req AddQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	session, question, err := h.sessions.AddQuestion(c.Request.Context(), middleware.UserID(c), sessionID, req.Type)
	if err != nil {
		if errors.Is(err, draft.ErrUnknownQuestionType) {
			h.RespondWithError(c, http.StatusBadRequest, "Unknown question type", err, err.Error())
			return
		}
		h.RespondWithServiceError(c, err, "Failed to add question")
		return
	}

	h.RespondWithSuccess(c, http.StatusCreated, "Question added", gin.H{
		"question": question,
		"session":  session,
	}, "question_type", req.Type)
}

// UpdateQuestion replaces a question's editable fields.
func (h *DraftHandler) UpdateQuestion(c *gin.Context) {
	sessionID := ParseStringIDParam(c, "session_id")
	if sessionID == "" {
		return
	}
	questionID := ParseStringIDParam(c, "question_id")
	if questionID == "" {
		return
	}

	var question models.Question
	if err := c.ShouldBindJSON(&question); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid question body", err)
		return
	}

	session, err := h.sessions.UpdateQuestion(c.Request.Context(), middleware.UserID(c), sessionID, questionID, question)
	if err != nil {
		if errors.Is(err, draft.ErrQuestionNotFound) {
			h.RespondWithError(c, http.StatusNotFound, "Question not found", err)
			return
		}
		h.RespondWithServiceError(c, err, "Failed to update question")
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Question updated", session)
}

// DeleteQuestion removes a question from the draft.
func (h *DraftHandler) DeleteQuestion(c *gin.Context) {
	sessionID := ParseStringIDParam(c, "session_id")
	if sessionID == "" {
		return
	}
	questionID := ParseStringIDParam(c, "question_id")
	if questionID == "" {
		return
	}

	session, err := h.sessions.DeleteQuestion(c.Request.Context(), middleware.UserID(c), sessionID, questionID)
	if err != nil {
		if errors.Is(err, draft.ErrQuestionNotFound) {
			h.RespondWithError(c, http.StatusNotFound, "Question not found", err)
			return
		}
		h.RespondWithServiceError(c, err, "Failed to delete question")
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Question deleted", session)
}

// DuplicateQuestion copies a question under a new id.
func (h *DraftHandler) DuplicateQuestion(c *gin.Context) {
	sessionID := ParseStringIDParam(c, "session_id")
	if sessionID == "" {
		return
	}
	questionID := ParseStringIDParam(c, "question_id")
	if questionID == "" {
		return
	}

	session, question, err := h.sessions.DuplicateQuestion(c.Request.Context(), middleware.UserID(c), sessionID, questionID)
	if err != nil {
		if errors.Is(err, draft.ErrQuestionNotFound) {
			h.RespondWithError(c, http.StatusNotFound, "Question not found", err)
			return
		}
		h.RespondWithServiceError(c, err, "Failed to duplicate question")
		return
	}
	h.RespondWithSuccess(c, http.StatusCreated, "Question duplicated", gin.H{
		"question": question,
		"session":  session,
	})
}

// SetMarksMode switches between equal and custom marks distribution.
func (h *DraftHandler) SetMarksMode(c *gin.Context) {
	sessionID := ParseStringIDParam(c, "session_id")
	if sessionID == "" {
		return
	}

	var req MarksModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	session, err := h.sessions.SetMarksMode(c.Request.Context(), middleware.UserID(c), sessionID, req.EqualMarks, req.MarksPerQuestion)
	if err != nil {
		h.RespondWithServiceError(c, err, "Failed to set marks mode")
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Marks mode updated", session)
}

// SetMetadata updates the quiz-level fields of the draft.
func (h *DraftHandler) SetMetadata(c *gin.Context) {
	sessionID := ParseStringIDParam(c, "session_id")
	if sessionID == "" {
		return
	}

	var meta draft.Metadata
	if err := c.ShouldBindJSON(&meta); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	session, err := h.sessions.SetMetadata(c.Request.Context(), middleware.UserID(c), sessionID, meta)
	if err != nil {
		h.RespondWithServiceError(c, err, "Failed to set metadata")
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Metadata updated", session)
}

// SetCursor moves the presentation cursor.
func (h *DraftHandler) SetCursor(c *gin.Context) {
	sessionID := ParseStringIDParam(c, "session_id")
	if sessionID == "" {
		return
	}

	var req CursorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	session, err := h.sessions.SetCurrentIndex(c.Request.Context(), middleware.UserID(c), sessionID, req.Index)
	if err != nil {
		h.RespondWithServiceError(c, err, "Failed to set cursor")
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Cursor updated", session)
}

// ImportQuestions merges a JSON questions document into the session.
func (h *DraftHandler) ImportQuestions(c *gin.Context) {
	sessionID := ParseStringIDParam(c, "session_id")
	if sessionID == "" {
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Failed to read request body", err)
		return
	}

	session, result, err := h.sessions.ImportQuestions(c.Request.Context(), middleware.UserID(c), sessionID, body)
	if err != nil {
		if errors.Is(err, draft.ErrParse) || errors.Is(err, draft.ErrInvalidFormat) {
			h.RespondWithError(c, http.StatusBadRequest, "Invalid questions document", err, err.Error())
			return
		}
		h.RespondWithServiceError(c, err, "Failed to import questions")
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Questions imported", gin.H{
		"result":  result,
		"session": session,
	}, "admitted", len(result.Admitted), "rejected", len(result.Rejected))
}

// ImportQuestionsFile merges a CSV or Excel question sheet into the session.
func (h *DraftHandler) ImportQuestionsFile(c *gin.Context) {
	sessionID := ParseStringIDParam(c, "session_id")
	if sessionID == "" {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Missing file upload", err)
		return
	}
	defer file.Close()

	sheetResult, err := h.importExport.ImportQuestionsFromFile(c.Request.Context(), file, header.Filename)
	if err != nil {
		h.RespondWithServiceError(c, err, "Failed to import question sheet")
		return
	}

	var importResult *draft.ImportResult
	if len(sheetResult.Questions) > 0 {
		doc, err := draft.Export(models.QuizDraft{Questions: sheetResult.Questions})
		if err != nil {
			h.RespondWithError(c, http.StatusInternalServerError, "Failed to import question sheet", err)
			return
		}
		_, importResult, err = h.sessions.ImportQuestions(c.Request.Context(), middleware.UserID(c), sessionID, doc)
		if err != nil {
			h.RespondWithServiceError(c, err, "Failed to import question sheet")
			return
		}
	}

	h.RespondWithSuccess(c, http.StatusOK, "Question sheet imported", gin.H{
		"sheet":  sheetResult,
		"result": importResult,
	}, "filename", header.Filename)
}

// ExportQuestions serializes the session's draft as a JSON document.
func (h *DraftHandler) ExportQuestions(c *gin.Context) {
	sessionID := ParseStringIDParam(c, "session_id")
	if sessionID == "" {
		return
	}

	data, err := h.sessions.ExportQuestions(c.Request.Context(), middleware.UserID(c), sessionID)
	if err != nil {
		h.RespondWithServiceError(c, err, "Failed to export questions")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="questions.json"`)
	c.Data(http.StatusOK, "application/json", data)
}

// SaveDraft persists the session as a new quiz.
func (h *DraftHandler) SaveDraft(c *gin.Context) {
	sessionID := ParseStringIDParam(c, "session_id")
	if sessionID == "" {
		return
	}
	userID := middleware.UserID(c)

	session, err := h.sessions.Get(c.Request.Context(), userID, sessionID)
	if err != nil {
		h.RespondWithServiceError(c, err, "Failed to save quiz")
		return
	}

	quiz, err := h.quizzes.SaveDraft(c.Request.Context(), userID, session.Draft)
	if err != nil {
		h.RespondWithServiceError(c, err, "Failed to save quiz")
		return
	}
	h.RespondWithSuccess(c, http.StatusCreated, "Quiz saved", quiz, "quiz_id", quiz.ID)
}

// UpdateQuiz persists the session over an existing quiz.
func (h *DraftHandler) UpdateQuiz(c *gin.Context) {
	sessionID := ParseStringIDParam(c, "session_id")
	if sessionID == "" {
		return
	}
	quizID, ok := ParseUintIDParam(c, "quiz_id")
	if !ok {
		return
	}
	userID := middleware.UserID(c)

	session, err := h.sessions.Get(c.Request.Context(), userID, sessionID)
	if err != nil {
		h.RespondWithServiceError(c, err, "Failed to update quiz")
		return
	}

	quiz, err := h.quizzes.UpdateFromDraft(c.Request.Context(), quizID, userID, session.Draft)
	if err != nil {
		h.RespondWithServiceError(c, err, "Failed to update quiz")
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Quiz updated", quiz, "quiz_id", quiz.ID)
}
