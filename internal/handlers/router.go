package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/quizforge/quiz-authoring-service/internal/middleware"
	"github.com/quizforge/quiz-authoring-service/internal/services"
	"github.com/quizforge/quiz-authoring-service/internal/utils"
)

type HandlerManager struct {
	draftHandler *DraftHandler
	quizHandler  *QuizHandler
	auth         *middleware.Authenticator
}

func NewHandlerManager(
	sessions services.DraftSessionService,
	quizzes services.QuizService,
	importExport services.ImportExportService,
	auth *middleware.Authenticator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		draftHandler: NewDraftHandler(sessions, quizzes, importExport, logger),
		quizHandler:  NewQuizHandler(quizzes, sessions, importExport, logger),
		auth:         auth,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "quiz-authoring-service",
		})
	})

	v1 := router.Group("/api/v1")
	{
		// Public catalog
		v1.GET("/question-types", hm.quizHandler.ListQuestionTypes)

		// Draft editing sessions
		sessions := v1.Group("/draft-sessions", hm.auth.RequireAuth())
		{
			sessions.POST("", hm.draftHandler.CreateSession)
			sessions.GET("/:session_id", hm.draftHandler.GetSession)
			sessions.DELETE("/:session_id", hm.draftHandler.DeleteSession)

			sessions.POST("/:session_id/questions", hm.draftHandler.AddQuestion)
			sessions.PUT("/:session_id/questions/:question_id", hm.draftHandler.UpdateQuestion)
			sessions.DELETE("/:session_id/questions/:question_id", hm.draftHandler.DeleteQuestion)
			sessions.POST("/:session_id/questions/:question_id/duplicate", hm.draftHandler.DuplicateQuestion)

			sessions.PUT("/:session_id/marks-mode", hm.draftHandler.SetMarksMode)
			sessions.PUT("/:session_id/metadata", hm.draftHandler.SetMetadata)
			sessions.PUT("/:session_id/cursor", hm.draftHandler.SetCursor)

			sessions.POST("/:session_id/import", hm.draftHandler.ImportQuestions)
			sessions.POST("/:session_id/import-file", hm.draftHandler.ImportQuestionsFile)
			sessions.GET("/:session_id/export", hm.draftHandler.ExportQuestions)

			sessions.POST("/:session_id/save", hm.draftHandler.SaveDraft)
			sessions.PUT("/:session_id/save/:quiz_id", hm.draftHandler.UpdateQuiz)
		}

		// Saved quizzes
		quizzes := v1.Group("/quizzes", hm.auth.RequireAuth())
		{
			quizzes.GET("", hm.quizHandler.ListQuizzes)
			quizzes.GET("/:id", hm.quizHandler.GetQuiz)
			quizzes.GET("/slug/:slug", hm.quizHandler.GetQuizBySlug)
			quizzes.DELETE("/:id", hm.quizHandler.DeleteQuiz)

			quizzes.POST("/:id/publish", hm.quizHandler.PublishQuiz)
			quizzes.POST("/:id/unpublish", hm.quizHandler.UnpublishQuiz)
			quizzes.POST("/:id/pin", hm.quizHandler.PinQuiz)

			quizzes.POST("/:id/edit-session", hm.quizHandler.EditQuiz)
			quizzes.GET("/:id/export", hm.quizHandler.ExportQuizSheet)
		}
	}
}
