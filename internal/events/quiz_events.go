package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents different types of quiz lifecycle events
type EventType string

const (
	EventQuizPublished   EventType = "quiz.published"
	EventQuizUnpublished EventType = "quiz.unpublished"
	EventQuizImported    EventType = "quiz.imported"
)

// QuizEvent is the envelope shared by all quiz lifecycle events
type QuizEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

type QuizPublishedEvent struct {
	QuizID        uint    `json:"quiz_id"`
	Slug          string  `json:"slug"`
	Title         string  `json:"title"`
	CreatorID     string  `json:"creator_id"`
	QuestionCount int     `json:"question_count"`
	TotalMarks    float64 `json:"total_marks"`
}

type QuizUnpublishedEvent struct {
	QuizID    uint   `json:"quiz_id"`
	Slug      string `json:"slug"`
	Title     string `json:"title"`
	CreatorID string `json:"creator_id"`
}

// QuizImportedEvent fires when questions are imported into an editing
// session. The session id identifies the draft; the quiz does not exist yet.
type QuizImportedEvent struct {
	SessionID     string `json:"session_id"`
	CreatorID     string `json:"creator_id"`
	SourceFormat  string `json:"source_format"` // "json", "csv", "xlsx"
	AdmittedCount int    `json:"admitted_count"`
	RejectedCount int    `json:"rejected_count"`
}

// Event factory functions

func NewQuizPublishedEvent(quizID uint, slug, title, creatorID string, questionCount int, totalMarks float64) *QuizEvent {
	return &QuizEvent{
		ID:        uuid.NewString(),
		Type:      EventQuizPublished,
		Timestamp: time.Now(),
		Source:    "quiz-authoring-service",
		Version:   "1.0",
		Data: QuizPublishedEvent{
			QuizID:        quizID,
			Slug:          slug,
			Title:         title,
			CreatorID:     creatorID,
			QuestionCount: questionCount,
			TotalMarks:    totalMarks,
		},
	}
}

func NewQuizUnpublishedEvent(quizID uint, slug, title, creatorID string) *QuizEvent {
	return &QuizEvent{
		ID:        uuid.NewString(),
		Type:      EventQuizUnpublished,
		Timestamp: time.Now(),
		Source:    "quiz-authoring-service",
		Version:   "1.0",
		Data: QuizUnpublishedEvent{
			QuizID:    quizID,
			Slug:      slug,
			Title:     title,
			CreatorID: creatorID,
		},
	}
}

func NewQuizImportedEvent(sessionID, creatorID, sourceFormat string, admitted, rejected int) *QuizEvent {
	return &QuizEvent{
		ID:        uuid.NewString(),
		Type:      EventQuizImported,
		Timestamp: time.Now(),
		Source:    "quiz-authoring-service",
		Version:   "1.0",
		Data: QuizImportedEvent{
			SessionID:     sessionID,
			CreatorID:     creatorID,
			SourceFormat:  sourceFormat,
			AdmittedCount: admitted,
			RejectedCount: rejected,
		},
	}
}
