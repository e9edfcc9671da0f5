package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// QuizDraft is the in-memory document of one editing session. It is mutated
// only through draft.Store operations and serialized by the draft codec; the
// json tags are the export/import wire shape.
type QuizDraft struct {
	Title             string          `json:"quizTitle"`
	Tags              []string        `json:"tags"`
	Questions         []Question      `json:"questions"`
	TotalMarks        float64         `json:"totalMarks"`
	EqualMarks        bool            `json:"equalMarks"`
	MarksPerQuestion  float64         `json:"marksPerQuestion"`
	Description       string          `json:"description,omitempty"`
	ImageURL          string          `json:"imageUrl,omitempty"`
	Field             string          `json:"field,omitempty"`
	Subject           string          `json:"subject,omitempty"`
	DurationInSeconds int             `json:"durationInSeconds,omitempty"`
	IsLocked          bool            `json:"isLocked,omitempty"`
	LockPassword      string          `json:"lockPassword,omitempty"`
	DifficultyLevel   DifficultyLevel `json:"difficultyLevel,omitempty"`
	Price             float64         `json:"price,omitempty"`
}

// Quiz is the persisted form of a saved draft. Questions are stored as the
// wire-shape JSON array in a JSONB column.
type Quiz struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	Slug      string `json:"slug" gorm:"uniqueIndex;size:140"`
	Title     string `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	CreatedBy string `json:"created_by" gorm:"not null;index;size:255"`

	Tags      datatypes.JSON `json:"tags" gorm:"type:jsonb"`      // []string
	Questions datatypes.JSON `json:"questions" gorm:"type:jsonb"` // []Question, wire shape

	TotalMarks       float64 `json:"total_marks"`
	EqualMarks       bool    `json:"equal_marks" gorm:"default:true"`
	MarksPerQuestion float64 `json:"marks_per_question" gorm:"default:10"`

	Description       string          `json:"description" gorm:"type:text" validate:"omitempty,max=1000"`
	ImageURL          string          `json:"image_url" gorm:"size:500"`
	Field             string          `json:"field" gorm:"size:100;index"`
	Subject           string          `json:"subject" gorm:"size:100;index"`
	DurationInSeconds int             `json:"duration_in_seconds"`
	IsLocked          bool            `json:"is_locked" gorm:"default:false"`
	LockPassword      string          `json:"-" gorm:"size:255"`
	DifficultyLevel   DifficultyLevel `json:"difficulty_level" gorm:"size:20;index" validate:"omitempty,difficulty_level"`
	Price             float64         `json:"price" gorm:"default:0"`

	IsPublished bool `json:"is_published" gorm:"default:false;index"`
	IsPinned    bool `json:"is_pinned" gorm:"default:false"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Computed, not stored
	QuestionsCount int `json:"questions_count" gorm:"-"`
}

func (Quiz) TableName() string {
	return "quizzes"
}
