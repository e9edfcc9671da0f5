package repositories

import (
	"context"
	"time"

	"github.com/quizforge/quiz-authoring-service/internal/models"
)

// QuizFilters narrows quiz listings.
type QuizFilters struct {
	CreatedBy   *string                 `json:"created_by"`
	Field       *string                 `json:"field"`
	Subject     *string                 `json:"subject"`
	Difficulty  *models.DifficultyLevel `json:"difficulty"`
	IsPublished *bool                   `json:"is_published"`
	DateFrom    *time.Time              `json:"date_from"`
	DateTo      *time.Time              `json:"date_to"`
	Limit       int                     `json:"limit"`
	Offset      int                     `json:"offset"`
	SortBy      string                  `json:"sort_by"`    // "created_at", "title", "total_marks"
	SortOrder   string                  `json:"sort_order"` // "asc", "desc"
}

// QuizRepository is the persistence contract for saved quizzes.
type QuizRepository interface {
	Create(ctx context.Context, quiz *models.Quiz) error
	Update(ctx context.Context, quiz *models.Quiz) error
	GetByID(ctx context.Context, id uint) (*models.Quiz, error)
	GetBySlug(ctx context.Context, slug string) (*models.Quiz, error)
	GetByCreator(ctx context.Context, creatorID string, filters QuizFilters) ([]*models.Quiz, int64, error)
	List(ctx context.Context, filters QuizFilters) ([]*models.Quiz, int64, error)
	SetPublished(ctx context.Context, id uint, published bool) error
	SetPinned(ctx context.Context, id uint, pinned bool) error
	Delete(ctx context.Context, id uint) error
	ExistsByTitle(ctx context.Context, title, creatorID string, excludeID *uint) (bool, error)
}
