package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/quizforge/quiz-authoring-service/internal/cache"
	"github.com/quizforge/quiz-authoring-service/internal/draft"
	"github.com/quizforge/quiz-authoring-service/internal/events"
	"github.com/quizforge/quiz-authoring-service/internal/models"
	"github.com/quizforge/quiz-authoring-service/internal/repositories"
	"github.com/quizforge/quiz-authoring-service/internal/repositories/postgres"
	"github.com/quizforge/quiz-authoring-service/internal/utils"
	"github.com/quizforge/quiz-authoring-service/internal/validator"
)

const (
	minPublishableQuestions = 2
	quizCacheTTL            = 10 * time.Minute
)

// QuizService owns the save/publish lifecycle of quizzes. Drafts are edited
// through draft sessions; this service is where a draft becomes a database
// row and where published quizzes are managed.
type QuizService interface {
	SaveDraft(ctx context.Context, creatorID string, d models.QuizDraft) (*models.Quiz, error)
	UpdateFromDraft(ctx context.Context, quizID uint, creatorID string, d models.QuizDraft) (*models.Quiz, error)
	GetByID(ctx context.Context, id uint) (*models.Quiz, error)
	GetBySlug(ctx context.Context, slug string) (*models.Quiz, error)
	ListByCreator(ctx context.Context, creatorID string, filters repositories.QuizFilters) ([]*models.Quiz, int64, error)
	DraftForEditing(ctx context.Context, quizID uint, creatorID string) (models.QuizDraft, error)
	Publish(ctx context.Context, quizID uint, creatorID string) error
	Unpublish(ctx context.Context, quizID uint, creatorID string) error
	SetPinned(ctx context.Context, quizID uint, creatorID string, pinned bool) error
	Delete(ctx context.Context, quizID uint, creatorID string) error
}

type quizService struct {
	repo      repositories.QuizRepository
	validator *validator.Validator
	publisher events.EventPublisher
	cache     cache.CacheService
	logger    utils.Logger
}

func NewQuizService(
	repo repositories.QuizRepository,
	v *validator.Validator,
	publisher events.EventPublisher,
	cacheService cache.CacheService,
	logger utils.Logger,
) QuizService {
	return &quizService{
		repo:      repo,
		validator: v,
		publisher: publisher,
		cache:     cacheService,
		logger:    logger,
	}
}

// SaveDraft persists a draft as a new unpublished quiz. Every question must
// pass validation; blank scaffolding entries are trimmed at this point, not
// earlier, so the editing session keeps its shape.
func (s *quizService) SaveDraft(ctx context.Context, creatorID string, d models.QuizDraft) (*models.Quiz, error) {
	cleaned, err := s.prepareDraft(d)
	if err != nil {
		return nil, err
	}

	quiz, err := s.draftToQuiz(cleaned, creatorID)
	if err != nil {
		return nil, err
	}
	quiz.Slug = s.generateSlug(cleaned.Title)

	if err := s.repo.Create(ctx, quiz); err != nil {
		s.logger.ErrorContext(ctx, "failed to save quiz", "creator_id", creatorID, "error", err)
		return nil, err
	}

	s.logger.InfoContext(ctx, "quiz saved",
		"quiz_id", quiz.ID,
		"slug", quiz.Slug,
		"question_count", len(cleaned.Questions))
	return quiz, nil
}

// UpdateFromDraft overwrites an existing quiz with the draft's content. Slug
// is preserved so published links stay stable.
func (s *quizService) UpdateFromDraft(ctx context.Context, quizID uint, creatorID string, d models.QuizDraft) (*models.Quiz, error) {
	existing, err := s.ownedQuiz(ctx, quizID, creatorID)
	if err != nil {
		return nil, err
	}

	cleaned, err := s.prepareDraft(d)
	if err != nil {
		return nil, err
	}

	quiz, err := s.draftToQuiz(cleaned, creatorID)
	if err != nil {
		return nil, err
	}
	quiz.ID = existing.ID
	quiz.Slug = existing.Slug
	quiz.IsPublished = existing.IsPublished
	quiz.IsPinned = existing.IsPinned
	quiz.CreatedAt = existing.CreatedAt

	if err := s.repo.Update(ctx, quiz); err != nil {
		return nil, translateRepoError(err)
	}

	s.invalidateQuizCache(ctx, quiz)
	return quiz, nil
}

func (s *quizService) GetByID(ctx context.Context, id uint) (*models.Quiz, error) {
	quiz, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, translateRepoError(err)
	}
	s.fillComputed(quiz)
	return quiz, nil
}

func (s *quizService) GetBySlug(ctx context.Context, slug string) (*models.Quiz, error) {
	cacheKey := fmt.Sprintf("quiz:slug:%s", slug)

	var cached models.Quiz
	if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
		return &cached, nil
	}

	quiz, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, translateRepoError(err)
	}
	s.fillComputed(quiz)

	if err := s.cache.Set(ctx, cacheKey, quiz, quizCacheTTL); err != nil {
		s.logger.WarnContext(ctx, "failed to cache quiz", "slug", slug, "error", err)
	}
	return quiz, nil
}

func (s *quizService) ListByCreator(ctx context.Context, creatorID string, filters repositories.QuizFilters) ([]*models.Quiz, int64, error) {
	quizzes, total, err := s.repo.GetByCreator(ctx, creatorID, filters)
	if err != nil {
		return nil, 0, err
	}
	for _, q := range quizzes {
		s.fillComputed(q)
	}
	return quizzes, total, nil
}

// DraftForEditing rebuilds an editable draft from a persisted quiz. Duplicate
// question ids that slipped into old stored documents are regenerated here.
func (s *quizService) DraftForEditing(ctx context.Context, quizID uint, creatorID string) (models.QuizDraft, error) {
	quiz, err := s.ownedQuiz(ctx, quizID, creatorID)
	if err != nil {
		return models.QuizDraft{}, err
	}

	d, err := quizToDraft(quiz)
	if err != nil {
		return models.QuizDraft{}, err
	}

	store, fixed := draft.Hydrate(d, s.validator.Question())
	if fixed > 0 {
		s.logger.WarnContext(ctx, "regenerated duplicate question ids",
			"quiz_id", quizID, "fixed", fixed)
	}
	return store.Snapshot(), nil
}

// Publish marks the quiz live. It refuses quizzes with fewer than two valid
// questions.
func (s *quizService) Publish(ctx context.Context, quizID uint, creatorID string) error {
	quiz, err := s.ownedQuiz(ctx, quizID, creatorID)
	if err != nil {
		return err
	}

	d, err := quizToDraft(quiz)
	if err != nil {
		return err
	}
	if len(d.Questions) < minPublishableQuestions {
		return ErrQuizNotPublishable
	}
	if err := s.validateQuestions(d.Questions); err != nil {
		return err
	}

	if err := s.repo.SetPublished(ctx, quizID, true); err != nil {
		return translateRepoError(err)
	}
	s.invalidateQuizCache(ctx, quiz)

	event := events.NewQuizPublishedEvent(quiz.ID, quiz.Slug, quiz.Title, quiz.CreatedBy, len(d.Questions), quiz.TotalMarks)
	if err := s.publisher.PublishQuizEvent(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish quiz event",
			"quiz_id", quizID, "event_type", event.Type, "error", err)
	}
	return nil
}

func (s *quizService) Unpublish(ctx context.Context, quizID uint, creatorID string) error {
	quiz, err := s.ownedQuiz(ctx, quizID, creatorID)
	if err != nil {
		return err
	}

	if err := s.repo.SetPublished(ctx, quizID, false); err != nil {
		return translateRepoError(err)
	}
	s.invalidateQuizCache(ctx, quiz)

	event := events.NewQuizUnpublishedEvent(quiz.ID, quiz.Slug, quiz.Title, quiz.CreatedBy)
	if err := s.publisher.PublishQuizEvent(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish quiz event",
			"quiz_id", quizID, "event_type", event.Type, "error", err)
	}
	return nil
}

func (s *quizService) SetPinned(ctx context.Context, quizID uint, creatorID string, pinned bool) error {
	quiz, err := s.ownedQuiz(ctx, quizID, creatorID)
	if err != nil {
		return err
	}
	if err := s.repo.SetPinned(ctx, quizID, pinned); err != nil {
		return translateRepoError(err)
	}
	s.invalidateQuizCache(ctx, quiz)
	return nil
}

func (s *quizService) Delete(ctx context.Context, quizID uint, creatorID string) error {
	quiz, err := s.ownedQuiz(ctx, quizID, creatorID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, quizID); err != nil {
		return translateRepoError(err)
	}
	s.invalidateQuizCache(ctx, quiz)
	return nil
}

// ===== HELPERS =====

// prepareDraft validates the draft and applies save-time trimming.
func (s *quizService) prepareDraft(d models.QuizDraft) (models.QuizDraft, error) {
	if strings.TrimSpace(d.Title) == "" {
		return models.QuizDraft{}, ErrQuizTitleRequired
	}

	store, _ := draft.Hydrate(d, s.validator.Question())
	cleaned := store.CleanedSnapshot()

	if err := s.validateQuestions(cleaned.Questions); err != nil {
		return models.QuizDraft{}, err
	}
	return cleaned, nil
}

func (s *quizService) validateQuestions(questions []models.Question) error {
	rejections := make(map[string]string)
	for _, q := range questions {
		if err := s.validator.Question().Validate(q); err != nil {
			rejections[q.ID] = err.Error()
		}
	}
	if len(rejections) > 0 {
		return &QuestionRejectionError{Rejections: rejections}
	}
	return nil
}

func (s *quizService) draftToQuiz(d models.QuizDraft, creatorID string) (*models.Quiz, error) {
	tags, err := json.Marshal(d.Tags)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize tags: %w", err)
	}
	questions, err := json.Marshal(d.Questions)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize questions: %w", err)
	}

	totalMarks := 0.0
	for _, q := range d.Questions {
		totalMarks += q.Marks
	}

	return &models.Quiz{
		Title:             d.Title,
		CreatedBy:         creatorID,
		Tags:              tags,
		Questions:         questions,
		TotalMarks:        totalMarks,
		EqualMarks:        d.EqualMarks,
		MarksPerQuestion:  d.MarksPerQuestion,
		Description:       d.Description,
		ImageURL:          d.ImageURL,
		Field:             d.Field,
		Subject:           d.Subject,
		DurationInSeconds: d.DurationInSeconds,
		IsLocked:          d.IsLocked,
		LockPassword:      d.LockPassword,
		DifficultyLevel:   d.DifficultyLevel,
		Price:             d.Price,
		QuestionsCount:    len(d.Questions),
	}, nil
}

func quizToDraft(quiz *models.Quiz) (models.QuizDraft, error) {
	var tags []string
	if len(quiz.Tags) > 0 {
		if err := json.Unmarshal(quiz.Tags, &tags); err != nil {
			return models.QuizDraft{}, fmt.Errorf("failed to parse stored tags: %w", err)
		}
	}
	var questions []models.Question
	if len(quiz.Questions) > 0 {
		if err := json.Unmarshal(quiz.Questions, &questions); err != nil {
			return models.QuizDraft{}, fmt.Errorf("failed to parse stored questions: %w", err)
		}
	}

	return models.QuizDraft{
		Title:             quiz.Title,
		Tags:              tags,
		Questions:         questions,
		TotalMarks:        quiz.TotalMarks,
		EqualMarks:        quiz.EqualMarks,
		MarksPerQuestion:  quiz.MarksPerQuestion,
		Description:       quiz.Description,
		ImageURL:          quiz.ImageURL,
		Field:             quiz.Field,
		Subject:           quiz.Subject,
		DurationInSeconds: quiz.DurationInSeconds,
		IsLocked:          quiz.IsLocked,
		LockPassword:      quiz.LockPassword,
		DifficultyLevel:   quiz.DifficultyLevel,
		Price:             quiz.Price,
	}, nil
}

func (s *quizService) ownedQuiz(ctx context.Context, quizID uint, creatorID string) (*models.Quiz, error) {
	quiz, err := s.repo.GetByID(ctx, quizID)
	if err != nil {
		return nil, translateRepoError(err)
	}
	if quiz.CreatedBy != creatorID {
		return nil, ErrQuizAccessDenied
	}
	return quiz, nil
}

func (s *quizService) fillComputed(quiz *models.Quiz) {
	var questions []json.RawMessage
	if len(quiz.Questions) > 0 {
		if err := json.Unmarshal(quiz.Questions, &questions); err == nil {
			quiz.QuestionsCount = len(questions)
		}
	}
}

func (s *quizService) invalidateQuizCache(ctx context.Context, quiz *models.Quiz) {
	if err := s.cache.Delete(ctx, fmt.Sprintf("quiz:slug:%s", quiz.Slug)); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate quiz cache", "slug", quiz.Slug, "error", err)
	}
}

var slugCleaner = regexp.MustCompile(`[^a-z0-9]+`)

// generateSlug builds a URL-safe slug from the title with a short random
// suffix so renames never collide.
func (s *quizService) generateSlug(title string) string {
	base := strings.Trim(slugCleaner.ReplaceAllString(strings.ToLower(title), "-"), "-")
	if len(base) > 120 {
		base = base[:120]
	}
	if base == "" {
		base = "quiz"
	}
	return fmt.Sprintf("%s-%s", base, uuid.NewString()[:8])
}

func translateRepoError(err error) error {
	if errors.Is(err, postgres.ErrQuizNotFound) {
		return ErrQuizNotFound
	}
	return err
}
