package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/quizforge/quiz-authoring-service/internal/cache"
	"github.com/quizforge/quiz-authoring-service/internal/draft"
	"github.com/quizforge/quiz-authoring-service/internal/events"
	"github.com/quizforge/quiz-authoring-service/internal/models"
	"github.com/quizforge/quiz-authoring-service/internal/utils"
	"github.com/quizforge/quiz-authoring-service/internal/validator"
)

// draftSessionTTL keeps abandoned editing sessions alive for a day.
const draftSessionTTL = 24 * time.Hour

// DraftSession is the cached state of one editing session.
type DraftSession struct {
	ID           string           `json:"id"`
	UserID       string           `json:"user_id"`
	Draft        models.QuizDraft `json:"draft"`
	CurrentIndex int              `json:"current_index"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// DraftSessionService manages Redis-backed quiz editing sessions. Each
// operation loads the session, replays it into a draft store, applies the
// mutation under the store's single-writer discipline, and writes the result
// back with a refreshed TTL.
type DraftSessionService interface {
	Create(ctx context.Context, userID string) (*DraftSession, error)
	CreateFrom(ctx context.Context, userID string, d models.QuizDraft) (*DraftSession, int, error)
	Get(ctx context.Context, userID, sessionID string) (*DraftSession, error)
	Delete(ctx context.Context, userID, sessionID string) error

	AddQuestion(ctx context.Context, userID, sessionID string, qType models.QuestionType) (*DraftSession, models.Question, error)
	UpdateQuestion(ctx context.Context, userID, sessionID, questionID string, updated models.Question) (*DraftSession, error)
	DeleteQuestion(ctx context.Context, userID, sessionID, questionID string) (*DraftSession, error)
	DuplicateQuestion(ctx context.Context, userID, sessionID, questionID string) (*DraftSession, models.Question, error)
	SetMarksMode(ctx context.Context, userID, sessionID string, equal bool, marksPerQuestion float64) (*DraftSession, error)
	SetMetadata(ctx context.Context, userID, sessionID string, meta draft.Metadata) (*DraftSession, error)
	SetCurrentIndex(ctx context.Context, userID, sessionID string, index int) (*DraftSession, error)
	ImportQuestions(ctx context.Context, userID, sessionID string, document []byte) (*DraftSession, *draft.ImportResult, error)
	ExportQuestions(ctx context.Context, userID, sessionID string) ([]byte, error)
}

type draftSessionService struct {
	cache     cache.CacheService
	validator *validator.Validator
	publisher events.EventPublisher
	logger    utils.Logger
}

func NewDraftSessionService(cacheService cache.CacheService, v *validator.Validator, publisher events.EventPublisher, logger utils.Logger) DraftSessionService {
	return &draftSessionService{
		cache:     cacheService,
		validator: v,
		publisher: publisher,
		logger:    logger,
	}
}

func sessionKey(userID, sessionID string) string {
	return fmt.Sprintf("draft_session:%s:%s", userID, sessionID)
}

// Create starts an empty editing session.
func (s *draftSessionService) Create(ctx context.Context, userID string) (*DraftSession, error) {
	store := draft.NewStore(s.validator.Question())
	session := &DraftSession{
		ID:           uuid.NewString(),
		UserID:       userID,
		Draft:        store.Snapshot(),
		CurrentIndex: store.CurrentIndex(),
		UpdatedAt:    time.Now(),
	}
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "draft session created", "session_id", session.ID, "user_id", userID)
	return session, nil
}

// CreateFrom starts a session seeded with an existing draft, typically when
// resuming editing of a saved quiz. The returned count is how many duplicate
// question ids had to be regenerated.
func (s *draftSessionService) CreateFrom(ctx context.Context, userID string, d models.QuizDraft) (*DraftSession, int, error) {
	store, fixed := draft.Hydrate(d, s.validator.Question())
	session := &DraftSession{
		ID:           uuid.NewString(),
		UserID:       userID,
		Draft:        store.Snapshot(),
		CurrentIndex: store.CurrentIndex(),
		UpdatedAt:    time.Now(),
	}
	if err := s.save(ctx, session); err != nil {
		return nil, 0, err
	}
	return session, fixed, nil
}

func (s *draftSessionService) Get(ctx context.Context, userID, sessionID string) (*DraftSession, error) {
	var session DraftSession
	err := s.cache.Get(ctx, sessionKey(userID, sessionID), &session)
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, ErrDraftSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

func (s *draftSessionService) Delete(ctx context.Context, userID, sessionID string) error {
	return s.cache.Delete(ctx, sessionKey(userID, sessionID))
}

func (s *draftSessionService) AddQuestion(ctx context.Context, userID, sessionID string, qType models.QuestionType) (*DraftSession, models.Question, error) {
	var added models.Question
	session, err := s.mutate(ctx, userID, sessionID, func(store *draft.Store) error {
		q, err := store.AddQuestion(qType)
		if err != nil {
			return err
		}
		added = q
		return nil
	})
	if err != nil {
		return nil, models.Question{}, err
	}
	return session, added, nil
}

func (s *draftSessionService) UpdateQuestion(ctx context.Context, userID, sessionID, questionID string, updated models.Question) (*DraftSession, error) {
	return s.mutate(ctx, userID, sessionID, func(store *draft.Store) error {
		return store.UpdateQuestion(questionID, updated)
	})
}

func (s *draftSessionService) DeleteQuestion(ctx context.Context, userID, sessionID, questionID string) (*DraftSession, error) {
	return s.mutate(ctx, userID, sessionID, func(store *draft.Store) error {
		return store.DeleteQuestion(questionID)
	})
}

func (s *draftSessionService) DuplicateQuestion(ctx context.Context, userID, sessionID, questionID string) (*DraftSession, models.Question, error) {
	var duplicated models.Question
	session, err := s.mutate(ctx, userID, sessionID, func(store *draft.Store) error {
		q, err := store.DuplicateQuestion(questionID)
		if err != nil {
			return err
		}
		duplicated = q
		return nil
	})
	if err != nil {
		return nil, models.Question{}, err
	}
	return session, duplicated, nil
}

func (s *draftSessionService) SetMarksMode(ctx context.Context, userID, sessionID string, equal bool, marksPerQuestion float64) (*DraftSession, error) {
	return s.mutate(ctx, userID, sessionID, func(store *draft.Store) error {
		store.SetMarksMode(equal, marksPerQuestion)
		return nil
	})
}

func (s *draftSessionService) SetMetadata(ctx context.Context, userID, sessionID string, meta draft.Metadata) (*DraftSession, error) {
	return s.mutate(ctx, userID, sessionID, func(store *draft.Store) error {
		store.SetMetadata(meta)
		return nil
	})
}

func (s *draftSessionService) SetCurrentIndex(ctx context.Context, userID, sessionID string, index int) (*DraftSession, error) {
	return s.mutate(ctx, userID, sessionID, func(store *draft.Store) error {
		store.SetCurrentIndex(index)
		return nil
	})
}

// ImportQuestions merges a questions document into the session. Document
// level failures leave the session untouched; per-question rejections are
// returned alongside the updated session.
func (s *draftSessionService) ImportQuestions(ctx context.Context, userID, sessionID string, document []byte) (*DraftSession, *draft.ImportResult, error) {
	var result *draft.ImportResult
	session, err := s.mutate(ctx, userID, sessionID, func(store *draft.Store) error {
		r, err := store.Import(document)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	event := events.NewQuizImportedEvent(sessionID, userID, "json", len(result.Admitted), len(result.Rejected))
	if err := s.publisher.PublishQuizEvent(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish import event",
			"session_id", sessionID, "event_type", event.Type, "error", err)
	}
	return session, result, nil
}

func (s *draftSessionService) ExportQuestions(ctx context.Context, userID, sessionID string) ([]byte, error) {
	session, err := s.Get(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	return draft.Export(session.Draft)
}

// mutate is the load-apply-store cycle every session mutation goes through.
func (s *draftSessionService) mutate(ctx context.Context, userID, sessionID string, apply func(*draft.Store) error) (*DraftSession, error) {
	session, err := s.Get(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	store, _ := draft.Hydrate(session.Draft, s.validator.Question())
	store.SetCurrentIndex(session.CurrentIndex)

	if err := apply(store); err != nil {
		return nil, err
	}

	session.Draft = store.Snapshot()
	session.CurrentIndex = store.CurrentIndex()
	session.UpdatedAt = time.Now()

	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *draftSessionService) save(ctx context.Context, session *DraftSession) error {
	return s.cache.Set(ctx, sessionKey(session.UserID, session.ID), session, draftSessionTTL)
}
