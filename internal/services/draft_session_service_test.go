package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/quizforge/quiz-authoring-service/internal/draft"
	"github.com/quizforge/quiz-authoring-service/internal/events"
	"github.com/quizforge/quiz-authoring-service/internal/models"
	"github.com/quizforge/quiz-authoring-service/internal/utils"
	"github.com/quizforge/quiz-authoring-service/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSessionService() DraftSessionService {
	return NewDraftSessionService(newMemoryCache(), validator.New(), events.NoopEventPublisher{}, testLogger())
}

func TestDraftSession_CreateAndGet(t *testing.T) {
	svc := newSessionService()
	ctx := context.Background()

	session, err := svc.Create(ctx, "user-1")
	require.NoError(t, err)
	assert.NotEmpty(t, session.ID)
	assert.Equal(t, "user-1", session.UserID)
	assert.Empty(t, session.Draft.Questions)
	assert.Equal(t, -1, session.CurrentIndex)

	got, err := svc.Get(ctx, "user-1", session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)
}

func TestDraftSession_GetMissing(t *testing.T) {
	svc := newSessionService()

	_, err := svc.Get(context.Background(), "user-1", "no-such-session")
	assert.ErrorIs(t, err, ErrDraftSessionNotFound)
}

func TestDraftSession_ScopedToUser(t *testing.T) {
	svc := newSessionService()
	ctx := context.Background()

	session, err := svc.Create(ctx, "user-1")
	require.NoError(t, err)

	_, err = svc.Get(ctx, "user-2", session.ID)
	assert.ErrorIs(t, err, ErrDraftSessionNotFound)
}

func TestDraftSession_AddQuestionPersists(t *testing.T) {
	svc := newSessionService()
	ctx := context.Background()

	session, err := svc.Create(ctx, "user-1")
	require.NoError(t, err)

	updated, added, err := svc.AddQuestion(ctx, "user-1", session.ID, models.TrueFalse)
	require.NoError(t, err)
	assert.Equal(t, models.TrueFalse, added.Type)
	assert.Len(t, updated.Draft.Questions, 1)
	assert.Equal(t, 0, updated.CurrentIndex)

	// the mutation must survive a reload from the cache
	got, err := svc.Get(ctx, "user-1", session.ID)
	require.NoError(t, err)
	require.Len(t, got.Draft.Questions, 1)
	assert.Equal(t, added.ID, got.Draft.Questions[0].ID)
}

func TestDraftSession_AddQuestionUnknownType(t *testing.T) {
	svc := newSessionService()
	ctx := context.Background()

	session, err := svc.Create(ctx, "user-1")
	require.NoError(t, err)

	_, _, err = svc.AddQuestion(ctx, "user-1", session.ID, "crossword")
	assert.ErrorIs(t, err, draft.ErrUnknownQuestionType)
}

func TestDraftSession_UpdateAndDeleteQuestion(t *testing.T) {
	svc := newSessionService()
	ctx := context.Background()

	session, err := svc.Create(ctx, "user-1")
	require.NoError(t, err)

	_, added, err := svc.AddQuestion(ctx, "user-1", session.ID, models.Essay)
	require.NoError(t, err)

	edited := added
	edited.Prompt = "Describe the water cycle."
	updated, err := svc.UpdateQuestion(ctx, "user-1", session.ID, added.ID, edited)
	require.NoError(t, err)
	assert.Equal(t, "Describe the water cycle.", updated.Draft.Questions[0].Prompt)

	updated, err = svc.DeleteQuestion(ctx, "user-1", session.ID, added.ID)
	require.NoError(t, err)
	assert.Empty(t, updated.Draft.Questions)
	assert.Equal(t, -1, updated.CurrentIndex)

	_, err = svc.DeleteQuestion(ctx, "user-1", session.ID, added.ID)
	assert.ErrorIs(t, err, draft.ErrQuestionNotFound)
}

func TestDraftSession_DuplicateQuestion(t *testing.T) {
	svc := newSessionService()
	ctx := context.Background()

	session, err := svc.Create(ctx, "user-1")
	require.NoError(t, err)

	_, added, err := svc.AddQuestion(ctx, "user-1", session.ID, models.MCQSingle)
	require.NoError(t, err)

	updated, dup, err := svc.DuplicateQuestion(ctx, "user-1", session.ID, added.ID)
	require.NoError(t, err)
	assert.NotEqual(t, added.ID, dup.ID)
	assert.Len(t, updated.Draft.Questions, 2)
}

func TestDraftSession_SetMarksMode(t *testing.T) {
	svc := newSessionService()
	ctx := context.Background()

	session, err := svc.Create(ctx, "user-1")
	require.NoError(t, err)

	_, _, err = svc.AddQuestion(ctx, "user-1", session.ID, models.TrueFalse)
	require.NoError(t, err)
	_, _, err = svc.AddQuestion(ctx, "user-1", session.ID, models.Essay)
	require.NoError(t, err)

	updated, err := svc.SetMarksMode(ctx, "user-1", session.ID, true, 2.5)
	require.NoError(t, err)
	for _, q := range updated.Draft.Questions {
		assert.Equal(t, 2.5, q.Marks)
	}
	assert.Equal(t, 5.0, updated.Draft.TotalMarks)
}

func TestDraftSession_SetMetadata(t *testing.T) {
	svc := newSessionService()
	ctx := context.Background()

	session, err := svc.Create(ctx, "user-1")
	require.NoError(t, err)

	updated, err := svc.SetMetadata(ctx, "user-1", session.ID, draft.Metadata{
		Title:   "Biology Midterm",
		Subject: "Biology",
		Tags:    []string{"midterm"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Biology Midterm", updated.Draft.Title)
	assert.Equal(t, "Biology", updated.Draft.Subject)
}

func TestDraftSession_ImportExportRoundTrip(t *testing.T) {
	svc := newSessionService()
	ctx := context.Background()

	session, err := svc.Create(ctx, "user-1")
	require.NoError(t, err)

	doc, err := draft.Export(models.QuizDraft{Questions: sampleImportQuestions()})
	require.NoError(t, err)

	updated, result, err := svc.ImportQuestions(ctx, "user-1", session.ID, doc)
	require.NoError(t, err)
	assert.Len(t, result.Admitted, 2)
	assert.Empty(t, result.Rejected)
	assert.Len(t, updated.Draft.Questions, 2)

	_, err = svc.SetMetadata(ctx, "user-1", session.ID, draft.Metadata{Title: "Science Check"})
	require.NoError(t, err)

	exported, err := svc.ExportQuestions(ctx, "user-1", session.ID)
	require.NoError(t, err)

	parsed, err := draft.ParseDocument(exported)
	require.NoError(t, err)
	assert.Equal(t, sampleImportQuestions(), parsed)

	// the export is the full draft document, not just the question list
	var exportedDraft models.QuizDraft
	require.NoError(t, json.Unmarshal(exported, &exportedDraft))
	assert.Equal(t, "Science Check", exportedDraft.Title)
	assert.Equal(t, 10.0, exportedDraft.TotalMarks)
}

func TestDraftSession_ImportEmitsEvent(t *testing.T) {
	publisher := events.NewMockEventPublisher(utils.ToSlog(testLogger()))
	svc := NewDraftSessionService(newMemoryCache(), validator.New(), publisher, testLogger())
	ctx := context.Background()

	session, err := svc.Create(ctx, "user-1")
	require.NoError(t, err)

	doc, err := draft.Export(models.QuizDraft{Questions: sampleImportQuestions()})
	require.NoError(t, err)
	_, _, err = svc.ImportQuestions(ctx, "user-1", session.ID, doc)
	require.NoError(t, err)

	published := publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventQuizImported, published[0].Type)
}

func TestDraftSession_ImportMalformedDocumentLeavesSessionUntouched(t *testing.T) {
	svc := newSessionService()
	ctx := context.Background()

	session, err := svc.Create(ctx, "user-1")
	require.NoError(t, err)

	_, _, err = svc.AddQuestion(ctx, "user-1", session.ID, models.TrueFalse)
	require.NoError(t, err)

	_, _, err = svc.ImportQuestions(ctx, "user-1", session.ID, []byte(`{"questions": [`))
	assert.ErrorIs(t, err, draft.ErrParse)

	got, err := svc.Get(ctx, "user-1", session.ID)
	require.NoError(t, err)
	assert.Len(t, got.Draft.Questions, 1)
}

func TestDraftSession_CreateFromReportsFixedIDs(t *testing.T) {
	svc := newSessionService()
	ctx := context.Background()

	questions := sampleImportQuestions()
	questions[1].ID = questions[0].ID

	session, fixed, err := svc.CreateFrom(ctx, "user-1", models.QuizDraft{
		Title:     "Recovered Quiz",
		Questions: questions,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, fixed)
	assert.NotEqual(t, session.Draft.Questions[0].ID, session.Draft.Questions[1].ID)
}

func sampleImportQuestions() []models.Question {
	return []models.Question{
		{
			ID:     "imp-1",
			Type:   models.MCQSingle,
			Prompt: "What is 2 + 2?",
			Marks:  5,
			Payload: models.ChoicePayload{
				Options: []models.Option{
					{ID: "imp-1-a", Text: "4"},
					{ID: "imp-1-b", Text: "5"},
				},
				CorrectOption: "imp-1-a",
			},
		},
		{
			ID:      "imp-2",
			Type:    models.TrueFalse,
			Prompt:  "Water boils at 100C at sea level.",
			Marks:   5,
			Payload: models.TrueFalsePayload{CorrectAnswer: true},
		},
	}
}
