package draft

import (
	"testing"

	"github.com/quizforge/quiz-authoring-service/internal/models"
	"github.com/quizforge/quiz-authoring-service/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(validator.NewQuestionValidator())
}

func validMCQ(id string) models.Question {
	return models.Question{
		ID:     id,
		Type:   models.MCQSingle,
		Prompt: "What is the capital of France?",
		Marks:  5,
		Payload: models.ChoicePayload{
			Options: []models.Option{
				{ID: id + "-a", Text: "Paris"},
				{ID: id + "-b", Text: "London"},
			},
			CorrectOption: id + "-a",
		},
	}
}

func TestNewStore_Defaults(t *testing.T) {
	s := newTestStore(t)

	snap := s.Snapshot()
	assert.Empty(t, snap.Questions)
	assert.True(t, snap.EqualMarks)
	assert.Equal(t, float64(10), snap.MarksPerQuestion)
	assert.Equal(t, -1, s.CurrentIndex())
	assert.Zero(t, s.TotalMarks())
}

func TestAddQuestion_PerTypeDefaults(t *testing.T) {
	s := newTestStore(t)

	q, err := s.AddQuestion(models.MCQSingle)
	require.NoError(t, err)
	assert.NotEmpty(t, q.ID)
	assert.Equal(t, float64(10), q.Marks)
	p, ok := q.Payload.(models.ChoicePayload)
	require.True(t, ok)
	assert.Len(t, p.Options, 2)
	assert.Empty(t, p.CorrectOption)

	tf, err := s.AddQuestion(models.TrueFalse)
	require.NoError(t, err)
	tfp, ok := tf.Payload.(models.TrueFalsePayload)
	require.True(t, ok)
	assert.True(t, tfp.CorrectAnswer)

	ordering, err := s.AddQuestion(models.Ordering)
	require.NoError(t, err)
	op, ok := ordering.Payload.(models.OrderingPayload)
	require.True(t, ok)
	assert.Equal(t, []string{"", ""}, op.Items)

	matrix, err := s.AddQuestion(models.Matrix)
	require.NoError(t, err)
	mp, ok := matrix.Payload.(models.MatrixPayload)
	require.True(t, ok)
	assert.Len(t, mp.Rows, 1)
	assert.Len(t, mp.Cols, 1)
	assert.NotNil(t, mp.CorrectAnswer)

	dd, err := s.AddQuestion(models.DragDrop)
	require.NoError(t, err)
	dp, ok := dd.Payload.(models.DragDropPayload)
	require.True(t, ok)
	assert.Len(t, dp.Items, 1)
	assert.Len(t, dp.Zones, 1)
	assert.NotNil(t, dp.CorrectMapping)
}

func TestAddQuestion_UniqueIDsAndCursor(t *testing.T) {
	s := newTestStore(t)

	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		q, err := s.AddQuestion(models.MCQSingle)
		require.NoError(t, err)
		assert.False(t, seen[q.ID], "duplicate id %s", q.ID)
		seen[q.ID] = true
		assert.Equal(t, i, s.CurrentIndex())
	}
}

func TestAddQuestion_UnknownType(t *testing.T) {
	s := newTestStore(t)
	_, err := s.AddQuestion("crossword")
	assert.ErrorIs(t, err, ErrUnknownQuestionType)
	assert.Empty(t, s.Questions())
}

func TestAddQuestion_NoValidationOnAdd(t *testing.T) {
	s := newTestStore(t)

	// Fresh scaffolding is not yet valid, and that must be allowed.
	q, err := s.AddQuestion(models.MCQSingle)
	require.NoError(t, err)
	assert.Empty(t, q.Prompt)
}

func TestUpdateQuestion_PreservesIDAndType(t *testing.T) {
	s := newTestStore(t)
	q, err := s.AddQuestion(models.MCQSingle)
	require.NoError(t, err)

	replacement := validMCQ("ignored")
	replacement.Type = models.Essay

	require.NoError(t, s.UpdateQuestion(q.ID, replacement))

	got, err := s.Question(q.ID)
	require.NoError(t, err)
	assert.Equal(t, q.ID, got.ID)
	assert.Equal(t, models.MCQSingle, got.Type)
	assert.Equal(t, replacement.Prompt, got.Prompt)
}

func TestUpdateQuestion_NotFound(t *testing.T) {
	s := newTestStore(t)
	err := s.UpdateQuestion("missing", validMCQ("missing"))
	assert.ErrorIs(t, err, ErrQuestionNotFound)
}

func TestDeleteQuestion_ClampsCursor(t *testing.T) {
	s := newTestStore(t)

	var ids []string
	for i := 0; i < 3; i++ {
		q, err := s.AddQuestion(models.MCQSingle)
		require.NoError(t, err)
		ids = append(ids, q.ID)
	}
	assert.Equal(t, 2, s.CurrentIndex())

	require.NoError(t, s.DeleteQuestion(ids[2]))
	assert.Equal(t, 1, s.CurrentIndex())

	require.NoError(t, s.DeleteQuestion(ids[0]))
	require.NoError(t, s.DeleteQuestion(ids[1]))
	assert.Equal(t, -1, s.CurrentIndex())
}

func TestDeleteQuestion_NotFound(t *testing.T) {
	s := newTestStore(t)
	assert.ErrorIs(t, s.DeleteQuestion("missing"), ErrQuestionNotFound)
}

func TestDuplicateQuestion(t *testing.T) {
	s := newTestStore(t)
	q, err := s.AddQuestion(models.MCQSingle)
	require.NoError(t, err)
	require.NoError(t, s.UpdateQuestion(q.ID, validMCQ(q.ID)))

	dup, err := s.DuplicateQuestion(q.ID)
	require.NoError(t, err)
	assert.NotEqual(t, q.ID, dup.ID)
	assert.Equal(t, "What is the capital of France? (Copy)", dup.Prompt)
	assert.Len(t, s.Questions(), 2)

	// The copy must not share option slices with the original.
	original, err := s.Question(q.ID)
	require.NoError(t, err)
	dupPayload := dup.Payload.(models.ChoicePayload)
	dupPayload.Options[0].Text = "mutated"
	assert.Equal(t, "Paris", original.Payload.(models.ChoicePayload).Options[0].Text)
}

func TestSetMarksMode(t *testing.T) {
	s := newTestStore(t)
	q1, _ := s.AddQuestion(models.MCQSingle)
	q2, _ := s.AddQuestion(models.TrueFalse)

	s.SetMarksMode(true, 7)
	for _, q := range s.Questions() {
		assert.Equal(t, float64(7), q.Marks)
	}
	assert.Equal(t, float64(14), s.TotalMarks())

	// Custom mode leaves existing marks alone.
	updated, _ := s.Question(q1.ID)
	updated.Marks = 3
	require.NoError(t, s.UpdateQuestion(q1.ID, updated))
	s.SetMarksMode(false, 0)

	got1, _ := s.Question(q1.ID)
	got2, _ := s.Question(q2.ID)
	assert.Equal(t, float64(3), got1.Marks)
	assert.Equal(t, float64(7), got2.Marks)
	assert.Equal(t, float64(10), s.TotalMarks())
}

func TestEqualMarksInvariant(t *testing.T) {
	s := newTestStore(t)
	for i := 0; i < 4; i++ {
		_, err := s.AddQuestion(models.TrueFalse)
		require.NoError(t, err)
	}
	s.SetMarksMode(true, 2.5)
	assert.Equal(t, 2.5*4, s.TotalMarks())
}

func TestBulkImport_PartialSuccess(t *testing.T) {
	s := newTestStore(t)
	existing, err := s.AddQuestion(models.MCQSingle)
	require.NoError(t, err)
	require.NoError(t, s.UpdateQuestion(existing.ID, validMCQ(existing.ID)))

	dupOfExisting := validMCQ(existing.ID)
	fresh := validMCQ("q-new")
	invalid := validMCQ("q-bad")
	invalid.Marks = 0

	result := s.BulkImport([]models.Question{dupOfExisting, fresh, invalid})

	require.Len(t, result.Admitted, 1)
	assert.Equal(t, "q-new", result.Admitted[0].ID)

	require.Len(t, result.Rejected, 2)
	assert.Equal(t, "Duplicate question ID: "+existing.ID, result.Rejected[0].Reason)
	assert.Equal(t, "Question must have valid marks (greater than 0).", result.Rejected[1].Reason)

	assert.Len(t, s.Questions(), 2)
}

func TestBulkImport_DuplicateWithinBatch(t *testing.T) {
	s := newTestStore(t)

	first := validMCQ("q-1")
	second := validMCQ("q-1")

	result := s.BulkImport([]models.Question{first, second})
	require.Len(t, result.Admitted, 1)
	require.Len(t, result.Rejected, 1)
	assert.Equal(t, "Duplicate question ID: q-1", result.Rejected[0].Reason)
}

func TestBulkImport_SetsCursorOnFirstQuestions(t *testing.T) {
	s := newTestStore(t)
	assert.Equal(t, -1, s.CurrentIndex())

	s.BulkImport([]models.Question{validMCQ("q-1")})
	assert.Equal(t, 0, s.CurrentIndex())
}

func TestHydrate_RegeneratesDuplicateIDs(t *testing.T) {
	d := models.QuizDraft{
		Questions: []models.Question{
			validMCQ("q-1"),
			validMCQ("q-1"),
			validMCQ("q-2"),
			{Type: models.TrueFalse, Prompt: "Sky is blue?", Marks: 5, Payload: models.TrueFalsePayload{CorrectAnswer: true}},
		},
	}

	s, fixed := Hydrate(d, validator.NewQuestionValidator())
	assert.Equal(t, 2, fixed) // one duplicate, one missing id

	seen := make(map[string]bool)
	for _, q := range s.Questions() {
		assert.NotEmpty(t, q.ID)
		assert.False(t, seen[q.ID])
		seen[q.ID] = true
	}
	assert.Equal(t, 0, s.CurrentIndex())
}

func TestSetCurrentIndex_Clamped(t *testing.T) {
	s := newTestStore(t)
	s.SetCurrentIndex(5)
	assert.Equal(t, -1, s.CurrentIndex())

	s.AddQuestion(models.MCQSingle)
	s.AddQuestion(models.MCQSingle)

	s.SetCurrentIndex(99)
	assert.Equal(t, 1, s.CurrentIndex())
	s.SetCurrentIndex(-10)
	assert.Equal(t, 0, s.CurrentIndex())
}

func TestSnapshot_TotalMarksRecomputed(t *testing.T) {
	s := newTestStore(t)
	s.BulkImport([]models.Question{validMCQ("q-1"), validMCQ("q-2")})

	snap := s.Snapshot()
	assert.Equal(t, float64(10), snap.TotalMarks)

	// Snapshot must be detached from store state.
	snap.Questions[0].Prompt = "mutated"
	got, err := s.Question("q-1")
	require.NoError(t, err)
	assert.Equal(t, "What is the capital of France?", got.Prompt)
}

func TestCleanedSnapshot_TrimsBlankEntries(t *testing.T) {
	s := newTestStore(t)

	q := validMCQ("q-1")
	p := q.Payload.(models.ChoicePayload)
	p.Options = append(p.Options, models.Option{ID: "q-1-c", Text: "  "})
	q.Payload = p
	s.BulkImport([]models.Question{q})

	// The plain snapshot keeps the blank entry; round trips stay faithful.
	snap := s.Snapshot()
	assert.Len(t, snap.Questions[0].Payload.(models.ChoicePayload).Options, 3)

	cleaned := s.CleanedSnapshot()
	assert.Len(t, cleaned.Questions[0].Payload.(models.ChoicePayload).Options, 2)
}

func TestSetMetadata(t *testing.T) {
	s := newTestStore(t)
	s.SetMetadata(Metadata{
		Title:           "Geography Basics",
		Tags:            []string{"geo"},
		DifficultyLevel: models.DifficultyEasy,
		Price:           9.99,
	})

	snap := s.Snapshot()
	assert.Equal(t, "Geography Basics", snap.Title)
	assert.Equal(t, []string{"geo"}, snap.Tags)
	assert.Equal(t, models.DifficultyEasy, snap.DifficultyLevel)
	assert.Equal(t, 9.99, snap.Price)
}
