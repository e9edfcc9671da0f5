package validator

import (
	"testing"

	"github.com/quizforge/quiz-authoring-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoOptions() []models.Option {
	return []models.Option{
		{ID: "a", Text: "Paris"},
		{ID: "b", Text: "London"},
	}
}

func validQuestion(qType models.QuestionType) models.Question {
	q := models.Question{
		ID:     "q-1",
		Type:   qType,
		Prompt: "What is the capital of France?",
		Marks:  10,
	}

	switch qType {
	case models.MCQSingle:
		q.Payload = models.ChoicePayload{Options: twoOptions(), CorrectOption: "a"}
	case models.MCQMultiple:
		q.Payload = models.MultiChoicePayload{Options: twoOptions(), CorrectOptions: []string{"a", "b"}}
	case models.TrueFalse:
		q.Payload = models.TrueFalsePayload{CorrectAnswer: true}
	case models.Match:
		q.Payload = models.MatchPayload{Pairs: []models.MatchPair{
			{ID: "p1", Premise: "France", Response: "Paris"},
		}}
	case models.Matrix:
		q.Payload = models.MatrixPayload{
			Rows:          []models.Option{{ID: "r1", Text: "France"}},
			Cols:          []models.Option{{ID: "c1", Text: "Paris"}},
			CorrectAnswer: map[string]string{"r1": "c1"},
		}
	case models.Poll:
		q.Payload = models.PollPayload{Options: twoOptions()}
	case models.Paragraph:
		q.Payload = models.ParagraphPayload{}
	case models.FillBlanks:
		q.Prompt = "The capital of France is ___."
		q.Payload = models.FillBlanksPayload{Answers: []string{"Paris"}}
	case models.CodeOutput:
		q.Prompt = ""
		q.Payload = models.CodeOutputPayload{CodeSnippet: `print("hi")`, CorrectAnswer: "hi"}
	case models.DragDrop:
		q.Payload = models.DragDropPayload{
			Items:          []models.Option{{ID: "i1", Text: "Paris"}},
			Zones:          []models.DropZone{{ID: "z1", Text: "France"}},
			CorrectMapping: map[string]string{"i1": "z1"},
		}
	case models.ImageBased:
		q.ImageURL = "https://example.com/map.png"
		q.Payload = models.ImagePayload{CorrectAnswer: "Paris"}
	case models.Audio:
		q.Payload = models.MediaPayload{}
	case models.Video:
		q.Payload = models.MediaPayload{}
	case models.Essay:
		q.Payload = models.EssayPayload{}
	case models.Ordering:
		q.Payload = models.OrderingPayload{Items: []string{"first", "second"}}
	}
	return q
}

func TestValidate_AcceptsEveryKnownType(t *testing.T) {
	v := NewQuestionValidator()
	types := []models.QuestionType{
		models.MCQSingle, models.MCQMultiple, models.TrueFalse, models.Match,
		models.Matrix, models.Poll, models.Paragraph, models.FillBlanks,
		models.CodeOutput, models.DragDrop, models.ImageBased, models.Audio,
		models.Video, models.Essay, models.Ordering,
	}
	for _, qType := range types {
		t.Run(string(qType), func(t *testing.T) {
			assert.NoError(t, v.Validate(validQuestion(qType)))
		})
	}
}

func TestValidate_CommonFields(t *testing.T) {
	v := NewQuestionValidator()

	tests := []struct {
		name    string
		mutate  func(*models.Question)
		message string
	}{
		{
			name:    "missing id",
			mutate:  func(q *models.Question) { q.ID = "" },
			message: "Question ID is required.",
		},
		{
			name:    "missing type",
			mutate:  func(q *models.Question) { q.Type = "" },
			message: "Question type is required.",
		},
		{
			name:    "zero marks",
			mutate:  func(q *models.Question) { q.Marks = 0 },
			message: "Question must have valid marks (greater than 0).",
		},
		{
			name:    "negative marks",
			mutate:  func(q *models.Question) { q.Marks = -5 },
			message: "Question must have valid marks (greater than 0).",
		},
		{
			name:    "blank prompt",
			mutate:  func(q *models.Question) { q.Prompt = "   " },
			message: "Question text cannot be empty.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := validQuestion(models.MCQSingle)
			tt.mutate(&q)
			err := v.Validate(q)
			require.Error(t, err)
			assert.Equal(t, tt.message, err.Error())
		})
	}
}

func TestValidate_CodeOutputSkipsPromptCheck(t *testing.T) {
	v := NewQuestionValidator()
	q := validQuestion(models.CodeOutput)
	q.Prompt = ""
	assert.NoError(t, v.Validate(q))
}

func TestValidate_UnknownType(t *testing.T) {
	v := NewQuestionValidator()
	q := validQuestion(models.MCQSingle)
	q.Type = "crossword"
	q.Payload = nil

	err := v.Validate(q)
	require.Error(t, err)
	assert.Equal(t, "Unknown question type: crossword", err.Error())
}

func TestValidate_MCQSingle(t *testing.T) {
	v := NewQuestionValidator()

	tests := []struct {
		name    string
		payload models.QuestionPayload
		message string
	}{
		{
			name:    "nil payload",
			payload: nil,
			message: "MCQ questions must have an options array.",
		},
		{
			name:    "nil options",
			payload: models.ChoicePayload{CorrectOption: "a"},
			message: "MCQ questions must have an options array.",
		},
		{
			name: "only one non-empty option",
			payload: models.ChoicePayload{
				Options:       []models.Option{{ID: "a", Text: "Paris"}, {ID: "b", Text: "  "}},
				CorrectOption: "a",
			},
			message: "MCQ questions must have at least 2 non-empty options.",
		},
		{
			name:    "no correct answer selected",
			payload: models.ChoicePayload{Options: twoOptions()},
			message: "You must select a correct answer for a single-choice MCQ.",
		},
		{
			name:    "correct answer references unknown option",
			payload: models.ChoicePayload{Options: twoOptions(), CorrectOption: "z"},
			message: "The correct answer must match one of the option IDs.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := validQuestion(models.MCQSingle)
			q.Payload = tt.payload
			err := v.Validate(q)
			require.Error(t, err)
			assert.Equal(t, tt.message, err.Error())
		})
	}
}

func TestValidate_MCQMultiple(t *testing.T) {
	v := NewQuestionValidator()

	q := validQuestion(models.MCQMultiple)
	q.Payload = models.MultiChoicePayload{Options: twoOptions()}
	err := v.Validate(q)
	require.Error(t, err)
	assert.Equal(t, "You must select at least one correct answer for a multiple-choice MCQ.", err.Error())

	q.Payload = models.MultiChoicePayload{Options: twoOptions(), CorrectOptions: []string{"a", "z"}}
	err = v.Validate(q)
	require.Error(t, err)
	assert.Equal(t, "All correct answers must match option IDs.", err.Error())
}

func TestValidate_TrueFalseRequiresBoolean(t *testing.T) {
	v := NewQuestionValidator()
	q := validQuestion(models.TrueFalse)
	// A wrong-shaped correctAnswer decodes to a nil payload.
	q.Payload = nil

	err := v.Validate(q)
	require.Error(t, err)
	assert.Equal(t, "True/False questions must have a boolean correct answer.", err.Error())
}

func TestValidate_FillBlanks(t *testing.T) {
	v := NewQuestionValidator()

	q := validQuestion(models.FillBlanks)
	q.Payload = models.FillBlanksPayload{}
	err := v.Validate(q)
	require.Error(t, err)
	assert.Equal(t, "Fill in the blanks questions must have at least one answer.", err.Error())

	q = validQuestion(models.FillBlanks)
	q.Prompt = "The capital of France is Paris."
	err = v.Validate(q)
	require.Error(t, err)
	assert.Equal(t, "Fill in the blanks questions must have at least one blank (___) in the question.", err.Error())
}

func TestValidate_FillBlanksCountMismatchAllowed(t *testing.T) {
	v := NewQuestionValidator()
	q := validQuestion(models.FillBlanks)
	q.Prompt = "___ is the capital of ___."
	q.Payload = models.FillBlanksPayload{Answers: []string{"Paris"}}

	assert.NoError(t, v.Validate(q))
}

func TestValidate_Ordering(t *testing.T) {
	v := NewQuestionValidator()

	q := validQuestion(models.Ordering)
	q.Payload = models.OrderingPayload{}
	err := v.Validate(q)
	require.Error(t, err)
	assert.Equal(t, "Ordering questions must have an orderedItems array.", err.Error())

	q.Payload = models.OrderingPayload{Items: []string{"first", "  "}}
	err = v.Validate(q)
	require.Error(t, err)
	assert.Equal(t, "You must provide at least 2 non-empty items for ordering.", err.Error())
}

func TestValidate_Matrix(t *testing.T) {
	v := NewQuestionValidator()

	rows := []models.Option{{ID: "r1", Text: "France"}, {ID: "r2", Text: "Italy"}}
	cols := []models.Option{{ID: "c1", Text: "Paris"}, {ID: "c2", Text: "Rome"}}

	tests := []struct {
		name    string
		payload models.QuestionPayload
		message string
	}{
		{
			name:    "nil payload",
			payload: nil,
			message: "Matrix questions must have rows and columns defined.",
		},
		{
			name:    "no rows",
			payload: models.MatrixPayload{Rows: []models.Option{}, Cols: cols, CorrectAnswer: map[string]string{}},
			message: "Matrix must have at least one row and one column.",
		},
		{
			name: "blank row text",
			payload: models.MatrixPayload{
				Rows:          []models.Option{{ID: "r1", Text: ""}},
				Cols:          cols,
				CorrectAnswer: map[string]string{},
			},
			message: "All matrix rows and columns must have IDs and non-empty text.",
		},
		{
			name:    "nil mapping",
			payload: models.MatrixPayload{Rows: rows, Cols: cols},
			message: "Matrix questions must have a correctAnswer mapping object.",
		},
		{
			name: "row without answer",
			payload: models.MatrixPayload{
				Rows:          rows,
				Cols:          cols,
				CorrectAnswer: map[string]string{"r1": "c1"},
			},
			message: "Each row in the matrix must have exactly one correct answer.",
		},
		{
			name: "dangling reference",
			payload: models.MatrixPayload{
				Rows:          rows,
				Cols:          cols,
				CorrectAnswer: map[string]string{"r1": "c1", "r2": "c9"},
			},
			message: "Matrix correct answers must reference valid row and column IDs.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := validQuestion(models.Matrix)
			q.Payload = tt.payload
			err := v.Validate(q)
			require.Error(t, err)
			assert.Equal(t, tt.message, err.Error())
		})
	}
}

func TestValidate_DragDrop(t *testing.T) {
	v := NewQuestionValidator()

	items := []models.Option{{ID: "i1", Text: "Paris"}}
	zones := []models.DropZone{{ID: "z1", Text: "France"}}

	tests := []struct {
		name    string
		payload models.QuestionPayload
		message string
	}{
		{
			name:    "nil payload",
			payload: nil,
			message: "Drag and drop questions must have draggableItems and dropZones arrays.",
		},
		{
			name: "all items blank",
			payload: models.DragDropPayload{
				Items:          []models.Option{{ID: "i1", Text: " "}},
				Zones:          zones,
				CorrectMapping: map[string]string{},
			},
			message: "You must have at least one valid draggable item and one drop zone.",
		},
		{
			name:    "nil mapping",
			payload: models.DragDropPayload{Items: items, Zones: zones},
			message: "Drag and drop questions must have a correctMapping object.",
		},
		{
			name: "dangling mapping",
			payload: models.DragDropPayload{
				Items:          items,
				Zones:          zones,
				CorrectMapping: map[string]string{"i1": "z9"},
			},
			message: "Drag and drop mappings must reference valid item and zone IDs.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := validQuestion(models.DragDrop)
			q.Payload = tt.payload
			err := v.Validate(q)
			require.Error(t, err)
			assert.Equal(t, tt.message, err.Error())
		})
	}
}

func TestValidate_DragDropPartialMappingAllowed(t *testing.T) {
	v := NewQuestionValidator()
	q := validQuestion(models.DragDrop)
	q.Payload = models.DragDropPayload{
		Items: []models.Option{
			{ID: "i1", Text: "Paris"},
			{ID: "i2", Text: "Distractor"},
		},
		Zones:          []models.DropZone{{ID: "z1", Text: "France"}},
		CorrectMapping: map[string]string{"i1": "z1"},
	}
	assert.NoError(t, v.Validate(q))
}

func TestValidate_ImageBased(t *testing.T) {
	v := NewQuestionValidator()

	q := validQuestion(models.ImageBased)
	q.ImageURL = ""
	err := v.Validate(q)
	require.Error(t, err)
	assert.Equal(t, "Image-based questions must have an image URL.", err.Error())

	q = validQuestion(models.ImageBased)
	q.Payload = models.ImagePayload{}
	err = v.Validate(q)
	require.Error(t, err)
	assert.Equal(t, "Image-based questions must have a correct answer.", err.Error())
}

func TestValidate_MediaURLOptional(t *testing.T) {
	v := NewQuestionValidator()

	audio := validQuestion(models.Audio)
	audio.AudioURL = ""
	assert.NoError(t, v.Validate(audio))

	video := validQuestion(models.Video)
	video.VideoURL = ""
	assert.NoError(t, v.Validate(video))
}

func TestValidate_CodeOutput(t *testing.T) {
	v := NewQuestionValidator()

	q := validQuestion(models.CodeOutput)
	q.Payload = models.CodeOutputPayload{CorrectAnswer: "hi"}
	err := v.Validate(q)
	require.Error(t, err)
	assert.Equal(t, "Code output questions must have a code snippet.", err.Error())

	q.Payload = models.CodeOutputPayload{CodeSnippet: `print("hi")`}
	err = v.Validate(q)
	require.Error(t, err)
	assert.Equal(t, "Code output questions must have a correct answer.", err.Error())
}

func TestValidate_Poll(t *testing.T) {
	v := NewQuestionValidator()
	q := validQuestion(models.Poll)
	q.Payload = models.PollPayload{Options: []models.Option{{ID: "a", Text: "Yes"}}}

	err := v.Validate(q)
	require.Error(t, err)
	assert.Equal(t, "Poll questions must have at least 2 non-empty options.", err.Error())
}

func TestValidateBatch(t *testing.T) {
	v := NewQuestionValidator()

	err := v.ValidateBatch(nil)
	require.Error(t, err)

	good := validQuestion(models.MCQSingle)
	bad := validQuestion(models.MCQSingle)
	bad.Marks = 0

	err = v.ValidateBatch([]models.Question{good, bad})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "question 2")

	assert.NoError(t, v.ValidateBatch([]models.Question{good}))
}
