package services

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/quizforge/quiz-authoring-service/internal/models"
	"github.com/quizforge/quiz-authoring-service/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newImportExportService() ImportExportService {
	return NewImportExportService(validator.New(), testLogger())
}

const sheetHeader = "question_type,question_text,option_a,option_b,option_c,option_d,correct_answer,marks,explanation"

func TestImportCSV_SupportedTypes(t *testing.T) {
	csvDoc := strings.Join([]string{
		sheetHeader,
		`mcq-single,What is 2 + 2?,4,5,6,,a,5,Basic arithmetic`,
		`mcq-multiple,Which are primes?,2,4,7,9,"a,c",3,`,
		`true-false,The earth is flat.,,,,,false,2,`,
		`fill-blanks,Water is made of ___ and ___.,,,,,"hydrogen,oxygen",4,`,
		`essay,Describe photosynthesis.,,,,,n/a,10,`,
		`code-output,print(6 * 7),,,,,42,5,`,
	}, "\n")

	result, err := newImportExportService().ImportQuestionsFromCSV(context.Background(), strings.NewReader(csvDoc))
	require.NoError(t, err)

	assert.Equal(t, 6, result.TotalRows)
	assert.Equal(t, 6, result.SuccessCount)
	assert.Equal(t, 0, result.ErrorCount)
	require.Len(t, result.Questions, 6)

	single := result.Questions[0]
	assert.Equal(t, models.MCQSingle, single.Type)
	assert.Equal(t, 5.0, single.Marks)
	assert.Equal(t, "Basic arithmetic", single.Explanation)
	sp, ok := single.Payload.(models.ChoicePayload)
	require.True(t, ok)
	require.Len(t, sp.Options, 3)
	assert.Equal(t, sp.Options[0].ID, sp.CorrectOption)

	multi := result.Questions[1].Payload.(models.MultiChoicePayload)
	require.Len(t, multi.Options, 4)
	assert.Equal(t, []string{multi.Options[0].ID, multi.Options[2].ID}, multi.CorrectOptions)

	tf := result.Questions[2].Payload.(models.TrueFalsePayload)
	assert.False(t, tf.CorrectAnswer)

	fb := result.Questions[3].Payload.(models.FillBlanksPayload)
	assert.Equal(t, []string{"hydrogen", "oxygen"}, fb.Answers)

	assert.Equal(t, models.Essay, result.Questions[4].Type)

	// code-output rows keep their snippet in the question_text column
	co := result.Questions[5]
	assert.Equal(t, models.CodeOutput, co.Type)
	assert.Empty(t, co.Prompt)
	cp, ok := co.Payload.(models.CodeOutputPayload)
	require.True(t, ok)
	assert.Equal(t, "print(6 * 7)", cp.CodeSnippet)
	assert.Equal(t, "42", cp.CorrectAnswer)
}

func TestImportCSV_CollectsRowErrors(t *testing.T) {
	csvDoc := strings.Join([]string{
		sheetHeader,
		`mcq-single,Pick one.,Yes,No,,,z,5,`,
		`true-false,Is it?,,,,,maybe,2,`,
		`matrix,Match things.,,,,,x,1,`,
		`mcq-single,,Yes,No,,,a,-1,`,
		`true-false,Still standing.,,,,,true,3,`,
	}, "\n")

	result, err := newImportExportService().ImportQuestionsFromCSV(context.Background(), strings.NewReader(csvDoc))
	require.NoError(t, err)

	assert.Equal(t, 5, result.TotalRows)
	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 4, result.ErrorCount)
	require.Len(t, result.Questions, 1)
	assert.Equal(t, "Still standing.", result.Questions[0].Prompt)

	messages := make(map[int][]string)
	for _, e := range result.Errors {
		messages[e.Row] = append(messages[e.Row], e.Message)
	}
	assert.Contains(t, messages[2], "correct answer must be an option letter (a-d)")
	assert.Contains(t, messages[3], "correct answer must be true or false")
	assert.Contains(t, messages[4], "question type not supported for sheet import")
	assert.Contains(t, messages[5], "question text is required")
	assert.Contains(t, messages[5], "marks must be a positive number")
}

func TestImportCSV_MissingRequiredColumn(t *testing.T) {
	csvDoc := "question_type,question_text\nessay,Describe something."

	_, err := newImportExportService().ImportQuestionsFromCSV(context.Background(), strings.NewReader(csvDoc))
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Contains(t, err.Error(), "missing required column: correct_answer")
}

func TestImportCSV_HeaderOnly(t *testing.T) {
	_, err := newImportExportService().ImportQuestionsFromCSV(context.Background(), strings.NewReader(sheetHeader))
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestExportImportCSV_RoundTrip(t *testing.T) {
	svc := newImportExportService()
	ctx := context.Background()

	questions := sheetExportQuestions()
	data, err := svc.ExportQuestionsToCSV(ctx, questions)
	require.NoError(t, err)

	result, err := svc.ImportQuestionsFromCSV(ctx, bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, len(questions), result.SuccessCount)

	for i, got := range result.Questions {
		want := questions[i]
		assert.Equal(t, want.Type, got.Type)
		assert.Equal(t, want.Prompt, got.Prompt)
		assert.Equal(t, want.Marks, got.Marks)
	}

	tf := result.Questions[1].Payload.(models.TrueFalsePayload)
	assert.True(t, tf.CorrectAnswer)

	co := result.Questions[3].Payload.(models.CodeOutputPayload)
	assert.Equal(t, "print(len('cat'))", co.CodeSnippet)
	assert.Equal(t, "3", co.CorrectAnswer)
}

func TestExportImportExcel_RoundTrip(t *testing.T) {
	svc := newImportExportService()
	ctx := context.Background()

	questions := sheetExportQuestions()
	data, err := svc.ExportQuestionsToExcel(ctx, questions)
	require.NoError(t, err)

	result, err := svc.ImportQuestionsFromExcel(ctx, bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, len(questions), result.SuccessCount)
	assert.Zero(t, result.ErrorCount)
}

func TestImportFromFile_UnsupportedExtension(t *testing.T) {
	_, err := newImportExportService().ImportQuestionsFromFile(context.Background(), nil, "questions.pdf")
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func sheetExportQuestions() []models.Question {
	return []models.Question{
		{
			ID:     "exp-1",
			Type:   models.MCQSingle,
			Prompt: "What is the largest planet?",
			Marks:  5,
			Payload: models.ChoicePayload{
				Options: []models.Option{
					{ID: "exp-1-opt-1", Text: "Jupiter"},
					{ID: "exp-1-opt-2", Text: "Saturn"},
				},
				CorrectOption: "exp-1-opt-1",
			},
		},
		{
			ID:      "exp-2",
			Type:    models.TrueFalse,
			Prompt:  "Sound travels faster in water than in air.",
			Marks:   2,
			Payload: models.TrueFalsePayload{CorrectAnswer: true},
		},
		{
			ID:      "exp-3",
			Type:    models.FillBlanks,
			Prompt:  "The chemical symbol for gold is ___.",
			Marks:   3,
			Payload: models.FillBlanksPayload{Answers: []string{"Au"}},
		},
		{
			ID:      "exp-4",
			Type:    models.CodeOutput,
			Marks:   4,
			Payload: models.CodeOutputPayload{CodeSnippet: "print(len('cat'))", CorrectAnswer: "3"},
		},
	}
}
