package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/quizforge/quiz-authoring-service/internal/models"
	"github.com/quizforge/quiz-authoring-service/internal/utils"
	"github.com/quizforge/quiz-authoring-service/internal/validator"
	"github.com/xuri/excelize/v2"
)

// Sheet layout for CSV and Excel question import/export. Option columns are
// used by the choice types; correct_answer holds the option letter(s), a
// true/false literal, or the answer text depending on the question type.
// Code-output rows carry their snippet in question_text.
var sheetColumns = []string{
	"question_type", "question_text",
	"option_a", "option_b", "option_c", "option_d",
	"correct_answer", "marks", "explanation",
}

var requiredSheetColumns = []string{"question_type", "question_text", "correct_answer"}

// ImportExportService handles spreadsheet import/export of questions. JSON
// documents go through the draft codec instead; this service covers the
// tabular formats where each row is one question.
type ImportExportService interface {
	ImportQuestionsFromFile(ctx context.Context, file multipart.File, filename string) (*models.SheetImportResult, error)
	ImportQuestionsFromCSV(ctx context.Context, reader io.Reader) (*models.SheetImportResult, error)
	ImportQuestionsFromExcel(ctx context.Context, reader io.Reader) (*models.SheetImportResult, error)

	ExportQuestionsToCSV(ctx context.Context, questions []models.Question) ([]byte, error)
	ExportQuestionsToExcel(ctx context.Context, questions []models.Question) ([]byte, error)
}

type importExportService struct {
	validator *validator.Validator
	logger    utils.Logger
}

func NewImportExportService(v *validator.Validator, logger utils.Logger) ImportExportService {
	return &importExportService{
		validator: v,
		logger:    logger,
	}
}

// ===== IMPORT OPERATIONS =====

func (s *importExportService) ImportQuestionsFromFile(ctx context.Context, file multipart.File, filename string) (*models.SheetImportResult, error) {
	s.logger.InfoContext(ctx, "starting file import", "filename", filename)

	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".csv":
		return s.ImportQuestionsFromCSV(ctx, file)
	case ".xlsx", ".xls":
		return s.ImportQuestionsFromExcel(ctx, file)
	default:
		return nil, NewValidationError("file", "unsupported file format", ext)
	}
}

func (s *importExportService) ImportQuestionsFromCSV(ctx context.Context, reader io.Reader) (*models.SheetImportResult, error) {
	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	return s.importRows(ctx, records, "csv")
}

func (s *importExportService) ImportQuestionsFromExcel(ctx context.Context, reader io.Reader) (*models.SheetImportResult, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, NewValidationError("file", "Excel file has no sheets", nil)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read Excel rows: %w", err)
	}
	return s.importRows(ctx, rows, "xlsx")
}

func (s *importExportService) importRows(ctx context.Context, rows [][]string, format string) (*models.SheetImportResult, error) {
	if len(rows) < 2 {
		return nil, NewValidationError("file", "sheet must have a header row and at least one data row", len(rows))
	}

	headerMap := make(map[string]int)
	for i, header := range rows[0] {
		headerMap[strings.ToLower(strings.TrimSpace(header))] = i
	}
	for _, col := range requiredSheetColumns {
		if _, exists := headerMap[col]; !exists {
			return nil, NewValidationError("headers", fmt.Sprintf("missing required column: %s", col), col)
		}
	}

	result := &models.SheetImportResult{
		TotalRows: len(rows) - 1,
		Errors:    []models.ImportValidationError{},
		Questions: []models.Question{},
	}

	for rowIndex, row := range rows[1:] {
		rowNum := rowIndex + 2 // 1-based, after the header
		question, rowErrors := s.parseRow(row, headerMap, rowNum)
		if len(rowErrors) > 0 {
			result.Errors = append(result.Errors, rowErrors...)
			result.ErrorCount++
		} else {
			result.Questions = append(result.Questions, question)
			result.SuccessCount++
		}
		result.ProcessedRows++
	}

	s.logger.InfoContext(ctx, "sheet import completed",
		"format", format,
		"total_rows", result.TotalRows,
		"success_count", result.SuccessCount,
		"error_count", result.ErrorCount)
	return result, nil
}

// parseRow turns one sheet row into a question. Only the row-representable
// types are accepted here; richer types travel as JSON documents.
func (s *importExportService) parseRow(row []string, headerMap map[string]int, rowNum int) (models.Question, []models.ImportValidationError) {
	var errs []models.ImportValidationError

	cell := func(column string) string {
		idx, ok := headerMap[column]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	qType := models.QuestionType(strings.ToLower(cell("question_type")))
	text := cell("question_text")
	answer := cell("correct_answer")

	if text == "" {
		errs = append(errs, models.ImportValidationError{
			Row: rowNum, Column: "question_text", Message: "question text is required",
		})
	}

	marks := 1.0
	if raw := cell("marks"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 {
			errs = append(errs, models.ImportValidationError{
				Row: rowNum, Column: "marks", Message: "marks must be a positive number", Value: raw,
			})
		} else {
			marks = parsed
		}
	}

	id := uuid.NewString()
	question := models.Question{
		ID:          id,
		Type:        qType,
		Prompt:      text,
		Explanation: cell("explanation"),
		Marks:       marks,
	}

	switch qType {
	case models.MCQSingle, models.MCQMultiple, models.Poll:
		options, letterToID := rowOptions(id, cell)
		if len(options) < 2 {
			errs = append(errs, models.ImportValidationError{
				Row: rowNum, Column: "option_a", Message: "choice questions need at least 2 options",
			})
			break
		}
		switch qType {
		case models.MCQSingle:
			correctID, ok := letterToID[strings.ToLower(answer)]
			if !ok {
				errs = append(errs, models.ImportValidationError{
					Row: rowNum, Column: "correct_answer", Message: "correct answer must be an option letter (a-d)", Value: answer,
				})
				break
			}
			question.Payload = models.ChoicePayload{Options: options, CorrectOption: correctID}
		case models.MCQMultiple:
			var correct []string
			for _, letter := range strings.Split(answer, ",") {
				correctID, ok := letterToID[strings.ToLower(strings.TrimSpace(letter))]
				if !ok {
					errs = append(errs, models.ImportValidationError{
						Row: rowNum, Column: "correct_answer", Message: "correct answers must be option letters (a-d)", Value: answer,
					})
					correct = nil
					break
				}
				correct = append(correct, correctID)
			}
			if correct != nil {
				question.Payload = models.MultiChoicePayload{Options: options, CorrectOptions: correct}
			}
		case models.Poll:
			question.Payload = models.PollPayload{Options: options}
		}

	case models.TrueFalse:
		parsed, err := strconv.ParseBool(strings.ToLower(answer))
		if err != nil {
			errs = append(errs, models.ImportValidationError{
				Row: rowNum, Column: "correct_answer", Message: "correct answer must be true or false", Value: answer,
			})
			break
		}
		question.Payload = models.TrueFalsePayload{CorrectAnswer: parsed}

	case models.FillBlanks:
		var answers []string
		for _, a := range strings.Split(answer, ",") {
			if trimmed := strings.TrimSpace(a); trimmed != "" {
				answers = append(answers, trimmed)
			}
		}
		question.Payload = models.FillBlanksPayload{Answers: answers}

	case models.CodeOutput:
		// question_text carries the code snippet for this type; the prompt
		// is allowed to be empty
		question.Prompt = ""
		question.Payload = models.CodeOutputPayload{CodeSnippet: text, CorrectAnswer: answer}

	case models.Essay:
		question.Payload = models.EssayPayload{}

	case models.Paragraph:
		question.Payload = models.ParagraphPayload{}

	default:
		errs = append(errs, models.ImportValidationError{
			Row: rowNum, Column: "question_type", Message: "question type not supported for sheet import", Value: string(qType),
		})
	}

	if len(errs) > 0 {
		return models.Question{}, errs
	}

	if err := s.validator.Question().Validate(question); err != nil {
		return models.Question{}, []models.ImportValidationError{{
			Row: rowNum, Column: "question_text", Message: err.Error(),
		}}
	}
	return question, nil
}

func rowOptions(questionID string, cell func(string) string) ([]models.Option, map[string]string) {
	letters := []string{"a", "b", "c", "d"}
	var options []models.Option
	letterToID := make(map[string]string)
	for i, letter := range letters {
		text := cell("option_" + letter)
		if text == "" {
			continue
		}
		id := fmt.Sprintf("%s-opt-%d", questionID, i+1)
		options = append(options, models.Option{ID: id, Text: text})
		letterToID[letter] = id
	}
	return options, letterToID
}

// ===== EXPORT OPERATIONS =====

func (s *importExportService) ExportQuestionsToCSV(ctx context.Context, questions []models.Question) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(sheetColumns); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, q := range questions {
		if err := w.Write(questionToRow(q)); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *importExportService) ExportQuestionsToExcel(ctx context.Context, questions []models.Question) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for col, header := range sheetColumns {
		cellRef, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to build cell reference: %w", err)
		}
		if err := f.SetCellValue(sheet, cellRef, header); err != nil {
			return nil, fmt.Errorf("failed to write Excel header: %w", err)
		}
	}

	for rowIdx, q := range questions {
		for col, value := range questionToRow(q) {
			cellRef, err := excelize.CoordinatesToCellName(col+1, rowIdx+2)
			if err != nil {
				return nil, fmt.Errorf("failed to build cell reference: %w", err)
			}
			if err := f.SetCellValue(sheet, cellRef, value); err != nil {
				return nil, fmt.Errorf("failed to write Excel row: %w", err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

// questionToRow flattens a question into the sheet layout. Types that do not
// fit the layout export their prompt and marks only.
func questionToRow(q models.Question) []string {
	row := make([]string, len(sheetColumns))
	row[0] = string(q.Type)
	row[1] = q.Prompt
	row[7] = strconv.FormatFloat(q.Marks, 'f', -1, 64)
	row[8] = q.Explanation

	letters := []string{"a", "b", "c", "d"}

	fillOptions := func(options []models.Option) map[string]string {
		idToLetter := make(map[string]string)
		for i, opt := range options {
			if i >= len(letters) {
				break
			}
			row[2+i] = opt.Text
			idToLetter[opt.ID] = letters[i]
		}
		return idToLetter
	}

	switch p := q.Payload.(type) {
	case models.ChoicePayload:
		idToLetter := fillOptions(p.Options)
		row[6] = idToLetter[p.CorrectOption]
	case models.MultiChoicePayload:
		idToLetter := fillOptions(p.Options)
		var correct []string
		for _, id := range p.CorrectOptions {
			if letter, ok := idToLetter[id]; ok {
				correct = append(correct, letter)
			}
		}
		row[6] = strings.Join(correct, ",")
	case models.PollPayload:
		fillOptions(p.Options)
	case models.TrueFalsePayload:
		row[6] = strconv.FormatBool(p.CorrectAnswer)
	case models.FillBlanksPayload:
		row[6] = strings.Join(p.Answers, ",")
	case models.CodeOutputPayload:
		row[1] = p.CodeSnippet
		row[6] = p.CorrectAnswer
	}
	return row
}
