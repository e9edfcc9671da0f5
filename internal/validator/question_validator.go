package validator

import (
	"fmt"
	"strings"

	"github.com/quizforge/quiz-authoring-service/internal/models"
	"github.com/quizforge/quiz-authoring-service/internal/registry"
)

// QuestionValidator checks a candidate question against the structural rules
// of its declared type. Validation is a pure function of the question: id
// uniqueness across a draft is the draft store's job, not ours.
type QuestionValidator struct{}

func NewQuestionValidator() *QuestionValidator {
	return &QuestionValidator{}
}

// Validate runs the common-field checks, then dispatches on the question type.
// It short-circuits on the first unmet condition and returns an error whose
// message names that condition; nil means the question is structurally valid.
func (v *QuestionValidator) Validate(q models.Question) error {
	if q.ID == "" {
		return errReason("Question ID is required.")
	}
	if q.Type == "" {
		return errReason("Question type is required.")
	}
	if q.Marks <= 0 {
		return errReason("Question must have valid marks (greater than 0).")
	}
	if strings.TrimSpace(q.Prompt) == "" && q.Type != models.CodeOutput {
		return errReason("Question text cannot be empty.")
	}

	switch q.Type {
	case models.MCQSingle:
		return v.validateMCQSingle(q)
	case models.MCQMultiple:
		return v.validateMCQMultiple(q)
	case models.TrueFalse:
		return v.validateTrueFalse(q)
	case models.FillBlanks:
		return v.validateFillBlanks(q)
	case models.Ordering:
		return v.validateOrdering(q)
	case models.Matrix:
		return v.validateMatrix(q)
	case models.DragDrop:
		return v.validateDragDrop(q)
	case models.ImageBased:
		return v.validateImageBased(q)
	case models.CodeOutput:
		return v.validateCodeOutput(q)
	case models.Poll:
		return v.validatePoll(q)
	default:
		// Registry-known types without a dedicated branch (match, paragraph,
		// essay, audio, video) are structurally valid once the common checks
		// pass; audio/video may omit their media URL because the student
		// supplies the answer asset.
		if registry.IsKnown(q.Type) {
			return nil
		}
		return errReason(fmt.Sprintf("Unknown question type: %s", q.Type))
	}
}

// ValidateBatch validates every question, reporting the first failure with its
// position.
func (v *QuestionValidator) ValidateBatch(questions []models.Question) error {
	if len(questions) == 0 {
		return errReason("question batch cannot be empty")
	}
	for i, q := range questions {
		if err := v.Validate(q); err != nil {
			return fmt.Errorf("question %d: %w", i+1, err)
		}
	}
	return nil
}

func (v *QuestionValidator) validateMCQSingle(q models.Question) error {
	p, ok := q.Payload.(models.ChoicePayload)
	if !ok || p.Options == nil {
		return errReason("MCQ questions must have an options array.")
	}
	if countNonEmpty(p.Options) < 2 {
		return errReason("MCQ questions must have at least 2 non-empty options.")
	}
	if p.CorrectOption == "" {
		return errReason("You must select a correct answer for a single-choice MCQ.")
	}
	if !hasOptionID(p.Options, p.CorrectOption) {
		return errReason("The correct answer must match one of the option IDs.")
	}
	return nil
}

func (v *QuestionValidator) validateMCQMultiple(q models.Question) error {
	p, ok := q.Payload.(models.MultiChoicePayload)
	if !ok || p.Options == nil {
		return errReason("MCQ questions must have an options array.")
	}
	if countNonEmpty(p.Options) < 2 {
		return errReason("MCQ questions must have at least 2 non-empty options.")
	}
	if len(p.CorrectOptions) == 0 {
		return errReason("You must select at least one correct answer for a multiple-choice MCQ.")
	}
	for _, id := range p.CorrectOptions {
		if !hasOptionID(p.Options, id) {
			return errReason("All correct answers must match option IDs.")
		}
	}
	return nil
}

func (v *QuestionValidator) validateTrueFalse(q models.Question) error {
	if _, ok := q.Payload.(models.TrueFalsePayload); !ok {
		return errReason("True/False questions must have a boolean correct answer.")
	}
	return nil
}

func (v *QuestionValidator) validateFillBlanks(q models.Question) error {
	p, ok := q.Payload.(models.FillBlanksPayload)
	if !ok || len(p.Answers) == 0 {
		return errReason("Fill in the blanks questions must have at least one answer.")
	}
	// Marker count and answer count are deliberately not compared; only the
	// presence of a marker is required.
	if !strings.Contains(q.Prompt, models.BlankMarker) {
		return errReason("Fill in the blanks questions must have at least one blank (___) in the question.")
	}
	return nil
}

func (v *QuestionValidator) validateOrdering(q models.Question) error {
	p, ok := q.Payload.(models.OrderingPayload)
	if !ok || p.Items == nil {
		return errReason("Ordering questions must have an orderedItems array.")
	}
	if len(p.Items) < 2 || hasBlankItem(p.Items) {
		return errReason("You must provide at least 2 non-empty items for ordering.")
	}
	return nil
}

func (v *QuestionValidator) validateMatrix(q models.Question) error {
	p, ok := q.Payload.(models.MatrixPayload)
	if !ok || p.Rows == nil || p.Cols == nil {
		return errReason("Matrix questions must have rows and columns defined.")
	}
	if len(p.Rows) < 1 || len(p.Cols) < 1 {
		return errReason("Matrix must have at least one row and one column.")
	}
	if hasBlankOption(p.Rows) || hasBlankOption(p.Cols) {
		return errReason("All matrix rows and columns must have IDs and non-empty text.")
	}
	if p.CorrectAnswer == nil {
		return errReason("Matrix questions must have a correctAnswer mapping object.")
	}
	if len(p.CorrectAnswer) != len(p.Rows) {
		return errReason("Each row in the matrix must have exactly one correct answer.")
	}
	for rowID, colID := range p.CorrectAnswer {
		if !hasOptionID(p.Rows, rowID) || !hasOptionID(p.Cols, colID) {
			return errReason("Matrix correct answers must reference valid row and column IDs.")
		}
	}
	return nil
}

func (v *QuestionValidator) validateDragDrop(q models.Question) error {
	p, ok := q.Payload.(models.DragDropPayload)
	if !ok || p.Items == nil || p.Zones == nil {
		return errReason("Drag and drop questions must have draggableItems and dropZones arrays.")
	}
	if countFilledOptions(p.Items) < 1 || countFilledZones(p.Zones) < 1 {
		return errReason("You must have at least one valid draggable item and one drop zone.")
	}
	if p.CorrectMapping == nil {
		return errReason("Drag and drop questions must have a correctMapping object.")
	}
	// Partial mappings are fine: unmapped items are distractors. Mapped
	// entries must still reference declared items and zones.
	for itemID, zoneID := range p.CorrectMapping {
		if !hasOptionID(p.Items, itemID) || !hasZoneID(p.Zones, zoneID) {
			return errReason("Drag and drop mappings must reference valid item and zone IDs.")
		}
	}
	return nil
}

func (v *QuestionValidator) validateImageBased(q models.Question) error {
	if strings.TrimSpace(q.ImageURL) == "" {
		return errReason("Image-based questions must have an image URL.")
	}
	p, ok := q.Payload.(models.ImagePayload)
	if !ok || strings.TrimSpace(p.CorrectAnswer) == "" {
		return errReason("Image-based questions must have a correct answer.")
	}
	return nil
}

func (v *QuestionValidator) validateCodeOutput(q models.Question) error {
	p, ok := q.Payload.(models.CodeOutputPayload)
	if !ok || strings.TrimSpace(p.CodeSnippet) == "" {
		return errReason("Code output questions must have a code snippet.")
	}
	if strings.TrimSpace(p.CorrectAnswer) == "" {
		return errReason("Code output questions must have a correct answer.")
	}
	return nil
}

func (v *QuestionValidator) validatePoll(q models.Question) error {
	p, ok := q.Payload.(models.PollPayload)
	if !ok || p.Options == nil {
		return errReason("Poll questions must have an options array.")
	}
	if countNonEmpty(p.Options) < 2 {
		return errReason("Poll questions must have at least 2 non-empty options.")
	}
	return nil
}

// Blank-text entries are ignored when counting, not rejected; save-time
// trimming removes them.
func countNonEmpty(options []models.Option) int {
	n := 0
	for _, o := range options {
		if strings.TrimSpace(o.Text) != "" {
			n++
		}
	}
	return n
}

func countFilledOptions(items []models.Option) int {
	n := 0
	for _, i := range items {
		if i.ID != "" && strings.TrimSpace(i.Text) != "" {
			n++
		}
	}
	return n
}

func countFilledZones(zones []models.DropZone) int {
	n := 0
	for _, z := range zones {
		if z.ID != "" && strings.TrimSpace(z.Text) != "" {
			n++
		}
	}
	return n
}

func hasOptionID(options []models.Option, id string) bool {
	for _, o := range options {
		if o.ID == id {
			return true
		}
	}
	return false
}

func hasZoneID(zones []models.DropZone, id string) bool {
	for _, z := range zones {
		if z.ID == id {
			return true
		}
	}
	return false
}

func hasBlankItem(items []string) bool {
	for _, i := range items {
		if strings.TrimSpace(i) == "" {
			return true
		}
	}
	return false
}

func hasBlankOption(options []models.Option) bool {
	for _, o := range options {
		if o.ID == "" || strings.TrimSpace(o.Text) == "" {
			return true
		}
	}
	return false
}
