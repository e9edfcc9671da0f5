package draft

import (
	"encoding/json"
	"fmt"

	"github.com/quizforge/quiz-authoring-service/internal/models"
)

// Export serializes the full draft document, indented for human diffing.
// totalMarks is recomputed from the questions so the exported document never
// carries a stale total. Questions are written as-is; no trimming or
// normalization happens on export so a parse of the output restores the
// same questions.
func Export(d models.QuizDraft) ([]byte, error) {
	if d.Questions == nil {
		d.Questions = []models.Question{}
	}
	if d.Tags == nil {
		d.Tags = []string{}
	}
	d.TotalMarks = 0
	for _, q := range d.Questions {
		d.TotalMarks += q.Marks
	}

	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize draft: %w", err)
	}
	return data, nil
}

// ParseDocument decodes an exchange document into question candidates. It
// accepts either the {"questions": [...]} object form or a bare question
// array. Malformed JSON yields ErrParse; well-formed JSON of the wrong shape,
// or a document with no questions, yields ErrInvalidFormat. A question
// element that fails the typed decode is kept as a skeleton candidate so the
// validator can refuse it individually; per-question admission is BulkImport's
// job, not this function's.
func ParseDocument(data []byte) ([]models.Question, error) {
	var probe interface{}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	var raw []json.RawMessage
	switch probe.(type) {
	case map[string]interface{}:
		var doc struct {
			Questions []json.RawMessage `json:"questions"`
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
		raw = doc.Questions
	case []interface{}:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
	default:
		return nil, fmt.Errorf("%w: expected an object or array", ErrInvalidFormat)
	}

	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: no questions found", ErrInvalidFormat)
	}

	questions := make([]models.Question, 0, len(raw))
	for _, item := range raw {
		var q models.Question
		if err := json.Unmarshal(item, &q); err != nil {
			q = skeletonQuestion(item)
		}
		questions = append(questions, q)
	}
	return questions, nil
}

// skeletonQuestion salvages the id and type from an element whose typed
// decode failed, e.g. a string where marks should be. The skeleton flows into
// BulkImport and is rejected there with a validation reason instead of
// aborting the whole batch.
func skeletonQuestion(item json.RawMessage) models.Question {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(item, &fields); err != nil {
		return models.Question{}
	}

	var q models.Question
	if raw, ok := fields["id"]; ok {
		_ = json.Unmarshal(raw, &q.ID)
	}
	if raw, ok := fields["type"]; ok {
		_ = json.Unmarshal(raw, &q.Type)
	}
	return q
}

// Import parses the document and admits its questions through the store's
// bulk import. Document-level failures abort with no admission; per-question
// failures are reported in the result.
func (s *Store) Import(data []byte) (*ImportResult, error) {
	questions, err := ParseDocument(data)
	if err != nil {
		return nil, err
	}
	return s.BulkImport(questions), nil
}
