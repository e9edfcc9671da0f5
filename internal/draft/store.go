// Package draft owns the in-memory state of one quiz editing session. All
// mutation goes through Store operations so the draft invariants (unique
// question ids, clamped cursor) are enforced at a single choke point.
package draft

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/quizforge/quiz-authoring-service/internal/models"
	"github.com/quizforge/quiz-authoring-service/internal/registry"
	"github.com/quizforge/quiz-authoring-service/internal/validator"
)

const defaultMarksPerQuestion = 10

// Metadata is the quiz-level portion of a draft, settable as one unit.
type Metadata struct {
	Title             string                 `json:"quizTitle"`
	Tags              []string               `json:"tags"`
	Description       string                 `json:"description"`
	ImageURL          string                 `json:"imageUrl"`
	Field             string                 `json:"field"`
	Subject           string                 `json:"subject"`
	DurationInSeconds int                    `json:"durationInSeconds"`
	IsLocked          bool                   `json:"isLocked"`
	LockPassword      string                 `json:"lockPassword"`
	DifficultyLevel   models.DifficultyLevel `json:"difficultyLevel"`
	Price             float64                `json:"price"`
}

// Rejection pairs a refused import candidate with the reason it was refused.
type Rejection struct {
	Candidate models.Question `json:"candidate"`
	Reason    string          `json:"reason"`
}

// ImportResult reports a bulk import. Admission is per-candidate: a batch can
// partially succeed.
type ImportResult struct {
	Admitted []models.Question `json:"admitted"`
	Rejected []Rejection       `json:"rejected"`
}

// Store is the single-writer state of one editing session. Operations run to
// completion before the next begins; the mutex serializes callers that share
// a session.
type Store struct {
	mu           sync.Mutex
	draft        models.QuizDraft
	currentIndex int
	validator    *validator.QuestionValidator
	newID        func() string
}

// NewStore creates an empty draft with the authoring defaults the editor
// starts from.
func NewStore(v *validator.QuestionValidator) *Store {
	return &Store{
		draft: models.QuizDraft{
			Tags:             []string{},
			Questions:        []models.Question{},
			EqualMarks:       true,
			MarksPerQuestion: defaultMarksPerQuestion,
		},
		currentIndex: -1,
		validator:    v,
		newID:        uuid.NewString,
	}
}

// Hydrate builds a store from a previously exported or persisted draft.
// Duplicate question ids in the stored document are regenerated rather than
// rejected; the count of fixed questions is returned so callers can report it.
func Hydrate(d models.QuizDraft, v *validator.QuestionValidator) (*Store, int) {
	s := NewStore(v)

	fixed := 0
	seen := make(map[string]bool, len(d.Questions))
	for i := range d.Questions {
		if d.Questions[i].ID == "" || seen[d.Questions[i].ID] {
			d.Questions[i].ID = s.newID()
			fixed++
		}
		seen[d.Questions[i].ID] = true
	}
	if d.Questions == nil {
		d.Questions = []models.Question{}
	}
	if d.Tags == nil {
		d.Tags = []string{}
	}
	if d.MarksPerQuestion <= 0 {
		d.MarksPerQuestion = defaultMarksPerQuestion
	}

	s.draft = d
	if len(d.Questions) > 0 {
		s.currentIndex = 0
	}
	return s, fixed
}

// AddQuestion appends a new question of the given type with type-appropriate
// default payload and a fresh unique id. The validator is deliberately not
// run: drafts may be transiently invalid while being edited.
func (s *Store) AddQuestion(qType models.QuestionType) (models.Question, error) {
	if !registry.IsKnown(qType) {
		return models.Question{}, fmt.Errorf("%w: %s", ErrUnknownQuestionType, qType)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	marks := float64(defaultMarksPerQuestion)
	if s.draft.EqualMarks {
		marks = s.draft.MarksPerQuestion
	}

	id := s.newID()
	q := models.Question{
		ID:      id,
		Type:    qType,
		Marks:   marks,
		Payload: defaultPayload(qType, id),
	}

	s.draft.Questions = append(s.draft.Questions, q)
	s.currentIndex = len(s.draft.Questions) - 1
	return q, nil
}

// UpdateQuestion replaces the fields of the question with the given id,
// preserving its id and type.
func (s *Store) UpdateQuestion(id string, updated models.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.draft.Questions {
		if s.draft.Questions[i].ID == id {
			updated.ID = id
			updated.Type = s.draft.Questions[i].Type
			s.draft.Questions[i] = updated
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrQuestionNotFound, id)
}

// DeleteQuestion removes the question and clamps the cursor.
func (s *Store) DeleteQuestion(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.draft.Questions {
		if s.draft.Questions[i].ID == id {
			s.draft.Questions = append(s.draft.Questions[:i], s.draft.Questions[i+1:]...)
			s.clampCursor()
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrQuestionNotFound, id)
}

// DuplicateQuestion deep-copies a question under a new id, marks its prompt
// as a copy, and appends it.
func (s *Store) DuplicateQuestion(id string) (models.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.draft.Questions {
		if s.draft.Questions[i].ID == id {
			dup := s.draft.Questions[i].Clone()
			dup.ID = s.newID()
			dup.Prompt = fmt.Sprintf("%s (Copy)", dup.Prompt)
			s.draft.Questions = append(s.draft.Questions, dup)
			return dup, nil
		}
	}
	return models.Question{}, fmt.Errorf("%w: %s", ErrQuestionNotFound, id)
}

// SetMarksMode switches marks distribution. Equal mode overwrites every
// question's marks with marksPerQuestion; custom mode leaves existing marks
// untouched.
func (s *Store) SetMarksMode(equal bool, marksPerQuestion float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.draft.EqualMarks = equal
	if marksPerQuestion > 0 {
		s.draft.MarksPerQuestion = marksPerQuestion
	}
	if equal {
		for i := range s.draft.Questions {
			s.draft.Questions[i].Marks = s.draft.MarksPerQuestion
		}
	}
}

// BulkImport admits candidates one at a time, in input order. A candidate is
// rejected when its id collides with the draft or with an earlier candidate in
// the batch, or when it fails validation; the rest of the batch is unaffected.
func (s *Store) BulkImport(candidates []models.Question) *ImportResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := &ImportResult{
		Admitted: []models.Question{},
		Rejected: []Rejection{},
	}

	existing := make(map[string]bool, len(s.draft.Questions))
	for _, q := range s.draft.Questions {
		existing[q.ID] = true
	}

	for _, candidate := range candidates {
		if existing[candidate.ID] {
			result.Rejected = append(result.Rejected, Rejection{
				Candidate: candidate,
				Reason:    fmt.Sprintf("Duplicate question ID: %s", candidate.ID),
			})
			continue
		}
		if err := s.validator.Validate(candidate); err != nil {
			result.Rejected = append(result.Rejected, Rejection{
				Candidate: candidate,
				Reason:    err.Error(),
			})
			continue
		}
		existing[candidate.ID] = true
		s.draft.Questions = append(s.draft.Questions, candidate)
		result.Admitted = append(result.Admitted, candidate)
	}

	if s.currentIndex == -1 && len(s.draft.Questions) > 0 {
		s.currentIndex = 0
	}
	return result
}

// SetMetadata replaces the quiz-level fields as one unit.
func (s *Store) SetMetadata(meta Metadata) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if meta.Tags == nil {
		meta.Tags = []string{}
	}
	s.draft.Title = meta.Title
	s.draft.Tags = meta.Tags
	s.draft.Description = meta.Description
	s.draft.ImageURL = meta.ImageURL
	s.draft.Field = meta.Field
	s.draft.Subject = meta.Subject
	s.draft.DurationInSeconds = meta.DurationInSeconds
	s.draft.IsLocked = meta.IsLocked
	s.draft.LockPassword = meta.LockPassword
	s.draft.DifficultyLevel = meta.DifficultyLevel
	s.draft.Price = meta.Price
}

// TotalMarks recomputes the marks sum on every call; it is never cached.
func (s *Store) TotalMarks() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalMarksLocked()
}

func (s *Store) totalMarksLocked() float64 {
	total := 0.0
	for _, q := range s.draft.Questions {
		total += q.Marks
	}
	return total
}

// Questions returns a copy of the question list.
func (s *Store) Questions() []models.Question {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Question, len(s.draft.Questions))
	copy(out, s.draft.Questions)
	return out
}

// Question looks up one question by id.
func (s *Store) Question(id string) (models.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, q := range s.draft.Questions {
		if q.ID == id {
			return q, nil
		}
	}
	return models.Question{}, fmt.Errorf("%w: %s", ErrQuestionNotFound, id)
}

// CurrentIndex returns the presentation cursor: within [0, len-1], or -1 when
// the draft is empty.
func (s *Store) CurrentIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentIndex
}

// SetCurrentIndex moves the cursor, clamping it into range.
func (s *Store) SetCurrentIndex(i int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentIndex = i
	s.clampCursor()
}

// Snapshot returns the draft with the derived total filled in. The copy shares
// no question slice with the store.
func (s *Store) Snapshot() models.QuizDraft {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.draft
	out.Questions = make([]models.Question, len(s.draft.Questions))
	copy(out.Questions, s.draft.Questions)
	out.Tags = append([]string(nil), s.draft.Tags...)
	out.TotalMarks = s.totalMarksLocked()
	return out
}

// CleanedSnapshot is Snapshot plus save-time trimming: blank options, match
// pairs, ordering items and fill-blanks answers are dropped from each
// question before the draft is handed to persistence.
func (s *Store) CleanedSnapshot() models.QuizDraft {
	out := s.Snapshot()
	for i := range out.Questions {
		out.Questions[i] = trimQuestion(out.Questions[i])
	}
	return out
}

func (s *Store) clampCursor() {
	if len(s.draft.Questions) == 0 {
		s.currentIndex = -1
		return
	}
	if s.currentIndex < 0 {
		s.currentIndex = 0
	}
	if s.currentIndex > len(s.draft.Questions)-1 {
		s.currentIndex = len(s.draft.Questions) - 1
	}
}

// defaultPayload seeds the editor scaffolding for each type: two empty
// options, two empty match pairs, one row and column, and so on.
func defaultPayload(qType models.QuestionType, id string) models.QuestionPayload {
	switch qType {
	case models.MCQSingle:
		return models.ChoicePayload{Options: seedOptions(id, "opt", 2)}
	case models.MCQMultiple:
		return models.MultiChoicePayload{
			Options:        seedOptions(id, "opt", 2),
			CorrectOptions: []string{},
		}
	case models.Poll:
		return models.PollPayload{Options: seedOptions(id, "opt", 2)}
	case models.TrueFalse:
		return models.TrueFalsePayload{CorrectAnswer: true}
	case models.Match:
		return models.MatchPayload{Pairs: []models.MatchPair{
			{ID: fmt.Sprintf("%s-pair-1", id)},
			{ID: fmt.Sprintf("%s-pair-2", id)},
		}}
	case models.Ordering:
		return models.OrderingPayload{Items: []string{"", ""}}
	case models.FillBlanks:
		return models.FillBlanksPayload{Answers: []string{}}
	case models.CodeOutput:
		return models.CodeOutputPayload{}
	case models.DragDrop:
		return models.DragDropPayload{
			Items:          []models.Option{{ID: fmt.Sprintf("%s-item-1", id)}},
			Zones:          []models.DropZone{{ID: fmt.Sprintf("%s-zone-1", id)}},
			CorrectMapping: map[string]string{},
		}
	case models.Matrix:
		return models.MatrixPayload{
			Rows:          []models.Option{{ID: fmt.Sprintf("%s-row-1", id)}},
			Cols:          []models.Option{{ID: fmt.Sprintf("%s-col-1", id)}},
			CorrectAnswer: map[string]string{},
		}
	case models.ImageBased:
		return models.ImagePayload{}
	case models.Audio, models.Video:
		return models.MediaPayload{}
	case models.Essay:
		return models.EssayPayload{}
	case models.Paragraph:
		return models.ParagraphPayload{}
	default:
		return nil
	}
}

func seedOptions(id, kind string, n int) []models.Option {
	opts := make([]models.Option, n)
	for i := range opts {
		opts[i] = models.Option{ID: fmt.Sprintf("%s-%s-%d", id, kind, i+1)}
	}
	return opts
}

func trimQuestion(q models.Question) models.Question {
	switch p := q.Payload.(type) {
	case models.ChoicePayload:
		p.Options = trimOptions(p.Options)
		q.Payload = p
	case models.MultiChoicePayload:
		p.Options = trimOptions(p.Options)
		q.Payload = p
	case models.PollPayload:
		p.Options = trimOptions(p.Options)
		q.Payload = p
	case models.MatchPayload:
		pairs := p.Pairs[:0:0]
		for _, pair := range p.Pairs {
			if strings.TrimSpace(pair.Premise) != "" && strings.TrimSpace(pair.Response) != "" {
				pairs = append(pairs, pair)
			}
		}
		p.Pairs = pairs
		q.Payload = p
	case models.OrderingPayload:
		items := p.Items[:0:0]
		for _, item := range p.Items {
			if strings.TrimSpace(item) != "" {
				items = append(items, item)
			}
		}
		p.Items = items
		q.Payload = p
	case models.FillBlanksPayload:
		answers := p.Answers[:0:0]
		for _, ans := range p.Answers {
			if strings.TrimSpace(ans) != "" {
				answers = append(answers, ans)
			}
		}
		p.Answers = answers
		q.Payload = p
	}
	return q
}

func trimOptions(opts []models.Option) []models.Option {
	out := opts[:0:0]
	for _, o := range opts {
		if strings.TrimSpace(o.Text) != "" {
			out = append(out, o)
		}
	}
	return out
}
