package models

import (
	"encoding/json"
	"fmt"
)

type QuestionType string

const (
	MCQSingle   QuestionType = "mcq-single"
	MCQMultiple QuestionType = "mcq-multiple"
	TrueFalse   QuestionType = "true-false"
	Match       QuestionType = "match"
	Matrix      QuestionType = "matrix"
	Poll        QuestionType = "poll"
	Paragraph   QuestionType = "paragraph"
	FillBlanks  QuestionType = "fill-blanks"
	CodeOutput  QuestionType = "code-output"
	DragDrop    QuestionType = "drag-drop"
	ImageBased  QuestionType = "image-based"
	Audio       QuestionType = "audio"
	Video       QuestionType = "video"
	Essay       QuestionType = "essay"
	Ordering    QuestionType = "ordering"
)

// BlankMarker is the placeholder fill-blanks prompts must contain.
const BlankMarker = "___"

type DifficultyLevel string

const (
	DifficultyEasy   DifficultyLevel = "easy"
	DifficultyMedium DifficultyLevel = "medium"
	DifficultyHard   DifficultyLevel = "hard"
)

type Option struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type MatchPair struct {
	ID       string `json:"id"`
	Premise  string `json:"premise"`
	Response string `json:"response"`
}

type DropZone struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// QuestionPayload is the variant part of a Question. Exactly one concrete
// payload shape corresponds to each QuestionType, so "single correct option id"
// and "set of correct option ids" are distinct types rather than one loosely
// typed correctAnswer field.
type QuestionPayload interface {
	isQuestionPayload()
}

// ChoicePayload backs mcq-single: one correct option id.
type ChoicePayload struct {
	Options       []Option
	CorrectOption string
}

// MultiChoicePayload backs mcq-multiple: a set of correct option ids.
type MultiChoicePayload struct {
	Options        []Option
	CorrectOptions []string
}

// PollPayload carries options only; polls have no correct answer.
type PollPayload struct {
	Options []Option
}

type TrueFalsePayload struct {
	CorrectAnswer bool
}

type MatchPayload struct {
	Pairs []MatchPair
}

// OrderingPayload holds items in their canonical correct order; shuffling for
// presentation happens downstream.
type OrderingPayload struct {
	Items []string
}

// FillBlanksPayload answers align positionally to the ___ markers in the prompt.
type FillBlanksPayload struct {
	Answers []string
}

// MatrixPayload maps every row id to exactly one column id.
type MatrixPayload struct {
	Rows          []Option
	Cols          []Option
	CorrectAnswer map[string]string
}

// DragDropPayload maps item ids to zone ids. The mapping may be partial:
// unmapped items are distractors.
type DragDropPayload struct {
	Items          []Option
	Zones          []DropZone
	CorrectMapping map[string]string
}

type CodeOutputPayload struct {
	CodeSnippet   string
	CorrectAnswer string
}

type ImagePayload struct {
	CorrectAnswer string
}

// MediaPayload backs audio and video questions. A missing media URL means the
// student supplies the answer asset, so the correct answer is optional too.
type MediaPayload struct {
	CorrectAnswer string
}

// EssayPayload optionally carries a word limit in correctAnswer.
type EssayPayload struct {
	WordLimit *int
}

type ParagraphPayload struct{}

func (ChoicePayload) isQuestionPayload()      {}
func (MultiChoicePayload) isQuestionPayload() {}
func (PollPayload) isQuestionPayload()        {}
func (TrueFalsePayload) isQuestionPayload()   {}
func (MatchPayload) isQuestionPayload()       {}
func (OrderingPayload) isQuestionPayload()    {}
func (FillBlanksPayload) isQuestionPayload()  {}
func (MatrixPayload) isQuestionPayload()      {}
func (DragDropPayload) isQuestionPayload()    {}
func (CodeOutputPayload) isQuestionPayload()  {}
func (ImagePayload) isQuestionPayload()       {}
func (MediaPayload) isQuestionPayload()       {}
func (EssayPayload) isQuestionPayload()       {}
func (ParagraphPayload) isQuestionPayload()   {}

// Question is a tagged union keyed by Type. Common fields live on the struct;
// the variant fields live in Payload and are flattened into the wire shape by
// the custom JSON methods below.
type Question struct {
	ID           string
	Type         QuestionType
	Prompt       string
	Explanation  string
	TimerSeconds *int
	Marks        float64
	ImageURL     string
	AudioURL     string
	VideoURL     string
	Payload      QuestionPayload
}

// questionJSON is the flat wire shape the authoring UI and stored documents use.
type questionJSON struct {
	ID                string            `json:"id"`
	Type              QuestionType      `json:"type"`
	Prompt            string            `json:"question"`
	Explanation       string            `json:"explanation,omitempty"`
	Timer             *int              `json:"timer,omitempty"`
	Marks             float64           `json:"marks"`
	ImageURL          string            `json:"imageUrl,omitempty"`
	AudioURL          string            `json:"audioUrl,omitempty"`
	VideoURL          string            `json:"videoUrl,omitempty"`
	Options           []Option          `json:"options,omitempty"`
	CorrectAnswer     json.RawMessage   `json:"correctAnswer,omitempty"`
	MatchPairs        []MatchPair       `json:"matchPairs,omitempty"`
	OrderedItems      []string          `json:"orderedItems,omitempty"`
	FillBlanksAnswers []string          `json:"fillBlanksAnswers,omitempty"`
	MatrixOptions     *matrixOptions    `json:"matrixOptions,omitempty"`
	CodeSnippet       string            `json:"codeSnippet,omitempty"`
	DraggableItems    []Option          `json:"draggableItems,omitempty"`
	DropZones         []DropZone        `json:"dropZones,omitempty"`
	CorrectMapping    map[string]string `json:"correctMapping,omitempty"`
}

type matrixOptions struct {
	Rows []Option `json:"rows"`
	Cols []Option `json:"cols"`
}

func (q Question) MarshalJSON() ([]byte, error) {
	wire := questionJSON{
		ID:          q.ID,
		Type:        q.Type,
		Prompt:      q.Prompt,
		Explanation: q.Explanation,
		Timer:       q.TimerSeconds,
		Marks:       q.Marks,
		ImageURL:    q.ImageURL,
		AudioURL:    q.AudioURL,
		VideoURL:    q.VideoURL,
	}

	switch p := q.Payload.(type) {
	case ChoicePayload:
		wire.Options = p.Options
		if p.CorrectOption != "" {
			wire.CorrectAnswer = mustRaw(p.CorrectOption)
		}
	case MultiChoicePayload:
		wire.Options = p.Options
		wire.CorrectAnswer = mustRaw(p.CorrectOptions)
	case PollPayload:
		wire.Options = p.Options
	case TrueFalsePayload:
		wire.CorrectAnswer = mustRaw(p.CorrectAnswer)
	case MatchPayload:
		wire.MatchPairs = p.Pairs
	case OrderingPayload:
		wire.OrderedItems = p.Items
	case FillBlanksPayload:
		wire.FillBlanksAnswers = p.Answers
	case MatrixPayload:
		wire.MatrixOptions = &matrixOptions{Rows: p.Rows, Cols: p.Cols}
		wire.CorrectAnswer = mustRaw(p.CorrectAnswer)
	case DragDropPayload:
		wire.DraggableItems = p.Items
		wire.DropZones = p.Zones
		wire.CorrectMapping = p.CorrectMapping
	case CodeOutputPayload:
		wire.CodeSnippet = p.CodeSnippet
		wire.CorrectAnswer = mustRaw(p.CorrectAnswer)
	case ImagePayload:
		if p.CorrectAnswer != "" {
			wire.CorrectAnswer = mustRaw(p.CorrectAnswer)
		}
	case MediaPayload:
		if p.CorrectAnswer != "" {
			wire.CorrectAnswer = mustRaw(p.CorrectAnswer)
		}
	case EssayPayload:
		if p.WordLimit != nil {
			wire.CorrectAnswer = mustRaw(*p.WordLimit)
		}
	case ParagraphPayload, nil:
		// no variant fields
	default:
		return nil, fmt.Errorf("unsupported payload %T for question type %s", q.Payload, q.Type)
	}

	return json.Marshal(wire)
}

func (q *Question) UnmarshalJSON(data []byte) error {
	var wire questionJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	q.ID = wire.ID
	q.Type = wire.Type
	q.Prompt = wire.Prompt
	q.Explanation = wire.Explanation
	q.TimerSeconds = wire.Timer
	q.Marks = wire.Marks
	q.ImageURL = wire.ImageURL
	q.AudioURL = wire.AudioURL
	q.VideoURL = wire.VideoURL
	q.Payload = payloadFromWire(&wire)
	return nil
}

// payloadFromWire rebuilds the typed payload for the declared type. Decoding is
// tolerant: a correctAnswer of the wrong shape yields a zero field rather than
// a decode error, so the validator can report the specific violated condition.
func payloadFromWire(wire *questionJSON) QuestionPayload {
	switch wire.Type {
	case MCQSingle:
		p := ChoicePayload{Options: wire.Options}
		tryRaw(wire.CorrectAnswer, &p.CorrectOption)
		return p
	case MCQMultiple:
		p := MultiChoicePayload{Options: wire.Options}
		tryRaw(wire.CorrectAnswer, &p.CorrectOptions)
		return p
	case Poll:
		return PollPayload{Options: wire.Options}
	case TrueFalse:
		var b bool
		if !tryRaw(wire.CorrectAnswer, &b) {
			return nil
		}
		return TrueFalsePayload{CorrectAnswer: b}
	case Match:
		return MatchPayload{Pairs: wire.MatchPairs}
	case Ordering:
		return OrderingPayload{Items: wire.OrderedItems}
	case FillBlanks:
		return FillBlanksPayload{Answers: wire.FillBlanksAnswers}
	case Matrix:
		if wire.MatrixOptions == nil {
			return nil
		}
		p := MatrixPayload{Rows: wire.MatrixOptions.Rows, Cols: wire.MatrixOptions.Cols}
		tryRaw(wire.CorrectAnswer, &p.CorrectAnswer)
		return p
	case DragDrop:
		return DragDropPayload{
			Items:          wire.DraggableItems,
			Zones:          wire.DropZones,
			CorrectMapping: wire.CorrectMapping,
		}
	case CodeOutput:
		p := CodeOutputPayload{CodeSnippet: wire.CodeSnippet}
		tryRaw(wire.CorrectAnswer, &p.CorrectAnswer)
		return p
	case ImageBased:
		p := ImagePayload{}
		tryRaw(wire.CorrectAnswer, &p.CorrectAnswer)
		return p
	case Audio, Video:
		p := MediaPayload{}
		tryRaw(wire.CorrectAnswer, &p.CorrectAnswer)
		return p
	case Essay:
		var limit int
		if tryRaw(wire.CorrectAnswer, &limit) {
			return EssayPayload{WordLimit: &limit}
		}
		return EssayPayload{}
	case Paragraph:
		return ParagraphPayload{}
	default:
		return nil
	}
}

// Clone deep-copies the question so a duplicate shares no slices or maps with
// the original.
func (q Question) Clone() Question {
	out := q
	if q.TimerSeconds != nil {
		t := *q.TimerSeconds
		out.TimerSeconds = &t
	}

	switch p := q.Payload.(type) {
	case ChoicePayload:
		p.Options = cloneOptions(p.Options)
		out.Payload = p
	case MultiChoicePayload:
		p.Options = cloneOptions(p.Options)
		p.CorrectOptions = append([]string(nil), p.CorrectOptions...)
		out.Payload = p
	case PollPayload:
		p.Options = cloneOptions(p.Options)
		out.Payload = p
	case MatchPayload:
		p.Pairs = append([]MatchPair(nil), p.Pairs...)
		out.Payload = p
	case OrderingPayload:
		p.Items = append([]string(nil), p.Items...)
		out.Payload = p
	case FillBlanksPayload:
		p.Answers = append([]string(nil), p.Answers...)
		out.Payload = p
	case MatrixPayload:
		p.Rows = cloneOptions(p.Rows)
		p.Cols = cloneOptions(p.Cols)
		p.CorrectAnswer = cloneStringMap(p.CorrectAnswer)
		out.Payload = p
	case DragDropPayload:
		p.Items = cloneOptions(p.Items)
		p.Zones = append([]DropZone(nil), p.Zones...)
		p.CorrectMapping = cloneStringMap(p.CorrectMapping)
		out.Payload = p
	case EssayPayload:
		if p.WordLimit != nil {
			l := *p.WordLimit
			p.WordLimit = &l
		}
		out.Payload = p
	}
	return out
}

func cloneOptions(opts []Option) []Option {
	return append([]Option(nil), opts...)
}

func cloneStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func mustRaw(v interface{}) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("marshal question payload field: %v", err))
	}
	return data
}

func tryRaw(raw json.RawMessage, dest interface{}) bool {
	if len(raw) == 0 {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}
