package draft

import "errors"

var (
	// ErrQuestionNotFound is returned by store operations referencing an id
	// that is not in the draft. The draft is left unchanged.
	ErrQuestionNotFound = errors.New("question not found in draft")

	// ErrUnknownQuestionType is returned when AddQuestion is asked for a type
	// the registry does not know.
	ErrUnknownQuestionType = errors.New("unknown question type")

	// ErrParse marks a document that is not syntactically valid JSON. The
	// import is aborted with no partial admission.
	ErrParse = errors.New("invalid JSON format")

	// ErrInvalidFormat marks well-formed JSON that is neither a questions
	// document nor a bare question array, or one with no questions.
	ErrInvalidFormat = errors.New("invalid document format")
)
