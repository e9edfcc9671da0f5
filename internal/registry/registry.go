// Package registry is the single catalog of question types and difficulty
// levels. The validator and the HTTP layer both consume it, so the lists are
// defined exactly once.
package registry

import "github.com/quizforge/quiz-authoring-service/internal/models"

// TypeInfo describes one question type for pickers and editor guidance.
type TypeInfo struct {
	ID    models.QuestionType `json:"id"`
	Name  string              `json:"name"`
	Icon  string              `json:"icon"`
	Guide string              `json:"guide"`
}

var questionTypes = []TypeInfo{
	{
		ID:    models.MCQSingle,
		Name:  "MCQ (Single)",
		Icon:  "🔘",
		Guide: "Multiple choice question with one correct answer. Students select the best option from the given choices.",
	},
	{
		ID:    models.MCQMultiple,
		Name:  "MCQ (Multiple)",
		Icon:  "☑️",
		Guide: "Multiple choice question with multiple correct answers. Students can select more than one option.",
	},
	{
		ID:    models.TrueFalse,
		Name:  "True/False",
		Icon:  "✅",
		Guide: "Simple true or false question. Students must determine if a statement is correct or incorrect.",
	},
	{
		ID:    models.Match,
		Name:  "Match Following",
		Icon:  "🔗",
		Guide: "Students match items from the left column with corresponding items in the right column.",
	},
	{
		ID:    models.Matrix,
		Name:  "Matrix",
		Icon:  "📊",
		Guide: "Grid-based question where students select answers in a matrix format with rows and columns.",
	},
	{
		ID:    models.Poll,
		Name:  "Poll",
		Icon:  "📈",
		Guide: "Survey-style question to gather opinions. No correct answer, just collects responses.",
	},
	{
		ID:    models.Paragraph,
		Name:  "Paragraph",
		Icon:  "📝",
		Guide: "Short answer question requiring a paragraph response. Manual grading required.",
	},
	{
		ID:    models.FillBlanks,
		Name:  "Fill Blanks",
		Icon:  "⬜",
		Guide: "Text with blank spaces that students must fill in. Use ___ to mark blanks.",
	},
	{
		ID:    models.CodeOutput,
		Name:  "Code Output",
		Icon:  "💻",
		Guide: "Students predict the output of a code snippet. Useful for programming assessments.",
	},
	{
		ID:    models.DragDrop,
		Name:  "Drag & Drop",
		Icon:  "🖱️",
		Guide: "Interactive question where students drag items to arrange them in correct order.",
	},
	{
		ID:    models.ImageBased,
		Name:  "Image Based",
		Icon:  "🖼️",
		Guide: "Question based on an image. Students analyze the image to answer the question.",
	},
	{
		ID:    models.Audio,
		Name:  "Audio",
		Icon:  "🎵",
		Guide: "Question based on an audio clip. Students listen and answer questions about the audio.",
	},
	{
		ID:    models.Video,
		Name:  "Video",
		Icon:  "🎬",
		Guide: "Question based on a video clip. Students watch and answer questions about the video.",
	},
	{
		ID:    models.Essay,
		Name:  "Essay",
		Icon:  "✍️",
		Guide: "Long-form essay question requiring detailed written response. Manual grading required.",
	},
	{
		ID:    models.Ordering,
		Name:  "Ordering",
		Icon:  "📋",
		Guide: "Students arrange items in the correct sequence or order.",
	},
}

var difficultyLevels = []models.DifficultyLevel{
	models.DifficultyEasy,
	models.DifficultyMedium,
	models.DifficultyHard,
}

var typeIndex = func() map[models.QuestionType]TypeInfo {
	idx := make(map[models.QuestionType]TypeInfo, len(questionTypes))
	for _, info := range questionTypes {
		idx[info.ID] = info
	}
	return idx
}()

// Types returns the catalog in display order.
func Types() []TypeInfo {
	out := make([]TypeInfo, len(questionTypes))
	copy(out, questionTypes)
	return out
}

// IsKnown reports whether id names a supported question type.
func IsKnown(id models.QuestionType) bool {
	_, ok := typeIndex[id]
	return ok
}

// Get looks up one type descriptor.
func Get(id models.QuestionType) (TypeInfo, bool) {
	info, ok := typeIndex[id]
	return info, ok
}

// DifficultyLevels returns the supported difficulty levels.
func DifficultyLevels() []models.DifficultyLevel {
	out := make([]models.DifficultyLevel, len(difficultyLevels))
	copy(out, difficultyLevels)
	return out
}

// IsKnownDifficulty reports whether level is a supported difficulty.
func IsKnownDifficulty(level models.DifficultyLevel) bool {
	for _, l := range difficultyLevels {
		if l == level {
			return true
		}
	}
	return false
}
