package catalog

// QuestionType identifies how a question is answered and graded.
type QuestionType string

const (
	SingleChoice QuestionType = "single_choice"
	MultiChoice  QuestionType = "multi_choice"
	Ordering     QuestionType = "ordering"
	Matching     QuestionType = "matching"
)

// AllQuestionTypes returns the closed set of supported question types.
func AllQuestionTypes() []QuestionType {
	return []QuestionType{SingleChoice, MultiChoice, Ordering, Matching}
}

// Valid reports whether t is one of the supported question types.
func (t QuestionType) Valid() bool {
	switch t {
	case SingleChoice, MultiChoice, Ordering, Matching:
		return true
	}
	return false
}

// DisplayName returns a human-readable label for the question type.
func (t QuestionType) DisplayName() string {
	switch t {
	case SingleChoice:
		return "Single choice"
	case MultiChoice:
		return "Multiple choice"
	case Ordering:
		return "Ordering"
	case Matching:
		return "Matching"
	default:
		return string(t)
	}
}

// Difficulty is the reading level of a book.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// Default per-book XP rewards.
const (
	DefaultChapterXP    = 100
	DefaultCompletionXP = 500
)

// Book is a readable title split into numbered chapters.
type Book struct {
	ID            int64
	Title         string
	Author        string
	Description   string
	Genre         string
	Difficulty    Difficulty
	Language      string
	TotalChapters int
	ChapterXP     int // XP for passing a chapter quiz when the quiz has no override
	CompletionXP  int // XP granted once when the book is completed
}

// Chapter is one numbered section of a book.
type Chapter struct {
	ID               int64
	BookID           int64
	Number           int
	Title            string
	EstimatedMinutes int
}

// Option is one answer choice of a question. Only the fields relevant to
// the owning question's type are meaningful.
type Option struct {
	ID         int64
	Text       string
	IsCorrect  bool    // single and multi choice
	OrderIndex *int    // ordering; nil sorts as 0
	MatchKey   *string // matching; options sharing a key form a pair
}

// Question is a single gradable item of a quiz.
type Question struct {
	ID         int64
	QuizID     int64
	Type       QuestionType
	Text       string
	OrderIndex int
	Score      int // stored but not used for aggregate scoring
	Options    []Option
}

// Quiz is the assessment attached to exactly one chapter.
type Quiz struct {
	ID          int64
	ChapterID   int64
	Title       string
	Description string
	IsActive    bool
	QuizXP      *int // explicit XP override; nil or 0 falls back to the book
	Questions   []Question
}

// QuestionByID returns the quiz question with the given id.
func (q *Quiz) QuestionByID(id int64) (*Question, bool) {
	for i := range q.Questions {
		if q.Questions[i].ID == id {
			return &q.Questions[i], true
		}
	}
	return nil, false
}
