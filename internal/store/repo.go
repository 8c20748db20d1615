package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/abhisek/bookquest/internal/catalog"
	"github.com/abhisek/bookquest/internal/progression"
	"github.com/abhisek/bookquest/internal/reading"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// QueryOpts configures list queries with filtering and pagination.
type QueryOpts struct {
	Limit int       // max results (0 = unlimited)
	From  time.Time // finished_at >= From
	To    time.Time // finished_at <= To
}

// User is a learner account with its persisted progression state.
type User struct {
	ID        int64
	Username  string
	Email     string
	Stats     progression.Stats
	CreatedAt time.Time
}

// AnswerRecord is the stored answer to one submitted question. IsCorrect is
// nil when the question id did not belong to the quiz.
type AnswerRecord struct {
	ID           int64                `json:"id"`
	QuestionID   int64                `json:"question_id"`
	DeclaredType catalog.QuestionType `json:"type"`
	IsCorrect    *bool                `json:"is_correct"`
	Payload      json.RawMessage      `json:"payload"` // raw JSON as submitted
}

// AttemptRecord is one immutable graded attempt of a quiz.
type AttemptRecord struct {
	ID               int64          `json:"id"`
	Ref              string         `json:"ref"`
	UserID           int64          `json:"user_id"`
	QuizID           int64          `json:"quiz_id"`
	TotalQuestions   int            `json:"total_questions"`
	CorrectQuestions int            `json:"correct_questions"`
	IsPerfect        bool           `json:"is_perfect"`
	ScoreEarned      int            `json:"score_earned"`
	StartedAt        time.Time      `json:"started_at"`
	FinishedAt       time.Time      `json:"finished_at"`
	Answers          []AnswerRecord `json:"answers,omitempty"`
}

// CatalogRepo reads and writes books, chapters and quizzes.
type CatalogRepo interface {
	// CreateBook inserts a book. A non-zero ID is kept as is.
	CreateBook(ctx context.Context, b *catalog.Book) error

	// CreateChapter inserts a chapter. A non-zero ID is kept as is.
	CreateChapter(ctx context.Context, c *catalog.Chapter) error

	// CreateQuiz inserts a quiz with its questions and options. Non-zero
	// IDs are kept; zero IDs are filled in from the database.
	CreateQuiz(ctx context.Context, q *catalog.Quiz) error

	Book(ctx context.Context, id int64) (*catalog.Book, error)
	Chapter(ctx context.Context, id int64) (*catalog.Chapter, error)

	// Quiz loads the full aggregate: questions by order index, options by id.
	Quiz(ctx context.Context, id int64) (*catalog.Quiz, error)

	// ActiveQuizByChapter returns the chapter's quiz only if it is active.
	ActiveQuizByChapter(ctx context.Context, chapterID int64) (*catalog.Quiz, error)

	Books(ctx context.Context) ([]catalog.Book, error)
	ChaptersByBook(ctx context.Context, bookID int64) ([]catalog.Chapter, error)
}

// UserRepo manages learner accounts and their stats.
type UserRepo interface {
	Create(ctx context.Context, u *User) error
	Get(ctx context.Context, id int64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)

	// UpdateStats overwrites the progression columns of the user.
	UpdateStats(ctx context.Context, id int64, s progression.Stats) error
}

// ProgressRepo manages per-book reading progress.
type ProgressRepo interface {
	// Get returns the progress for (user, book), or ErrNotFound.
	Get(ctx context.Context, userID, bookID int64) (*reading.Progress, error)

	// Save inserts the row when p.ID is zero and updates it otherwise.
	Save(ctx context.Context, p *reading.Progress) error

	ListByUser(ctx context.Context, userID int64) ([]reading.Progress, error)
}

// AttemptRepo records graded attempts.
type AttemptRepo interface {
	// Create inserts the attempt and all of its answers.
	Create(ctx context.Context, a *AttemptRecord) error

	// ListByUser returns attempts newest first, without answers.
	ListByUser(ctx context.Context, userID int64, opts QueryOpts) ([]AttemptRecord, error)

	// Answers returns the stored answers of one attempt in submission order.
	Answers(ctx context.Context, attemptID int64) ([]AnswerRecord, error)
}

// Repos groups the repositories sharing one connection or transaction.
type Repos interface {
	Catalog() CatalogRepo
	Users() UserRepo
	Progress() ProgressRepo
	Attempts() AttemptRepo
	Snapshots() SnapshotRepo
}
