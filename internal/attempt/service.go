// Package attempt grades quiz submissions and folds the outcome into the
// learner's XP, level, streak and reading progress in one transaction.
package attempt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/bookquest/internal/catalog"
	"github.com/abhisek/bookquest/internal/grading"
	"github.com/abhisek/bookquest/internal/logger"
	"github.com/abhisek/bookquest/internal/progression"
	"github.com/abhisek/bookquest/internal/reading"
	"github.com/abhisek/bookquest/internal/store"
	"github.com/abhisek/bookquest/internal/xp"
)

// ErrNotFound reports a missing quiz, chapter, book or user. It matches
// store.ErrNotFound as well.
var ErrNotFound = fmt.Errorf("attempt: %w", store.ErrNotFound)

// TxRunner runs fn inside one store transaction.
type TxRunner interface {
	InTx(ctx context.Context, fn func(store.Repos) error) error
}

// QuestionResult is the grade of one submitted question.
type QuestionResult struct {
	QuestionID int64 `json:"question_id"`
	Correct    bool  `json:"correct"`
}

// Result summarizes a graded submission.
type Result struct {
	AttemptRef      string           `json:"attempt_ref"`
	Total           int              `json:"total"`
	Correct         int              `json:"correct"`
	IsPerfect       bool             `json:"is_perfect"`
	XPEarned        int              `json:"xp_earned"`
	CompletionXP    int              `json:"completion_xp"`
	QuestionResults []QuestionResult `json:"question_results"`
	LeveledUp       bool             `json:"leveled_up"`
	NewLevel        int              `json:"new_level"`
	LevelsGained    []int            `json:"levels_gained"`
	Streak          int              `json:"streak"`
	BookCompleted   bool             `json:"book_completed"`
}

// Service orchestrates grading, XP, progression and reading progress.
type Service struct {
	tx           TxRunner
	calc         *xp.Calculator
	now          func() time.Time
	newRef       func() string
	snapshotKeep int
	log          *logger.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source for attempts, streak dates and
// reading progress.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithSnapshotKeep bounds the progression snapshots kept per user; 0 keeps
// all of them.
func WithSnapshotKeep(n int) Option {
	return func(s *Service) { s.snapshotKeep = n }
}

// WithRefGenerator overrides how attempt references are minted.
func WithRefGenerator(fn func() string) Option {
	return func(s *Service) { s.newRef = fn }
}

// NewService creates a Service using the given XP rules.
func NewService(tx TxRunner, cfg xp.Config, opts ...Option) *Service {
	s := &Service{
		tx:     tx,
		calc:   xp.NewCalculator(cfg),
		now:    time.Now,
		newRef: func() string { return uuid.NewString() },
		log:    logger.Nop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Submit grades subs against the quiz and applies the outcome to the user.
// Submissions naming questions outside the quiz, and repeated answers to a
// question already graded, are stored but not graded.
// Nothing is persisted unless every write succeeds.
func (s *Service) Submit(ctx context.Context, userID, quizID int64, subs []grading.Submission) (*Result, error) {
	started := s.now()
	engine := progression.NewEngine(progression.WithClock(s.now))
	tracker := reading.NewTracker(s.now)

	var res *Result
	err := s.tx.InTx(ctx, func(r store.Repos) error {
		quiz, chapter, book, err := loadQuiz(ctx, r.Catalog(), quizID)
		if err != nil {
			return err
		}
		user, err := r.Users().Get(ctx, userID)
		if err != nil {
			return notFound(err, "user %d", userID)
		}

		res = &Result{Total: len(quiz.Questions), QuestionResults: []QuestionResult{}}
		answers := make([]store.AnswerRecord, 0, len(subs))
		graded := make(map[int64]bool, len(quiz.Questions))
		for _, sub := range subs {
			raw, err := json.Marshal(sub.Raw())
			if err != nil {
				return fmt.Errorf("encode answer to question %d: %w", sub.QuestionID, err)
			}
			ans := store.AnswerRecord{QuestionID: sub.QuestionID, DeclaredType: sub.Type, Payload: raw}

			if q, ok := quiz.QuestionByID(sub.QuestionID); ok && !graded[q.ID] {
				graded[q.ID] = true
				correct := grading.Grade(*q, grading.PayloadFor(sub))
				ans.IsCorrect = &correct
				res.QuestionResults = append(res.QuestionResults, QuestionResult{QuestionID: q.ID, Correct: correct})
				if correct {
					res.Correct++
				}
			}
			answers = append(answers, ans)
		}
		res.IsPerfect = res.Total > 0 && res.Correct == res.Total

		// XP looks at the streak before the engine moves it.
		stats := user.Stats
		res.XPEarned = s.calc.Compute(*quiz, book, res.IsPerfect, stats.ReadingStreak)
		applied := engine.Apply(&stats, res.IsPerfect, res.XPEarned)
		levels := applied.LevelsGained

		if res.IsPerfect {
			completed, err := s.advanceReading(ctx, r.Progress(), tracker, userID, chapter, book)
			if err != nil {
				return err
			}
			if completed {
				res.BookCompleted = true
				res.CompletionXP = book.CompletionXP
				granted := engine.Grant(&stats, book.CompletionXP)
				levels = append(levels, granted.LevelsGained...)
			}
		}

		res.LevelsGained = levels
		res.LeveledUp = len(levels) > 0
		res.NewLevel = stats.Level
		res.Streak = stats.ReadingStreak

		if err := r.Users().UpdateStats(ctx, userID, stats); err != nil {
			return err
		}

		rec := &store.AttemptRecord{
			Ref:              s.newRef(),
			UserID:           userID,
			QuizID:           quiz.ID,
			TotalQuestions:   res.Total,
			CorrectQuestions: res.Correct,
			IsPerfect:        res.IsPerfect,
			ScoreEarned:      res.XPEarned,
			StartedAt:        started,
			FinishedAt:       s.now(),
			Answers:          answers,
		}
		if err := r.Attempts().Create(ctx, rec); err != nil {
			return err
		}
		res.AttemptRef = rec.Ref

		return s.snapshot(ctx, r, userID, rec, stats)
	})
	if err != nil {
		s.log.Warn("submission rolled back", "user_id", userID, "quiz_id", quizID, "error", err)
		return nil, fmt.Errorf("submit quiz %d: %w", quizID, err)
	}

	s.log.Info("quiz graded",
		"user_id", userID, "quiz_id", quizID, "attempt", res.AttemptRef,
		"correct", res.Correct, "total", res.Total, "perfect", res.IsPerfect,
		"xp", res.XPEarned, "completion_xp", res.CompletionXP,
		"level", res.NewLevel, "streak", res.Streak)
	return res, nil
}

func loadQuiz(ctx context.Context, cat store.CatalogRepo, quizID int64) (*catalog.Quiz, *catalog.Chapter, *catalog.Book, error) {
	quiz, err := cat.Quiz(ctx, quizID)
	if err != nil {
		return nil, nil, nil, notFound(err, "quiz %d", quizID)
	}
	chapter, err := cat.Chapter(ctx, quiz.ChapterID)
	if err != nil {
		return nil, nil, nil, notFound(err, "chapter %d", quiz.ChapterID)
	}
	book, err := cat.Book(ctx, chapter.BookID)
	if err != nil {
		return nil, nil, nil, notFound(err, "book %d", chapter.BookID)
	}
	return quiz, chapter, book, nil
}

// advanceReading moves the user's progress in the book forward. Users who
// never started the book have no row and nothing changes.
func (s *Service) advanceReading(ctx context.Context, repo store.ProgressRepo, tracker *reading.Tracker,
	userID int64, chapter *catalog.Chapter, book *catalog.Book) (bool, error) {
	p, err := repo.Get(ctx, userID, book.ID)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	out := tracker.AdvanceOnPerfectQuiz(p, chapter.Number, book.TotalChapters)
	if err := repo.Save(ctx, p); err != nil {
		return false, err
	}
	return out.BookCompleted, nil
}

func (s *Service) snapshot(ctx context.Context, r store.Repos, userID int64, rec *store.AttemptRecord, stats progression.Stats) error {
	progress, err := r.Progress().ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	done := 0
	for _, p := range progress {
		if p.Completed() {
			done++
		}
	}
	snap := &store.Snapshot{
		UserID:    userID,
		Sequence:  rec.ID,
		Timestamp: rec.FinishedAt,
		Data: store.SnapshotData{
			AttemptRef:    rec.Ref,
			Level:         stats.Level,
			CurrentXP:     stats.CurrentXP,
			TotalXP:       stats.TotalXP,
			ReadingStreak: stats.ReadingStreak,
			BooksComplete: done,
		},
	}
	if err := r.Snapshots().Save(ctx, snap); err != nil {
		return err
	}
	if s.snapshotKeep > 0 {
		return r.Snapshots().Prune(ctx, userID, s.snapshotKeep)
	}
	return nil
}

// History returns the user's most recent attempts, newest first. limit <= 0
// returns all of them.
func (s *Service) History(ctx context.Context, userID int64, limit int) ([]store.AttemptRecord, error) {
	var out []store.AttemptRecord
	err := s.tx.InTx(ctx, func(r store.Repos) error {
		if _, err := r.Users().Get(ctx, userID); err != nil {
			return notFound(err, "user %d", userID)
		}
		list, err := r.Attempts().ListByUser(ctx, userID, store.QueryOpts{Limit: limit})
		if err != nil {
			return err
		}
		out = list
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("attempt history: %w", err)
	}
	return out, nil
}

// StartBook opens reading progress for the user in the book. An existing
// row is returned unchanged.
func (s *Service) StartBook(ctx context.Context, userID, bookID int64) (*reading.Progress, error) {
	var out *reading.Progress
	err := s.tx.InTx(ctx, func(r store.Repos) error {
		if _, err := r.Users().Get(ctx, userID); err != nil {
			return notFound(err, "user %d", userID)
		}
		if _, err := r.Catalog().Book(ctx, bookID); err != nil {
			return notFound(err, "book %d", bookID)
		}
		p, err := r.Progress().Get(ctx, userID, bookID)
		if err == nil {
			out = p
			return nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		fresh := reading.Start(userID, bookID, s.now())
		if err := r.Progress().Save(ctx, &fresh); err != nil {
			return err
		}
		out = &fresh
		s.log.Info("book started", "user_id", userID, "book_id", bookID)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("start book %d: %w", bookID, err)
	}
	return out, nil
}

// notFound maps store misses to ErrNotFound and passes other errors through.
func notFound(err error, format string, args ...any) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
	}
	return err
}
