package attempt

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/bookquest/internal/catalog"
	"github.com/abhisek/bookquest/internal/grading"
	"github.com/abhisek/bookquest/internal/progression"
	"github.com/abhisek/bookquest/internal/reading"
	"github.com/abhisek/bookquest/internal/store"
	"github.com/abhisek/bookquest/internal/xp"
)

var fixedNow = time.Date(2026, 5, 4, 18, 0, 0, 0, time.UTC)

func intp(n int) *int { return &n }

type fixture struct {
	store  *store.Store
	svc    *Service
	userID int64
	bookID int64
	quiz1  int64 // chapter 1: single choice + multi choice, book XP
	quiz2  int64 // chapter 2: one ordering question, XP override
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "attempt.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	ctx := context.Background()
	cat := s.Repos().Catalog()

	book := &catalog.Book{Title: "The Hobbit", Author: "Tolkien", TotalChapters: 2, ChapterXP: 120, CompletionXP: 500}
	require.NoError(t, cat.CreateBook(ctx, book))
	ch1 := &catalog.Chapter{BookID: book.ID, Number: 1, Title: "An Unexpected Party"}
	ch2 := &catalog.Chapter{BookID: book.ID, Number: 2, Title: "Roast Mutton"}
	require.NoError(t, cat.CreateChapter(ctx, ch1))
	require.NoError(t, cat.CreateChapter(ctx, ch2))

	q1 := &catalog.Quiz{ChapterID: ch1.ID, Title: "Chapter 1", IsActive: true, Questions: []catalog.Question{
		{ID: 1, Type: catalog.SingleChoice, Text: "Who knocks first?", OrderIndex: 1, Score: 1, Options: []catalog.Option{
			{ID: 10, Text: "Dwalin", IsCorrect: true},
			{ID: 11, Text: "Gandalf"},
		}},
		{ID: 2, Type: catalog.MultiChoice, Text: "Which are dwarves?", OrderIndex: 2, Score: 1, Options: []catalog.Option{
			{ID: 20, Text: "Beorn"},
			{ID: 21, Text: "Balin", IsCorrect: true},
			{ID: 22, Text: "Kili", IsCorrect: true},
		}},
	}}
	require.NoError(t, cat.CreateQuiz(ctx, q1))

	q2 := &catalog.Quiz{ChapterID: ch2.ID, Title: "Chapter 2", IsActive: true, QuizXP: intp(200), Questions: []catalog.Question{
		{ID: 3, Type: catalog.Ordering, Text: "Order the events", OrderIndex: 1, Score: 1, Options: []catalog.Option{
			{ID: 30, Text: "Trolls argue", OrderIndex: intp(2)},
			{ID: 31, Text: "Dawn", OrderIndex: intp(3)},
			{ID: 32, Text: "Bilbo caught", OrderIndex: intp(1)},
		}},
	}}
	require.NoError(t, cat.CreateQuiz(ctx, q2))

	u := &store.User{Username: "ada", Stats: progression.NewStats()}
	require.NoError(t, s.Repos().Users().Create(ctx, u))

	n := 0
	base := []Option{
		WithClock(func() time.Time { return fixedNow }),
		WithRefGenerator(func() string { n++; return fmt.Sprintf("ref-%d", n) }),
	}
	svc := NewService(s, xp.DefaultConfig(), append(base, opts...)...)
	return &fixture{store: s, svc: svc, userID: u.ID, bookID: book.ID, quiz1: q1.ID, quiz2: q2.ID}
}

func choice(questionID int64, typ catalog.QuestionType, ids ...int64) grading.Submission {
	return grading.Submission{QuestionID: questionID, Type: typ, SingleMulti: &grading.SingleMultiAnswer{SelectedOptionIDs: ids}}
}

func perfectQuiz1() []grading.Submission {
	return []grading.Submission{
		choice(1, catalog.SingleChoice, 10),
		choice(2, catalog.MultiChoice, 22, 21),
	}
}

func perfectQuiz2() []grading.Submission {
	return []grading.Submission{
		{QuestionID: 3, Type: catalog.Ordering, Ordering: &grading.OrderingAnswer{Ordering: []int64{32, 30, 31}}},
	}
}

func (f *fixture) user(t *testing.T) *store.User {
	t.Helper()
	u, err := f.store.Repos().Users().Get(context.Background(), f.userID)
	require.NoError(t, err)
	return u
}

func (f *fixture) setStreak(t *testing.T, streak int) {
	t.Helper()
	stats := f.user(t).Stats
	stats.ReadingStreak = streak
	require.NoError(t, f.store.Repos().Users().UpdateStats(context.Background(), f.userID, stats))
}

func TestSubmitPerfect(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Submit(context.Background(), f.userID, f.quiz1, perfectQuiz1())
	require.NoError(t, err)

	assert.Equal(t, "ref-1", res.AttemptRef)
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, 2, res.Correct)
	assert.True(t, res.IsPerfect)
	assert.Equal(t, 120, res.XPEarned, "book chapter XP, no bonus at streak 1")
	assert.Equal(t, []QuestionResult{{QuestionID: 1, Correct: true}, {QuestionID: 2, Correct: true}}, res.QuestionResults)
	assert.False(t, res.LeveledUp)
	assert.Equal(t, 1, res.NewLevel)
	assert.Equal(t, 1, res.Streak)

	u := f.user(t)
	assert.Equal(t, 120, u.Stats.CurrentXP)
	assert.Equal(t, 120, u.Stats.TotalXP)
	assert.Equal(t, 1, u.Stats.ReadingStreak)
	require.NotNil(t, u.Stats.LastReadingDate)
	assert.True(t, fixedNow.Equal(*u.Stats.LastReadingDate))
}

func TestSubmitImperfectResetsStreak(t *testing.T) {
	f := newFixture(t)
	f.setStreak(t, 4)

	res, err := f.svc.Submit(context.Background(), f.userID, f.quiz1, []grading.Submission{
		choice(1, catalog.SingleChoice, 11),
		choice(2, catalog.MultiChoice, 21, 22),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Correct)
	assert.False(t, res.IsPerfect)
	assert.Equal(t, 120, res.XPEarned, "base XP is awarded without the bonus")
	assert.Equal(t, 0, res.Streak)
	assert.Equal(t, 0, f.user(t).Stats.ReadingStreak)
}

func TestSubmitStreakBonus(t *testing.T) {
	tests := []struct {
		before int
		wantXP int
	}{
		{before: 2, wantXP: 170}, // reaches 3
		{before: 3, wantXP: 120}, // reaches 4
		{before: 5, wantXP: 170}, // reaches 6
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("streak %d", tt.before), func(t *testing.T) {
			f := newFixture(t)
			f.setStreak(t, tt.before)

			res, err := f.svc.Submit(context.Background(), f.userID, f.quiz1, perfectQuiz1())
			require.NoError(t, err)
			assert.Equal(t, tt.wantXP, res.XPEarned)
			assert.Equal(t, tt.before+1, res.Streak)
		})
	}
}

func TestSubmitUnknownQuestionsSkipped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	subs := append(perfectQuiz1(), choice(999, catalog.SingleChoice, 1))
	res, err := f.svc.Submit(ctx, f.userID, f.quiz1, subs)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Total)
	assert.True(t, res.IsPerfect)
	assert.Len(t, res.QuestionResults, 2)

	history, err := f.svc.History(ctx, f.userID, 1)
	require.NoError(t, err)
	require.Len(t, history, 1)
	answers, err := f.store.Repos().Attempts().Answers(ctx, history[0].ID)
	require.NoError(t, err)
	require.Len(t, answers, 3, "every submission is stored")
	assert.Equal(t, int64(999), answers[2].QuestionID)
	assert.Nil(t, answers[2].IsCorrect)
	assert.JSONEq(t, `{"selected_option_ids":[1]}`, string(answers[2].Payload))
}

func TestSubmitMissingAnswersIsNotPerfect(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Submit(context.Background(), f.userID, f.quiz1, []grading.Submission{
		choice(1, catalog.SingleChoice, 10),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, 1, res.Correct)
	assert.False(t, res.IsPerfect)
}

func TestSubmitRepeatedAnswerCountsOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.Submit(ctx, f.userID, f.quiz1, []grading.Submission{
		choice(1, catalog.SingleChoice, 10),
		choice(1, catalog.SingleChoice, 10),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, 1, res.Correct)
	assert.False(t, res.IsPerfect)
	assert.Equal(t, 0, res.Streak)
	assert.Equal(t, []QuestionResult{{QuestionID: 1, Correct: true}}, res.QuestionResults)

	history, err := f.svc.History(ctx, f.userID, 1)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 1, history[0].CorrectQuestions)
	assert.False(t, history[0].IsPerfect)

	answers, err := f.store.Repos().Attempts().Answers(ctx, history[0].ID)
	require.NoError(t, err)
	require.Len(t, answers, 2, "repeats are kept")
	require.NotNil(t, answers[0].IsCorrect)
	assert.True(t, *answers[0].IsCorrect)
	assert.Nil(t, answers[1].IsCorrect)
}

func TestSubmitFirstAnswerWins(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Submit(context.Background(), f.userID, f.quiz1, []grading.Submission{
		choice(1, catalog.SingleChoice, 11),
		choice(1, catalog.SingleChoice, 10),
		choice(2, catalog.MultiChoice, 21, 22),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Correct)
	assert.False(t, res.IsPerfect)
	assert.Equal(t, []QuestionResult{{QuestionID: 1, Correct: false}, {QuestionID: 2, Correct: true}}, res.QuestionResults)
}

func TestSubmitMissingPayloadGradesIncorrect(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Submit(context.Background(), f.userID, f.quiz2, []grading.Submission{
		{QuestionID: 3, Type: catalog.Ordering},
	})
	require.NoError(t, err)
	assert.Equal(t, []QuestionResult{{QuestionID: 3, Correct: false}}, res.QuestionResults)
}

func TestSubmitNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		userID int64
		quizID int64
	}{
		{"quiz", f.userID, 999},
		{"user", 999, f.quiz1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Submit(ctx, tt.userID, tt.quizID, perfectQuiz1())
			assert.ErrorIs(t, err, ErrNotFound)
			assert.ErrorIs(t, err, store.ErrNotFound)
		})
	}

	history, err := f.svc.History(ctx, f.userID, 0)
	require.NoError(t, err)
	assert.Empty(t, history)
	assert.Equal(t, 0, f.user(t).Stats.TotalXP)
}

func TestSubmitWithoutProgressDoesNotTrackReading(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Submit(ctx, f.userID, f.quiz1, perfectQuiz1())
	require.NoError(t, err)

	_, err = f.store.Repos().Progress().Get(ctx, f.userID, f.bookID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSubmitAdvancesAndCompletesBook(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.svc.StartBook(ctx, f.userID, f.bookID)
	require.NoError(t, err)
	assert.Equal(t, 1, p.CurrentChapter)
	assert.Equal(t, reading.StatusReading, p.Status)

	res, err := f.svc.Submit(ctx, f.userID, f.quiz1, perfectQuiz1())
	require.NoError(t, err)
	assert.False(t, res.BookCompleted)

	got, err := f.store.Repos().Progress().Get(ctx, f.userID, f.bookID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.ChaptersCompleted)
	assert.Equal(t, 2, got.CurrentChapter)

	// Chapter 2 finishes the book: 200 quiz XP, then 500 completion XP.
	// 120 + 200 + 500 = 820 crosses level 2 (cost 500) with 320 left.
	res, err = f.svc.Submit(ctx, f.userID, f.quiz2, perfectQuiz2())
	require.NoError(t, err)
	assert.True(t, res.BookCompleted)
	assert.Equal(t, 200, res.XPEarned)
	assert.Equal(t, 500, res.CompletionXP)
	assert.True(t, res.LeveledUp)
	assert.Equal(t, []int{2}, res.LevelsGained)
	assert.Equal(t, 2, res.NewLevel)

	got, err = f.store.Repos().Progress().Get(ctx, f.userID, f.bookID)
	require.NoError(t, err)
	assert.Equal(t, reading.StatusCompleted, got.Status)
	assert.Equal(t, 2, got.ChaptersCompleted)
	assert.Equal(t, 2, got.CurrentChapter, "never past the last chapter")
	require.NotNil(t, got.CompletedAt)

	u := f.user(t)
	assert.Equal(t, 820, u.Stats.TotalXP)
	assert.Equal(t, 320, u.Stats.CurrentXP)

	// Replaying the last chapter grants no second completion bonus.
	res, err = f.svc.Submit(ctx, f.userID, f.quiz2, perfectQuiz2())
	require.NoError(t, err)
	assert.False(t, res.BookCompleted)
	assert.Equal(t, 0, res.CompletionXP)
}

func TestSubmitMultiLevelJump(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Quiz with an award of LevelCost(1) + LevelCost(2).
	book := &catalog.Book{Title: "Big", Author: "X", TotalChapters: 1}
	require.NoError(t, f.store.Repos().Catalog().CreateBook(ctx, book))
	ch := &catalog.Chapter{BookID: book.ID, Number: 1, Title: "Only"}
	require.NoError(t, f.store.Repos().Catalog().CreateChapter(ctx, ch))
	big := &catalog.Quiz{ChapterID: ch.ID, Title: "Big", IsActive: true, QuizXP: intp(1914), Questions: []catalog.Question{
		{ID: 50, Type: catalog.SingleChoice, Text: "?", Options: []catalog.Option{{ID: 500, Text: "yes", IsCorrect: true}}},
	}}
	require.NoError(t, f.store.Repos().Catalog().CreateQuiz(ctx, big))

	res, err := f.svc.Submit(ctx, f.userID, big.ID, []grading.Submission{choice(50, catalog.SingleChoice, 500)})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, res.LevelsGained)
	assert.Equal(t, 3, res.NewLevel)
	assert.Equal(t, 0, f.user(t).Stats.CurrentXP)
}

var errBoom = errors.New("disk full")

type failingAttempts struct{ store.AttemptRepo }

func (failingAttempts) Create(context.Context, *store.AttemptRecord) error { return errBoom }

type failingRepos struct{ store.Repos }

func (r failingRepos) Attempts() store.AttemptRepo { return failingAttempts{r.Repos.Attempts()} }

type failingTx struct{ s *store.Store }

func (f failingTx) InTx(ctx context.Context, fn func(store.Repos) error) error {
	return f.s.InTx(ctx, func(r store.Repos) error { return fn(failingRepos{r}) })
}

func TestSubmitRollsBackOnPersistFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.StartBook(ctx, f.userID, f.bookID)
	require.NoError(t, err)

	svc := NewService(failingTx{f.store}, xp.DefaultConfig(), WithClock(func() time.Time { return fixedNow }))
	_, err = svc.Submit(ctx, f.userID, f.quiz1, perfectQuiz1())
	require.ErrorIs(t, err, errBoom)

	u := f.user(t)
	assert.Equal(t, 0, u.Stats.TotalXP)
	assert.Equal(t, 0, u.Stats.ReadingStreak)
	assert.Nil(t, u.Stats.LastReadingDate)

	p, err := f.store.Repos().Progress().Get(ctx, f.userID, f.bookID)
	require.NoError(t, err)
	assert.Equal(t, 0, p.ChaptersCompleted)

	history, err := f.svc.History(ctx, f.userID, 0)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestHistoryNewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Submit(ctx, f.userID, f.quiz1, perfectQuiz1())
	require.NoError(t, err)
	_, err = f.svc.Submit(ctx, f.userID, f.quiz2, perfectQuiz2())
	require.NoError(t, err)

	all, err := f.svc.History(ctx, f.userID, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "ref-2", all[0].Ref)
	assert.Equal(t, f.quiz2, all[0].QuizID)
	assert.Equal(t, 200, all[0].ScoreEarned)

	one, err := f.svc.History(ctx, f.userID, 1)
	require.NoError(t, err)
	assert.Len(t, one, 1)

	_, err = f.svc.History(ctx, 999, 0)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSnapshotsRecordedAndPruned(t *testing.T) {
	f := newFixture(t, WithSnapshotKeep(1))
	ctx := context.Background()

	_, err := f.svc.Submit(ctx, f.userID, f.quiz1, perfectQuiz1())
	require.NoError(t, err)
	_, err = f.svc.Submit(ctx, f.userID, f.quiz2, perfectQuiz2())
	require.NoError(t, err)

	snaps, err := f.store.Repos().Snapshots().List(ctx, f.userID, 0)
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, "ref-2", snaps[0].Data.AttemptRef)
	assert.Equal(t, 320, snaps[0].Data.TotalXP)
	assert.Equal(t, 2, snaps[0].Data.ReadingStreak)
}

func TestStartBookIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.StartBook(ctx, f.userID, f.bookID)
	require.NoError(t, err)
	second, err := f.svc.StartBook(ctx, f.userID, f.bookID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	_, err = f.svc.StartBook(ctx, f.userID, 999)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.svc.StartBook(ctx, 999, f.bookID)
	assert.ErrorIs(t, err, ErrNotFound)
}
