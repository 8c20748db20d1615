package seed

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/abhisek/bookquest/internal/catalog"
	"github.com/abhisek/bookquest/internal/logger"
	"github.com/abhisek/bookquest/internal/progression"
	"github.com/abhisek/bookquest/internal/store"
)

// TxRunner runs fn inside one store transaction.
type TxRunner interface {
	InTx(ctx context.Context, fn func(store.Repos) error) error
}

// Defaults fill in book rewards the seed file leaves out.
type Defaults struct {
	ChapterXP    int
	CompletionXP int
}

// Summary counts what an import created.
type Summary struct {
	Users     int
	Books     int
	Chapters  int
	Quizzes   int
	Questions int
}

// Importer writes parsed catalogs to the store.
type Importer struct {
	tx       TxRunner
	defaults Defaults
	log      *logger.Logger
}

// NewImporter creates an Importer. A nil logger discards output.
func NewImporter(tx TxRunner, defaults Defaults, log *logger.Logger) *Importer {
	if log == nil {
		log = logger.Nop()
	}
	return &Importer{tx: tx, defaults: defaults, log: log}
}

// Import creates every user and book of c in a single transaction. Users
// that already exist are left untouched; a failure anywhere rolls the whole
// import back.
func (im *Importer) Import(ctx context.Context, c *Catalog) (Summary, error) {
	var sum Summary
	err := im.tx.InTx(ctx, func(r store.Repos) error {
		sum = Summary{}
		for _, u := range c.Users {
			created, err := im.ensureUser(ctx, r.Users(), u)
			if err != nil {
				return err
			}
			if created {
				sum.Users++
			}
		}
		for _, b := range c.Books {
			if err := im.importBook(ctx, r.Catalog(), b, &sum); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Summary{}, fmt.Errorf("import catalog: %w", err)
	}
	im.log.Info("catalog imported",
		"users", sum.Users, "books", sum.Books, "chapters", sum.Chapters,
		"quizzes", sum.Quizzes, "questions", sum.Questions)
	return sum, nil
}

func (im *Importer) ensureUser(ctx context.Context, users store.UserRepo, u UserSpec) (bool, error) {
	_, err := users.GetByUsername(ctx, u.Username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return false, err
	}
	rec := &store.User{Username: u.Username, Email: u.Email, Stats: progression.NewStats()}
	if err := users.Create(ctx, rec); err != nil {
		return false, err
	}
	im.log.Debug("user created", "username", u.Username, "email", u.Email)
	return true, nil
}

func (im *Importer) importBook(ctx context.Context, repo store.CatalogRepo, b BookSpec, sum *Summary) error {
	book := BookFromSpec(b, im.defaults)
	if err := repo.CreateBook(ctx, &book); err != nil {
		return err
	}
	sum.Books++

	chapters := append([]ChapterSpec(nil), b.Chapters...)
	sort.SliceStable(chapters, func(i, j int) bool { return chapters[i].Number < chapters[j].Number })

	for _, chs := range chapters {
		ch := catalog.Chapter{
			ID:               chs.ID,
			BookID:           book.ID,
			Number:           chs.Number,
			Title:            chs.Title,
			EstimatedMinutes: chs.EstimatedMinutes,
		}
		if err := repo.CreateChapter(ctx, &ch); err != nil {
			return err
		}
		sum.Chapters++

		if chs.Quiz == nil {
			continue
		}
		quiz := QuizFromSpec(*chs.Quiz, ch.ID)
		if err := repo.CreateQuiz(ctx, &quiz); err != nil {
			return err
		}
		sum.Quizzes++
		sum.Questions += len(quiz.Questions)
	}
	im.log.Debug("book imported", "book_id", book.ID, "title", book.Title, "chapters", len(chapters))
	return nil
}

// BookFromSpec maps a seed book to the catalog type. TotalChapters is the
// number of chapters listed.
func BookFromSpec(b BookSpec, d Defaults) catalog.Book {
	book := catalog.Book{
		ID:            b.ID,
		Title:         b.Title,
		Author:        b.Author,
		Description:   b.Description,
		Genre:         b.Genre,
		Difficulty:    catalog.Difficulty(b.Difficulty),
		Language:      b.Language,
		TotalChapters: len(b.Chapters),
		ChapterXP:     d.ChapterXP,
		CompletionXP:  d.CompletionXP,
	}
	if book.Difficulty == "" {
		book.Difficulty = catalog.DifficultyIntermediate
	}
	if book.Language == "" {
		book.Language = "en"
	}
	if b.ChapterXP != nil {
		book.ChapterXP = *b.ChapterXP
	}
	if b.CompletionXP != nil {
		book.CompletionXP = *b.CompletionXP
	}
	return book
}

// QuizFromSpec maps a seed quiz to the catalog type. Questions keep their
// listed order as order index; quizzes are active unless set otherwise.
func QuizFromSpec(q QuizSpec, chapterID int64) catalog.Quiz {
	quiz := catalog.Quiz{
		ID:          q.ID,
		ChapterID:   chapterID,
		Title:       q.Title,
		Description: q.Description,
		IsActive:    q.Active == nil || *q.Active,
		QuizXP:      q.XP,
	}
	for i, qs := range q.Questions {
		qu := catalog.Question{
			ID:         qs.ID,
			Type:       catalog.QuestionType(qs.Type),
			Text:       qs.Text,
			OrderIndex: i + 1,
			Score:      qs.Score,
		}
		if qu.Score == 0 {
			qu.Score = 1
		}
		for _, opt := range qs.Options {
			qu.Options = append(qu.Options, catalog.Option{
				ID:         opt.ID,
				Text:       opt.Text,
				IsCorrect:  opt.Correct,
				OrderIndex: opt.Order,
				MatchKey:   opt.MatchKey,
			})
		}
		quiz.Questions = append(quiz.Questions, qu)
	}
	return quiz
}
