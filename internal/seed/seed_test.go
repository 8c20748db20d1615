package seed

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/bookquest/internal/catalog"
	"github.com/abhisek/bookquest/internal/store"
)

func loadTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", "catalog.yaml"))
	require.NoError(t, err)
	c, err := Parse("catalog.yaml", data)
	require.NoError(t, err)
	return c
}

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "seed.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestParseYAML(t *testing.T) {
	c := loadTestCatalog(t)
	require.Len(t, c.Users, 2)
	require.Len(t, c.Books, 1)
	book := c.Books[0]
	assert.Equal(t, "The Hobbit", book.Title)
	require.Len(t, book.Chapters, 2)
	require.NotNil(t, book.Chapters[1].Quiz)
	assert.Equal(t, 200, *book.Chapters[1].Quiz.XP)
	assert.Equal(t, "stone", *book.Chapters[1].Quiz.Questions[1].Options[0].MatchKey)
}

func TestParseJSON(t *testing.T) {
	doc := `{"books":[{"title":"Emma","author":"Jane Austen","chapters":[{"number":1,"title":"One"}]}]}`
	c, err := Parse("catalog.json", []byte(doc))
	require.NoError(t, err)
	assert.Equal(t, "Emma", c.Books[0].Title)
}

func TestParseRejectsUnknownFields(t *testing.T) {
	doc := `{"books":[{"title":"Emma","author":"Jane Austen","pages":400,"chapters":[{"number":1,"title":"One"}]}]}`
	_, err := Parse("catalog.json", []byte(doc))
	assert.Error(t, err)
}

func TestValidateProblems(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"no books", `users: [{username: ada}]`},
		{"missing author", `
books:
  - title: Emma
    chapters: [{number: 1, title: One}]`},
		{"bad question type", `
books:
  - title: Emma
    author: Jane Austen
    chapters:
      - number: 1
        title: One
        quiz:
          title: Q
          questions:
            - type: essay
              text: Discuss.
              options: [{text: anything}]`},
		{"duplicate chapter number", `
books:
  - title: Emma
    author: Jane Austen
    chapters:
      - {number: 1, title: One}
      - {number: 1, title: Again}`},
		{"single choice without correct option", `
books:
  - title: Emma
    author: Jane Austen
    chapters:
      - number: 1
        title: One
        quiz:
          title: Q
          questions:
            - type: single_choice
              text: Who?
              options: [{text: Emma}, {text: Harriet}]`},
		{"ordering option without order", `
books:
  - title: Emma
    author: Jane Austen
    chapters:
      - number: 1
        title: One
        quiz:
          title: Q
          questions:
            - type: ordering
              text: Order.
              options: [{text: A, order: 1}, {text: B}]`},
		{"duplicate option id", `
books:
  - title: Emma
    author: Jane Austen
    chapters:
      - number: 1
        title: One
        quiz:
          title: Q
          questions:
            - type: multi_choice
              text: Which?
              options: [{id: 5, text: A, correct: true}, {id: 5, text: B}]`},
		{"quiz xp above cap", `
books:
  - title: Emma
    author: Jane Austen
    chapters:
      - number: 1
        title: One
        quiz:
          title: Q
          xp: 40000000000000
          questions:
            - type: single_choice
              text: Who?
              options: [{text: Emma, correct: true}]`},
		{"completion xp above cap", `
books:
  - title: Emma
    author: Jane Austen
    completion_xp: 1000001
    chapters: [{number: 1, title: One}]`},
		{"bad email", `
users: [{username: ada, email: not-an-email}]
books:
  - title: Emma
    author: Jane Austen
    chapters: [{number: 1, title: One}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("catalog.yaml", []byte(tt.doc))
			var invalid *ErrInvalidCatalog
			require.True(t, errors.As(err, &invalid), "got %v", err)
			assert.NotEmpty(t, invalid.Problems)
		})
	}
}

func TestBookFromSpecDefaults(t *testing.T) {
	b := BookFromSpec(BookSpec{Title: "Emma", Chapters: make([]ChapterSpec, 3)}, Defaults{ChapterXP: 90, CompletionXP: 400})
	assert.Equal(t, 3, b.TotalChapters)
	assert.Equal(t, 90, b.ChapterXP)
	assert.Equal(t, 400, b.CompletionXP)
	assert.Equal(t, catalog.DifficultyIntermediate, b.Difficulty)
	assert.Equal(t, "en", b.Language)

	zero := 0
	b = BookFromSpec(BookSpec{ChapterXP: &zero}, Defaults{ChapterXP: 90})
	assert.Equal(t, 0, b.ChapterXP, "explicit zero is kept")
}

func TestQuizFromSpec(t *testing.T) {
	inactive := false
	q := QuizFromSpec(QuizSpec{
		Title:  "Q",
		Active: &inactive,
		Questions: []QuestionSpec{
			{Type: "single_choice", Text: "a", Options: []OptionSpec{{Text: "x", Correct: true}}},
			{Type: "multi_choice", Text: "b", Score: 3, Options: []OptionSpec{{Text: "y"}}},
		},
	}, 7)
	assert.Equal(t, int64(7), q.ChapterID)
	assert.False(t, q.IsActive)
	require.Len(t, q.Questions, 2)
	assert.Equal(t, 1, q.Questions[0].OrderIndex)
	assert.Equal(t, 1, q.Questions[0].Score)
	assert.Equal(t, 2, q.Questions[1].OrderIndex)
	assert.Equal(t, 3, q.Questions[1].Score)
	assert.True(t, q.Questions[0].Options[0].IsCorrect)
}

func TestImport(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	im := NewImporter(s, Defaults{ChapterXP: 100, CompletionXP: 500}, nil)

	sum, err := im.Import(ctx, loadTestCatalog(t))
	require.NoError(t, err)
	assert.Equal(t, Summary{Users: 2, Books: 1, Chapters: 2, Quizzes: 2, Questions: 4}, sum)

	repos := s.Repos()
	book, err := repos.Catalog().Book(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, book.TotalChapters)
	assert.Equal(t, 120, book.ChapterXP)

	quiz, err := repos.Catalog().Quiz(ctx, 1)
	require.NoError(t, err)
	require.Len(t, quiz.Questions, 2)
	assert.Equal(t, int64(1), quiz.Questions[0].ID)
	assert.Equal(t, catalog.MultiChoice, quiz.Questions[1].Type)
	assert.Equal(t, int64(10), quiz.Questions[0].Options[0].ID)

	u, err := repos.Users().GetByUsername(ctx, "ada")
	require.NoError(t, err)
	assert.Equal(t, 1, u.Stats.Level)
}

func TestImportKeepsExistingUsers(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	im := NewImporter(s, Defaults{}, nil)

	c := loadTestCatalog(t)
	_, err := im.Import(ctx, c)
	require.NoError(t, err)

	// Second run: the users already exist and are skipped.
	_, err = im.Import(ctx, &Catalog{Users: c.Users, Books: []BookSpec{{
		Title: "Emma", Author: "Jane Austen", Chapters: []ChapterSpec{{Number: 1, Title: "One"}},
	}}})
	require.NoError(t, err)

	books, err := s.Repos().Catalog().Books(ctx)
	require.NoError(t, err)
	assert.Len(t, books, 2)
}

func TestImportRollsBackOnFailure(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	im := NewImporter(s, Defaults{}, nil)

	_, err := im.Import(ctx, loadTestCatalog(t))
	require.NoError(t, err)

	// Book id 1 already exists, so the insert fails after the new user was
	// created; the user must not survive.
	_, err = im.Import(ctx, &Catalog{
		Users: []UserSpec{{Username: "linus"}},
		Books: []BookSpec{{ID: 1, Title: "Dup", Author: "X", Chapters: []ChapterSpec{{Number: 1, Title: "One"}}}},
	})
	require.Error(t, err)

	_, err = s.Repos().Users().GetByUsername(ctx, "linus")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
