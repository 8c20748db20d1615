package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/bookquest/internal/catalog"
)

// catalogRepo implements CatalogRepo with ent's SQL builders.
type catalogRepo struct {
	conn dialect.ExecQuerier
}

var bookColumns = []string{
	"id", "title", "author", "description", "genre", "difficulty",
	"language", "total_chapters", "chapter_xp", "completion_xp",
}

func (r *catalogRepo) CreateBook(ctx context.Context, b *catalog.Book) error {
	cols := append([]string{}, bookColumns[1:]...)
	vals := []any{
		b.Title, b.Author, b.Description, b.Genre, string(b.Difficulty),
		b.Language, b.TotalChapters, b.ChapterXP, b.CompletionXP,
	}
	if b.ID != 0 {
		cols = append([]string{}, bookColumns...)
		vals = append([]any{b.ID}, vals...)
	}
	ins := builder.Insert(booksTable).
		Columns(append(cols, "created_at")...).
		Values(append(vals, time.Now().UTC())...)
	id, err := insertID(ctx, r.conn, ins, b.ID)
	if err != nil {
		return fmt.Errorf("create book %q: %w", b.Title, err)
	}
	b.ID = id
	return nil
}

func (r *catalogRepo) CreateChapter(ctx context.Context, c *catalog.Chapter) error {
	cols := []string{"book_id", "number", "title", "estimated_minutes"}
	vals := []any{c.BookID, c.Number, c.Title, c.EstimatedMinutes}
	if c.ID != 0 {
		cols = append([]string{"id"}, cols...)
		vals = append([]any{c.ID}, vals...)
	}
	id, err := insertID(ctx, r.conn, builder.Insert(chaptersTable).Columns(cols...).Values(vals...), c.ID)
	if err != nil {
		return fmt.Errorf("create chapter %d of book %d: %w", c.Number, c.BookID, err)
	}
	c.ID = id
	return nil
}

func (r *catalogRepo) CreateQuiz(ctx context.Context, q *catalog.Quiz) error {
	cols := []string{"chapter_id", "title", "description", "is_active", "quiz_xp"}
	vals := []any{q.ChapterID, q.Title, q.Description, q.IsActive, nullInt(q.QuizXP)}
	if q.ID != 0 {
		cols = append([]string{"id"}, cols...)
		vals = append([]any{q.ID}, vals...)
	}
	id, err := insertID(ctx, r.conn, builder.Insert(quizzesTable).Columns(cols...).Values(vals...), q.ID)
	if err != nil {
		return fmt.Errorf("create quiz for chapter %d: %w", q.ChapterID, err)
	}
	q.ID = id

	for i := range q.Questions {
		qu := &q.Questions[i]
		qu.QuizID = q.ID
		if err := r.createQuestion(ctx, qu); err != nil {
			return err
		}
	}
	return nil
}

func (r *catalogRepo) createQuestion(ctx context.Context, qu *catalog.Question) error {
	cols := []string{"quiz_id", "type", "text", "order_index", "score"}
	vals := []any{qu.QuizID, string(qu.Type), qu.Text, qu.OrderIndex, qu.Score}
	if qu.ID != 0 {
		cols = append([]string{"id"}, cols...)
		vals = append([]any{qu.ID}, vals...)
	}
	id, err := insertID(ctx, r.conn, builder.Insert(questionsTable).Columns(cols...).Values(vals...), qu.ID)
	if err != nil {
		return fmt.Errorf("create question for quiz %d: %w", qu.QuizID, err)
	}
	qu.ID = id

	for i := range qu.Options {
		o := &qu.Options[i]
		cols := []string{"question_id", "text", "is_correct", "order_index", "match_key"}
		vals := []any{qu.ID, o.Text, o.IsCorrect, nullInt(o.OrderIndex), nullString(o.MatchKey)}
		if o.ID != 0 {
			cols = append([]string{"id"}, cols...)
			vals = append([]any{o.ID}, vals...)
		}
		id, err := insertID(ctx, r.conn, builder.Insert(optionsTable).Columns(cols...).Values(vals...), o.ID)
		if err != nil {
			return fmt.Errorf("create option for question %d: %w", qu.ID, err)
		}
		o.ID = id
	}
	return nil
}

func (r *catalogRepo) Book(ctx context.Context, id int64) (*catalog.Book, error) {
	books, err := r.books(ctx, entsql.EQ("id", id))
	if err != nil {
		return nil, fmt.Errorf("get book %d: %w", id, err)
	}
	if len(books) == 0 {
		return nil, fmt.Errorf("book %d: %w", id, ErrNotFound)
	}
	return &books[0], nil
}

func (r *catalogRepo) Books(ctx context.Context) ([]catalog.Book, error) {
	books, err := r.books(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

func (r *catalogRepo) books(ctx context.Context, where *entsql.Predicate) ([]catalog.Book, error) {
	sel := builder.Select(bookColumns...).From(entsql.Table(booksTable)).OrderBy("id")
	if where != nil {
		sel.Where(where)
	}
	var out []catalog.Book
	err := queryRows(ctx, r.conn, sel, func(rows *entsql.Rows) error {
		var (
			b          catalog.Book
			difficulty string
		)
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.Description, &b.Genre, &difficulty,
			&b.Language, &b.TotalChapters, &b.ChapterXP, &b.CompletionXP); err != nil {
			return err
		}
		b.Difficulty = catalog.Difficulty(difficulty)
		out = append(out, b)
		return nil
	})
	return out, err
}

var chapterColumns = []string{"id", "book_id", "number", "title", "estimated_minutes"}

func (r *catalogRepo) Chapter(ctx context.Context, id int64) (*catalog.Chapter, error) {
	chapters, err := r.chapters(ctx, entsql.EQ("id", id))
	if err != nil {
		return nil, fmt.Errorf("get chapter %d: %w", id, err)
	}
	if len(chapters) == 0 {
		return nil, fmt.Errorf("chapter %d: %w", id, ErrNotFound)
	}
	return &chapters[0], nil
}

func (r *catalogRepo) ChaptersByBook(ctx context.Context, bookID int64) ([]catalog.Chapter, error) {
	chapters, err := r.chapters(ctx, entsql.EQ("book_id", bookID))
	if err != nil {
		return nil, fmt.Errorf("list chapters of book %d: %w", bookID, err)
	}
	return chapters, nil
}

func (r *catalogRepo) chapters(ctx context.Context, where *entsql.Predicate) ([]catalog.Chapter, error) {
	sel := builder.Select(chapterColumns...).
		From(entsql.Table(chaptersTable)).
		Where(where).
		OrderBy("number")
	var out []catalog.Chapter
	err := queryRows(ctx, r.conn, sel, func(rows *entsql.Rows) error {
		var c catalog.Chapter
		if err := rows.Scan(&c.ID, &c.BookID, &c.Number, &c.Title, &c.EstimatedMinutes); err != nil {
			return err
		}
		out = append(out, c)
		return nil
	})
	return out, err
}

func (r *catalogRepo) Quiz(ctx context.Context, id int64) (*catalog.Quiz, error) {
	q, err := r.quiz(ctx, entsql.EQ("id", id))
	if err != nil {
		return nil, fmt.Errorf("quiz %d: %w", id, err)
	}
	return q, nil
}

func (r *catalogRepo) ActiveQuizByChapter(ctx context.Context, chapterID int64) (*catalog.Quiz, error) {
	q, err := r.quiz(ctx, entsql.And(entsql.EQ("chapter_id", chapterID), entsql.EQ("is_active", true)))
	if err != nil {
		return nil, fmt.Errorf("active quiz for chapter %d: %w", chapterID, err)
	}
	return q, nil
}

// quiz loads one quiz aggregate. Questions come back by order index and
// options by id, which is the stored option order.
func (r *catalogRepo) quiz(ctx context.Context, where *entsql.Predicate) (*catalog.Quiz, error) {
	sel := builder.Select("id", "chapter_id", "title", "description", "is_active", "quiz_xp").
		From(entsql.Table(quizzesTable)).
		Where(where).
		Limit(1)

	var found *catalog.Quiz
	err := queryRows(ctx, r.conn, sel, func(rows *entsql.Rows) error {
		var (
			q      catalog.Quiz
			quizXP sql.NullInt64
		)
		if err := rows.Scan(&q.ID, &q.ChapterID, &q.Title, &q.Description, &q.IsActive, &quizXP); err != nil {
			return err
		}
		q.QuizXP = intPtr(quizXP)
		found = &q
		return nil
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, ErrNotFound
	}

	questions, err := r.questions(ctx, found.ID)
	if err != nil {
		return nil, err
	}
	found.Questions = questions
	return found, nil
}

func (r *catalogRepo) questions(ctx context.Context, quizID int64) ([]catalog.Question, error) {
	sel := builder.Select("id", "quiz_id", "type", "text", "order_index", "score").
		From(entsql.Table(questionsTable)).
		Where(entsql.EQ("quiz_id", quizID)).
		OrderBy("order_index", "id")

	var out []catalog.Question
	index := make(map[int64]int)
	err := queryRows(ctx, r.conn, sel, func(rows *entsql.Rows) error {
		var (
			qu  catalog.Question
			typ string
		)
		if err := rows.Scan(&qu.ID, &qu.QuizID, &typ, &qu.Text, &qu.OrderIndex, &qu.Score); err != nil {
			return err
		}
		qu.Type = catalog.QuestionType(typ)
		index[qu.ID] = len(out)
		out = append(out, qu)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	if len(out) == 0 {
		return out, nil
	}

	ids := make([]any, 0, len(out))
	for _, qu := range out {
		ids = append(ids, qu.ID)
	}
	optSel := builder.Select("id", "question_id", "text", "is_correct", "order_index", "match_key").
		From(entsql.Table(optionsTable)).
		Where(entsql.In("question_id", ids...)).
		OrderBy("id")
	err = queryRows(ctx, r.conn, optSel, func(rows *entsql.Rows) error {
		var (
			o          catalog.Option
			questionID int64
			orderIndex sql.NullInt64
			matchKey   sql.NullString
		)
		if err := rows.Scan(&o.ID, &questionID, &o.Text, &o.IsCorrect, &orderIndex, &matchKey); err != nil {
			return err
		}
		o.OrderIndex = intPtr(orderIndex)
		o.MatchKey = stringPtr(matchKey)
		i := index[questionID]
		out[i].Options = append(out[i].Options, o)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load options: %w", err)
	}
	return out, nil
}
