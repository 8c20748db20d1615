package store

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table names.
const (
	booksTable     = "books"
	chaptersTable  = "chapters"
	quizzesTable   = "quizzes"
	questionsTable = "questions"
	optionsTable   = "options"
	usersTable     = "users"
	progressTable  = "reading_progress"
	attemptsTable  = "quiz_attempts"
	answersTable   = "answers"
	snapshotsTable = "snapshots"
)

func idColumn() *schema.Column {
	return &schema.Column{Name: "id", Type: field.TypeInt64, Increment: true}
}

var (
	// BooksColumns holds the columns for the "books" table.
	BooksColumns = []*schema.Column{
		idColumn(),
		{Name: "title", Type: field.TypeString},
		{Name: "author", Type: field.TypeString},
		{Name: "description", Type: field.TypeString, Default: ""},
		{Name: "genre", Type: field.TypeString, Default: ""},
		{Name: "difficulty", Type: field.TypeString, Default: "intermediate"},
		{Name: "language", Type: field.TypeString, Default: "en"},
		{Name: "total_chapters", Type: field.TypeInt, Default: 0},
		{Name: "chapter_xp", Type: field.TypeInt, Default: 100},
		{Name: "completion_xp", Type: field.TypeInt, Default: 500},
		{Name: "created_at", Type: field.TypeTime},
	}
	// BooksTable holds the schema information for the "books" table.
	BooksTable = &schema.Table{
		Name:    booksTable,
		Columns: BooksColumns,
	}

	// ChaptersColumns holds the columns for the "chapters" table.
	ChaptersColumns = []*schema.Column{
		idColumn(),
		{Name: "book_id", Type: field.TypeInt64},
		{Name: "number", Type: field.TypeInt},
		{Name: "title", Type: field.TypeString},
		{Name: "estimated_minutes", Type: field.TypeInt, Default: 0},
	}
	// ChaptersTable holds the schema information for the "chapters" table.
	ChaptersTable = &schema.Table{
		Name:    chaptersTable,
		Columns: ChaptersColumns,
	}

	// QuizzesColumns holds the columns for the "quizzes" table.
	QuizzesColumns = []*schema.Column{
		idColumn(),
		{Name: "chapter_id", Type: field.TypeInt64, Unique: true},
		{Name: "title", Type: field.TypeString},
		{Name: "description", Type: field.TypeString, Default: ""},
		{Name: "is_active", Type: field.TypeBool, Default: true},
		{Name: "quiz_xp", Type: field.TypeInt, Nullable: true},
	}
	// QuizzesTable holds the schema information for the "quizzes" table.
	QuizzesTable = &schema.Table{
		Name:    quizzesTable,
		Columns: QuizzesColumns,
	}

	// QuestionsColumns holds the columns for the "questions" table.
	QuestionsColumns = []*schema.Column{
		idColumn(),
		{Name: "quiz_id", Type: field.TypeInt64},
		{Name: "type", Type: field.TypeString},
		{Name: "text", Type: field.TypeString},
		{Name: "order_index", Type: field.TypeInt, Default: 0},
		{Name: "score", Type: field.TypeInt, Default: 1},
	}
	// QuestionsTable holds the schema information for the "questions" table.
	QuestionsTable = &schema.Table{
		Name:    questionsTable,
		Columns: QuestionsColumns,
	}

	// OptionsColumns holds the columns for the "options" table.
	OptionsColumns = []*schema.Column{
		idColumn(),
		{Name: "question_id", Type: field.TypeInt64},
		{Name: "text", Type: field.TypeString},
		{Name: "is_correct", Type: field.TypeBool, Default: false},
		{Name: "order_index", Type: field.TypeInt, Nullable: true},
		{Name: "match_key", Type: field.TypeString, Nullable: true},
	}
	// OptionsTable holds the schema information for the "options" table.
	OptionsTable = &schema.Table{
		Name:    optionsTable,
		Columns: OptionsColumns,
	}

	// UsersColumns holds the columns for the "users" table.
	UsersColumns = []*schema.Column{
		idColumn(),
		{Name: "username", Type: field.TypeString, Unique: true},
		{Name: "email", Type: field.TypeString, Default: ""},
		{Name: "level", Type: field.TypeInt, Default: 1},
		{Name: "current_xp", Type: field.TypeInt, Default: 0},
		{Name: "total_xp", Type: field.TypeInt, Default: 0},
		{Name: "reading_streak", Type: field.TypeInt, Default: 0},
		{Name: "last_reading_date", Type: field.TypeTime, Nullable: true},
		{Name: "created_at", Type: field.TypeTime},
	}
	// UsersTable holds the schema information for the "users" table.
	UsersTable = &schema.Table{
		Name:    usersTable,
		Columns: UsersColumns,
	}

	// ReadingProgressColumns holds the columns for the "reading_progress" table.
	ReadingProgressColumns = []*schema.Column{
		idColumn(),
		{Name: "user_id", Type: field.TypeInt64},
		{Name: "book_id", Type: field.TypeInt64},
		{Name: "current_chapter", Type: field.TypeInt, Default: 1},
		{Name: "chapters_completed", Type: field.TypeInt, Default: 0},
		{Name: "status", Type: field.TypeString, Default: "reading"},
		{Name: "started_at", Type: field.TypeTime},
		{Name: "completed_at", Type: field.TypeTime, Nullable: true},
		{Name: "last_read_at", Type: field.TypeTime},
	}
	// ReadingProgressTable holds the schema information for the "reading_progress" table.
	ReadingProgressTable = &schema.Table{
		Name:    progressTable,
		Columns: ReadingProgressColumns,
	}

	// QuizAttemptsColumns holds the columns for the "quiz_attempts" table.
	QuizAttemptsColumns = []*schema.Column{
		idColumn(),
		{Name: "ref", Type: field.TypeString, Unique: true},
		{Name: "user_id", Type: field.TypeInt64},
		{Name: "quiz_id", Type: field.TypeInt64},
		{Name: "total_questions", Type: field.TypeInt},
		{Name: "correct_questions", Type: field.TypeInt},
		{Name: "is_perfect", Type: field.TypeBool},
		{Name: "score_earned", Type: field.TypeInt},
		{Name: "started_at", Type: field.TypeTime},
		{Name: "finished_at", Type: field.TypeTime},
	}
	// QuizAttemptsTable holds the schema information for the "quiz_attempts" table.
	QuizAttemptsTable = &schema.Table{
		Name:    attemptsTable,
		Columns: QuizAttemptsColumns,
	}

	// AnswersColumns holds the columns for the "answers" table. question_id
	// has no foreign key: submissions naming unknown questions are kept for
	// audit.
	AnswersColumns = []*schema.Column{
		idColumn(),
		{Name: "attempt_id", Type: field.TypeInt64},
		{Name: "question_id", Type: field.TypeInt64},
		{Name: "declared_type", Type: field.TypeString},
		{Name: "is_correct", Type: field.TypeBool, Nullable: true},
		{Name: "payload", Type: field.TypeJSON},
	}
	// AnswersTable holds the schema information for the "answers" table.
	AnswersTable = &schema.Table{
		Name:    answersTable,
		Columns: AnswersColumns,
	}

	// SnapshotsColumns holds the columns for the "snapshots" table.
	SnapshotsColumns = []*schema.Column{
		idColumn(),
		{Name: "user_id", Type: field.TypeInt64},
		{Name: "sequence", Type: field.TypeInt64},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "data", Type: field.TypeJSON},
	}
	// SnapshotsTable holds the schema information for the "snapshots" table.
	SnapshotsTable = &schema.Table{
		Name:    snapshotsTable,
		Columns: SnapshotsColumns,
	}

	// Tables holds all the tables in the schema, parents first.
	Tables = []*schema.Table{
		BooksTable,
		ChaptersTable,
		QuizzesTable,
		QuestionsTable,
		OptionsTable,
		UsersTable,
		ReadingProgressTable,
		QuizAttemptsTable,
		AnswersTable,
		SnapshotsTable,
	}
)

func column(cols []*schema.Column, name string) *schema.Column {
	for _, c := range cols {
		if c.Name == name {
			return c
		}
	}
	panic(fmt.Sprintf("store: unknown column %q", name))
}

func foreignKey(symbol string, t *schema.Table, col string, ref *schema.Table, onDelete schema.ReferenceOption) *schema.ForeignKey {
	return &schema.ForeignKey{
		Symbol:     symbol,
		Columns:    []*schema.Column{column(t.Columns, col)},
		RefTable:   ref,
		RefColumns: []*schema.Column{column(ref.Columns, "id")},
		OnDelete:   onDelete,
	}
}

func init() {
	for _, t := range Tables {
		t.PrimaryKey = []*schema.Column{column(t.Columns, "id")}
	}

	ChaptersTable.ForeignKeys = []*schema.ForeignKey{
		foreignKey("chapters_books_chapters", ChaptersTable, "book_id", BooksTable, schema.Cascade),
	}
	ChaptersTable.Indexes = []*schema.Index{
		{Name: "chapter_book_id_number", Unique: true, Columns: []*schema.Column{
			column(ChaptersColumns, "book_id"), column(ChaptersColumns, "number"),
		}},
	}

	QuizzesTable.ForeignKeys = []*schema.ForeignKey{
		foreignKey("quizzes_chapters_quiz", QuizzesTable, "chapter_id", ChaptersTable, schema.Cascade),
	}

	QuestionsTable.ForeignKeys = []*schema.ForeignKey{
		foreignKey("questions_quizzes_questions", QuestionsTable, "quiz_id", QuizzesTable, schema.Cascade),
	}
	QuestionsTable.Indexes = []*schema.Index{
		{Name: "question_quiz_id", Columns: []*schema.Column{column(QuestionsColumns, "quiz_id")}},
	}

	OptionsTable.ForeignKeys = []*schema.ForeignKey{
		foreignKey("options_questions_options", OptionsTable, "question_id", QuestionsTable, schema.Cascade),
	}
	OptionsTable.Indexes = []*schema.Index{
		{Name: "option_question_id", Columns: []*schema.Column{column(OptionsColumns, "question_id")}},
	}

	ReadingProgressTable.ForeignKeys = []*schema.ForeignKey{
		foreignKey("reading_progress_users_progress", ReadingProgressTable, "user_id", UsersTable, schema.Cascade),
		foreignKey("reading_progress_books_progress", ReadingProgressTable, "book_id", BooksTable, schema.Cascade),
	}
	ReadingProgressTable.Indexes = []*schema.Index{
		{Name: "readingprogress_user_id_book_id", Unique: true, Columns: []*schema.Column{
			column(ReadingProgressColumns, "user_id"), column(ReadingProgressColumns, "book_id"),
		}},
	}

	QuizAttemptsTable.ForeignKeys = []*schema.ForeignKey{
		foreignKey("quiz_attempts_users_attempts", QuizAttemptsTable, "user_id", UsersTable, schema.Cascade),
		foreignKey("quiz_attempts_quizzes_attempts", QuizAttemptsTable, "quiz_id", QuizzesTable, schema.Cascade),
	}
	QuizAttemptsTable.Indexes = []*schema.Index{
		{Name: "quizattempt_user_id_finished_at", Columns: []*schema.Column{
			column(QuizAttemptsColumns, "user_id"), column(QuizAttemptsColumns, "finished_at"),
		}},
	}

	AnswersTable.ForeignKeys = []*schema.ForeignKey{
		foreignKey("answers_quiz_attempts_answers", AnswersTable, "attempt_id", QuizAttemptsTable, schema.Cascade),
	}

	SnapshotsTable.ForeignKeys = []*schema.ForeignKey{
		foreignKey("snapshots_users_snapshots", SnapshotsTable, "user_id", UsersTable, schema.Cascade),
	}
	SnapshotsTable.Indexes = []*schema.Index{
		{Name: "snapshot_user_id_sequence", Columns: []*schema.Column{
			column(SnapshotsColumns, "user_id"), column(SnapshotsColumns, "sequence"),
		}},
	}
}

// migrate creates any missing tables, columns and indexes.
func migrate(ctx context.Context, drv dialect.Driver) error {
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	if err := m.Create(ctx, Tables...); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}
