package store

import (
	"context"
	"database/sql"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/bookquest/internal/catalog"
)

// attemptRepo implements AttemptRepo with ent's SQL builders.
type attemptRepo struct {
	conn dialect.ExecQuerier
}

var attemptColumns = []string{
	"id", "ref", "user_id", "quiz_id", "total_questions", "correct_questions",
	"is_perfect", "score_earned", "started_at", "finished_at",
}

func (r *attemptRepo) Create(ctx context.Context, a *AttemptRecord) error {
	ins := builder.Insert(attemptsTable).
		Columns(attemptColumns[1:]...).
		Values(a.Ref, a.UserID, a.QuizID, a.TotalQuestions, a.CorrectQuestions,
			a.IsPerfect, a.ScoreEarned, a.StartedAt.UTC(), a.FinishedAt.UTC())
	id, err := insertID(ctx, r.conn, ins, 0)
	if err != nil {
		return fmt.Errorf("create attempt %s: %w", a.Ref, err)
	}
	a.ID = id

	for i := range a.Answers {
		ans := &a.Answers[i]
		payload := ans.Payload
		if len(payload) == 0 {
			payload = []byte("{}")
		}
		ins := builder.Insert(answersTable).
			Columns("attempt_id", "question_id", "declared_type", "is_correct", "payload").
			Values(a.ID, ans.QuestionID, string(ans.DeclaredType), nullBool(ans.IsCorrect), string(payload))
		id, err := insertID(ctx, r.conn, ins, 0)
		if err != nil {
			return fmt.Errorf("create answer to question %d: %w", ans.QuestionID, err)
		}
		ans.ID = id
	}
	return nil
}

func (r *attemptRepo) ListByUser(ctx context.Context, userID int64, opts QueryOpts) ([]AttemptRecord, error) {
	preds := []*entsql.Predicate{entsql.EQ("user_id", userID)}
	if !opts.From.IsZero() {
		preds = append(preds, entsql.GTE("finished_at", opts.From.UTC()))
	}
	if !opts.To.IsZero() {
		preds = append(preds, entsql.LTE("finished_at", opts.To.UTC()))
	}
	sel := builder.Select(attemptColumns...).
		From(entsql.Table(attemptsTable)).
		Where(entsql.And(preds...)).
		OrderBy(entsql.Desc("finished_at"), entsql.Desc("id"))
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}

	var out []AttemptRecord
	err := queryRows(ctx, r.conn, sel, func(rows *entsql.Rows) error {
		var a AttemptRecord
		if err := rows.Scan(&a.ID, &a.Ref, &a.UserID, &a.QuizID, &a.TotalQuestions, &a.CorrectQuestions,
			&a.IsPerfect, &a.ScoreEarned, &a.StartedAt, &a.FinishedAt); err != nil {
			return err
		}
		out = append(out, a)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list attempts of user %d: %w", userID, err)
	}
	return out, nil
}

func (r *attemptRepo) Answers(ctx context.Context, attemptID int64) ([]AnswerRecord, error) {
	sel := builder.Select("id", "question_id", "declared_type", "is_correct", "payload").
		From(entsql.Table(answersTable)).
		Where(entsql.EQ("attempt_id", attemptID)).
		OrderBy("id")

	var out []AnswerRecord
	err := queryRows(ctx, r.conn, sel, func(rows *entsql.Rows) error {
		var (
			a         AnswerRecord
			declared  string
			isCorrect sql.NullBool
			payload   string
		)
		if err := rows.Scan(&a.ID, &a.QuestionID, &declared, &isCorrect, &payload); err != nil {
			return err
		}
		a.DeclaredType = catalog.QuestionType(declared)
		a.IsCorrect = boolPtr(isCorrect)
		a.Payload = []byte(payload)
		out = append(out, a)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list answers of attempt %d: %w", attemptID, err)
	}
	return out, nil
}
