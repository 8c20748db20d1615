package store

import (
	"context"
	"database/sql"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/bookquest/internal/reading"
)

// progressRepo implements ProgressRepo with ent's SQL builders.
type progressRepo struct {
	conn dialect.ExecQuerier
}

var progressColumns = []string{
	"id", "user_id", "book_id", "current_chapter", "chapters_completed",
	"status", "started_at", "completed_at", "last_read_at",
}

func (r *progressRepo) Get(ctx context.Context, userID, bookID int64) (*reading.Progress, error) {
	list, err := r.list(ctx, entsql.And(entsql.EQ("user_id", userID), entsql.EQ("book_id", bookID)))
	if err != nil {
		return nil, fmt.Errorf("get progress of user %d in book %d: %w", userID, bookID, err)
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("progress of user %d in book %d: %w", userID, bookID, ErrNotFound)
	}
	return &list[0], nil
}

func (r *progressRepo) ListByUser(ctx context.Context, userID int64) ([]reading.Progress, error) {
	list, err := r.list(ctx, entsql.EQ("user_id", userID))
	if err != nil {
		return nil, fmt.Errorf("list progress of user %d: %w", userID, err)
	}
	return list, nil
}

func (r *progressRepo) list(ctx context.Context, where *entsql.Predicate) ([]reading.Progress, error) {
	sel := builder.Select(progressColumns...).
		From(entsql.Table(progressTable)).
		Where(where).
		OrderBy(entsql.Desc("last_read_at"), "id")

	var out []reading.Progress
	err := queryRows(ctx, r.conn, sel, func(rows *entsql.Rows) error {
		var (
			p           reading.Progress
			status      string
			completedAt sql.NullTime
		)
		if err := rows.Scan(&p.ID, &p.UserID, &p.BookID, &p.CurrentChapter, &p.ChaptersCompleted,
			&status, &p.StartedAt, &completedAt, &p.LastReadAt); err != nil {
			return err
		}
		p.Status = reading.Status(status)
		p.CompletedAt = timePtr(completedAt)
		out = append(out, p)
		return nil
	})
	return out, err
}

func (r *progressRepo) Save(ctx context.Context, p *reading.Progress) error {
	if p.ID == 0 {
		ins := builder.Insert(progressTable).
			Columns(progressColumns[1:]...).
			Values(p.UserID, p.BookID, p.CurrentChapter, p.ChaptersCompleted, string(p.Status),
				p.StartedAt.UTC(), nullTime(p.CompletedAt), p.LastReadAt.UTC())
		id, err := insertID(ctx, r.conn, ins, 0)
		if err != nil {
			return fmt.Errorf("create progress of user %d in book %d: %w", p.UserID, p.BookID, err)
		}
		p.ID = id
		return nil
	}

	upd := builder.Update(progressTable).
		Set("current_chapter", p.CurrentChapter).
		Set("chapters_completed", p.ChaptersCompleted).
		Set("status", string(p.Status)).
		Set("completed_at", nullTime(p.CompletedAt)).
		Set("last_read_at", p.LastReadAt.UTC()).
		Where(entsql.EQ("id", p.ID))
	if _, err := execStmt(ctx, r.conn, upd); err != nil {
		return fmt.Errorf("update progress %d: %w", p.ID, err)
	}
	return nil
}
