package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/bookquest/internal/progression"
)

// userRepo implements UserRepo with ent's SQL builders.
type userRepo struct {
	conn dialect.ExecQuerier
}

var userColumns = []string{
	"id", "username", "email", "level", "current_xp", "total_xp",
	"reading_streak", "last_reading_date", "created_at",
}

func (r *userRepo) Create(ctx context.Context, u *User) error {
	if u.Stats.Level < 1 {
		u.Stats.Level = 1
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	ins := builder.Insert(usersTable).
		Columns(userColumns[1:]...).
		Values(u.Username, u.Email, u.Stats.Level, u.Stats.CurrentXP, u.Stats.TotalXP,
			u.Stats.ReadingStreak, nullTime(u.Stats.LastReadingDate), u.CreatedAt.UTC())
	id, err := insertID(ctx, r.conn, ins, 0)
	if err != nil {
		return fmt.Errorf("create user %q: %w", u.Username, err)
	}
	u.ID = id
	return nil
}

func (r *userRepo) Get(ctx context.Context, id int64) (*User, error) {
	u, err := r.one(ctx, entsql.EQ("id", id))
	if err != nil {
		return nil, fmt.Errorf("user %d: %w", id, err)
	}
	return u, nil
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*User, error) {
	u, err := r.one(ctx, entsql.EQ("username", username))
	if err != nil {
		return nil, fmt.Errorf("user %q: %w", username, err)
	}
	return u, nil
}

func (r *userRepo) one(ctx context.Context, where *entsql.Predicate) (*User, error) {
	sel := builder.Select(userColumns...).
		From(entsql.Table(usersTable)).
		Where(where).
		Limit(1)

	var found *User
	err := queryRows(ctx, r.conn, sel, func(rows *entsql.Rows) error {
		var (
			u        User
			lastRead sql.NullTime
		)
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.Stats.Level, &u.Stats.CurrentXP,
			&u.Stats.TotalXP, &u.Stats.ReadingStreak, &lastRead, &u.CreatedAt); err != nil {
			return err
		}
		u.Stats.LastReadingDate = timePtr(lastRead)
		found = &u
		return nil
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return found, nil
}

func (r *userRepo) UpdateStats(ctx context.Context, id int64, s progression.Stats) error {
	upd := builder.Update(usersTable).
		Set("level", s.Level).
		Set("current_xp", s.CurrentXP).
		Set("total_xp", s.TotalXP).
		Set("reading_streak", s.ReadingStreak).
		Set("last_reading_date", nullTime(s.LastReadingDate)).
		Where(entsql.EQ("id", id))
	res, err := execStmt(ctx, r.conn, upd)
	if err != nil {
		return fmt.Errorf("update stats of user %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	return nil
}
