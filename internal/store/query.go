package store

import (
	"context"
	"database/sql"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// builder renders SQLite flavored statements.
var builder = entsql.Dialect(dialect.SQLite)

// repos binds every repository to one connection or transaction. Queries
// must go through conn only: with a single pooled connection, reaching for
// the pool while a transaction is open would block forever.
type repos struct {
	conn dialect.ExecQuerier
}

func newRepos(conn dialect.ExecQuerier) *repos {
	return &repos{conn: conn}
}

func (r *repos) Catalog() CatalogRepo    { return &catalogRepo{conn: r.conn} }
func (r *repos) Users() UserRepo         { return &userRepo{conn: r.conn} }
func (r *repos) Progress() ProgressRepo  { return &progressRepo{conn: r.conn} }
func (r *repos) Attempts() AttemptRepo   { return &attemptRepo{conn: r.conn} }
func (r *repos) Snapshots() SnapshotRepo { return &snapshotRepo{conn: r.conn} }

// execStmt runs a write statement and returns its result.
func execStmt(ctx context.Context, conn dialect.ExecQuerier, q entsql.Querier) (sql.Result, error) {
	query, args := q.Query()
	var res sql.Result
	if err := conn.Exec(ctx, query, args, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// insertID runs an insert and returns the row id: explicit when non-zero,
// otherwise the one assigned by SQLite.
func insertID(ctx context.Context, conn dialect.ExecQuerier, q entsql.Querier, explicit int64) (int64, error) {
	res, err := execStmt(ctx, conn, q)
	if err != nil {
		return 0, err
	}
	if explicit != 0 {
		return explicit, nil
	}
	return res.LastInsertId()
}

// queryRows runs a select and calls scan once per row. Rows are fully
// drained and closed before it returns, so callers may issue another query
// on the same connection right away.
func queryRows(ctx context.Context, conn dialect.ExecQuerier, q entsql.Querier, scan func(*entsql.Rows) error) error {
	query, args := q.Query()
	rows := &entsql.Rows{}
	if err := conn.Query(ctx, query, args, rows); err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

func nullInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullString(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullTime(p *time.Time) any {
	if p == nil {
		return nil
	}
	return p.UTC()
}

func nullBool(p *bool) any {
	if p == nil {
		return nil
	}
	return *p
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func stringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func boolPtr(b sql.NullBool) *bool {
	if !b.Valid {
		return nil
	}
	v := b.Bool
	return &v
}
