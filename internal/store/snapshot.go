package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// SnapshotVersion is the current layout of SnapshotData.
const SnapshotVersion = 1

// SnapshotData captures a learner's progression right after an attempt.
type SnapshotData struct {
	Version       int    `json:"version"`
	AttemptRef    string `json:"attempt_ref"`
	Level         int    `json:"level"`
	CurrentXP     int    `json:"current_xp"`
	TotalXP       int    `json:"total_xp"`
	ReadingStreak int    `json:"reading_streak"`
	BooksComplete int    `json:"books_complete"`
}

// Snapshot represents a point-in-time capture of learner state. Sequence is
// the id of the attempt that produced it.
type Snapshot struct {
	ID        int64
	UserID    int64
	Sequence  int64
	Timestamp time.Time
	Data      SnapshotData
}

// SnapshotRepo manages learner state snapshots.
type SnapshotRepo interface {
	// Save stores a new snapshot.
	Save(ctx context.Context, snap *Snapshot) error

	// Latest returns the most recent snapshot of the user, or nil if none exist.
	Latest(ctx context.Context, userID int64) (*Snapshot, error)

	// List returns up to limit snapshots of the user, newest first.
	List(ctx context.Context, userID int64, limit int) ([]Snapshot, error)

	// Prune deletes all but the keep most recent snapshots of the user.
	Prune(ctx context.Context, userID int64, keep int) error
}

// snapshotRepo implements SnapshotRepo with ent's SQL builders.
type snapshotRepo struct {
	conn dialect.ExecQuerier
}

func (r *snapshotRepo) Save(ctx context.Context, snap *Snapshot) error {
	if snap.Data.Version == 0 {
		snap.Data.Version = SnapshotVersion
	}
	data, err := json.Marshal(snap.Data)
	if err != nil {
		return fmt.Errorf("marshal snapshot data: %w", err)
	}

	ins := builder.Insert(snapshotsTable).
		Columns("user_id", "sequence", "timestamp", "data").
		Values(snap.UserID, snap.Sequence, snap.Timestamp.UTC(), string(data))
	id, err := insertID(ctx, r.conn, ins, 0)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	snap.ID = id
	return nil
}

func (r *snapshotRepo) Latest(ctx context.Context, userID int64) (*Snapshot, error) {
	list, err := r.List(ctx, userID, 1)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return &list[0], nil
}

func (r *snapshotRepo) List(ctx context.Context, userID int64, limit int) ([]Snapshot, error) {
	sel := r.newest(userID)
	if limit > 0 {
		sel.Limit(limit)
	}

	var out []Snapshot
	err := queryRows(ctx, r.conn, sel, func(rows *entsql.Rows) error {
		var (
			s    Snapshot
			data string
		)
		if err := rows.Scan(&s.ID, &s.UserID, &s.Sequence, &s.Timestamp, &data); err != nil {
			return err
		}
		if err := json.Unmarshal([]byte(data), &s.Data); err != nil {
			return fmt.Errorf("unmarshal snapshot %d: %w", s.ID, err)
		}
		out = append(out, s)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query snapshots of user %d: %w", userID, err)
	}
	return out, nil
}

func (r *snapshotRepo) Prune(ctx context.Context, userID int64, keep int) error {
	// Find the ID threshold: the newest snapshot past the ones to keep.
	sel := r.newest(userID).Offset(keep).Limit(1)
	var threshold int64
	err := queryRows(ctx, r.conn, sel, func(rows *entsql.Rows) error {
		var (
			s    Snapshot
			data string
		)
		if err := rows.Scan(&s.ID, &s.UserID, &s.Sequence, &s.Timestamp, &data); err != nil {
			return err
		}
		threshold = s.ID
		return nil
	})
	if err != nil {
		return fmt.Errorf("query snapshots for prune: %w", err)
	}
	if threshold == 0 {
		return nil // fewer than keep snapshots exist
	}

	del := builder.Delete(snapshotsTable).
		Where(entsql.And(entsql.EQ("user_id", userID), entsql.LTE("id", threshold)))
	if _, err := execStmt(ctx, r.conn, del); err != nil {
		return fmt.Errorf("prune snapshots: %w", err)
	}
	return nil
}

func (r *snapshotRepo) newest(userID int64) *entsql.Selector {
	return builder.Select("id", "user_id", "sequence", "timestamp", "data").
		From(entsql.Table(snapshotsTable)).
		Where(entsql.EQ("user_id", userID)).
		OrderBy(entsql.Desc("sequence"), entsql.Desc("id"))
}
