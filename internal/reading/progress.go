// Package reading tracks per-book chapter progress for a learner.
package reading

import "time"

// Status is the lifecycle state of a learner's progress through a book.
type Status string

const (
	StatusReading   Status = "reading"
	StatusCompleted Status = "completed"
	StatusAbandoned Status = "abandoned"
)

// Progress is a learner's position in one book. There is at most one per
// (user, book) pair.
type Progress struct {
	ID                int64
	UserID            int64
	BookID            int64
	CurrentChapter    int
	ChaptersCompleted int
	Status            Status
	StartedAt         time.Time
	CompletedAt       *time.Time
	LastReadAt        time.Time
}

// Start returns fresh progress for a book the learner just began.
func Start(userID, bookID int64, now time.Time) Progress {
	return Progress{
		UserID:         userID,
		BookID:         bookID,
		CurrentChapter: 1,
		Status:         StatusReading,
		StartedAt:      now,
		LastReadAt:     now,
	}
}

// Completed reports whether the book has been finished.
func (p *Progress) Completed() bool {
	return p.Status == StatusCompleted
}
