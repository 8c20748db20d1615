package reading

import "time"

// Outcome describes what an advance changed.
type Outcome struct {
	Advanced      bool // ChaptersCompleted moved forward
	BookCompleted bool // the book transitioned to completed on this call
}

// Tracker advances reading progress when chapter quizzes are passed.
type Tracker struct {
	now func() time.Time
}

// NewTracker creates a Tracker. A nil clock uses time.Now.
func NewTracker(now func() time.Time) *Tracker {
	if now == nil {
		now = time.Now
	}
	return &Tracker{now: now}
}

// AdvanceOnPerfectQuiz records that the quiz for chapterNumber was passed
// perfectly. Replaying an already passed chapter only refreshes LastReadAt.
func (t *Tracker) AdvanceOnPerfectQuiz(p *Progress, chapterNumber, totalChapters int) Outcome {
	now := t.now()
	var out Outcome

	if chapterNumber > p.ChaptersCompleted {
		p.ChaptersCompleted = chapterNumber
		p.CurrentChapter = min(chapterNumber+1, totalChapters)
		out.Advanced = true
	}

	// Completion is one-way; an already completed book keeps its stamp.
	if p.ChaptersCompleted >= totalChapters && !p.Completed() {
		p.Status = StatusCompleted
		p.CompletedAt = &now
		out.BookCompleted = true
	}

	p.LastReadAt = now
	return out
}
