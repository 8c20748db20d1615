// Package xp computes the experience points awarded for a quiz attempt.
package xp

import "github.com/abhisek/bookquest/internal/catalog"

// Breakdown splits an award into its parts.
type Breakdown struct {
	Base  int
	Bonus int
	Total int
}

// Calculator applies a fixed Config to quiz outcomes.
type Calculator struct {
	cfg Config
}

// NewCalculator creates a Calculator with the given rules.
func NewCalculator(cfg Config) *Calculator {
	return &Calculator{cfg: cfg}
}

// Compute returns the XP to award. book may be nil when the owning book is
// not loaded. streak is the learner's streak before this attempt.
func (c *Calculator) Compute(quiz catalog.Quiz, book *catalog.Book, isPerfect bool, streak int) int {
	return c.Breakdown(quiz, book, isPerfect, streak).Total
}

// Breakdown returns the base and bonus parts of the award.
func (c *Calculator) Breakdown(quiz catalog.Quiz, book *catalog.Book, isPerfect bool, streak int) Breakdown {
	b := Breakdown{Base: c.base(quiz, book)}
	if isPerfect && StreakBonusDue(c.cfg, streak) {
		b.Bonus = c.cfg.StreakBonusXP
	}
	b.Total = b.Base + b.Bonus
	if b.Total < 0 {
		b.Total = 0
	}
	return b
}

func (c *Calculator) base(quiz catalog.Quiz, book *catalog.Book) int {
	if quiz.QuizXP != nil && *quiz.QuizXP != 0 {
		return *quiz.QuizXP
	}
	if book != nil && book.ChapterXP != 0 {
		return book.ChapterXP
	}
	return c.cfg.QuizBaseXP
}

// StreakBonusDue reports whether the streak the learner is about to reach
// (streak+1) lands on a streak step. The progression engine performs the
// actual increment afterwards.
func StreakBonusDue(cfg Config, streak int) bool {
	if cfg.StreakStep <= 0 {
		return false
	}
	return (streak+1)%cfg.StreakStep == 0
}
