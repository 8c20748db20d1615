// Package progression folds earned XP into levels and tracks the reading
// streak.
package progression

import (
	"math"
	"math/big"
	"time"
)

// LevelCost returns the XP needed to advance from level to level+1:
// floor(500 * level^1.5).
func LevelCost(level int) int {
	if level < 1 {
		level = 1
	}
	// 500 * l^1.5 == sqrt(250000 * l^3). The product overflows int64 past
	// level ~33000, so the integer root is taken on a big.Int.
	l := big.NewInt(int64(level))
	n := new(big.Int).Mul(l, l)
	n.Mul(n, l)
	n.Mul(n, big.NewInt(250000))
	r := n.Sqrt(n)
	if !r.IsInt64() || r.Int64() > math.MaxInt {
		return math.MaxInt
	}
	return int(r.Int64())
}

// Result describes the level changes caused by one application of XP.
type Result struct {
	LeveledUp    bool
	NewLevel     int
	LevelsGained []int // each newly reached level, ascending
}

// Engine applies attempt outcomes to learner stats.
type Engine struct {
	now func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the time source used for last-read stamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates an Engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Apply records a graded attempt: a perfect attempt extends the streak and
// anything else resets it, then xpEarned is added and levels resolved.
func (e *Engine) Apply(s *Stats, isPerfect bool, xpEarned int) Result {
	s.normalize()

	if isPerfect {
		s.ReadingStreak++
	} else {
		s.ReadingStreak = 0
	}

	res := e.addXP(s, xpEarned)

	now := e.now()
	s.LastReadingDate = &now
	return res
}

// Grant adds bonus XP (e.g. for finishing a book) without touching the
// streak or the last-read date.
func (e *Engine) Grant(s *Stats, xp int) Result {
	s.normalize()
	return e.addXP(s, xp)
}

func (e *Engine) addXP(s *Stats, xp int) Result {
	if xp < 0 {
		xp = 0
	}
	s.CurrentXP += xp
	s.TotalXP += xp

	res := Result{NewLevel: s.Level}
	// LevelCost is always positive, so CurrentXP strictly decreases.
	for s.CurrentXP >= LevelCost(s.Level) {
		s.CurrentXP -= LevelCost(s.Level)
		s.Level++
		res.LevelsGained = append(res.LevelsGained, s.Level)
	}
	res.NewLevel = s.Level
	res.LeveledUp = len(res.LevelsGained) > 0
	return res
}
