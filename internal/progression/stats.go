package progression

import "time"

// Stats is the mutable progression state of one learner.
type Stats struct {
	Level           int
	CurrentXP       int // XP toward the next level
	TotalXP         int // lifetime XP, never decreases
	ReadingStreak   int
	LastReadingDate *time.Time
}

// NewStats returns the starting state for a new learner.
func NewStats() Stats {
	return Stats{Level: 1}
}

// normalize repairs values that would violate the level and XP invariants,
// e.g. rows written before a column had a default.
func (s *Stats) normalize() {
	if s.Level < 1 {
		s.Level = 1
	}
	if s.CurrentXP < 0 {
		s.CurrentXP = 0
	}
	if s.ReadingStreak < 0 {
		s.ReadingStreak = 0
	}
}
