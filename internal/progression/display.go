package progression

import "time"

// LevelProgress describes how far a learner is into the current level.
type LevelProgress struct {
	Level     int
	CurrentXP int
	Cost      int     // XP needed to leave this level
	Remaining int     // Cost - CurrentXP
	Fraction  float64 // 0.0-1.0
}

// Progress returns the learner's position on the level curve.
func Progress(s Stats) LevelProgress {
	s.normalize()
	cost := LevelCost(s.Level)
	p := LevelProgress{
		Level:     s.Level,
		CurrentXP: s.CurrentXP,
		Cost:      cost,
		Remaining: cost - s.CurrentXP,
	}
	if p.Remaining < 0 {
		p.Remaining = 0
	}
	p.Fraction = float64(s.CurrentXP) / float64(cost)
	if p.Fraction > 1 {
		p.Fraction = 1
	}
	return p
}

// StreakInfo is a read-only view of the streak relative to today.
type StreakInfo struct {
	Current           int
	AtRisk            bool // last read yesterday; reading today keeps it
	Broken            bool // more than one day without reading
	DaysSinceLastRead int  // -1 when the learner never read
}

// StreakStatus reports the streak state at now, counting whole UTC calendar
// days since the last reading date.
func StreakStatus(s Stats, now time.Time) StreakInfo {
	if s.LastReadingDate == nil {
		return StreakInfo{DaysSinceLastRead: -1}
	}
	days := calendarDays(*s.LastReadingDate, now)
	return StreakInfo{
		Current:           s.ReadingStreak,
		AtRisk:            days == 1,
		Broken:            days > 1,
		DaysSinceLastRead: days,
	}
}

func calendarDays(from, to time.Time) int {
	f := from.UTC()
	t := to.UTC()
	fd := time.Date(f.Year(), f.Month(), f.Day(), 0, 0, 0, 0, time.UTC)
	td := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return int(td.Sub(fd).Hours() / 24)
}
