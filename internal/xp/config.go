package xp

// Default XP settings.
const (
	DefaultQuizBaseXP    = 100
	DefaultStreakStep    = 3
	DefaultStreakBonusXP = 50
)

// Config holds the XP award rules. It is passed by value and never
// changed after construction.
type Config struct {
	// QuizBaseXP is the award when neither the quiz nor its book sets one.
	QuizBaseXP int

	// StreakStep rewards every Nth perfect attempt in a row. Zero or
	// negative disables the bonus.
	StreakStep int

	// StreakBonusXP is added on each streak step.
	StreakBonusXP int
}

// DefaultConfig returns the standard XP rules.
func DefaultConfig() Config {
	return Config{
		QuizBaseXP:    DefaultQuizBaseXP,
		StreakStep:    DefaultStreakStep,
		StreakBonusXP: DefaultStreakBonusXP,
	}
}
