// Package config resolves BookQuest settings from defaults, an optional
// .env file and the process environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/abhisek/bookquest/internal/catalog"
	"github.com/abhisek/bookquest/internal/xp"
)

// Environment variable names.
const (
	EnvDB                  = "BOOKQUEST_DB"
	EnvLogMode             = "BOOKQUEST_LOG_MODE"
	EnvLogLevel            = "BOOKQUEST_LOG_LEVEL"
	EnvQuizBaseXP          = "BOOKQUEST_QUIZ_BASE_XP"
	EnvStreakStep          = "BOOKQUEST_STREAK_STEP"
	EnvStreakBonusXP       = "BOOKQUEST_STREAK_BONUS_XP"
	EnvDefaultChapterXP    = "BOOKQUEST_DEFAULT_CHAPTER_XP"
	EnvDefaultCompletionXP = "BOOKQUEST_DEFAULT_COMPLETION_XP"
	EnvSnapshotKeep        = "BOOKQUEST_SNAPSHOT_KEEP"
)

// Config holds the resolved settings.
type Config struct {
	DBPath   string // empty means store.DefaultDBPath
	LogMode  string // dev, prod or off
	LogLevel string

	QuizBaseXP    int
	StreakStep    int
	StreakBonusXP int

	// Applied by the catalog importer to books that leave them unset.
	DefaultChapterXP    int
	DefaultCompletionXP int

	// Progression snapshots kept per user; 0 keeps all.
	SnapshotKeep int
}

// Default returns the built-in settings.
func Default() Config {
	x := xp.DefaultConfig()
	return Config{
		LogMode:             "dev",
		LogLevel:            "warn",
		QuizBaseXP:          x.QuizBaseXP,
		StreakStep:          x.StreakStep,
		StreakBonusXP:       x.StreakBonusXP,
		DefaultChapterXP:    catalog.DefaultChapterXP,
		DefaultCompletionXP: catalog.DefaultCompletionXP,
		SnapshotKeep:        50,
	}
}

// Load reads the given .env files (".env" when none are named) into the
// environment, then resolves the config. Missing files are not an error.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv(), nil
}

// FromEnv overlays the environment on the defaults. Unset or malformed
// integers keep their default.
func FromEnv() Config {
	c := Default()
	c.DBPath = getEnv(EnvDB, c.DBPath)
	c.LogMode = getEnv(EnvLogMode, c.LogMode)
	c.LogLevel = getEnv(EnvLogLevel, c.LogLevel)
	c.QuizBaseXP = getEnvInt(EnvQuizBaseXP, c.QuizBaseXP)
	c.StreakStep = getEnvInt(EnvStreakStep, c.StreakStep)
	c.StreakBonusXP = getEnvInt(EnvStreakBonusXP, c.StreakBonusXP)
	c.DefaultChapterXP = getEnvInt(EnvDefaultChapterXP, c.DefaultChapterXP)
	c.DefaultCompletionXP = getEnvInt(EnvDefaultCompletionXP, c.DefaultCompletionXP)
	c.SnapshotKeep = getEnvInt(EnvSnapshotKeep, c.SnapshotKeep)
	return c
}

// XP returns the immutable XP rule set.
func (c Config) XP() xp.Config {
	return xp.Config{
		QuizBaseXP:    c.QuizBaseXP,
		StreakStep:    c.StreakStep,
		StreakBonusXP: c.StreakBonusXP,
	}
}

func getEnv(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return defaultValue
	}
	return n
}
