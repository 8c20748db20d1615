package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/bookquest/internal/attempt"
	"github.com/abhisek/bookquest/internal/config"
	"github.com/abhisek/bookquest/internal/logger"
	"github.com/abhisek/bookquest/internal/store"
)

var rootCmd = &cobra.Command{
	Use:          "bookquest",
	Short:        "Reading quizzes with XP, levels and streaks",
	Long:         "BookQuest grades chapter quizzes and turns perfect scores into XP, levels, reading streaks and book progress.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides BOOKQUEST_DB env var)")
	rootCmd.PersistentFlags().String("env-file", ".env", "Optional .env file to load settings from")

	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(attemptsCmd)
	rootCmd.AddCommand(versionCmd)
}

// env bundles what a command needs once settings are resolved.
type env struct {
	cfg   config.Config
	log   *logger.Logger
	store *store.Store
}

// openEnv loads settings, builds the logger and opens the store.
func openEnv(cmd *cobra.Command) (*env, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.LogMode, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	log.Debug("store opened", "path", dbPath)
	return &env{cfg: cfg, log: log, store: st}, nil
}

func (e *env) Close() {
	e.store.Close()
	e.log.Sync()
}

func (e *env) attempts() *attempt.Service {
	return attempt.NewService(e.store, e.cfg.XP(),
		attempt.WithLogger(e.log),
		attempt.WithSnapshotKeep(e.cfg.SnapshotKeep))
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then BOOKQUEST_DB, then the default XDG path.
func resolveDBPath(cmd *cobra.Command, cfg config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg.DBPath != "" {
		return cfg.DBPath, store.EnsureDir(cfg.DBPath)
	}
	return store.DefaultDBPath()
}
