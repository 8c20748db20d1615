package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/bookquest/internal/progression"
	"github.com/abhisek/bookquest/internal/reading"
	"github.com/abhisek/bookquest/internal/store"
	"github.com/abhisek/bookquest/internal/ui/components"
	"github.com/abhisek/bookquest/internal/ui/theme"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show level, XP, streak and reading progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		history, _ := cmd.Flags().GetInt("history")
		ctx := cmd.Context()

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		u, err := lookupUser(cmd, e)
		if err != nil {
			return err
		}
		repos := e.store.Repos()
		progress, err := repos.Progress().ListByUser(ctx, u.ID)
		if err != nil {
			return fmt.Errorf("load reading progress: %w", err)
		}
		titles := make(map[int64]string, len(progress))
		for _, p := range progress {
			b, err := repos.Catalog().Book(ctx, p.BookID)
			if err != nil {
				return fmt.Errorf("book %d: %w", p.BookID, err)
			}
			titles[p.BookID] = b.Title
		}

		out := cmd.OutOrStdout()
		printStats(out, u, time.Now())
		printReading(out, progress, titles)

		if history > 0 {
			snaps, err := repos.Snapshots().List(ctx, u.ID, history)
			if err != nil {
				return fmt.Errorf("load snapshots: %w", err)
			}
			printHistory(out, snaps)
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().String("user", "", "Username")
	statsCmd.Flags().Int("history", 0, "Also show the last N progression snapshots")
	_ = statsCmd.MarkFlagRequired("user")
}

func printStats(w io.Writer, u *store.User, now time.Time) {
	lp := progression.Progress(u.Stats)
	si := progression.StreakStatus(u.Stats, now)

	streak := plural(si.Current, "day")
	switch {
	case si.DaysSinceLastRead < 0:
		streak = theme.Hint.Render("no quizzes passed yet")
	case si.Broken:
		streak = theme.Incorrect.Render(streak + ", broken")
	case si.AtRisk:
		streak = theme.AtRisk.Render(streak + ", pass a quiz today to keep it")
	}

	bar := components.NewProgressBar("", lp.Fraction, fmt.Sprintf("%d/%d XP", lp.CurrentXP, lp.Cost), 40)
	body := components.Fields([]components.Field{
		{Label: "Level", Value: fmt.Sprintf("%d", lp.Level)},
		{Label: "Next level", Value: bar.View()},
		{Label: "Total XP", Value: fmt.Sprintf("%d", u.Stats.TotalXP)},
		{Label: "Streak", Value: streak},
	})
	fmt.Fprintln(w, components.Card(u.Username, body))
}

func printReading(w io.Writer, progress []reading.Progress, titles map[int64]string) {
	if len(progress) == 0 {
		fmt.Fprintln(w, theme.Hint.Render("No books started. Use `bookquest start` to begin one."))
		return
	}
	fields := make([]components.Field, 0, len(progress))
	for _, p := range progress {
		state := fmt.Sprintf("chapter %d, %s done", p.CurrentChapter, plural(p.ChaptersCompleted, "chapter"))
		if p.Completed() {
			state = theme.Correct.Render("completed")
		}
		fields = append(fields, components.Field{Label: titles[p.BookID], Value: state})
	}
	fmt.Fprintln(w, components.Card("Reading", components.Fields(fields)))
}

func printHistory(w io.Writer, snaps []store.Snapshot) {
	if len(snaps) == 0 {
		fmt.Fprintln(w, theme.Hint.Render("No history yet."))
		return
	}
	lines := make([]string, 0, len(snaps))
	for _, s := range snaps {
		lines = append(lines, fmt.Sprintf("%s  level %d  %d XP total  streak %d  books %d",
			theme.Label.Render(s.Timestamp.Local().Format("2006-01-02 15:04")),
			s.Data.Level, s.Data.TotalXP, s.Data.ReadingStreak, s.Data.BooksComplete))
	}
	fmt.Fprintln(w, components.Card("History", strings.Join(lines, "\n")))
}
