package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/bookquest/internal/ui/theme"
)

var attemptsCmd = &cobra.Command{
	Use:   "attempts",
	Short: "List a learner's quiz attempts, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		asJSON, _ := cmd.Flags().GetBool("json")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		u, err := lookupUser(cmd, e)
		if err != nil {
			return err
		}
		list, err := e.attempts().History(cmd.Context(), u.ID, limit)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if asJSON {
			return writeJSON(out, list)
		}
		if len(list) == 0 {
			fmt.Fprintln(out, theme.Hint.Render("No attempts yet."))
			return nil
		}
		for _, a := range list {
			mark := theme.Incorrect.Render("✗")
			if a.IsPerfect {
				mark = theme.Correct.Render("✓")
			}
			fmt.Fprintf(out, "%s %s  quiz %d  %d/%d  +%d XP  %s\n",
				mark, theme.Label.Render(a.FinishedAt.Local().Format("2006-01-02 15:04")),
				a.QuizID, a.CorrectQuestions, a.TotalQuestions, a.ScoreEarned,
				theme.Hint.Render(a.Ref))
		}
		return nil
	},
}

func init() {
	attemptsCmd.Flags().String("user", "", "Username")
	attemptsCmd.Flags().Int("limit", 20, "Maximum attempts to list (0 for all)")
	attemptsCmd.Flags().Bool("json", false, "Print the attempts as JSON")
	_ = attemptsCmd.MarkFlagRequired("user")
}
