package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/bookquest/internal/attempt"
	"github.com/abhisek/bookquest/internal/grading"
	"github.com/abhisek/bookquest/internal/ui/components"
	"github.com/abhisek/bookquest/internal/ui/theme"
)

var submitCmd = &cobra.Command{
	Use:   "submit <answers.json|answers.yaml>",
	Short: "Grade a quiz submission and apply the XP, level and streak changes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read submission: %w", err)
		}
		doc, err := grading.ParseDocument(args[0], data)
		if err != nil {
			return err
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		u, err := lookupUser(cmd, e)
		if err != nil {
			return err
		}
		res, err := e.attempts().Submit(cmd.Context(), u.ID, doc.QuizID, doc.Answers)
		if err != nil {
			return err
		}

		if asJSON {
			return writeJSON(cmd.OutOrStdout(), res)
		}
		printResult(cmd.OutOrStdout(), res)
		return nil
	},
}

func init() {
	submitCmd.Flags().String("user", "", "Username")
	submitCmd.Flags().Bool("json", false, "Print the result as JSON")
	_ = submitCmd.MarkFlagRequired("user")
}

func printResult(w io.Writer, res *attempt.Result) {
	var marks []string
	for _, qr := range res.QuestionResults {
		if qr.Correct {
			marks = append(marks, theme.Correct.Render(fmt.Sprintf("✓ %d", qr.QuestionID)))
		} else {
			marks = append(marks, theme.Incorrect.Render(fmt.Sprintf("✗ %d", qr.QuestionID)))
		}
	}

	score := fmt.Sprintf("%d/%d correct", res.Correct, res.Total)
	if res.IsPerfect {
		score = theme.Correct.Render(score + ", perfect!")
	}
	fields := []components.Field{
		{Label: "Score", Value: score},
		{Label: "XP earned", Value: fmt.Sprintf("%d", res.XPEarned)},
		{Label: "Level", Value: fmt.Sprintf("%d", res.NewLevel)},
		{Label: "Streak", Value: plural(res.Streak, "day")},
	}
	if res.CompletionXP > 0 {
		fields = append(fields, components.Field{Label: "Book bonus", Value: fmt.Sprintf("%d XP", res.CompletionXP)})
	}
	if len(marks) > 0 {
		fields = append(fields, components.Field{Label: "Questions", Value: strings.Join(marks, "  ")})
	}

	body := components.Fields(fields)
	if res.LeveledUp {
		levels := make([]string, len(res.LevelsGained))
		for i, l := range res.LevelsGained {
			levels[i] = fmt.Sprintf("%d", l)
		}
		body += "\n\n" + theme.Celebrate.Render("Level up! Reached level "+strings.Join(levels, ", "))
	}
	if res.BookCompleted {
		body += "\n" + theme.Celebrate.Render("Book completed!")
	}
	body += "\n" + theme.Hint.Render("attempt "+res.AttemptRef)

	fmt.Fprintln(w, components.Card("Quiz result", body))
}
