package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/bookquest/internal/seed"
)

var seedCmd = &cobra.Command{
	Use:   "seed <catalog.yaml|catalog.json>",
	Short: "Import books, chapters, quizzes and users from a catalog file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read catalog: %w", err)
		}
		c, err := seed.Parse(args[0], data)
		if err != nil {
			return err
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		im := seed.NewImporter(e.store, seed.Defaults{
			ChapterXP:    e.cfg.DefaultChapterXP,
			CompletionXP: e.cfg.DefaultCompletionXP,
		}, e.log)
		sum, err := im.Import(cmd.Context(), c)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d books, %d chapters, %d quizzes (%d questions) and %d new users.\n",
			sum.Books, sum.Chapters, sum.Quizzes, sum.Questions, sum.Users)
		return nil
	},
}
