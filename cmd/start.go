package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start reading a book so quizzes advance your progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		bookID, _ := cmd.Flags().GetInt64("book")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		u, err := lookupUser(cmd, e)
		if err != nil {
			return err
		}
		book, err := e.store.Repos().Catalog().Book(cmd.Context(), bookID)
		if err != nil {
			return fmt.Errorf("book %d: %w", bookID, err)
		}
		p, err := e.attempts().StartBook(cmd.Context(), u.ID, bookID)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s is reading %q: chapter %d of %d, %d completed (%s).\n",
			u.Username, book.Title, p.CurrentChapter, book.TotalChapters, p.ChaptersCompleted, p.Status)
		return nil
	},
}

func init() {
	startCmd.Flags().String("user", "", "Username")
	startCmd.Flags().Int64("book", 0, "Book id")
	_ = startCmd.MarkFlagRequired("user")
	_ = startCmd.MarkFlagRequired("book")
}
