package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/abhisek/bookquest/internal/catalog"
	"github.com/abhisek/bookquest/internal/grading"
	"github.com/abhisek/bookquest/internal/store"
	"github.com/abhisek/bookquest/internal/ui/theme"
)

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Inspect chapter quizzes",
}

var quizShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the active quiz of a chapter without its answer key",
	RunE: func(cmd *cobra.Command, args []string) error {
		bookID, _ := cmd.Flags().GetInt64("book")
		number, _ := cmd.Flags().GetInt("chapter")
		asJSON, _ := cmd.Flags().GetBool("json")
		template, _ := cmd.Flags().GetBool("template")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ch, quiz, err := activeQuiz(cmd, e.store.Repos().Catalog(), bookID, number)
		if err != nil {
			return err
		}
		view := catalog.LearnerView(*quiz)

		out := cmd.OutOrStdout()
		switch {
		case template:
			return writeJSON(out, submissionTemplate(view))
		case asJSON:
			return writeJSON(out, newQuizView(ch, view))
		default:
			printQuiz(out, ch, view)
			return nil
		}
	},
}

func init() {
	quizShowCmd.Flags().Int64("book", 0, "Book id")
	quizShowCmd.Flags().Int("chapter", 1, "Chapter number")
	quizShowCmd.Flags().Bool("json", false, "Print the quiz as JSON")
	quizShowCmd.Flags().Bool("template", false, "Print an empty submission document for the quiz")
	_ = quizShowCmd.MarkFlagRequired("book")
	quizCmd.AddCommand(quizShowCmd)
}

func activeQuiz(cmd *cobra.Command, repo store.CatalogRepo, bookID int64, number int) (*catalog.Chapter, *catalog.Quiz, error) {
	ctx := cmd.Context()
	chapters, err := repo.ChaptersByBook(ctx, bookID)
	if err != nil {
		return nil, nil, err
	}
	for i := range chapters {
		if chapters[i].Number != number {
			continue
		}
		quiz, err := repo.ActiveQuizByChapter(ctx, chapters[i].ID)
		if err != nil {
			return nil, nil, fmt.Errorf("chapter %d of book %d: %w", number, bookID, err)
		}
		return &chapters[i], quiz, nil
	}
	return nil, nil, fmt.Errorf("chapter %d of book %d: %w", number, bookID, store.ErrNotFound)
}

type optionView struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
}

type questionView struct {
	ID      int64                `json:"id"`
	Type    catalog.QuestionType `json:"type"`
	Text    string               `json:"text"`
	Options []optionView         `json:"options"`
}

type quizView struct {
	ID          int64          `json:"id"`
	ChapterID   int64          `json:"chapter_id"`
	Chapter     int            `json:"chapter"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Questions   []questionView `json:"questions"`
}

func newQuizView(ch *catalog.Chapter, q catalog.Quiz) quizView {
	v := quizView{ID: q.ID, ChapterID: ch.ID, Chapter: ch.Number, Title: q.Title, Description: q.Description}
	for _, qu := range q.Questions {
		qv := questionView{ID: qu.ID, Type: qu.Type, Text: qu.Text}
		for _, o := range qu.Options {
			qv.Options = append(qv.Options, optionView{ID: o.ID, Text: o.Text})
		}
		v.Questions = append(v.Questions, qv)
	}
	return v
}

// submissionTemplate returns a document with one empty answer per question.
func submissionTemplate(q catalog.Quiz) grading.Document {
	doc := grading.Document{QuizID: q.ID, Answers: []grading.Submission{}}
	for _, qu := range q.Questions {
		sub := grading.Submission{QuestionID: qu.ID, Type: qu.Type}
		switch qu.Type {
		case catalog.SingleChoice, catalog.MultiChoice:
			sub.SingleMulti = &grading.SingleMultiAnswer{SelectedOptionIDs: []int64{}}
		case catalog.Ordering:
			sub.Ordering = &grading.OrderingAnswer{Ordering: []int64{}}
		case catalog.Matching:
			sub.Matching = &grading.MatchingAnswer{Matches: map[string]string{}}
		}
		doc.Answers = append(doc.Answers, sub)
	}
	return doc
}

func printQuiz(w io.Writer, ch *catalog.Chapter, q catalog.Quiz) {
	fmt.Fprintln(w, theme.Title.Render(fmt.Sprintf("Chapter %d: %s", ch.Number, q.Title)))
	if q.Description != "" {
		fmt.Fprintln(w, theme.Hint.Render(q.Description))
	}
	fmt.Fprintf(w, "Quiz %d, %d questions\n", q.ID, len(q.Questions))
	for i, qu := range q.Questions {
		fmt.Fprintf(w, "\n%d. %s %s\n", i+1, qu.Text, theme.Label.Render(fmt.Sprintf("[%s, question %d]", qu.Type.DisplayName(), qu.ID)))
		for _, o := range qu.Options {
			fmt.Fprintf(w, "   %s %s\n", theme.Label.Render(fmt.Sprintf("%4d", o.ID)), o.Text)
		}
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
