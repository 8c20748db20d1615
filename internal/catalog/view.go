package catalog

// LearnerView returns a copy of the quiz with every answer key removed, so
// it can be shown to someone taking the quiz.
func LearnerView(q Quiz) Quiz {
	out := q
	out.Questions = make([]Question, len(q.Questions))
	for i, question := range q.Questions {
		question.Options = make([]Option, len(q.Questions[i].Options))
		for j, opt := range q.Questions[i].Options {
			question.Options[j] = Option{ID: opt.ID, Text: opt.Text}
		}
		out.Questions[i] = question
	}
	return out
}
