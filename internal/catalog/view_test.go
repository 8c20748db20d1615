package catalog

import "testing"

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func TestLearnerView_StripsAnswerKeys(t *testing.T) {
	q := Quiz{
		ID:       1,
		IsActive: true,
		Questions: []Question{
			{ID: 10, Type: SingleChoice, Options: []Option{
				{ID: 100, Text: "a", IsCorrect: true},
				{ID: 101, Text: "b"},
			}},
			{ID: 11, Type: Ordering, Options: []Option{
				{ID: 110, Text: "first", OrderIndex: intPtr(1)},
			}},
			{ID: 12, Type: Matching, Options: []Option{
				{ID: 120, Text: "left", MatchKey: strPtr("k")},
			}},
		},
	}

	view := LearnerView(q)

	for _, question := range view.Questions {
		for _, opt := range question.Options {
			if opt.IsCorrect || opt.OrderIndex != nil || opt.MatchKey != nil {
				t.Errorf("question %d option %d still carries answer key: %+v", question.ID, opt.ID, opt)
			}
			if opt.Text == "" {
				t.Errorf("question %d option %d lost its text", question.ID, opt.ID)
			}
		}
	}

	// Original must be untouched.
	if !q.Questions[0].Options[0].IsCorrect {
		t.Error("LearnerView mutated the source quiz")
	}
	if q.Questions[1].Options[0].OrderIndex == nil {
		t.Error("LearnerView cleared OrderIndex on the source quiz")
	}
}

func TestQuestionType_Valid(t *testing.T) {
	for _, qt := range AllQuestionTypes() {
		if !qt.Valid() {
			t.Errorf("%q should be valid", qt)
		}
	}
	if QuestionType("essay").Valid() {
		t.Error("essay should not be valid")
	}
}

func TestQuiz_QuestionByID(t *testing.T) {
	q := Quiz{Questions: []Question{{ID: 1}, {ID: 2}}}
	got, ok := q.QuestionByID(2)
	if !ok || got.ID != 2 {
		t.Fatalf("QuestionByID(2) = %v, %v", got, ok)
	}
	if _, ok := q.QuestionByID(3); ok {
		t.Error("QuestionByID(3) should not be found")
	}
}
