package grading

import "github.com/abhisek/bookquest/internal/catalog"

// SingleMultiAnswer carries the selected options for single and multi
// choice questions.
type SingleMultiAnswer struct {
	SelectedOptionIDs []int64 `json:"selected_option_ids"`
}

// OrderingAnswer carries option ids in the order the learner arranged them.
type OrderingAnswer struct {
	Ordering []int64 `json:"ordering"`
}

// MatchingAnswer maps a left key to the right key the learner paired it with.
type MatchingAnswer struct {
	Matches map[string]string `json:"matches"`
}

// Submission is the answer to one question as sent by the learner. Exactly
// one payload variant is expected, chosen by the declared type.
type Submission struct {
	QuestionID  int64                `json:"question_id"`
	Type        catalog.QuestionType `json:"type"`
	SingleMulti *SingleMultiAnswer   `json:"single_multi,omitempty"`
	Ordering    *OrderingAnswer      `json:"ordering,omitempty"`
	Matching    *MatchingAnswer      `json:"matching,omitempty"`
}

// Payload is the normalized answer handed to the grader. Fields that do not
// apply to the question are left empty.
type Payload struct {
	SelectedOptionIDs []int64
	Ordering          []int64
	Matches           map[string]string
}

// PayloadFor extracts the payload matching the submission's declared type.
// A missing variant yields an empty payload, which grades as incorrect.
func PayloadFor(sub Submission) Payload {
	var p Payload
	switch sub.Type {
	case catalog.SingleChoice, catalog.MultiChoice:
		if sub.SingleMulti != nil {
			p.SelectedOptionIDs = sub.SingleMulti.SelectedOptionIDs
		}
	case catalog.Ordering:
		if sub.Ordering != nil {
			p.Ordering = sub.Ordering.Ordering
		}
	case catalog.Matching:
		if sub.Matching != nil {
			p.Matches = sub.Matching.Matches
		}
	}
	return p
}

// RawAnswer is the verbatim payload stored for audit, keeping every variant
// the learner sent regardless of the declared type.
type RawAnswer struct {
	SelectedOptionIDs []int64           `json:"selected_option_ids,omitempty"`
	Ordering          []int64           `json:"ordering,omitempty"`
	Matches           map[string]string `json:"matches,omitempty"`
}

// Raw returns the audit copy of the submission's payload.
func (s Submission) Raw() RawAnswer {
	var r RawAnswer
	if s.SingleMulti != nil {
		r.SelectedOptionIDs = s.SingleMulti.SelectedOptionIDs
	}
	if s.Ordering != nil {
		r.Ordering = s.Ordering.Ordering
	}
	if s.Matching != nil {
		r.Matches = s.Matching.Matches
	}
	return r
}
