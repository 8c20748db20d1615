// Package grading scores submitted answers against a question's answer key.
//
// Grading is all-or-nothing per question: there is no partial credit, and
// any question type the grader does not know is scored as incorrect.
package grading

import (
	"sort"

	"github.com/abhisek/bookquest/internal/catalog"
)

// Grade reports whether the payload is a correct answer to q. The stored
// question type decides the rule; the declared submission type is ignored.
func Grade(q catalog.Question, p Payload) bool {
	switch q.Type {
	case catalog.SingleChoice:
		return gradeChoice(p.SelectedOptionIDs, q.Options, false)
	case catalog.MultiChoice:
		return gradeChoice(p.SelectedOptionIDs, q.Options, true)
	case catalog.Ordering:
		return gradeOrdering(p.Ordering, q.Options)
	case catalog.Matching:
		return gradeMatching(p.Matches, q.Options)
	default:
		return false
	}
}

func gradeChoice(selected []int64, options []catalog.Option, multi bool) bool {
	chosen := make(map[int64]bool, len(selected))
	for _, id := range selected {
		chosen[id] = true
	}
	if !multi && len(chosen) != 1 {
		return false
	}

	correct := make(map[int64]bool)
	for _, opt := range options {
		if opt.IsCorrect {
			correct[opt.ID] = true
		}
	}

	if len(chosen) != len(correct) {
		return false
	}
	for id := range chosen {
		if !correct[id] {
			return false
		}
	}
	return true
}

func gradeOrdering(ordering []int64, options []catalog.Option) bool {
	expected := CanonicalOrder(options)
	if len(ordering) != len(expected) {
		return false
	}
	for i := range expected {
		if ordering[i] != expected[i] {
			return false
		}
	}
	return true
}

// CanonicalOrder returns option ids sorted by OrderIndex ascending, with a
// nil index sorting as 0. Ties keep their stored order.
func CanonicalOrder(options []catalog.Option) []int64 {
	sorted := make([]catalog.Option, len(options))
	copy(sorted, options)
	sort.SliceStable(sorted, func(i, j int) bool {
		return orderIndex(sorted[i]) < orderIndex(sorted[j])
	})
	ids := make([]int64, len(sorted))
	for i, opt := range sorted {
		ids[i] = opt.ID
	}
	return ids
}

func orderIndex(o catalog.Option) int {
	if o.OrderIndex == nil {
		return 0
	}
	return *o.OrderIndex
}

// gradeMatching accepts a mapping only when every known match key is
// present and paired with itself.
func gradeMatching(matches map[string]string, options []catalog.Option) bool {
	if len(matches) == 0 {
		return false
	}
	keys := make(map[string]bool)
	for _, opt := range options {
		if opt.MatchKey != nil {
			keys[*opt.MatchKey] = true
		}
	}
	for left, right := range matches {
		if !keys[left] || !keys[right] || left != right {
			return false
		}
	}
	return len(matches) == len(keys)
}
