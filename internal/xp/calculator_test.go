package xp

import (
	"testing"

	"github.com/abhisek/bookquest/internal/catalog"
)

func intPtr(v int) *int { return &v }

func TestCompute_BaseFallbacks(t *testing.T) {
	calc := NewCalculator(Config{QuizBaseXP: 100, StreakStep: 0})

	tests := []struct {
		name string
		quiz catalog.Quiz
		book *catalog.Book
		want int
	}{
		{"quiz override", catalog.Quiz{QuizXP: intPtr(40)}, &catalog.Book{ChapterXP: 70}, 40},
		{"zero override falls back to book", catalog.Quiz{QuizXP: intPtr(0)}, &catalog.Book{ChapterXP: 70}, 70},
		{"nil override falls back to book", catalog.Quiz{}, &catalog.Book{ChapterXP: 70}, 70},
		{"book without chapter xp", catalog.Quiz{}, &catalog.Book{}, 100},
		{"no book", catalog.Quiz{}, nil, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := calc.Compute(tt.quiz, tt.book, true, 0); got != tt.want {
				t.Errorf("Compute = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCompute_StreakBonus(t *testing.T) {
	calc := NewCalculator(Config{QuizBaseXP: 100, StreakStep: 3, StreakBonusXP: 50})
	quiz := catalog.Quiz{}

	tests := []struct {
		streak    int
		isPerfect bool
		want      int
	}{
		{0, true, 100},
		{1, true, 100},
		{2, true, 150}, // reaches 3
		{3, true, 100}, // reaches 4
		{5, true, 150}, // reaches 6
		{2, false, 100},
	}
	for _, tt := range tests {
		got := calc.Compute(quiz, nil, tt.isPerfect, tt.streak)
		if got != tt.want {
			t.Errorf("Compute(perfect=%v, streak=%d) = %d, want %d", tt.isPerfect, tt.streak, got, tt.want)
		}
	}
}

func TestCompute_StreakStepDisabled(t *testing.T) {
	for _, step := range []int{0, -2} {
		calc := NewCalculator(Config{QuizBaseXP: 10, StreakStep: step, StreakBonusXP: 50})
		if got := calc.Compute(catalog.Quiz{}, nil, true, 2); got != 10 {
			t.Errorf("step %d: Compute = %d, want 10", step, got)
		}
	}
}

func TestCompute_NeverNegative(t *testing.T) {
	calc := NewCalculator(DefaultConfig())
	if got := calc.Compute(catalog.Quiz{QuizXP: intPtr(-500)}, nil, false, 0); got != 0 {
		t.Errorf("Compute = %d, want 0", got)
	}
}

func TestBreakdown(t *testing.T) {
	calc := NewCalculator(DefaultConfig())
	b := calc.Breakdown(catalog.Quiz{QuizXP: intPtr(80)}, nil, true, 2)
	if b.Base != 80 || b.Bonus != DefaultStreakBonusXP || b.Total != 80+DefaultStreakBonusXP {
		t.Errorf("Breakdown = %+v", b)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.QuizBaseXP != 100 || cfg.StreakStep != 3 || cfg.StreakBonusXP != 50 {
		t.Errorf("DefaultConfig = %+v", cfg)
	}
}
