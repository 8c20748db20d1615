// Package seed loads book catalogs and learner accounts from YAML or JSON
// files and imports them into the store.
package seed

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/bookquest/internal/catalog"
)

// Catalog is the top-level document of a seed file.
type Catalog struct {
	Users []UserSpec `json:"users" yaml:"users" validate:"dive"`
	Books []BookSpec `json:"books" yaml:"books" validate:"required,min=1,dive"`
}

type UserSpec struct {
	Username string `json:"username" yaml:"username" validate:"required,min=3,max=32"`
	Email    string `json:"email" yaml:"email" validate:"omitempty,email"`
}

type BookSpec struct {
	ID           int64         `json:"id" yaml:"id" validate:"gte=0"`
	Title        string        `json:"title" yaml:"title" validate:"required,max=255"`
	Author       string        `json:"author" yaml:"author" validate:"required,max=255"`
	Description  string        `json:"description" yaml:"description" validate:"max=2000"`
	Genre        string        `json:"genre" yaml:"genre" validate:"max=100"`
	Difficulty   string        `json:"difficulty" yaml:"difficulty" validate:"omitempty,oneof=beginner intermediate advanced"`
	Language     string        `json:"language" yaml:"language" validate:"omitempty,len=2"`
	ChapterXP    *int          `json:"chapter_xp" yaml:"chapter_xp" validate:"omitempty,gte=0,lte=1000000"`
	CompletionXP *int          `json:"completion_xp" yaml:"completion_xp" validate:"omitempty,gte=0,lte=1000000"`
	Chapters     []ChapterSpec `json:"chapters" yaml:"chapters" validate:"required,min=1,dive"`
}

type ChapterSpec struct {
	ID               int64     `json:"id" yaml:"id" validate:"gte=0"`
	Number           int       `json:"number" yaml:"number" validate:"required,gte=1"`
	Title            string    `json:"title" yaml:"title" validate:"required,max=255"`
	EstimatedMinutes int       `json:"estimated_minutes" yaml:"estimated_minutes" validate:"gte=0"`
	Quiz             *QuizSpec `json:"quiz" yaml:"quiz" validate:"omitempty"`
}

type QuizSpec struct {
	ID          int64          `json:"id" yaml:"id" validate:"gte=0"`
	Title       string         `json:"title" yaml:"title" validate:"required,max=255"`
	Description string         `json:"description" yaml:"description"`
	Active      *bool          `json:"active" yaml:"active"`
	XP          *int           `json:"xp" yaml:"xp" validate:"omitempty,gte=0,lte=1000000"`
	Questions   []QuestionSpec `json:"questions" yaml:"questions" validate:"required,min=1,dive"`
}

type QuestionSpec struct {
	ID      int64        `json:"id" yaml:"id" validate:"gte=0"`
	Type    string       `json:"type" yaml:"type" validate:"required,oneof=single_choice multi_choice ordering matching"`
	Text    string       `json:"text" yaml:"text" validate:"required"`
	Score   int          `json:"score" yaml:"score" validate:"gte=0"`
	Options []OptionSpec `json:"options" yaml:"options" validate:"required,min=1,dive"`
}

type OptionSpec struct {
	ID       int64   `json:"id" yaml:"id" validate:"gte=0"`
	Text     string  `json:"text" yaml:"text" validate:"required"`
	Correct  bool    `json:"correct" yaml:"correct"`
	Order    *int    `json:"order" yaml:"order" validate:"omitempty,gte=0"`
	MatchKey *string `json:"match_key" yaml:"match_key" validate:"omitempty,min=1"`
}

// ErrInvalidCatalog lists every problem found in a seed document.
type ErrInvalidCatalog struct {
	Problems []string
	Err      error
}

func (e *ErrInvalidCatalog) Error() string {
	return fmt.Sprintf("invalid catalog: %s", strings.Join(e.Problems, "; "))
}

func (e *ErrInvalidCatalog) Unwrap() error {
	return e.Err
}

var validate = validator.New()

// Parse decodes a seed document, choosing YAML or JSON by file extension,
// and validates it.
func Parse(name string, data []byte) (*Catalog, error) {
	var c Catalog
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&c); err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&c); err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
	}
	if err := Validate(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks struct tags first, then the rules that span several
// records: unique chapter numbers, unique explicit ids and the option
// fields each question type relies on.
func Validate(c *Catalog) error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			problems := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				problems = append(problems, fmt.Sprintf("%s fails %q", fe.Namespace(), fe.Tag()))
			}
			return &ErrInvalidCatalog{Problems: problems, Err: err}
		}
		return fmt.Errorf("validate catalog: %w", err)
	}

	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	users := make(map[string]bool)
	for _, u := range c.Users {
		if users[u.Username] {
			add("user %q listed twice", u.Username)
		}
		users[u.Username] = true
	}

	ids := map[string]map[int64]bool{"book": {}, "chapter": {}, "quiz": {}, "question": {}, "option": {}}
	seen := func(kind string, id int64) {
		if id == 0 {
			return
		}
		if ids[kind][id] {
			add("%s id %d used twice", kind, id)
		}
		ids[kind][id] = true
	}

	for _, b := range c.Books {
		seen("book", b.ID)
		numbers := make(map[int]bool)
		for _, ch := range b.Chapters {
			seen("chapter", ch.ID)
			if numbers[ch.Number] {
				add("book %q: chapter %d listed twice", b.Title, ch.Number)
			}
			numbers[ch.Number] = true
			if ch.Quiz == nil {
				continue
			}
			seen("quiz", ch.Quiz.ID)
			for qi, q := range ch.Quiz.Questions {
				seen("question", q.ID)
				where := fmt.Sprintf("book %q chapter %d question %d", b.Title, ch.Number, qi+1)
				checkQuestion(q, where, add)
				for _, o := range q.Options {
					seen("option", o.ID)
				}
			}
		}
	}

	if len(problems) > 0 {
		return &ErrInvalidCatalog{Problems: problems}
	}
	return nil
}

func checkQuestion(q QuestionSpec, where string, add func(string, ...any)) {
	switch catalog.QuestionType(q.Type) {
	case catalog.SingleChoice, catalog.MultiChoice:
		correct := 0
		for _, o := range q.Options {
			if o.Correct {
				correct++
			}
		}
		if correct == 0 {
			add("%s: no correct option", where)
		}
		if q.Type == string(catalog.SingleChoice) && correct > 1 {
			add("%s: single choice with %d correct options", where, correct)
		}
	case catalog.Ordering:
		for _, o := range q.Options {
			if o.Order == nil {
				add("%s: option %q has no order", where, o.Text)
			}
		}
	case catalog.Matching:
		keys := 0
		for _, o := range q.Options {
			if o.MatchKey != nil {
				keys++
			}
		}
		if keys == 0 {
			add("%s: no option has a match key", where)
		}
	}
}
