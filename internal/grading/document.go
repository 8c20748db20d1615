package grading

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

// Document is a full quiz submission as read from a file.
type Document struct {
	QuizID  int64        `json:"quiz_id"`
	Answers []Submission `json:"answers"`
}

// ErrInvalidSubmission indicates a submission document that does not
// conform to the submission schema.
type ErrInvalidSubmission struct {
	Err error
}

func (e *ErrInvalidSubmission) Error() string {
	return fmt.Sprintf("invalid submission: %v", e.Err)
}

func (e *ErrInvalidSubmission) Unwrap() error { return e.Err }

// submissionSchema describes the accepted document shape. Payload variants
// are all optional so a missing answer is graded, not rejected.
var submissionSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"quiz_id": map[string]any{"type": "integer", "minimum": 1},
		"answers": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"question_id": map[string]any{"type": "integer"},
					"type": map[string]any{
						"type": "string",
						"enum": []any{"single_choice", "multi_choice", "ordering", "matching"},
					},
					"single_multi": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"selected_option_ids": map[string]any{
								"type":  "array",
								"items": map[string]any{"type": "integer"},
							},
						},
						"required": []any{"selected_option_ids"},
					},
					"ordering": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"ordering": map[string]any{
								"type":  "array",
								"items": map[string]any{"type": "integer"},
							},
						},
						"required": []any{"ordering"},
					},
					"matching": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"matches": map[string]any{
								"type":                 "object",
								"additionalProperties": map[string]any{"type": "string"},
							},
						},
						"required": []any{"matches"},
					},
				},
				"required": []any{"question_id", "type"},
			},
		},
	},
	"required": []any{"quiz_id", "answers"},
}

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func documentSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		// Round-trip through JSON so the compiler sees plain JSON values.
		raw, err := json.Marshal(submissionSchema)
		if err != nil {
			compileErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		def, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
		if err != nil {
			compileErr = fmt.Errorf("parse schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		const url = "schema://quiz-submission.json"
		if err := c.AddResource(url, def); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiled, compileErr = c.Compile(url)
	})
	return compiled, compileErr
}

// ValidateDocument checks raw JSON against the submission schema.
func ValidateDocument(raw []byte) error {
	schema, err := documentSchema()
	if err != nil {
		return fmt.Errorf("compile submission schema: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return &ErrInvalidSubmission{Err: fmt.Errorf("invalid JSON: %w", err)}
	}
	if err := schema.Validate(inst); err != nil {
		return &ErrInvalidSubmission{Err: err}
	}
	return nil
}

// ParseDocument validates and decodes a submission document. Files named
// *.yaml or *.yml are converted from YAML first; anything else is JSON.
func ParseDocument(name string, data []byte) (*Document, error) {
	raw := data
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		var err error
		raw, err = yamlToJSON(data)
		if err != nil {
			return nil, &ErrInvalidSubmission{Err: err}
		}
	}

	if err := ValidateDocument(raw); err != nil {
		return nil, err
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &ErrInvalidSubmission{Err: fmt.Errorf("decode: %w", err)}
	}
	return &doc, nil
}

func yamlToJSON(data []byte) ([]byte, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}
	out, err := json.Marshal(normalizeYAML(v))
	if err != nil {
		return nil, fmt.Errorf("convert YAML: %w", err)
	}
	return out, nil
}

// normalizeYAML rewrites non-string map keys (e.g. unquoted numeric match
// keys) so the value can be encoded as JSON.
func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = normalizeYAML(val)
		}
		return t
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[fmt.Sprint(k)] = normalizeYAML(val)
		}
		return m
	case []any:
		for i := range t {
			t[i] = normalizeYAML(t[i])
		}
		return t
	default:
		return v
	}
}
