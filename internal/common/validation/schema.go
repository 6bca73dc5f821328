// internal/common/validation/schema.go

// Package validation checks posting submissions against a JSON schema before
// normalization. The schema enforces types and the duration/budget label
// enumerations, which keeps codec errors unreachable from user input.
package validation

import (
	"github.com/xeipuuv/gojsonschema"

	"tradeboard/internal/rank"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var submissionSchema = gojsonschema.NewGoLoader(buildSubmissionSchema())

func buildSubmissionSchema() map[string]interface{} {
	str := map[string]interface{}{"type": "string"}

	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"firstName":     str,
			"lastName":      str,
			"email":         str,
			"phoneNumber":   str,
			"address":       str,
			"postalCode":    str,
			"city":          str,
			"provinceState": str,
			"country":       str,
			"title":         str,
			"description":   str,
			"skills": map[string]interface{}{
				"type":  "array",
				"items": str,
			},
			"duration": map[string]interface{}{
				"type": "string",
				"enum": rank.Durations.Labels(),
			},
			"budget": map[string]interface{}{
				"type": "string",
				"enum": rank.Budgets.Labels(),
			},
			"currency": str,
		},
		// The form always submits duration and budget; everything else
		// defaults to empty during normalization.
		"required": []string{"duration", "budget"},
	}
}

// ValidateSubmission validates a raw POST /jobs body against the submission
// schema with per-field errors.
func ValidateSubmission(body []byte) (*ValidationResult, error) {
	result, err := gojsonschema.Validate(submissionSchema, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return nil, err
	}

	if result.Valid() {
		return &ValidationResult{Valid: true}, nil
	}

	out := &ValidationResult{Valid: false}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
		})
	}
	return out, nil
}
