// Package schema validates untrusted LLM output before it is trusted as
// an interpretation document. The completion gateway is a free-text
// generator with no structural guarantee, so everything it produces
// passes through this trust boundary first.
package schema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const (
	// MinInterpretationLength is the minimum accepted document length,
	// counted in Unicode code points.
	MinInterpretationLength = 200

	// MaxInterpretationLength is the maximum accepted document length.
	MaxInterpretationLength = 15000
)

// Reason identifies which constraint a candidate document violated.
type Reason string

// Violation reasons
const (
	ReasonMissingField Reason = "missing_field"
	ReasonWrongType    Reason = "wrong_type"
	ReasonTooShort     Reason = "too_short"
	ReasonTooLong      Reason = "too_long"
)

// Document is a validated interpretation document.
type Document struct {
	Interpretation string `json:"interpretation"`
}

// Violation describes a specific constraint failure. It is a normal,
// reportable outcome of validation, not an exceptional one.
type Violation struct {
	Reason  Reason
	Message string
}

// Error implements the error interface
func (v *Violation) Error() string {
	return fmt.Sprintf("%s: %s", v.Reason, v.Message)
}

var documentSchema = jsonschema.MustCompileString("interpretation.schema.json", fmt.Sprintf(`{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["interpretation"],
	"properties": {
		"interpretation": {
			"type": "string",
			"minLength": %d,
			"maxLength": %d
		}
	}
}`, MinInterpretationLength, MaxInterpretationLength))

// ValidateDocument checks whether value, the decoded result of parsing
// completion text as JSON, conforms to the interpretation document shape.
// It returns either the validated document or a Violation naming the
// broken constraint. It performs no I/O and never panics on malformed
// candidate values.
func ValidateDocument(value interface{}) (*Document, *Violation) {
	if err := documentSchema.Validate(value); err != nil {
		return nil, classify(err)
	}

	// The schema guarantees this shape; the assertions cannot fail after
	// a successful validation.
	obj := value.(map[string]interface{})
	text := obj["interpretation"].(string)

	return &Document{Interpretation: text}, nil
}

// classify maps a jsonschema validation error onto the violation taxonomy.
func classify(err error) *Violation {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return &Violation{Reason: ReasonWrongType, Message: err.Error()}
	}

	leaf := deepestCause(ve)
	switch keywordOf(leaf) {
	case "required":
		return &Violation{
			Reason:  ReasonMissingField,
			Message: "document has no interpretation field",
		}
	case "minLength":
		return &Violation{
			Reason:  ReasonTooShort,
			Message: fmt.Sprintf("interpretation is shorter than %d characters", MinInterpretationLength),
		}
	case "maxLength":
		return &Violation{
			Reason:  ReasonTooLong,
			Message: fmt.Sprintf("interpretation is longer than %d characters", MaxInterpretationLength),
		}
	default:
		// Covers "type" at the root (value is not an object) and on the
		// interpretation property (value is not a string).
		return &Violation{
			Reason:  ReasonWrongType,
			Message: leaf.Message,
		}
	}
}

// deepestCause follows the first cause chain down to the leaf failure.
func deepestCause(ve *jsonschema.ValidationError) *jsonschema.ValidationError {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return ve
}

// keywordOf extracts the final schema keyword from a validation error's
// keyword location, e.g. ".../minLength" yields "minLength".
func keywordOf(ve *jsonschema.ValidationError) string {
	loc := ve.KeywordLocation
	if idx := strings.LastIndex(loc, "/"); idx >= 0 {
		return loc[idx+1:]
	}
	return loc
}
