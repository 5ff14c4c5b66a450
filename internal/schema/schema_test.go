package schema

import (
	"encoding/json"
	"strings"
	"testing"
)

// decode parses raw JSON the way the pipeline does before validation.
func decode(t *testing.T, raw string) interface{} {
	t.Helper()
	var value interface{}
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		t.Fatalf("test fixture is not valid JSON: %v", err)
	}
	return value
}

func TestValidateDocumentAccepts(t *testing.T) {
	cases := []struct {
		name   string
		length int
	}{
		{"minimum length", MinInterpretationLength},
		{"typical length", 1200},
		{"maximum length", MaxInterpretationLength},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			text := strings.Repeat("a", tc.length)
			raw, _ := json.Marshal(map[string]string{"interpretation": text})

			doc, violation := ValidateDocument(decode(t, string(raw)))
			if violation != nil {
				t.Fatalf("unexpected violation: %v", violation)
			}
			if doc.Interpretation != text {
				t.Error("validated document does not carry the original text")
			}
		})
	}
}

func TestValidateDocumentRejects(t *testing.T) {
	longText := strings.Repeat("a", MaxInterpretationLength+1)
	longRaw, _ := json.Marshal(map[string]string{"interpretation": longText})

	cases := []struct {
		name   string
		raw    string
		reason Reason
	}{
		{"missing field", `{"analysis":"wrong key"}`, ReasonMissingField},
		{"empty object", `{}`, ReasonMissingField},
		{"wrong field type", `{"interpretation":12345}`, ReasonWrongType},
		{"null field", `{"interpretation":null}`, ReasonWrongType},
		{"not an object", `"just a string"`, ReasonWrongType},
		{"array", `[1,2,3]`, ReasonWrongType},
		{"too short", `{"interpretation":"brief"}`, ReasonTooShort},
		{"one under minimum", mustJSON(map[string]string{"interpretation": strings.Repeat("a", MinInterpretationLength-1)}), ReasonTooShort},
		{"too long", string(longRaw), ReasonTooLong},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc, violation := ValidateDocument(decode(t, tc.raw))
			if doc != nil {
				t.Fatal("expected nil document for invalid input")
			}
			if violation == nil {
				t.Fatal("expected a violation")
			}
			if violation.Reason != tc.reason {
				t.Errorf("got reason %q, want %q (message: %s)", violation.Reason, tc.reason, violation.Message)
			}
			if violation.Message == "" {
				t.Error("violation message must not be empty")
			}
		})
	}
}

func TestValidateDocumentCountsCodePoints(t *testing.T) {
	// 200 multi-byte runes are exactly at the minimum even though the
	// UTF-8 byte length is far larger.
	text := strings.Repeat("ü", MinInterpretationLength)
	raw, _ := json.Marshal(map[string]string{"interpretation": text})

	doc, violation := ValidateDocument(decode(t, string(raw)))
	if violation != nil {
		t.Fatalf("unexpected violation for code-point boundary: %v", violation)
	}
	if doc.Interpretation != text {
		t.Error("validated document does not carry the original text")
	}
}

func TestViolationError(t *testing.T) {
	_, violation := ValidateDocument(decode(t, `{}`))
	if violation == nil {
		t.Fatal("expected a violation")
	}
	if !strings.Contains(violation.Error(), string(ReasonMissingField)) {
		t.Errorf("Error() should include the reason: %q", violation.Error())
	}
}

func mustJSON(v interface{}) string {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(raw)
}
