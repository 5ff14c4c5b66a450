package logger

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/AbhiraajV/brainlm/internal/errortypes"
)

func newTestLogger(level LogLevel, format LogFormat) (*Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	l := New(&Config{
		Level:  level,
		Format: format,
		Output: buf,
	})
	return l, buf
}

func TestLevelFiltering(t *testing.T) {
	l, buf := newTestLogger(WARN, TEXT)

	l.Debug("debug message")
	l.Info("info message")
	if buf.Len() != 0 {
		t.Errorf("expected no output below WARN, got %q", buf.String())
	}

	l.Warn("warn message")
	l.Error("error message")

	output := buf.String()
	if !strings.Contains(output, "warn message") || !strings.Contains(output, "error message") {
		t.Errorf("expected warn and error messages, got %q", output)
	}
}

func TestTextFormatIncludesContextAndFields(t *testing.T) {
	l, buf := newTestLogger(DEBUG, TEXT)

	l.WithContext("pipeline").WithField("event_id", "ev-42").Info("interpreting event")

	output := buf.String()
	if !strings.Contains(output, "[pipeline]") {
		t.Errorf("expected context path in output, got %q", output)
	}
	if !strings.Contains(output, "event_id=ev-42") {
		t.Errorf("expected field in output, got %q", output)
	}
	if !strings.Contains(output, "[INFO]") {
		t.Errorf("expected level name in output, got %q", output)
	}
}

func TestJSONFormat(t *testing.T) {
	l, buf := newTestLogger(DEBUG, JSON)

	l.WithField("event_id", "ev-42").Info("interpreting event")

	output := buf.String()
	if !strings.HasPrefix(output, "{") {
		t.Errorf("expected JSON object, got %q", output)
	}
	if !strings.Contains(output, "\"event_id\":\"ev-42\"") {
		t.Errorf("expected event_id entry, got %q", output)
	}
	if !strings.Contains(output, "\"level\":\"INFO\"") {
		t.Errorf("expected level entry, got %q", output)
	}
}

func TestWithFieldDoesNotMutateParent(t *testing.T) {
	l, buf := newTestLogger(DEBUG, TEXT)

	child := l.WithField("child_only", "yes")
	l.Info("parent message")

	if strings.Contains(buf.String(), "child_only") {
		t.Errorf("parent logger picked up child field: %q", buf.String())
	}

	buf.Reset()
	child.Info("child message")
	if !strings.Contains(buf.String(), "child_only=yes") {
		t.Errorf("child logger lost its field: %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"debug":    DEBUG,
		"INFO":     INFO,
		"Warn":     WARN,
		"error":    ERROR,
		"FATAL":    FATAL,
		"disabled": DISABLED,
		"bogus":    INFO,
		"":         INFO,
	}

	for input, want := range cases {
		if got := ParseLevel(input); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestLogErrorStructured(t *testing.T) {
	l, buf := newTestLogger(DEBUG, TEXT)
	old := GetDefaultLogger()
	SetDefaultLogger(l)
	defer SetDefaultLogger(old)

	err := errortypes.PersistenceError(errors.New("disk full"), "transaction failed").
		WithField("event_id", "ev-9")
	LogError(err)

	output := buf.String()
	if !strings.Contains(output, "transaction failed") {
		t.Errorf("expected error message, got %q", output)
	}
	if !strings.Contains(output, "error_type=persistence_failure") {
		t.Errorf("expected error type field, got %q", output)
	}
	if !strings.Contains(output, "event_id=ev-9") {
		t.Errorf("expected error field, got %q", output)
	}
}
