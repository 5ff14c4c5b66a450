// Package eventstore provides storage interfaces and implementations for
// the events and interpretations managed by the BrainLM worker.
package eventstore

import (
	"errors"
	"time"
)

// Provenance tags for interpretations.
const (
	// SourceAuto marks interpretations generated by the pipeline.
	SourceAuto = "auto"
)

// Event is an immutable recorded occurrence, owned by a user. The
// interpretation pipeline only ever reads events.
type Event struct {
	ID         string
	UserID     string
	Content    string
	OccurredAt time.Time
}

// Interpretation is the derived document generated from one event. Its
// content and embedding are always persisted together; at most one
// interpretation exists per event.
type Interpretation struct {
	ID          string
	EventID     string
	UserID      string
	Content     string
	Source      string
	ContentHash string
	CreatedAt   time.Time
}

// Sentinel errors returned by Store implementations.
var (
	// ErrEventNotFound is returned when an event id has no matching record.
	ErrEventNotFound = errors.New("event not found")

	// ErrInterpretationNotFound is returned when an event has no
	// interpretation yet.
	ErrInterpretationNotFound = errors.New("interpretation not found")

	// ErrDuplicateInterpretation is returned when a create hits the
	// uniqueness constraint on event_id, i.e. a concurrent writer won.
	ErrDuplicateInterpretation = errors.New("interpretation already exists for event")
)

// IsUniqueConflict reports whether err means an interpretation create
// lost the race against a concurrent writer for the same event.
func IsUniqueConflict(err error) bool {
	return errors.Is(err, ErrDuplicateInterpretation)
}

// Store defines the interface for storing and retrieving events and
// interpretations.
type Store interface {
	// Initialize initializes the store with configuration options.
	Initialize(dbPath string) error

	// Close closes the store and releases any resources.
	Close() error

	// AddEvent records a new event. The pipeline never calls this; it
	// exists for the ingestion surface and tests.
	AddEvent(ev *Event) error

	// GetEvent loads an event by id, returning ErrEventNotFound when the
	// id has no matching record.
	GetEvent(id string) (*Event, error)

	// ExistingInterpretationID returns the id of the interpretation for
	// the given event, or "" when none exists. A failing lookup returns
	// an error; absence is not an error.
	ExistingInterpretationID(eventID string) (string, error)

	// CreateInterpretation persists the interpretation row and its
	// embedding vector as one atomic unit and returns the generated row
	// id. A uniqueness-constraint loss returns ErrDuplicateInterpretation
	// and leaves the store untouched.
	CreateInterpretation(in *Interpretation, embedding []byte) (string, error)

	// GetInterpretation loads the interpretation for an event together
	// with its encoded embedding, returning ErrInterpretationNotFound
	// when the event has none.
	GetInterpretation(eventID string) (*Interpretation, []byte, error)

	// SearchSimilar returns the contents of up to limit interpretations
	// ranked by cosine similarity to the query embedding.
	SearchSimilar(queryEmbedding []float32, limit int) ([]string, error)
}
