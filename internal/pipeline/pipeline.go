// Package pipeline implements the interpretation pipeline: the
// idempotent workflow that takes an event id, generates a validated
// interpretation document from a completion provider, embeds it, and
// commits the document and its vector as one durable unit.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/AbhiraajV/brainlm/internal/errortypes"
	"github.com/AbhiraajV/brainlm/internal/eventstore"
	"github.com/AbhiraajV/brainlm/internal/llm"
	"github.com/AbhiraajV/brainlm/internal/logger"
	"github.com/AbhiraajV/brainlm/internal/prompts"
	"github.com/AbhiraajV/brainlm/internal/schema"
	"github.com/AbhiraajV/brainlm/internal/telemetry"
	"github.com/AbhiraajV/brainlm/internal/util"
	"github.com/AbhiraajV/brainlm/internal/vector"
)

// Skip reasons reported on success-skip results.
const (
	SkipReasonAlreadyExists = "interpretation already exists"
	SkipReasonLostRace      = "concurrent invocation created the interpretation first"
)

// Result is the outcome of one pipeline invocation. A skipped result is
// a success: the interpretation already existed, either before the
// invocation started or because a concurrent writer won the race.
type Result struct {
	InterpretationID string
	Skipped          bool
	SkipReason       string
}

// promptPayload is the structured user-role message sent to the
// completion provider.
type promptPayload struct {
	Content    string `json:"content"`
	OccurredAt string `json:"occurred_at"`
}

// Pipeline orchestrates the interpretation workflow. Invocations for
// different events may run concurrently; the store's uniqueness
// constraint is the authoritative guard for same-event races.
type Pipeline struct {
	store    eventstore.Store
	provider llm.CompletionProvider
	embedder vector.Embedder
	prompt   prompts.Config
	logger   *logger.Logger
	metrics  *telemetry.MetricsCollector
}

// New creates a Pipeline from its collaborators. A nil logger falls back
// to the default logger; a nil metrics collector disables recording.
func New(store eventstore.Store, provider llm.CompletionProvider, embedder vector.Embedder, prompt prompts.Config, log *logger.Logger, metrics *telemetry.MetricsCollector) *Pipeline {
	if log == nil {
		log = logger.GetDefaultLogger()
	}
	if metrics == nil {
		metrics = telemetry.NewMetricsCollector()
	}
	return &Pipeline{
		store:    store,
		provider: provider,
		embedder: embedder,
		prompt:   prompt,
		logger:   log.WithContext("pipeline"),
		metrics:  metrics,
	}
}

// Run executes the pipeline for one event id. It either returns a
// Result or a typed failure; no partial interpretation is ever left in
// the store. Retrying is the caller's responsibility, and the
// idempotency check makes re-invocation safe.
func (p *Pipeline) Run(ctx context.Context, eventID string) (*Result, error) {
	start := time.Now()
	p.metrics.IncrementCounter(telemetry.MetricPipelineRuns, 1)

	result, err := p.run(ctx, eventID)
	p.metrics.RecordTimer(telemetry.MetricTotalTime, time.Since(start))

	if err != nil {
		p.metrics.IncrementCounter(telemetry.MetricPipelineFailure, 1)
		p.metrics.IncrementCounter(failureMetric(err), 1)
		return nil, err
	}

	if result.Skipped {
		p.metrics.IncrementCounter(telemetry.MetricPipelineSkipped, 1)
	} else {
		p.metrics.IncrementCounter(telemetry.MetricPipelineSuccess, 1)
	}
	return result, nil
}

func (p *Pipeline) run(ctx context.Context, eventID string) (*Result, error) {
	log := p.logger.WithField("event_id", eventID)

	// Idempotency check. A lookup failure is an infrastructure failure,
	// never treated as "no existing record".
	existingID, err := p.store.ExistingInterpretationID(eventID)
	if err != nil {
		return nil, errortypes.PersistenceError(err, "failed to check for existing interpretation").
			WithField("event_id", eventID)
	}
	if existingID != "" {
		log.Debug("Interpretation %s already exists, skipping", existingID)
		return &Result{
			InterpretationID: existingID,
			Skipped:          true,
			SkipReason:       SkipReasonAlreadyExists,
		}, nil
	}

	// Fetch the event.
	event, err := p.store.GetEvent(eventID)
	if err != nil {
		if errors.Is(err, eventstore.ErrEventNotFound) {
			return nil, errortypes.EventNotFoundError(err, fmt.Sprintf("event %s does not exist", eventID))
		}
		return nil, errortypes.PersistenceError(err, "failed to load event").
			WithField("event_id", eventID)
	}

	// Generate and validate the interpretation document.
	doc, err := p.generate(ctx, event)
	if err != nil {
		return nil, err
	}

	// Embed the validated text.
	embedStart := time.Now()
	embedding, err := p.embedder.CreateEmbedding(doc.Interpretation)
	p.metrics.RecordTimer(telemetry.MetricEmbeddingTime, time.Since(embedStart))
	if err != nil {
		return nil, errortypes.EmbeddingError(err, "failed to embed interpretation").
			WithField("event_id", eventID)
	}

	// Atomic persist: row and vector commit together or not at all.
	persistStart := time.Now()
	id, err := p.store.CreateInterpretation(&eventstore.Interpretation{
		EventID:     event.ID,
		UserID:      event.UserID,
		Content:     doc.Interpretation,
		Source:      eventstore.SourceAuto,
		ContentHash: util.ContentHash(doc.Interpretation),
	}, vector.EncodeFloat32s(embedding))
	p.metrics.RecordTimer(telemetry.MetricPersistTime, time.Since(persistStart))
	if err != nil {
		if eventstore.IsUniqueConflict(err) {
			// A concurrent invocation won the race. Its transaction is the
			// one that committed, so surface the stored id as a skip.
			p.metrics.IncrementCounter(telemetry.MetricUniquenessConflict, 1)
			winnerID, lookupErr := p.store.ExistingInterpretationID(eventID)
			if lookupErr != nil {
				return nil, errortypes.PersistenceError(lookupErr, "failed to resolve winning interpretation after conflict").
					WithField("event_id", eventID)
			}
			log.Debug("Lost creation race to interpretation %s, treating as skip", winnerID)
			return &Result{
				InterpretationID: winnerID,
				Skipped:          true,
				SkipReason:       SkipReasonLostRace,
			}, nil
		}
		return nil, errortypes.PersistenceError(err, "failed to persist interpretation").
			WithField("event_id", eventID)
	}

	log.WithField("content_length", len([]rune(doc.Interpretation))).
		Info("Interpretation %s created", id)

	return &Result{InterpretationID: id, Skipped: false}, nil
}

// generate runs the completion call, the structural decode, and the
// schema validation. The decode and the validation stay separate
// failure kinds: syntax errors mean the model produced non-JSON,
// schema violations mean well-formed JSON of the wrong shape.
func (p *Pipeline) generate(ctx context.Context, event *eventstore.Event) (*schema.Document, error) {
	payload, err := json.Marshal(promptPayload{
		Content:    event.Content,
		OccurredAt: event.OccurredAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return nil, errortypes.InternalError(err, "failed to serialize prompt payload")
	}

	responseFormat := p.prompt.ResponseFormat
	if responseFormat == "" {
		responseFormat = llm.ResponseFormatJSONObject
	}

	completionStart := time.Now()
	text, err := p.provider.Complete(ctx, llm.CompletionRequest{
		Model:          p.prompt.Model,
		Temperature:    p.prompt.Temperature,
		ResponseFormat: responseFormat,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: p.prompt.System},
			{Role: llm.RoleUser, Content: string(payload)},
		},
	})
	p.metrics.RecordTimer(telemetry.MetricCompletionTime, time.Since(completionStart))
	if err != nil {
		return nil, errortypes.EmptyCompletionError(err, "completion request failed").
			WithField("event_id", event.ID).
			WithField("provider", p.provider.Name())
	}
	if text == "" {
		return nil, errortypes.EmptyCompletionError(nil, "completion returned no usable text").
			WithField("event_id", event.ID).
			WithField("provider", p.provider.Name())
	}

	var decoded interface{}
	if err := json.Unmarshal([]byte(text), &decoded); err != nil {
		return nil, errortypes.InvalidCompletionFormatError(err, "completion text is not valid JSON").
			WithField("event_id", event.ID)
	}

	doc, violation := schema.ValidateDocument(decoded)
	if violation != nil {
		return nil, errortypes.SchemaViolationError(violation, "completion failed document validation").
			WithField("event_id", event.ID).
			WithField("reason", string(violation.Reason))
	}

	return doc, nil
}

// failureMetric maps a pipeline failure onto its per-kind counter.
func failureMetric(err error) string {
	switch errortypes.TypeOf(err) {
	case errortypes.ErrorTypeEventNotFound:
		return telemetry.MetricEventNotFound
	case errortypes.ErrorTypeEmptyCompletion:
		return telemetry.MetricEmptyCompletion
	case errortypes.ErrorTypeInvalidCompletionFormat:
		return telemetry.MetricInvalidFormat
	case errortypes.ErrorTypeSchemaViolation:
		return telemetry.MetricSchemaViolation
	case errortypes.ErrorTypeEmbedding:
		return telemetry.MetricEmbeddingFailure
	default:
		return telemetry.MetricPersistenceError
	}
}
