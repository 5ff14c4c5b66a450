package eventstore

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"crawshaw.io/sqlite"
	"crawshaw.io/sqlite/sqlitex"
	"github.com/google/uuid"

	"github.com/AbhiraajV/brainlm/internal/vector"
)

// SQLiteStore is an implementation of Store that uses SQLite. A single
// connection is shared across invocations and serialized with a mutex,
// matching the worker's low write volume.
type SQLiteStore struct {
	conn   *sqlite.Conn
	dbPath string
	mu     sync.Mutex
}

// NewSQLiteStore creates a new SQLiteStore instance.
func NewSQLiteStore() *SQLiteStore {
	return &SQLiteStore{}
}

// Initialize initializes the store with the given database path.
func (s *SQLiteStore) Initialize(dbPath string) error {
	s.dbPath = dbPath

	conn, err := sqlite.OpenConn(dbPath, sqlite.SQLITE_OPEN_CREATE|sqlite.SQLITE_OPEN_READWRITE)
	if err != nil {
		return fmt.Errorf("failed to open SQLite database: %w", err)
	}
	s.conn = conn

	if err := s.createTables(); err != nil {
		s.conn.Close()
		return fmt.Errorf("failed to create tables: %w", err)
	}

	return nil
}

// createTables creates the events and interpretations tables if they do
// not exist. The UNIQUE constraint on interpretations.event_id is the
// authoritative guard against concurrent duplicate creates.
func (s *SQLiteStore) createTables() error {
	script := `
	CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		content TEXT NOT NULL,
		occurred_at INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS interpretations (
		id TEXT PRIMARY KEY,
		event_id TEXT NOT NULL UNIQUE REFERENCES events(id),
		user_id TEXT NOT NULL,
		content TEXT NOT NULL,
		source TEXT NOT NULL,
		content_hash TEXT NOT NULL,
		embedding BLOB,
		created_at INTEGER NOT NULL
	);`

	return sqlitex.ExecScript(s.conn, script)
}

// Close closes the store and releases any resources.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// AddEvent records a new event.
func (s *SQLiteStore) AddEvent(ev *Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	insertSQL := `
	INSERT INTO events (id, user_id, content, occurred_at)
	VALUES (?, ?, ?, ?);`

	stmt, err := s.conn.Prepare(insertSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare event insert statement: %w", err)
	}
	defer stmt.Reset()

	// Bind parameters - indices in sqlite are 1-based
	stmt.BindText(1, ev.ID)
	stmt.BindText(2, ev.UserID)
	stmt.BindText(3, ev.Content)
	stmt.BindInt64(4, ev.OccurredAt.Unix())

	if _, err := stmt.Step(); err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}

	return nil
}

// GetEvent loads an event by id, selecting only the fields the pipeline
// needs downstream.
func (s *SQLiteStore) GetEvent(id string) (*Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	selectSQL := `
	SELECT user_id, content, occurred_at FROM events WHERE id = ?;`

	stmt, err := s.conn.Prepare(selectSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare event select statement: %w", err)
	}
	defer stmt.Reset()

	stmt.BindText(1, id)

	hasRow, err := stmt.Step()
	if err != nil {
		return nil, fmt.Errorf("failed to execute event select statement: %w", err)
	}
	if !hasRow {
		return nil, ErrEventNotFound
	}

	return &Event{
		ID:         id,
		UserID:     stmt.ColumnText(0),
		Content:    stmt.ColumnText(1),
		OccurredAt: time.Unix(stmt.ColumnInt64(2), 0).UTC(),
	}, nil
}

// ExistingInterpretationID returns the id of the interpretation for the
// given event, selecting only the identifier. Absence is reported as ""
// with a nil error, never as an error.
func (s *SQLiteStore) ExistingInterpretationID(eventID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	selectSQL := `
	SELECT id FROM interpretations WHERE event_id = ?;`

	stmt, err := s.conn.Prepare(selectSQL)
	if err != nil {
		return "", fmt.Errorf("failed to prepare interpretation lookup statement: %w", err)
	}
	defer stmt.Reset()

	stmt.BindText(1, eventID)

	hasRow, err := stmt.Step()
	if err != nil {
		return "", fmt.Errorf("failed to execute interpretation lookup statement: %w", err)
	}
	if !hasRow {
		return "", nil
	}

	return stmt.ColumnText(0), nil
}

// CreateInterpretation persists the interpretation row and its embedding
// vector inside one savepoint. The typed row insert and the BLOB write
// are separate statements, but both commit or neither does.
func (s *SQLiteStore) CreateInterpretation(in *Interpretation, embedding []byte) (id string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	release := sqlitex.Save(s.conn)
	defer func() {
		release(&err)
	}()

	id = uuid.NewString()
	createdAt := in.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	insertSQL := `
	INSERT INTO interpretations (id, event_id, user_id, content, source, content_hash, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?);`

	err = sqlitex.Exec(s.conn, insertSQL, nil,
		id, in.EventID, in.UserID, in.Content, in.Source, in.ContentHash, createdAt.Unix())
	if err != nil {
		code := sqlite.ErrCode(err)
		if code == sqlite.SQLITE_CONSTRAINT_UNIQUE || code == sqlite.SQLITE_CONSTRAINT_PRIMARYKEY {
			err = fmt.Errorf("%w: event %s", ErrDuplicateInterpretation, in.EventID)
			return "", err
		}
		err = fmt.Errorf("failed to insert interpretation: %w", err)
		return "", err
	}

	// The vector column is written through a raw parameterized statement
	// addressed by the generated id; the savepoint makes the pair atomic.
	updateSQL := `
	UPDATE interpretations SET embedding = ? WHERE id = ?;`

	if err = sqlitex.Exec(s.conn, updateSQL, nil, embedding, id); err != nil {
		err = fmt.Errorf("failed to write embedding: %w", err)
		return "", err
	}

	return id, nil
}

// GetInterpretation loads the interpretation for an event together with
// its encoded embedding.
func (s *SQLiteStore) GetInterpretation(eventID string) (*Interpretation, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	selectSQL := `
	SELECT id, user_id, content, source, content_hash, embedding, created_at
	FROM interpretations WHERE event_id = ?;`

	stmt, err := s.conn.Prepare(selectSQL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to prepare interpretation select statement: %w", err)
	}
	defer stmt.Reset()

	stmt.BindText(1, eventID)

	hasRow, err := stmt.Step()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to execute interpretation select statement: %w", err)
	}
	if !hasRow {
		return nil, nil, ErrInterpretationNotFound
	}

	in := &Interpretation{
		ID:          stmt.ColumnText(0),
		EventID:     eventID,
		UserID:      stmt.ColumnText(1),
		Content:     stmt.ColumnText(2),
		Source:      stmt.ColumnText(3),
		ContentHash: stmt.ColumnText(4),
		CreatedAt:   time.Unix(stmt.ColumnInt64(6), 0).UTC(),
	}

	// For binary data, create a buffer and use ColumnBytes to fill it
	embedding := make([]byte, stmt.ColumnLen(5))
	stmt.ColumnBytes(5, embedding)

	return in, embedding, nil
}

// SearchSimilar returns the contents of up to limit interpretations
// ranked by cosine similarity to the query embedding.
func (s *SQLiteStore) SearchSimilar(queryEmbedding []float32, limit int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	selectSQL := `
	SELECT id, content, embedding FROM interpretations
	ORDER BY created_at DESC;`

	stmt, err := s.conn.Prepare(selectSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare search statement: %w", err)
	}
	defer stmt.Reset()

	type result struct {
		content    string
		similarity float64
	}
	var results []result

	for {
		hasRow, err := stmt.Step()
		if err != nil {
			return nil, fmt.Errorf("failed to execute search statement: %w", err)
		}
		if !hasRow {
			break
		}

		id := stmt.ColumnText(0)
		content := stmt.ColumnText(1)

		embeddingBytes := make([]byte, stmt.ColumnLen(2))
		stmt.ColumnBytes(2, embeddingBytes)

		stored, err := vector.DecodeFloat32s(embeddingBytes)
		if err != nil {
			return nil, fmt.Errorf("failed to decode embedding for interpretation %s: %w", id, err)
		}

		similarity, err := vector.CosineSimilarity(queryEmbedding, stored)
		if err != nil {
			return nil, fmt.Errorf("failed to calculate similarity for interpretation %s: %w", id, err)
		}

		results = append(results, result{content: content, similarity: similarity})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].similarity > results[j].similarity
	})

	if limit > len(results) {
		limit = len(results)
	}

	top := make([]string, 0, limit)
	for i := 0; i < limit; i++ {
		top = append(top, results[i].content)
	}

	return top, nil
}
