// Package store persists the coaching domain data the built-in tools read
// and write: client profiles, coaching notes, biometric samples and chat
// message history. It is backed by SQLite via database/sql.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Client is a coached person's profile.
type Client struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Goals     string    `json:"goals,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Note is a free-form coaching note attached to a client.
type Note struct {
	ID        string    `json:"id"`
	ClientID  string    `json:"client_id"`
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// BiometricSample is one measured value for a client (weight, resting heart
// rate, sleep duration and so on).
type BiometricSample struct {
	ID         string    `json:"id"`
	ClientID   string    `json:"client_id"`
	Kind       string    `json:"kind"`
	Value      float64   `json:"value"`
	Unit       string    `json:"unit"`
	Source     string    `json:"source,omitempty"` // "manual", "fitbit", ...
	RecordedAt time.Time `json:"recorded_at"`
}

// ChatMessage is one message from the coach/client message history.
type ChatMessage struct {
	ID       string    `json:"id"`
	ClientID string    `json:"client_id"`
	Sender   string    `json:"sender"` // "coach" or "client"
	Body     string    `json:"body"`
	SentAt   time.Time `json:"sent_at"`
}

// RawFitbitRecord is an unprocessed device payload as synced, kept verbatim
// for cross-client analysis.
type RawFitbitRecord struct {
	ID       string    `json:"id"`
	ClientID string    `json:"client_id"`
	Kind     string    `json:"kind"`
	Payload  string    `json:"payload"` // raw JSON from the sync job
	SyncedAt time.Time `json:"synced_at"`
}

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = fmt.Errorf("not found")

// Store wraps a SQLite database holding the coaching domain tables.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at dsn and installs the schema.
// Use ":memory:" for an ephemeral database.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		dsn = ":memory:"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	s := &Store{db: db}
	if err := s.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewFromDB wraps an existing database handle and installs the schema.
func NewFromDB(ctx context.Context, db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

var schemaStmts = []string{
	`CREATE TABLE IF NOT EXISTS clients (
		id         TEXT PRIMARY KEY,
		full_name  TEXT NOT NULL,
		email      TEXT NOT NULL,
		goals      TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS notes (
		id         TEXT PRIMARY KEY,
		client_id  TEXT NOT NULL REFERENCES clients (id) ON DELETE CASCADE,
		author     TEXT NOT NULL,
		body       TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_notes_client ON notes (client_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS biometric_samples (
		id          TEXT PRIMARY KEY,
		client_id   TEXT NOT NULL REFERENCES clients (id) ON DELETE CASCADE,
		kind        TEXT NOT NULL,
		value       REAL NOT NULL,
		unit        TEXT NOT NULL,
		source      TEXT NOT NULL DEFAULT 'manual',
		recorded_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_biometrics_client ON biometric_samples (client_id, kind, recorded_at)`,
	`CREATE TABLE IF NOT EXISTS chat_messages (
		id        TEXT PRIMARY KEY,
		client_id TEXT NOT NULL REFERENCES clients (id) ON DELETE CASCADE,
		sender    TEXT NOT NULL CHECK (sender IN ('coach', 'client')),
		body      TEXT NOT NULL,
		sent_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_chat_messages_client ON chat_messages (client_id, sent_at)`,
	`CREATE TABLE IF NOT EXISTS raw_fitbit_data (
		id        TEXT PRIMARY KEY,
		client_id TEXT NOT NULL REFERENCES clients (id) ON DELETE CASCADE,
		kind      TEXT NOT NULL,
		payload   TEXT NOT NULL,
		synced_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_raw_fitbit_client ON raw_fitbit_data (client_id, synced_at)`,
}

func (s *Store) ensureSchema(ctx context.Context) error {
	for _, stmt := range schemaStmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema exec failed: %w", err)
		}
	}
	return nil
}

// CreateClient inserts a new client profile.
func (s *Store) CreateClient(ctx context.Context, c Client) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO clients (id, full_name, email, goals, created_at) VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.FullName, c.Email, c.Goals, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert client: %w", err)
	}
	return nil
}

// GetClient loads one client profile by id.
func (s *Store) GetClient(ctx context.Context, id string) (Client, error) {
	var c Client
	row := s.db.QueryRowContext(ctx,
		`SELECT id, full_name, email, goals, created_at FROM clients WHERE id = ?`, id)
	switch err := row.Scan(&c.ID, &c.FullName, &c.Email, &c.Goals, &c.CreatedAt); err {
	case nil:
		return c, nil
	case sql.ErrNoRows:
		return Client{}, fmt.Errorf("client %q: %w", id, ErrNotFound)
	default:
		return Client{}, fmt.Errorf("load client: %w", err)
	}
}

// ListClients returns all client profiles ordered by name.
func (s *Store) ListClients(ctx context.Context) ([]Client, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, full_name, email, goals, created_at FROM clients ORDER BY full_name`)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var clients []Client
	for rows.Next() {
		var c Client
		if err := rows.Scan(&c.ID, &c.FullName, &c.Email, &c.Goals, &c.CreatedAt); err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

// AddNote appends a coaching note for a client.
func (s *Store) AddNote(ctx context.Context, n Note) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notes (id, client_id, author, body, created_at) VALUES (?, ?, ?, ?, ?)`,
		n.ID, n.ClientID, n.Author, n.Body, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert note: %w", err)
	}
	return nil
}

// ListNotes returns a client's notes, newest first, capped by limit
// (0 means no cap).
func (s *Store) ListNotes(ctx context.Context, clientID string, limit int) ([]Note, error) {
	query := `SELECT id, client_id, author, body, created_at FROM notes
		WHERE client_id = ? ORDER BY created_at DESC`
	args := []any{clientID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	var notes []Note
	for rows.Next() {
		var n Note
		if err := rows.Scan(&n.ID, &n.ClientID, &n.Author, &n.Body, &n.CreatedAt); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// AddBiometricSample records one measurement for a client.
func (s *Store) AddBiometricSample(ctx context.Context, b BiometricSample) error {
	if b.RecordedAt.IsZero() {
		b.RecordedAt = time.Now().UTC()
	}
	if b.Source == "" {
		b.Source = "manual"
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO biometric_samples (id, client_id, kind, value, unit, source, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.ClientID, b.Kind, b.Value, b.Unit, b.Source, b.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("insert biometric sample: %w", err)
	}
	return nil
}

// ListBiometrics returns a client's samples, optionally filtered by kind,
// newest first, capped by limit (0 means no cap).
func (s *Store) ListBiometrics(ctx context.Context, clientID, kind string, limit int) ([]BiometricSample, error) {
	query := `SELECT id, client_id, kind, value, unit, source, recorded_at FROM biometric_samples
		WHERE client_id = ?`
	args := []any{clientID}
	if kind != "" {
		query += ` AND kind = ?`
		args = append(args, kind)
	}
	query += ` ORDER BY recorded_at DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list biometrics: %w", err)
	}
	defer rows.Close()

	var samples []BiometricSample
	for rows.Next() {
		var b BiometricSample
		if err := rows.Scan(&b.ID, &b.ClientID, &b.Kind, &b.Value, &b.Unit, &b.Source, &b.RecordedAt); err != nil {
			return nil, err
		}
		samples = append(samples, b)
	}
	return samples, rows.Err()
}

// AddChatMessage appends one message to a client's history.
func (s *Store) AddChatMessage(ctx context.Context, m ChatMessage) error {
	if m.SentAt.IsZero() {
		m.SentAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_messages (id, client_id, sender, body, sent_at) VALUES (?, ?, ?, ?, ?)`,
		m.ID, m.ClientID, m.Sender, m.Body, m.SentAt,
	)
	if err != nil {
		return fmt.Errorf("insert chat message: %w", err)
	}
	return nil
}

// ListChatMessages returns a client's message history, newest first, capped
// by limit (0 means no cap).
func (s *Store) ListChatMessages(ctx context.Context, clientID string, limit int) ([]ChatMessage, error) {
	query := `SELECT id, client_id, sender, body, sent_at FROM chat_messages
		WHERE client_id = ? ORDER BY sent_at DESC`
	args := []any{clientID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list chat messages: %w", err)
	}
	defer rows.Close()

	var msgs []ChatMessage
	for rows.Next() {
		var m ChatMessage
		if err := rows.Scan(&m.ID, &m.ClientID, &m.Sender, &m.Body, &m.SentAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// AddRawFitbitRecord stores one raw device payload.
func (s *Store) AddRawFitbitRecord(ctx context.Context, r RawFitbitRecord) error {
	if r.SyncedAt.IsZero() {
		r.SyncedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO raw_fitbit_data (id, client_id, kind, payload, synced_at) VALUES (?, ?, ?, ?, ?)`,
		r.ID, r.ClientID, r.Kind, r.Payload, r.SyncedAt,
	)
	if err != nil {
		return fmt.Errorf("insert raw fitbit record: %w", err)
	}
	return nil
}

// ListRawFitbitRecords returns raw device payloads across all clients,
// optionally filtered by kind, newest first, capped by limit (0 means no cap).
func (s *Store) ListRawFitbitRecords(ctx context.Context, kind string, limit int) ([]RawFitbitRecord, error) {
	query := `SELECT id, client_id, kind, payload, synced_at FROM raw_fitbit_data`
	var args []any
	if kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, kind)
	}
	query += ` ORDER BY synced_at DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list raw fitbit records: %w", err)
	}
	defer rows.Close()

	var records []RawFitbitRecord
	for rows.Next() {
		var r RawFitbitRecord
		if err := rows.Scan(&r.ID, &r.ClientID, &r.Kind, &r.Payload, &r.SyncedAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
