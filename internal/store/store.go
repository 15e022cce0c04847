// Package store persists finished assessments. The primary store is a
// local SQLite database; an optional Postgres remote mirrors writes
// fire-and-forget for cross-device use.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/edwinckc/self-reflection-tool/internal/analysis"
)

type Store struct {
	db  *sql.DB
	log logrus.FieldLogger
}

func Open(dbPath string, log logrus.FieldLogger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating store dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening store db: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db, log: log}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS assessments (
			id           TEXT PRIMARY KEY,
			user_email   TEXT NOT NULL,
			doc          TEXT NOT NULL,
			generated_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_assessments_email ON assessments(user_email);
	`)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Upsert stores the assessment as one whole document: if a document
// already exists for the user it is replaced in place, otherwise a new
// one is inserted. There are no partial updates.
func (s *Store) Upsert(ctx context.Context, a *analysis.Assessment) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}

	var existingID string
	err := s.db.QueryRowContext(ctx,
		"SELECT id FROM assessments WHERE user_email = ?", a.UserEmail).Scan(&existingID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		doc, err := json.Marshal(a)
		if err != nil {
			return fmt.Errorf("encoding assessment: %w", err)
		}
		_, err = s.db.ExecContext(ctx,
			"INSERT INTO assessments (id, user_email, doc, generated_at) VALUES (?, ?, ?, ?)",
			a.ID, a.UserEmail, string(doc), a.GeneratedAt)
		if err != nil {
			return fmt.Errorf("inserting assessment: %w", err)
		}
	case err != nil:
		return fmt.Errorf("finding assessment for %s: %w", a.UserEmail, err)
	default:
		a.ID = existingID
		doc, err := json.Marshal(a)
		if err != nil {
			return fmt.Errorf("encoding assessment: %w", err)
		}
		_, err = s.db.ExecContext(ctx,
			"UPDATE assessments SET doc = ?, generated_at = ? WHERE id = ?",
			string(doc), a.GeneratedAt, existingID)
		if err != nil {
			return fmt.Errorf("replacing assessment: %w", err)
		}
	}
	return nil
}

// LoadByUser returns the user's assessment, or nil when there is none.
// Backend errors are logged and treated as "no assessment".
func (s *Store) LoadByUser(ctx context.Context, userEmail string) *analysis.Assessment {
	var doc string
	err := s.db.QueryRowContext(ctx,
		"SELECT doc FROM assessments WHERE user_email = ? ORDER BY generated_at DESC LIMIT 1",
		userEmail).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		s.log.Warnf("loading assessment for %s: %v", userEmail, err)
		return nil
	}

	var a analysis.Assessment
	if err := json.Unmarshal([]byte(doc), &a); err != nil {
		s.log.Warnf("decoding assessment for %s: %v", userEmail, err)
		return nil
	}
	return &a
}

// Count returns how many assessment documents are stored.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM assessments").Scan(&n)
	return n, err
}
