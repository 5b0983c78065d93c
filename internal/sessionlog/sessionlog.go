// Package sessionlog is a sqlite-backed driver.Logger: it records one row
// per completed top-level driver.Driver.Parse, purely for diagnostics. It
// never participates in parse semantics (spec.md §5's shared-resource
// policy: the only thing a Driver mutates mid-parse is the lexer's memoized
// cursor) — a caller can run with log == nil and get identical parse
// results, just no history.
//
// Grounded on the teacher's server/dao/sqlite package: one *sql.DB per
// store, a CREATE TABLE IF NOT EXISTS in init, google/uuid row IDs, and
// dekarrin/rezi for serializing the one field (the condition list) that
// isn't already a SQL-native scalar.
package sessionlog

import (
	"context"
	"database/sql"
	"encoding/base64"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dekarrin/rezi"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/holloway-dev/pathgram/internal/driver"
)

// Record is one stored session, driver.SessionRecord plus the bookkeeping
// columns sqlite needs: a unique row ID and a wall-clock timestamp.
type Record struct {
	ID        uuid.UUID
	driver.SessionRecord
	LoggedAt time.Time
}

// Store is a sqlite-backed driver.Logger with lookup by ID.
type Store struct {
	db *sql.DB
}

// Open creates (if needed) a sqlite database file named sessions.db under
// dir and returns a Store backed by it, mirroring
// server/dao/sqlite.NewDatastore's one-file-per-concern layout.
func Open(dir string) (*Store, error) {
	file := filepath.Join(dir, "sessions.db")
	db, err := sql.Open("sqlite", file)
	if err != nil {
		return nil, fmt.Errorf("sessionlog: open %s: %w", file, err)
	}

	s := &Store{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	stmt := `CREATE TABLE IF NOT EXISTS sessions (
		id TEXT NOT NULL PRIMARY KEY,
		session_id TEXT NOT NULL,
		top_symbol TEXT NOT NULL,
		conditions TEXT NOT NULL,
		accepted INTEGER NOT NULL,
		deepest_cursor INTEGER NOT NULL,
		token_count INTEGER NOT NULL,
		logged_at INTEGER NOT NULL
	);`
	_, err := s.db.Exec(stmt)
	if err != nil {
		return fmt.Errorf("sessionlog: init schema: %w", err)
	}
	return nil
}

// Record implements driver.Logger: one row per completed Parse.
func (s *Store) Record(rec driver.SessionRecord) error {
	id, err := uuid.NewRandom()
	if err != nil {
		return fmt.Errorf("sessionlog: generate row id: %w", err)
	}

	encConds := base64.StdEncoding.EncodeToString(rezi.EncBinary(rec.Conditions))

	accepted := 0
	if rec.Accepted {
		accepted = 1
	}

	stmt, err := s.db.Prepare(`INSERT INTO sessions
		(id, session_id, top_symbol, conditions, accepted, deepest_cursor, token_count, logged_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("sessionlog: prepare insert: %w", err)
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(context.Background(),
		id.String(), rec.SessionID, rec.TopSymbol, encConds, accepted, rec.DeepestCursor, rec.TokenCount, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("sessionlog: insert: %w", err)
	}
	return nil
}

// GetByID reads back one logged session by its row ID, for httpapi's
// GET /v1/sessions/{id}.
func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT session_id, top_symbol, conditions, accepted, deepest_cursor, token_count, logged_at
		 FROM sessions WHERE id = ?;`, id.String())

	var rec Record
	var encConds string
	var accepted int
	var loggedAt int64
	err := row.Scan(&rec.SessionID, &rec.TopSymbol, &encConds, &accepted, &rec.DeepestCursor, &rec.TokenCount, &loggedAt)
	if err != nil {
		return Record{}, fmt.Errorf("sessionlog: get %s: %w", id, err)
	}

	rec.ID = id
	rec.Accepted = accepted != 0
	rec.LoggedAt = time.Unix(loggedAt, 0)

	condData, err := base64.StdEncoding.DecodeString(encConds)
	if err != nil {
		return rec, fmt.Errorf("sessionlog: stored conditions for %s are invalid: %w", id, err)
	}
	var conds []string
	if _, err := rezi.DecBinary(condData, &conds); err != nil {
		return rec, fmt.Errorf("sessionlog: decode conditions for %s: %w", id, err)
	}
	rec.Conditions = conds

	return rec, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (r Record) String() string {
	return fmt.Sprintf("%s: top=%s accepted=%t conditions=[%s]", r.ID, r.TopSymbol, r.Accepted, strings.Join(r.Conditions, ","))
}
