/*
Package learning persists per-user selection history and turns it into
ranking boosts.

The store is the only mutable persisted state in the engine. It lives in
a writable user directory, physically separate from the read-only
dictionary artifact. Every write is a single upsert statement, so an
interrupted write never leaves a half-applied record visible. When the
target directory is not writable the package degrades to an in-memory
store for the session and reports ErrPersistenceUnavailable.
*/
package learning

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	_ "modernc.org/sqlite"

	"github.com/HiDomesticCat/zhuyinserve/internal/utils"
)

// ErrPersistenceUnavailable signals that selections will be remembered
// for this session only. Non-fatal: the session still functions.
var ErrPersistenceUnavailable = errors.New("learning: store not writable, history is in-memory only")

// Params tune how usage counts and recency translate into boosts.
// Both terms are monotonic: more selections and more recent selections
// never lower a candidate's boost.
type Params struct {
	SelectWeight  float64
	RecencyWeight float64
}

// DefaultParams mirror the config defaults.
func DefaultParams() Params {
	return Params{SelectWeight: 100, RecencyWeight: 50}
}

// Store records selections and derives boosts from them.
type Store interface {
	// Record upserts the (context, text) pair: count+1, timestamp now.
	Record(contextKey, text string) error

	// Boost maps candidate text to its adjustment score for a context.
	Boost(contextKey string) (map[string]float64, error)

	// RecordBigram notes that next followed prev in committed output.
	RecordBigram(prev, next string) error

	// BigramBoost maps following characters to adjustment scores.
	BigramBoost(prev string) (map[string]float64, error)

	// Clear drops all recorded history.
	Clear() error

	// Persistent reports whether records survive a restart.
	Persistent() bool

	Close() error
}

// Open returns a store rooted in dir. If dir cannot be created or
// written to, or the database cannot be opened, it falls back to an
// in-memory store and returns it together with
// ErrPersistenceUnavailable.
func Open(dir string, params Params) (Store, error) {
	if status := utils.CheckDirStatus(dir); !status.Writable {
		return NewMemory(params), ErrPersistenceUnavailable
	}
	s, err := openSQLite(filepath.Join(dir, "learning.db"), params)
	if err != nil {
		log.Warnf("learning: %v", err)
		return NewMemory(params), ErrPersistenceUnavailable
	}
	return s, nil
}

func (p Params) score(count int, lastUsed, now time.Time) float64 {
	age := now.Sub(lastUsed).Hours()
	if age < 0 {
		age = 0
	}
	return p.SelectWeight*float64(count) + p.RecencyWeight/(1+age)
}

// sqliteStore is the persistent implementation.
type sqliteStore struct {
	db     *sql.DB
	params Params
	now    func() time.Time
}

const learnSchema = `
CREATE TABLE IF NOT EXISTS history (
	context_key TEXT NOT NULL,
	phrase      TEXT NOT NULL,
	use_count   INTEGER NOT NULL DEFAULT 1,
	last_used   TEXT NOT NULL,
	PRIMARY KEY (context_key, phrase)
);
CREATE TABLE IF NOT EXISTS bigrams (
	prev      TEXT NOT NULL,
	next      TEXT NOT NULL,
	use_count INTEGER NOT NULL DEFAULT 1,
	last_used TEXT NOT NULL,
	PRIMARY KEY (prev, next)
);
`

func openSQLite(path string, params Params) (*sqliteStore, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if _, err := db.Exec(learnSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate %s: %w", path, err)
	}
	log.Debugf("learning store opened at %s", path)
	return &sqliteStore{db: db, params: params, now: time.Now}, nil
}

func (s *sqliteStore) Record(contextKey, text string) error {
	// Single upsert: atomic under interruption, no two-phase state.
	_, err := s.db.Exec(`
		INSERT INTO history (context_key, phrase, use_count, last_used)
		VALUES (?, ?, 1, ?)
		ON CONFLICT(context_key, phrase) DO UPDATE SET
			use_count = use_count + 1,
			last_used = excluded.last_used`,
		contextKey, text, s.now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("learning record: %w", err)
	}
	return nil
}

func (s *sqliteStore) Boost(contextKey string) (map[string]float64, error) {
	rows, err := s.db.Query(
		`SELECT phrase, use_count, last_used FROM history WHERE context_key = ?`, contextKey)
	if err != nil {
		return nil, fmt.Errorf("learning boost: %w", err)
	}
	defer rows.Close()

	now := s.now()
	boosts := make(map[string]float64)
	for rows.Next() {
		var phrase, lastUsed string
		var count int
		if err := rows.Scan(&phrase, &count, &lastUsed); err != nil {
			return nil, err
		}
		t, err := time.Parse(time.RFC3339Nano, lastUsed)
		if err != nil {
			// A mangled timestamp should not sink the whole query.
			log.Warnf("learning: bad timestamp for %q: %v", phrase, err)
			t = now
		}
		boosts[phrase] = s.params.score(count, t, now)
	}
	return boosts, rows.Err()
}

func (s *sqliteStore) RecordBigram(prev, next string) error {
	if prev == "" || next == "" {
		return nil
	}
	_, err := s.db.Exec(`
		INSERT INTO bigrams (prev, next, use_count, last_used)
		VALUES (?, ?, 1, ?)
		ON CONFLICT(prev, next) DO UPDATE SET
			use_count = use_count + 1,
			last_used = excluded.last_used`,
		prev, next, s.now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("learning bigram: %w", err)
	}
	return nil
}

func (s *sqliteStore) BigramBoost(prev string) (map[string]float64, error) {
	if prev == "" {
		return nil, nil
	}
	rows, err := s.db.Query(`SELECT next, use_count FROM bigrams WHERE prev = ?`, prev)
	if err != nil {
		return nil, fmt.Errorf("learning bigram boost: %w", err)
	}
	defer rows.Close()

	boosts := make(map[string]float64)
	for rows.Next() {
		var next string
		var count int
		if err := rows.Scan(&next, &count); err != nil {
			return nil, err
		}
		boosts[next] = s.params.SelectWeight * float64(count)
	}
	return boosts, rows.Err()
}

func (s *sqliteStore) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM history`); err != nil {
		return err
	}
	_, err := s.db.Exec(`DELETE FROM bigrams`)
	return err
}

func (s *sqliteStore) Persistent() bool { return true }

func (s *sqliteStore) Close() error { return s.db.Close() }
