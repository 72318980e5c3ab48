package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/baldhumanity/alife-neat/neat"
)

// SQLiteStore keeps genomes in a SQLite database, one row per genome holding
// its text encoding.
type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func (s *SQLiteStore) SaveGenome(ctx context.Context, id string, g *neat.Genome) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	payload, err := g.MarshalText()
	if err != nil {
		return fmt.Errorf("encode genome %s: %w", id, err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO genomes (id, next_innovation, payload)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			next_innovation = excluded.next_innovation,
			payload = excluded.payload
	`, id, g.NextInnovation(), string(payload))
	return err
}

func (s *SQLiteStore) GetGenome(ctx context.Context, id string) (*neat.Genome, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, false, err
	}

	var payload string
	err = db.QueryRowContext(ctx, `SELECT payload FROM genomes WHERE id = ?`, id).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	g := new(neat.Genome)
	if err := g.UnmarshalText([]byte(payload)); err != nil {
		return nil, false, fmt.Errorf("decode genome %s: %w", id, err)
	}
	return g, true, nil
}

func (s *SQLiteStore) DeleteGenome(ctx context.Context, id string) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `DELETE FROM genomes WHERE id = ?`, id)
	return err
}

func (s *SQLiteStore) ListGenomeIDs(ctx context.Context) ([]string, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT id FROM genomes ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errNotInitialized
	}
	return s.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS genomes (
			id TEXT PRIMARY KEY,
			next_innovation INTEGER NOT NULL,
			payload TEXT NOT NULL
		);
	`)
	return err
}
