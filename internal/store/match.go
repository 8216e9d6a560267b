package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// Match is one finished session.
type Match struct {
	ID         string
	PlayedAt   time.Time
	LeftScore  int
	RightScore int
	Winner     string
	DurationMs int64
}

// MatchRepository provides access to recorded matches.
type MatchRepository struct {
	db *sql.DB
}

// Matches returns the match repository for this store.
func (s *Store) Matches() *MatchRepository {
	return &MatchRepository{db: s.db}
}

// Record inserts a finished match. A missing ID is generated; a missing
// timestamp defaults to now.
func (r *MatchRepository) Record(m *Match) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.PlayedAt.IsZero() {
		m.PlayedAt = time.Now()
	}

	_, err := r.db.Exec(
		`INSERT INTO matches (id, played_at, left_score, right_score, winner, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, m.PlayedAt, m.LeftScore, m.RightScore, m.Winner, m.DurationMs,
	)
	return err
}

// GetByID retrieves a single match.
func (r *MatchRepository) GetByID(id string) (*Match, error) {
	m := &Match{}
	err := r.db.QueryRow(
		`SELECT id, played_at, left_score, right_score, winner, duration_ms
		 FROM matches WHERE id = ?`,
		id,
	).Scan(&m.ID, &m.PlayedAt, &m.LeftScore, &m.RightScore, &m.Winner, &m.DurationMs)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return m, nil
}

// Recent returns the most recently played matches, newest first.
func (r *MatchRepository) Recent(limit int) ([]*Match, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := r.db.Query(
		`SELECT id, played_at, left_score, right_score, winner, duration_ms
		 FROM matches ORDER BY played_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []*Match
	for rows.Next() {
		m := &Match{}
		if err := rows.Scan(&m.ID, &m.PlayedAt, &m.LeftScore, &m.RightScore, &m.Winner, &m.DurationMs); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}
