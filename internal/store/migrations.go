package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Matches table - one row per finished session
		`CREATE TABLE IF NOT EXISTS matches (
			id TEXT PRIMARY KEY,
			played_at DATETIME NOT NULL,
			left_score INTEGER NOT NULL,
			right_score INTEGER NOT NULL,
			winner TEXT NOT NULL CHECK(winner IN ('left', 'right')),
			duration_ms INTEGER NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_matches_played_at ON matches(played_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
