package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Sessions table - one row per analyzed video
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			video_path TEXT NOT NULL,
			depth_cm REAL NOT NULL,
			tremor_type TEXT NOT NULL CHECK(tremor_type IN ('resting', 'postural')),
			amplitude_mm REAL NOT NULL,
			error_mm REAL NOT NULL,
			missing_fraction REAL NOT NULL DEFAULT 0,
			start_frame INTEGER NOT NULL,
			end_frame INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Per-landmark measurements backing a session's aggregate figure
		`CREATE TABLE IF NOT EXISTS session_landmarks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			landmark_index INTEGER NOT NULL,
			amplitude_mm REAL NOT NULL,
			error_mm REAL NOT NULL,
			valid_samples INTEGER NOT NULL,
			missing_fraction REAL NOT NULL DEFAULT 0
		)`,

		// Indexes for better query performance
		`CREATE INDEX IF NOT EXISTS idx_session_landmarks_session_id ON session_landmarks(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_video_path ON sessions(video_path)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
