package store

import (
	"database/sql"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// Session is one analyzed video with its aggregate tremor figure.
type Session struct {
	ID              string
	VideoPath       string
	DepthCm         float64
	TremorType      string
	AmplitudeMm     float64
	ErrorMm         float64
	MissingFraction float64
	StartFrame      int
	EndFrame        int
	CreatedAt       time.Time
}

// LandmarkMeasurement is one landmark's contribution to a session's figure.
type LandmarkMeasurement struct {
	LandmarkIndex   int
	AmplitudeMm     float64
	ErrorMm         float64
	ValidSamples    int
	MissingFraction float64
}

// SessionRepository provides CRUD operations for analysis sessions.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

// Create inserts a session and its per-landmark measurements atomically.
func (r *SessionRepository) Create(s *Session, landmarks []LandmarkMeasurement) error {
	s.CreatedAt = time.Now()

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO sessions (id, video_path, depth_cm, tremor_type, amplitude_mm,
		 error_mm, missing_fraction, start_frame, end_frame, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.VideoPath, s.DepthCm, s.TremorType, s.AmplitudeMm,
		s.ErrorMm, s.MissingFraction, s.StartFrame, s.EndFrame, s.CreatedAt,
	)
	if err != nil {
		return err
	}

	for _, l := range landmarks {
		_, err = tx.Exec(
			`INSERT INTO session_landmarks (session_id, landmark_index, amplitude_mm,
			 error_mm, valid_samples, missing_fraction)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			s.ID, l.LandmarkIndex, l.AmplitudeMm, l.ErrorMm, l.ValidSamples, l.MissingFraction,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetByID retrieves a session by its ID.
func (r *SessionRepository) GetByID(id string) (*Session, error) {
	s := &Session{}

	err := r.db.QueryRow(
		`SELECT id, video_path, depth_cm, tremor_type, amplitude_mm, error_mm,
		 missing_fraction, start_frame, end_frame, created_at
		 FROM sessions WHERE id = ?`,
		id,
	).Scan(&s.ID, &s.VideoPath, &s.DepthCm, &s.TremorType, &s.AmplitudeMm, &s.ErrorMm,
		&s.MissingFraction, &s.StartFrame, &s.EndFrame, &s.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return s, nil
}

// List returns all sessions ordered by creation time, newest first.
func (r *SessionRepository) List() ([]*Session, error) {
	rows, err := r.db.Query(
		`SELECT id, video_path, depth_cm, tremor_type, amplitude_mm, error_mm,
		 missing_fraction, start_frame, end_frame, created_at
		 FROM sessions ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		s := &Session{}
		err := rows.Scan(&s.ID, &s.VideoPath, &s.DepthCm, &s.TremorType, &s.AmplitudeMm,
			&s.ErrorMm, &s.MissingFraction, &s.StartFrame, &s.EndFrame, &s.CreatedAt)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}

	return sessions, rows.Err()
}

// GetLandmarks retrieves the per-landmark measurements for a session,
// ordered by landmark index.
func (r *SessionRepository) GetLandmarks(sessionID string) ([]LandmarkMeasurement, error) {
	rows, err := r.db.Query(
		`SELECT landmark_index, amplitude_mm, error_mm, valid_samples, missing_fraction
		 FROM session_landmarks WHERE session_id = ? ORDER BY landmark_index`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var landmarks []LandmarkMeasurement
	for rows.Next() {
		var l LandmarkMeasurement
		err := rows.Scan(&l.LandmarkIndex, &l.AmplitudeMm, &l.ErrorMm, &l.ValidSamples, &l.MissingFraction)
		if err != nil {
			return nil, err
		}
		landmarks = append(landmarks, l)
	}

	return landmarks, rows.Err()
}

// Delete removes a session and, through the foreign key cascade, its
// per-landmark measurements.
func (r *SessionRepository) Delete(id string) error {
	res, err := r.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}

	return nil
}
