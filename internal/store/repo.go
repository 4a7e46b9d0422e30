package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Session is one learner's persisted state for one course.
type Session struct {
	ID              string
	CourseID        string
	LearnerID       string
	LearnerName     string
	CurrentActivity string
	SuspendData     []byte
	Progress        float64
	Success         bool
	Score           *float64
	MaxScore        *float64
	UpdatedAt       time.Time
}

// SessionRepo manages persisted course sessions.
type SessionRepo interface {
	// Get returns the session for a course and learner, or nil if none
	// has been recorded.
	Get(ctx context.Context, courseID, learnerID string) (*Session, error)

	// Save upserts a session. A session without an ID is assigned one.
	Save(ctx context.Context, session *Session) error

	// Delete removes the session for a course and learner.
	Delete(ctx context.Context, courseID, learnerID string) error

	// List returns all sessions of a learner, most recently updated first.
	List(ctx context.Context, learnerID string) ([]*Session, error)
}

type sqlSessionRepo struct {
	db *sql.DB
}

func (r *sqlSessionRepo) Get(ctx context.Context, courseID, learnerID string) (*Session, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, course_id, learner_id, learner_name,
		current_activity, suspend_data, progress, success, score, max_score, updated_at
		FROM sessions WHERE course_id = ? AND learner_id = ?`, courseID, learnerID)
	session, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return session, nil
}

func (r *sqlSessionRepo) Save(ctx context.Context, session *Session) error {
	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	session.UpdatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, `INSERT INTO sessions
		(id, course_id, learner_id, learner_name, current_activity, suspend_data,
		 progress, success, score, max_score, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (course_id, learner_id) DO UPDATE SET
			learner_name = excluded.learner_name,
			current_activity = excluded.current_activity,
			suspend_data = excluded.suspend_data,
			progress = excluded.progress,
			success = excluded.success,
			score = excluded.score,
			max_score = excluded.max_score,
			updated_at = excluded.updated_at`,
		session.ID, session.CourseID, session.LearnerID, session.LearnerName,
		session.CurrentActivity, string(session.SuspendData),
		session.Progress, session.Success, session.Score, session.MaxScore,
		session.UpdatedAt.Unix())
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (r *sqlSessionRepo) Delete(ctx context.Context, courseID, learnerID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE course_id = ? AND learner_id = ?`, courseID, learnerID)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (r *sqlSessionRepo) List(ctx context.Context, learnerID string) ([]*Session, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, course_id, learner_id, learner_name,
		current_activity, suspend_data, progress, success, score, max_score, updated_at
		FROM sessions WHERE learner_id = ? ORDER BY updated_at DESC`, learnerID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("list sessions: %w", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*Session, error) {
	var s Session
	var suspend string
	var success int
	var score, maxScore sql.NullFloat64
	var updatedAt int64
	err := row.Scan(&s.ID, &s.CourseID, &s.LearnerID, &s.LearnerName,
		&s.CurrentActivity, &suspend, &s.Progress, &success, &score, &maxScore, &updatedAt)
	if err != nil {
		return nil, err
	}
	s.SuspendData = []byte(suspend)
	s.Success = success != 0
	if score.Valid {
		s.Score = &score.Float64
	}
	if maxScore.Valid {
		s.MaxScore = &maxScore.Float64
	}
	s.UpdatedAt = time.Unix(updatedAt, 0)
	return &s, nil
}
