package storage

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mayu-0506/studytime-tracker-sub000/internal"
)

type PostgresStorage struct {
	pool   *pgxpool.Pool
	logger internal.Logger
}

func NewPostgresStorage(dsn string, logger internal.Logger) (*PostgresStorage, error) {
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		logger.Errorf("failed to connect to postgres: %v", err)
		return nil, err
	}
	return &PostgresStorage{pool: pool, logger: logger}, nil
}

func (p *PostgresStorage) Close() {
	p.pool.Close()
}

// --- SessionRepository ---

func (p *PostgresStorage) SaveSession(ctx context.Context, s *internal.StudySession) error {
	_, err := p.pool.Exec(ctx, `INSERT INTO study_sessions (id, user_id, subject_id, start_time, end_time, duration_minutes, memo, source, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		s.ID, s.UserID, s.SubjectID, s.StartTime, s.EndTime, s.DurationMinutes, s.Memo, s.Source, s.CreatedAt)
	if err != nil {
		p.logger.Errorf("failed to insert study session: %v", err)
		return err
	}
	return nil
}

func (p *PostgresStorage) GetSession(ctx context.Context, id string) (*internal.StudySession, error) {
	row := p.pool.QueryRow(ctx, `SELECT id, user_id, subject_id, start_time, end_time, duration_minutes, memo, source, created_at FROM study_sessions WHERE id = $1`, id)
	var s internal.StudySession
	if err := row.Scan(&s.ID, &s.UserID, &s.SubjectID, &s.StartTime, &s.EndTime, &s.DurationMinutes, &s.Memo, &s.Source, &s.CreatedAt); err != nil {
		p.logger.Errorf("session not found: %v", err)
		return nil, err
	}
	return &s, nil
}

func (p *PostgresStorage) ListSessions(ctx context.Context, userID string) ([]internal.StudySession, error) {
	rows, err := p.pool.Query(ctx, `SELECT id, user_id, subject_id, start_time, end_time, duration_minutes, memo, source, created_at FROM study_sessions WHERE user_id = $1 ORDER BY start_time DESC`, userID)
	if err != nil {
		p.logger.Errorf("failed to query study sessions: %v", err)
		return nil, err
	}
	defer rows.Close()

	var sessions []internal.StudySession
	for rows.Next() {
		var s internal.StudySession
		if err := rows.Scan(&s.ID, &s.UserID, &s.SubjectID, &s.StartTime, &s.EndTime, &s.DurationMinutes, &s.Memo, &s.Source, &s.CreatedAt); err != nil {
			p.logger.Errorf("failed to scan study session: %v", err)
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}

func (p *PostgresStorage) ListSessionsBetween(ctx context.Context, userID string, from, to time.Time) ([]internal.StudySession, error) {
	rows, err := p.pool.Query(ctx, `SELECT id, user_id, subject_id, start_time, end_time, duration_minutes, memo, source, created_at FROM study_sessions WHERE user_id = $1 AND start_time >= $2 AND start_time < $3 ORDER BY start_time DESC`, userID, from, to)
	if err != nil {
		p.logger.Errorf("failed to query study sessions: %v", err)
		return nil, err
	}
	defer rows.Close()

	var sessions []internal.StudySession
	for rows.Next() {
		var s internal.StudySession
		if err := rows.Scan(&s.ID, &s.UserID, &s.SubjectID, &s.StartTime, &s.EndTime, &s.DurationMinutes, &s.Memo, &s.Source, &s.CreatedAt); err != nil {
			p.logger.Errorf("failed to scan study session: %v", err)
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}

func (p *PostgresStorage) UpdateSession(ctx context.Context, s *internal.StudySession) error {
	_, err := p.pool.Exec(ctx, `UPDATE study_sessions SET subject_id = $2, start_time = $3, end_time = $4, duration_minutes = $5, memo = $6 WHERE id = $1`,
		s.ID, s.SubjectID, s.StartTime, s.EndTime, s.DurationMinutes, s.Memo)
	if err != nil {
		p.logger.Errorf("failed to update study session: %v", err)
	}
	return err
}

func (p *PostgresStorage) DeleteSession(ctx context.Context, id string) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM study_sessions WHERE id = $1`, id)
	if err != nil {
		p.logger.Errorf("failed to delete study session: %v", err)
	}
	return err
}

// --- SubjectRepository ---

func (p *PostgresStorage) CreateSubject(ctx context.Context, s *internal.Subject) error {
	_, err := p.pool.Exec(ctx, `INSERT INTO subjects (id, user_id, name, color, created_at) VALUES ($1, $2, $3, $4, $5)`,
		s.ID, s.UserID, s.Name, s.Color, s.CreatedAt)
	if err != nil {
		p.logger.Errorf("failed to insert subject: %v", err)
		return err
	}
	return nil
}

func (p *PostgresStorage) GetSubject(ctx context.Context, id string) (*internal.Subject, error) {
	row := p.pool.QueryRow(ctx, `SELECT id, user_id, name, color, created_at FROM subjects WHERE id = $1`, id)
	var s internal.Subject
	if err := row.Scan(&s.ID, &s.UserID, &s.Name, &s.Color, &s.CreatedAt); err != nil {
		p.logger.Errorf("subject not found: %v", err)
		return nil, err
	}
	return &s, nil
}

func (p *PostgresStorage) ListSubjects(ctx context.Context, userID string) ([]internal.Subject, error) {
	rows, err := p.pool.Query(ctx, `SELECT id, user_id, name, color, created_at FROM subjects WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		p.logger.Errorf("failed to query subjects: %v", err)
		return nil, err
	}
	defer rows.Close()

	var subjects []internal.Subject
	for rows.Next() {
		var s internal.Subject
		if err := rows.Scan(&s.ID, &s.UserID, &s.Name, &s.Color, &s.CreatedAt); err != nil {
			p.logger.Errorf("failed to scan subject: %v", err)
			return nil, err
		}
		subjects = append(subjects, s)
	}
	return subjects, nil
}

func (p *PostgresStorage) DeleteSubject(ctx context.Context, id string) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM subjects WHERE id = $1`, id)
	if err != nil {
		p.logger.Errorf("failed to delete subject: %v", err)
	}
	return err
}

// --- UserRepository ---

func (p *PostgresStorage) GetUserByToken(ctx context.Context, token string) (*internal.User, error) {
	row := p.pool.QueryRow(ctx, `SELECT id, token, name FROM users WHERE token = $1`, token)
	var u internal.User
	if err := row.Scan(&u.ID, &u.Token, &u.Name); err != nil {
		p.logger.Errorf("user not found: %v", err)
		return nil, err
	}
	return &u, nil
}

// --- Compile-time assertions ---
var _ SessionRepository = (*PostgresStorage)(nil)
var _ SubjectRepository = (*PostgresStorage)(nil)
var _ UserRepository = (*PostgresStorage)(nil)
