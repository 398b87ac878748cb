package storage

import (
	"context"
	"time"

	"github.com/mayu-0506/studytime-tracker-sub000/internal"
)

type SessionRepository interface {
	SaveSession(ctx context.Context, session *internal.StudySession) error
	GetSession(ctx context.Context, id string) (*internal.StudySession, error)
	ListSessions(ctx context.Context, userID string) ([]internal.StudySession, error)
	ListSessionsBetween(ctx context.Context, userID string, from, to time.Time) ([]internal.StudySession, error)
	UpdateSession(ctx context.Context, session *internal.StudySession) error
	DeleteSession(ctx context.Context, id string) error
}

type SubjectRepository interface {
	CreateSubject(ctx context.Context, subject *internal.Subject) error
	GetSubject(ctx context.Context, id string) (*internal.Subject, error)
	ListSubjects(ctx context.Context, userID string) ([]internal.Subject, error)
	DeleteSubject(ctx context.Context, id string) error
}

type UserRepository interface {
	GetUserByToken(ctx context.Context, token string) (*internal.User, error)
}
