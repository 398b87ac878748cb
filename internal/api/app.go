package api

import (
	"github.com/mayu-0506/studytime-tracker-sub000/internal"
	"github.com/mayu-0506/studytime-tracker-sub000/internal/storage"
)

type App interface {
	Logger() internal.Logger
	SessionRepo() storage.SessionRepository
	SubjectRepo() storage.SubjectRepository
	UserRepo() storage.UserRepository
}
