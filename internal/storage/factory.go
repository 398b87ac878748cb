package storage

import "github.com/mayu-0506/studytime-tracker-sub000/internal"

func NewFileRepositories(sessionsFile, subjectsFile, usersFile string, logger internal.Logger) (SessionRepository, SubjectRepository, UserRepository, error) {
	storage, err := NewFileStorage(sessionsFile, subjectsFile, usersFile, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	return storage, storage, storage, nil
}

func NewPostgresRepositories(dsn string, logger internal.Logger) (SessionRepository, SubjectRepository, UserRepository, error) {
	storage, err := NewPostgresStorage(dsn, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	return storage, storage, storage, nil
}
