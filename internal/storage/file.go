package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/mayu-0506/studytime-tracker-sub000/internal"
)

type FileStorage struct {
	sessions         map[string]*internal.StudySession // id -> session
	userSessionIndex map[string][]*internal.StudySession
	subjects         map[string]*internal.Subject // id -> custom subject
	users            map[string]*internal.User    // token -> user
	mu               sync.RWMutex
	sessionsFile     string
	subjectsFile     string
	usersFile        string
	saveSessionsChan chan struct{}
	saveSubjectsChan chan struct{}
	shutdownChan     chan struct{}
	saveDelay        time.Duration
	logger           internal.Logger
}

func NewFileStorage(sessionsFile, subjectsFile, usersFile string, logger internal.Logger) (*FileStorage, error) {
	s := &FileStorage{
		sessions:         make(map[string]*internal.StudySession),
		userSessionIndex: make(map[string][]*internal.StudySession),
		subjects:         make(map[string]*internal.Subject),
		users:            make(map[string]*internal.User),
		sessionsFile:     sessionsFile,
		subjectsFile:     subjectsFile,
		usersFile:        usersFile,
		saveSessionsChan: make(chan struct{}, 1),
		saveSubjectsChan: make(chan struct{}, 1),
		shutdownChan:     make(chan struct{}),
		saveDelay:        500 * time.Millisecond,
		logger:           logger,
	}

	if err := s.loadSessions(); err != nil {
		logger.Errorf("storage: failed to load sessions: %v", err)
		return nil, err
	}
	if err := s.loadSubjects(); err != nil {
		logger.Errorf("storage: failed to load subjects: %v", err)
		return nil, err
	}
	if err := s.loadUsers(); err != nil {
		logger.Errorf("storage: failed to load users: %v", err)
		return nil, err
	}

	go s.saveSessionsWorker()
	go s.saveSubjectsWorker()

	return s, nil
}

func (s *FileStorage) loadSessions() error {
	file, err := os.Open(s.sessionsFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	var sessions []*internal.StudySession
	if err := json.NewDecoder(file).Decode(&sessions); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range sessions {
		s.sessions[sess.ID] = sess
		s.userSessionIndex[sess.UserID] = append(s.userSessionIndex[sess.UserID], sess)
	}

	// Sort each user's sessions descending by StartTime
	for userID := range s.userSessionIndex {
		sort.Slice(s.userSessionIndex[userID], func(i, j int) bool {
			return s.userSessionIndex[userID][i].StartTime.After(s.userSessionIndex[userID][j].StartTime)
		})
	}

	return nil
}

func (s *FileStorage) loadSubjects() error {
	file, err := os.Open(s.subjectsFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	var subjects []*internal.Subject
	if err := json.NewDecoder(file).Decode(&subjects); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range subjects {
		s.subjects[sub.ID] = sub
	}
	return nil
}

func (s *FileStorage) loadUsers() error {
	file, err := os.Open(s.usersFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	var users []*internal.User
	if err := json.NewDecoder(file).Decode(&users); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range users {
		s.users[u.Token] = u
	}
	return nil
}

func atomicWriteFileJSON(filePath string, data interface{}) error {
	tempFile := filePath + ".tmp"
	f, err := os.Create(tempFile)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(tempFile)
		return err
	}

	return os.Rename(tempFile, filePath)
}

func (s *FileStorage) saveSessions() error {
	s.mu.RLock()
	sessions := make([]*internal.StudySession, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.RUnlock()

	return atomicWriteFileJSON(s.sessionsFile, sessions)
}

func (s *FileStorage) saveSubjects() error {
	s.mu.RLock()
	subjects := make([]*internal.Subject, 0, len(s.subjects))
	for _, sub := range s.subjects {
		subjects = append(subjects, sub)
	}
	s.mu.RUnlock()

	return atomicWriteFileJSON(s.subjectsFile, subjects)
}

func (s *FileStorage) saveSessionsWorker() {
	timer := time.NewTimer(s.saveDelay)
	defer timer.Stop()

	for {
		select {
		case <-s.saveSessionsChan:
			timer.Reset(s.saveDelay)
		case <-timer.C:
			if err := s.saveSessions(); err != nil {
				s.logger.Errorf("storage: error saving sessions: %v", err)
			}
		case <-s.shutdownChan:
			return
		}
	}
}

func (s *FileStorage) saveSubjectsWorker() {
	timer := time.NewTimer(s.saveDelay)
	defer timer.Stop()

	for {
		select {
		case <-s.saveSubjectsChan:
			timer.Reset(s.saveDelay)
		case <-timer.C:
			if err := s.saveSubjects(); err != nil {
				s.logger.Errorf("storage: error saving subjects: %v", err)
			}
		case <-s.shutdownChan:
			return
		}
	}
}

func (s *FileStorage) Close() error {
	close(s.shutdownChan)

	// Save pending data synchronously on shutdown
	if err := s.saveSessions(); err != nil {
		return err
	}
	return s.saveSubjects()
}

func (s *FileStorage) notifySessionsDirty() {
	select {
	case s.saveSessionsChan <- struct{}{}:
	default:
	}
}

func (s *FileStorage) notifySubjectsDirty() {
	select {
	case s.saveSubjectsChan <- struct{}{}:
	default:
	}
}

// --- SessionRepository ---

func (s *FileStorage) SaveSession(ctx context.Context, session *internal.StudySession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[session.ID] = session
	sessions := s.userSessionIndex[session.UserID]
	inserted := false
	for i, existing := range sessions {
		if existing.StartTime.Before(session.StartTime) {
			sessions = append(sessions[:i], append([]*internal.StudySession{session}, sessions[i:]...)...)
			inserted = true
			break
		}
	}
	if !inserted {
		sessions = append(sessions, session)
	}
	s.userSessionIndex[session.UserID] = sessions
	s.notifySessionsDirty()
	return nil
}

func (s *FileStorage) GetSession(ctx context.Context, id string) (*internal.StudySession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, errors.New("storage: session not found")
	}
	copied := *sess
	return &copied, nil
}

func (s *FileStorage) ListSessions(ctx context.Context, userID string) ([]internal.StudySession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sessionsPtr, ok := s.userSessionIndex[userID]
	if !ok {
		return []internal.StudySession{}, nil
	}
	sessions := make([]internal.StudySession, len(sessionsPtr))
	for i, sess := range sessionsPtr {
		sessions[i] = *sess
	}
	return sessions, nil
}

func (s *FileStorage) ListSessionsBetween(ctx context.Context, userID string, from, to time.Time) ([]internal.StudySession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var sessions []internal.StudySession
	for _, sess := range s.userSessionIndex[userID] {
		if sess.StartTime.Before(from) || !sess.StartTime.Before(to) {
			continue
		}
		sessions = append(sessions, *sess)
	}
	if sessions == nil {
		sessions = []internal.StudySession{}
	}
	return sessions, nil
}

func (s *FileStorage) UpdateSession(ctx context.Context, session *internal.StudySession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.sessions[session.ID]
	if !ok {
		return errors.New("storage: session not found")
	}
	*old = *session
	// Re-sort in case StartTime moved
	sort.Slice(s.userSessionIndex[session.UserID], func(i, j int) bool {
		idx := s.userSessionIndex[session.UserID]
		return idx[i].StartTime.After(idx[j].StartTime)
	})
	s.notifySessionsDirty()
	return nil
}

func (s *FileStorage) DeleteSession(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return errors.New("storage: session not found")
	}
	delete(s.sessions, id)
	idx := s.userSessionIndex[sess.UserID]
	for i, existing := range idx {
		if existing.ID == id {
			s.userSessionIndex[sess.UserID] = append(idx[:i], idx[i+1:]...)
			break
		}
	}
	s.notifySessionsDirty()
	return nil
}

// --- SubjectRepository ---

func (s *FileStorage) CreateSubject(ctx context.Context, subject *internal.Subject) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subjects[subject.ID] = subject
	s.notifySubjectsDirty()
	return nil
}

func (s *FileStorage) GetSubject(ctx context.Context, id string) (*internal.Subject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.subjects[id]
	if !ok {
		return nil, errors.New("storage: subject not found")
	}
	copied := *sub
	return &copied, nil
}

func (s *FileStorage) ListSubjects(ctx context.Context, userID string) ([]internal.Subject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var subjects []internal.Subject
	for _, sub := range s.subjects {
		if sub.UserID == userID {
			subjects = append(subjects, *sub)
		}
	}
	sort.Slice(subjects, func(i, j int) bool {
		return subjects[i].CreatedAt.Before(subjects[j].CreatedAt)
	})
	if subjects == nil {
		subjects = []internal.Subject{}
	}
	return subjects, nil
}

func (s *FileStorage) DeleteSubject(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subjects[id]; !ok {
		return errors.New("storage: subject not found")
	}
	delete(s.subjects, id)
	s.notifySubjectsDirty()
	return nil
}

// --- UserRepository ---

func (s *FileStorage) GetUserByToken(ctx context.Context, token string) (*internal.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[token]
	if !ok {
		return nil, errors.New("storage: user not found")
	}
	copied := *u
	return &copied, nil
}

// --- Compile-time assertions ---
var _ SessionRepository = (*FileStorage)(nil)
var _ SubjectRepository = (*FileStorage)(nil)
var _ UserRepository = (*FileStorage)(nil)
