package internal

import "time"

// Timer snapshot states. Idle is represented by the absence of a snapshot.
const (
	TimerRunning = "running"
	TimerPaused  = "paused"
)

// Session sources.
const (
	SourceTimer  = "timer"
	SourceManual = "manual"
)

// SnapshotSchemaVersion tags persisted timer snapshots. A snapshot written by a
// different version is discarded rather than partially interpreted.
const SnapshotSchemaVersion = 2

// MaxSessionSeconds is the sanity ceiling on a single study interval.
const MaxSessionSeconds = 24 * 60 * 60

type User struct {
	ID       string            `json:"id"`
	Token    string            `json:"token"`
	Name     string            `json:"name"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type Subject struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id,omitempty"` // empty for presets
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	Preset    bool      `json:"preset"`
	CreatedAt time.Time `json:"created_at"`
}

type StudySession struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	SubjectID       string    `json:"subject_id"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	DurationMinutes int       `json:"duration_minutes"`
	Memo            string    `json:"memo,omitempty"`
	Source          string    `json:"source"` // timer, manual
	CreatedAt       time.Time `json:"created_at"`
}

// TimerSnapshot is the serialized in-progress timer state persisted locally so
// an active run survives restarts and crashes.
type TimerSnapshot struct {
	SchemaVersion  int       `json:"schema_version"`
	SubjectID      string    `json:"subject_id"`
	SubjectName    string    `json:"subject_name"`
	SubjectColor   string    `json:"subject_color"`
	StartTime      time.Time `json:"start_time"`
	ElapsedSeconds int       `json:"elapsed_seconds"`
	PausedSeconds  int       `json:"paused_seconds"`
	State          string    `json:"state"` // running, paused
	Memo           string    `json:"memo,omitempty"`
}

// Valid reports whether the snapshot satisfies the structural invariants:
// matching schema version, a known state, and
// 0 <= PausedSeconds <= ElapsedSeconds <= MaxSessionSeconds.
func (s *TimerSnapshot) Valid() bool {
	if s.SchemaVersion != SnapshotSchemaVersion {
		return false
	}
	if s.State != TimerRunning && s.State != TimerPaused {
		return false
	}
	if s.StartTime.IsZero() || s.SubjectID == "" {
		return false
	}
	if s.ElapsedSeconds < 0 || s.PausedSeconds < 0 {
		return false
	}
	if s.PausedSeconds > s.ElapsedSeconds {
		return false
	}
	return s.ElapsedSeconds <= MaxSessionSeconds
}

// PendingSessionRecord is a completed session whose remote write failed,
// held durably until a flush confirms it.
type PendingSessionRecord struct {
	ID         string       `json:"id" badgerhold:"key"`
	Session    StudySession `json:"session"`
	CapturedAt time.Time    `json:"captured_at"`
}

type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

func NewAppError(code int, msg string) *AppError {
	return &AppError{Code: code, Message: msg}
}
