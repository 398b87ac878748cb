// Package timer implements the study timer state machine: idle, running and
// paused states, wall-clock based elapsed time, and durable recording of
// completed runs. The machine owns its snapshot and persists it on every
// mutation so an active run survives restarts; recording and retry are
// delegated to injected collaborators.
package timer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mayu-0506/studytime-tracker-sub000/internal"
	"github.com/mayu-0506/studytime-tracker-sub000/internal/service"
)

const (
	StateIdle    = "idle"
	StateRunning = internal.TimerRunning
	StatePaused  = internal.TimerPaused
)

var (
	ErrNoSubject    = errors.New("a subject must be selected before starting")
	ErrAlreadyIdle  = errors.New("no run in progress")
	ErrNotRunning   = errors.New("timer is not running")
	ErrAlreadyGoing = errors.New("timer is already running")
)

type SnapshotStore interface {
	SaveSnapshot(snap *internal.TimerSnapshot) error
	LoadSnapshot() (*internal.TimerSnapshot, error)
	ClearSnapshot() error
}

type Recorder interface {
	RecordSession(ctx context.Context, session *internal.StudySession) error
}

type PendingQueue interface {
	Enqueue(session internal.StudySession) error
}

type Subject struct {
	ID    string
	Name  string
	Color string
}

// StopResult reports what happened to a stopped run. Queued is set when the
// remote write failed and the session went to the retry queue instead; the
// timer is back at idle either way.
type StopResult struct {
	Session internal.StudySession
	Queued  bool
}

type Timer struct {
	mu       sync.Mutex
	store    SnapshotStore
	recorder Recorder
	queue    PendingQueue
	logger   internal.Logger
	now      func() time.Time

	state          string
	subject        Subject
	memo           string
	startTime      time.Time
	elapsedSeconds int
	pausedSeconds  int
	pauseStartedAt time.Time
}

func New(store SnapshotStore, recorder Recorder, queue PendingQueue, logger internal.Logger) *Timer {
	if logger == nil {
		logger = internal.NopLogger{}
	}
	return &Timer{
		store:    store,
		recorder: recorder,
		queue:    queue,
		logger:   logger,
		now:      time.Now,
		state:    StateIdle,
	}
}

// Restore loads a persisted snapshot and resumes from it. Returns true when
// a previous run was recovered, so the caller can tell the user.
func (t *Timer) Restore() (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	snap, err := t.store.LoadSnapshot()
	if err != nil {
		return false, err
	}
	if snap == nil {
		return false, nil
	}

	t.subject = Subject{ID: snap.SubjectID, Name: snap.SubjectName, Color: snap.SubjectColor}
	t.startTime = snap.StartTime
	t.elapsedSeconds = snap.ElapsedSeconds
	t.pausedSeconds = snap.PausedSeconds
	t.memo = snap.Memo
	t.state = snap.State
	if t.state == StatePaused {
		// The interval spent down counts as paused, not studied, so fold it
		// into the accumulator before the pause continues from now.
		downtime := int(t.now().Sub(t.startTime)/time.Second) - t.elapsedSeconds - t.pausedSeconds
		if downtime > 0 {
			t.pausedSeconds += downtime
		}
		t.pauseStartedAt = t.now()
	} else {
		t.recompute(t.now())
	}
	t.persist()
	return true, nil
}

func (t *Timer) State() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *Timer) Subject() Subject {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.subject
}

func (t *Timer) Memo() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.memo
}

func (t *Timer) ElapsedSeconds() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.elapsedSeconds
}

// Start begins a new run from idle, or resumes from paused. Starting from
// idle without a subject is rejected with no state change.
func (t *Timer) Start(subject Subject) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch t.state {
	case StateIdle:
		if subject.ID == "" {
			return ErrNoSubject
		}
		t.subject = subject
		t.startTime = t.now()
		t.elapsedSeconds = 0
		t.pausedSeconds = 0
		t.memo = ""
		t.state = StateRunning
	case StatePaused:
		t.pausedSeconds += int(t.now().Sub(t.pauseStartedAt) / time.Second)
		t.pauseStartedAt = time.Time{}
		t.state = StateRunning
	default:
		return ErrAlreadyGoing
	}
	t.persist()
	return nil
}

// Pause freezes the elapsed counter. Valid only while running.
func (t *Timer) Pause() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != StateRunning {
		return ErrNotRunning
	}
	t.recompute(t.now())
	t.pauseStartedAt = t.now()
	t.state = StatePaused
	t.persist()
	return nil
}

// SetMemo updates the run's annotation; rejected while idle.
func (t *Timer) SetMemo(text string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == StateIdle {
		return ErrAlreadyIdle
	}
	t.memo = text
	t.persist()
	return nil
}

// Tick recomputes elapsed time from the authoritative start/paused pair.
// Call on a 1-second cadence while the timer runs; a missed or delayed tick
// cannot desynchronize the count because nothing accumulates per tick.
func (t *Timer) Tick() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == StateRunning {
		t.recompute(t.now())
		t.persist()
	}
	return t.elapsedSeconds
}

// Resync forces an immediate recomputation, correcting for ticks missed
// while the process was suspended or throttled.
func (t *Timer) Resync() int {
	return t.Tick()
}

// Stop completes the run and records it. The timer always returns to idle
// and the persisted snapshot is always cleared; when the remote write fails
// the session is queued for retry and Queued is set on the result.
func (t *Timer) Stop(ctx context.Context) (*StopResult, error) {
	t.mu.Lock()

	if t.state == StateIdle {
		t.mu.Unlock()
		return nil, ErrAlreadyIdle
	}

	now := t.now()
	if t.state == StatePaused {
		t.pausedSeconds += int(now.Sub(t.pauseStartedAt) / time.Second)
	} else {
		t.recompute(now)
	}

	session := internal.StudySession{
		SubjectID: t.subject.ID,
		StartTime: t.startTime,
		EndTime:   now,
		DurationMinutes: service.DurationMinutes(
			t.startTime, t.startTime.Add(time.Duration(t.elapsedSeconds)*time.Second)),
		Memo:   t.memo,
		Source: internal.SourceTimer,
	}

	t.reset()
	if err := t.store.ClearSnapshot(); err != nil {
		t.logger.Errorf("timer: failed to clear snapshot on stop: %v", err)
	}
	t.mu.Unlock()

	result := &StopResult{Session: session}
	if err := t.recorder.RecordSession(ctx, &session); err != nil {
		t.logger.Warnf("timer: recording failed, queueing for retry: %v", err)
		if qerr := t.queue.Enqueue(session); qerr != nil {
			t.logger.Errorf("timer: failed to queue session: %v", qerr)
			return result, qerr
		}
		result.Queued = true
	}
	return result, nil
}

// recompute derives elapsed from startTime and pausedSeconds. A result
// outside [0, 24h] means the persisted inputs are corrupt; both counters are
// reset to zero rather than surfacing a garbage duration.
func (t *Timer) recompute(now time.Time) {
	elapsed := int(now.Sub(t.startTime)/time.Second) - t.pausedSeconds
	if elapsed < 0 || elapsed > internal.MaxSessionSeconds {
		t.logger.Warnf("timer: computed elapsed %ds out of range, resetting counters", elapsed)
		t.pausedSeconds = 0
		t.elapsedSeconds = 0
		return
	}
	t.elapsedSeconds = elapsed
}

func (t *Timer) reset() {
	t.state = StateIdle
	t.subject = Subject{}
	t.memo = ""
	t.startTime = time.Time{}
	t.elapsedSeconds = 0
	t.pausedSeconds = 0
	t.pauseStartedAt = time.Time{}
}

// persist writes the current snapshot; the write is the last step of every
// mutating operation so persisted state never runs ahead of memory.
func (t *Timer) persist() {
	if t.state == StateIdle {
		return
	}
	snap := &internal.TimerSnapshot{
		SchemaVersion:  internal.SnapshotSchemaVersion,
		SubjectID:      t.subject.ID,
		SubjectName:    t.subject.Name,
		SubjectColor:   t.subject.Color,
		StartTime:      t.startTime,
		ElapsedSeconds: t.elapsedSeconds,
		PausedSeconds:  t.pausedSeconds,
		State:          t.state,
		Memo:           t.memo,
	}
	if err := t.store.SaveSnapshot(snap); err != nil {
		t.logger.Errorf("timer: failed to persist snapshot: %v", err)
	}
}
