package timer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mayu-0506/studytime-tracker-sub000/internal"
	"github.com/stretchr/testify/assert"
)

type memStore struct {
	snap   *internal.TimerSnapshot
	saves  int
	clears int
}

func (m *memStore) SaveSnapshot(s *internal.TimerSnapshot) error {
	c := *s
	m.snap = &c
	m.saves++
	return nil
}

func (m *memStore) LoadSnapshot() (*internal.TimerSnapshot, error) {
	if m.snap == nil || !m.snap.Valid() {
		return nil, nil
	}
	c := *m.snap
	return &c, nil
}

func (m *memStore) ClearSnapshot() error {
	m.snap = nil
	m.clears++
	return nil
}

type fakeRecorder struct {
	err      error
	recorded []internal.StudySession
}

func (f *fakeRecorder) RecordSession(ctx context.Context, s *internal.StudySession) error {
	if f.err != nil {
		return f.err
	}
	f.recorded = append(f.recorded, *s)
	return nil
}

type fakeQueue struct {
	items []internal.StudySession
}

func (f *fakeQueue) Enqueue(s internal.StudySession) error {
	f.items = append(f.items, s)
	return nil
}

type fixture struct {
	timer    *Timer
	store    *memStore
	recorder *fakeRecorder
	queue    *fakeQueue
	now      time.Time
}

func setupTimer(t *testing.T) *fixture {
	f := &fixture{
		store:    &memStore{},
		recorder: &fakeRecorder{},
		queue:    &fakeQueue{},
		now:      time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	f.timer = New(f.store, f.recorder, f.queue, internal.NopLogger{})
	f.timer.now = func() time.Time { return f.now }
	return f
}

func (f *fixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

var mathSubject = Subject{ID: "preset-math", Name: "Math", Color: "#3b82f6"}

func TestStartRequiresSubject(t *testing.T) {
	f := setupTimer(t)

	err := f.timer.Start(Subject{})
	assert.ErrorIs(t, err, ErrNoSubject)
	assert.Equal(t, StateIdle, f.timer.State())
	assert.Nil(t, f.store.snap)
}

func TestStartPersistsRunningSnapshot(t *testing.T) {
	f := setupTimer(t)

	assert.NoError(t, f.timer.Start(mathSubject))
	assert.Equal(t, StateRunning, f.timer.State())
	assert.NotNil(t, f.store.snap)
	assert.Equal(t, internal.TimerRunning, f.store.snap.State)
	assert.Equal(t, "preset-math", f.store.snap.SubjectID)
	assert.Equal(t, f.now, f.store.snap.StartTime)
}

func TestStartWhileRunningRejected(t *testing.T) {
	f := setupTimer(t)

	assert.NoError(t, f.timer.Start(mathSubject))
	assert.ErrorIs(t, f.timer.Start(mathSubject), ErrAlreadyGoing)
}

func TestElapsedMonotonicWhileRunning(t *testing.T) {
	f := setupTimer(t)
	assert.NoError(t, f.timer.Start(mathSubject))

	prev := 0
	for i := 0; i < 100; i++ {
		f.advance(time.Second)
		elapsed := f.timer.Tick()
		assert.GreaterOrEqual(t, elapsed, prev)
		prev = elapsed
	}
	assert.Equal(t, 100, prev)
}

func TestElapsedFrozenWhilePaused(t *testing.T) {
	f := setupTimer(t)
	assert.NoError(t, f.timer.Start(mathSubject))

	f.advance(60 * time.Second)
	assert.NoError(t, f.timer.Pause())
	atPause := f.timer.ElapsedSeconds()
	assert.Equal(t, 60, atPause)

	f.advance(10 * time.Minute)
	assert.Equal(t, atPause, f.timer.Tick())

	// Resuming immediately after pausing changes elapsed by zero.
	assert.NoError(t, f.timer.Start(Subject{}))
	assert.Equal(t, atPause, f.timer.Tick())
}

func TestPauseOnlyFromRunning(t *testing.T) {
	f := setupTimer(t)

	assert.ErrorIs(t, f.timer.Pause(), ErrNotRunning)
	assert.NoError(t, f.timer.Start(mathSubject))
	assert.NoError(t, f.timer.Pause())
	assert.ErrorIs(t, f.timer.Pause(), ErrNotRunning)
}

func TestSetMemoRejectedWhileIdle(t *testing.T) {
	f := setupTimer(t)

	assert.ErrorIs(t, f.timer.SetMemo("algebra review"), ErrAlreadyIdle)

	assert.NoError(t, f.timer.Start(mathSubject))
	assert.NoError(t, f.timer.SetMemo("algebra review"))
	assert.Equal(t, "algebra review", f.store.snap.Memo)
}

func TestStopNormalRun(t *testing.T) {
	f := setupTimer(t)
	start := f.now

	assert.NoError(t, f.timer.Start(mathSubject))
	f.advance(125 * time.Second)
	f.timer.Tick()

	result, err := f.timer.Stop(context.Background())
	assert.NoError(t, err)
	assert.False(t, result.Queued)
	assert.Equal(t, 2, result.Session.DurationMinutes) // 125s rounds to 2
	assert.Equal(t, start, result.Session.StartTime)
	assert.Equal(t, start.Add(125*time.Second), result.Session.EndTime)
	assert.Equal(t, internal.SourceTimer, result.Session.Source)

	assert.Equal(t, StateIdle, f.timer.State())
	assert.Nil(t, f.store.snap)
	assert.Len(t, f.recorder.recorded, 1)
}

func TestStopPauseResumeScenario(t *testing.T) {
	f := setupTimer(t)

	assert.NoError(t, f.timer.Start(mathSubject)) // T0
	f.advance(60 * time.Second)
	assert.NoError(t, f.timer.Pause()) // T0+60
	f.advance(240 * time.Second)
	assert.NoError(t, f.timer.Start(Subject{})) // resume at T0+300
	f.advance(60 * time.Second)

	assert.Equal(t, 120, f.timer.Tick()) // studied 2 of the 6 minutes

	result, err := f.timer.Stop(context.Background()) // T0+360
	assert.NoError(t, err)
	assert.Equal(t, 2, result.Session.DurationMinutes)
}

func TestStopMinimumOneMinute(t *testing.T) {
	f := setupTimer(t)

	assert.NoError(t, f.timer.Start(mathSubject))
	f.advance(10 * time.Second)

	result, err := f.timer.Stop(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, result.Session.DurationMinutes)
}

func TestStopReachesIdleWhenRecordFails(t *testing.T) {
	f := setupTimer(t)
	f.recorder.err = errors.New("network down")

	assert.NoError(t, f.timer.Start(mathSubject))
	f.advance(5 * time.Minute)

	result, err := f.timer.Stop(context.Background())
	assert.NoError(t, err)
	assert.True(t, result.Queued)
	assert.Equal(t, StateIdle, f.timer.State())
	assert.Nil(t, f.store.snap)
	assert.Len(t, f.queue.items, 1)
	assert.Equal(t, 5, f.queue.items[0].DurationMinutes)
}

func TestStopFromPaused(t *testing.T) {
	f := setupTimer(t)

	assert.NoError(t, f.timer.Start(mathSubject))
	f.advance(90 * time.Second)
	assert.NoError(t, f.timer.Pause())
	f.advance(time.Hour)

	result, err := f.timer.Stop(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 2, result.Session.DurationMinutes) // 90s studied, hour paused
	assert.Equal(t, StateIdle, f.timer.State())
}

func TestSecondStopRejected(t *testing.T) {
	f := setupTimer(t)

	assert.NoError(t, f.timer.Start(mathSubject))
	_, err := f.timer.Stop(context.Background())
	assert.NoError(t, err)
	_, err = f.timer.Stop(context.Background())
	assert.ErrorIs(t, err, ErrAlreadyIdle)
}

func TestCorruptElapsedResetsCounters(t *testing.T) {
	f := setupTimer(t)

	assert.NoError(t, f.timer.Start(mathSubject))
	// Clock jumping backwards makes the derived elapsed negative.
	f.advance(-time.Hour)
	assert.Equal(t, 0, f.timer.Tick())
	assert.Equal(t, 0, f.store.snap.PausedSeconds)
}

func TestRestoreRunningSnapshot(t *testing.T) {
	f := setupTimer(t)

	assert.NoError(t, f.timer.Start(mathSubject))
	f.advance(30 * time.Minute)
	f.timer.Tick()

	// A second machine against the same store picks the run back up.
	revived := New(f.store, f.recorder, f.queue, internal.NopLogger{})
	revived.now = func() time.Time { return f.now }

	restored, err := revived.Restore()
	assert.NoError(t, err)
	assert.True(t, restored)
	assert.Equal(t, StateRunning, revived.State())
	assert.Equal(t, "preset-math", revived.Subject().ID)
	assert.Equal(t, 1800, revived.ElapsedSeconds())
}

func TestRestoreNothingPersisted(t *testing.T) {
	f := setupTimer(t)

	restored, err := f.timer.Restore()
	assert.NoError(t, err)
	assert.False(t, restored)
	assert.Equal(t, StateIdle, f.timer.State())
}

func TestRestorePausedDowntimeCountsAsPaused(t *testing.T) {
	f := setupTimer(t)

	assert.NoError(t, f.timer.Start(mathSubject))
	f.advance(120 * time.Second)
	assert.NoError(t, f.timer.Pause())

	// Process dies; comes back two hours later.
	f.advance(2 * time.Hour)
	revived := New(f.store, f.recorder, f.queue, internal.NopLogger{})
	revived.now = func() time.Time { return f.now }

	restored, err := revived.Restore()
	assert.NoError(t, err)
	assert.True(t, restored)
	assert.Equal(t, StatePaused, revived.State())
	assert.Equal(t, 120, revived.ElapsedSeconds())

	// Resume and verify the downtime did not count as study time.
	assert.NoError(t, revived.Start(Subject{}))
	f.advance(60 * time.Second)
	assert.Equal(t, 180, revived.Tick())
}
