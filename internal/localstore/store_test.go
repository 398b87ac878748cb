package localstore

import (
	"testing"
	"time"

	"github.com/mayu-0506/studytime-tracker-sub000/internal"
	"github.com/stretchr/testify/assert"
)

func setupStore(t *testing.T) *Store {
	store, err := Open(t.TempDir(), internal.NopLogger{})
	assert.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func validSnapshot() *internal.TimerSnapshot {
	return &internal.TimerSnapshot{
		SchemaVersion:  internal.SnapshotSchemaVersion,
		SubjectID:      "preset-math",
		SubjectName:    "Math",
		SubjectColor:   "#3b82f6",
		StartTime:      time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
		ElapsedSeconds: 300,
		PausedSeconds:  60,
		State:          internal.TimerRunning,
		Memo:           "chapter 4",
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	store := setupStore(t)

	saved := validSnapshot()
	assert.NoError(t, store.SaveSnapshot(saved))

	loaded, err := store.LoadSnapshot()
	assert.NoError(t, err)
	assert.Equal(t, saved, loaded)
}

func TestLoadSnapshotAbsent(t *testing.T) {
	store := setupStore(t)

	loaded, err := store.LoadSnapshot()
	assert.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestSaveOverwritesPrior(t *testing.T) {
	store := setupStore(t)

	first := validSnapshot()
	assert.NoError(t, store.SaveSnapshot(first))

	second := validSnapshot()
	second.ElapsedSeconds = 301
	assert.NoError(t, store.SaveSnapshot(second))

	loaded, err := store.LoadSnapshot()
	assert.NoError(t, err)
	assert.Equal(t, 301, loaded.ElapsedSeconds)
}

func TestClearSnapshot(t *testing.T) {
	store := setupStore(t)

	assert.NoError(t, store.SaveSnapshot(validSnapshot()))
	assert.NoError(t, store.ClearSnapshot())
	assert.NoError(t, store.ClearSnapshot()) // idempotent

	loaded, err := store.LoadSnapshot()
	assert.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestCorruptSnapshotsTreatedAsAbsent(t *testing.T) {
	corrupt := []*internal.TimerSnapshot{
		func() *internal.TimerSnapshot {
			s := validSnapshot()
			s.SchemaVersion = internal.SnapshotSchemaVersion - 1
			return s
		}(),
		func() *internal.TimerSnapshot {
			s := validSnapshot()
			s.PausedSeconds = s.ElapsedSeconds + 1
			return s
		}(),
		func() *internal.TimerSnapshot {
			s := validSnapshot()
			s.ElapsedSeconds = -5
			return s
		}(),
		func() *internal.TimerSnapshot {
			s := validSnapshot()
			s.ElapsedSeconds = internal.MaxSessionSeconds + 1
			s.PausedSeconds = 0
			return s
		}(),
		func() *internal.TimerSnapshot {
			s := validSnapshot()
			s.State = "sprinting"
			return s
		}(),
	}

	for _, snap := range corrupt {
		store := setupStore(t)
		// Write directly, bypassing SaveSnapshot's version stamping.
		assert.NoError(t, store.store.Upsert(snapshotKey, snap))

		loaded, err := store.LoadSnapshot()
		assert.NoError(t, err)
		assert.Nil(t, loaded, "snapshot %+v should be discarded", snap)
	}
}

func TestPendingFIFOAndPrune(t *testing.T) {
	store := setupStore(t)

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		rec := &internal.PendingSessionRecord{
			ID:         string(rune('a' + i)),
			Session:    internal.StudySession{SubjectID: "preset-math", DurationMinutes: i + 1},
			CapturedAt: base.Add(time.Duration(i) * time.Minute),
		}
		assert.NoError(t, store.AppendPending(rec))
	}

	records, err := store.ListPending()
	assert.NoError(t, err)
	assert.Len(t, records, 3)
	assert.Equal(t, "a", records[0].ID)
	assert.Equal(t, "b", records[1].ID)
	assert.Equal(t, "c", records[2].ID)

	assert.NoError(t, store.RemovePending("b"))
	assert.NoError(t, store.RemovePending("b")) // idempotent

	records, err = store.ListPending()
	assert.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, "a", records[0].ID)
	assert.Equal(t, "c", records[1].ID)
}

func TestAppendPendingFillsDefaults(t *testing.T) {
	store := setupStore(t)

	rec := &internal.PendingSessionRecord{Session: internal.StudySession{SubjectID: "preset-math"}}
	assert.NoError(t, store.AppendPending(rec))
	assert.NotEmpty(t, rec.ID)
	assert.False(t, rec.CapturedAt.IsZero())
}
