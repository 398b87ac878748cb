// Package localstore is the timer's durable local storage: a single
// in-progress snapshot plus the list of sessions whose remote write has not
// yet been confirmed. Backed by an embedded Badger store so a run survives
// process restarts and crashes.
package localstore

import (
	"errors"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/mayu-0506/studytime-tracker-sub000/internal"
	"github.com/timshannon/badgerhold/v4"
)

const snapshotKey = "timer_snapshot"

type Store struct {
	store  *badgerhold.Store
	logger internal.Logger
}

func Open(dir string, logger internal.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	options := badgerhold.DefaultOptions
	options.Dir = dir
	options.ValueDir = dir
	options.Logger = nil // badger's own logger is too chatty for a CLI

	store, err := badgerhold.Open(options)
	if err != nil {
		logger.Errorf("localstore: failed to open %s: %v", dir, err)
		return nil, err
	}
	return &Store{store: store, logger: logger}, nil
}

func (s *Store) Close() error {
	return s.store.Close()
}

// SaveSnapshot overwrites the single persisted snapshot.
func (s *Store) SaveSnapshot(snap *internal.TimerSnapshot) error {
	snap.SchemaVersion = internal.SnapshotSchemaVersion
	return s.store.Upsert(snapshotKey, snap)
}

// LoadSnapshot returns the persisted snapshot, or nil when none exists. A
// snapshot with a stale schema version or out-of-invariant fields is deleted
// and treated as absent; the user never sees a corrupt duration.
func (s *Store) LoadSnapshot() (*internal.TimerSnapshot, error) {
	var snap internal.TimerSnapshot
	if err := s.store.Get(snapshotKey, &snap); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if !snap.Valid() {
		s.logger.Warnf("localstore: discarding invalid snapshot (version=%d state=%q elapsed=%d paused=%d)",
			snap.SchemaVersion, snap.State, snap.ElapsedSeconds, snap.PausedSeconds)
		_ = s.ClearSnapshot()
		return nil, nil
	}
	return &snap, nil
}

func (s *Store) ClearSnapshot() error {
	err := s.store.Delete(snapshotKey, &internal.TimerSnapshot{})
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil
	}
	return err
}

// AppendPending adds a not-yet-recorded session to the durable retry list.
// The record's ID and capture timestamp are filled in if unset.
func (s *Store) AppendPending(rec *internal.PendingSessionRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CapturedAt.IsZero() {
		rec.CapturedAt = time.Now()
	}
	return s.store.Insert(rec.ID, rec)
}

// ListPending returns every pending record in FIFO capture order.
func (s *Store) ListPending() ([]internal.PendingSessionRecord, error) {
	var records []internal.PendingSessionRecord
	if err := s.store.Find(&records, nil); err != nil {
		return nil, err
	}
	sort.Slice(records, func(i, j int) bool {
		if !records[i].CapturedAt.Equal(records[j].CapturedAt) {
			return records[i].CapturedAt.Before(records[j].CapturedAt)
		}
		return records[i].ID < records[j].ID
	})
	return records, nil
}

// RemovePending prunes a confirmed record. Removing an already-removed
// record is not an error, so a re-entered flush stays idempotent.
func (s *Store) RemovePending(id string) error {
	err := s.store.Delete(id, &internal.PendingSessionRecord{})
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil
	}
	return err
}
