package recorder

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mayu-0506/studytime-tracker-sub000/internal"
)

type SessionRecorder interface {
	RecordSession(ctx context.Context, session *internal.StudySession) error
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type PendingStore interface {
	AppendPending(rec *internal.PendingSessionRecord) error
	ListPending() ([]internal.PendingSessionRecord, error)
	RemovePending(id string) error
}

// Queue is the durable retry list for sessions whose remote write failed.
// Entries are flushed FIFO; only confirmed successes are pruned.
type Queue struct {
	store    PendingStore
	recorder SessionRecorder
	logger   internal.Logger

	flushMu sync.Mutex
}

func NewQueue(store PendingStore, recorder SessionRecorder, logger internal.Logger) *Queue {
	if logger == nil {
		logger = internal.NopLogger{}
	}
	return &Queue{store: store, recorder: recorder, logger: logger}
}

func (q *Queue) Enqueue(session internal.StudySession) error {
	rec := &internal.PendingSessionRecord{
		ID:         uuid.NewString(),
		Session:    session,
		CapturedAt: time.Now(),
	}
	if err := q.store.AppendPending(rec); err != nil {
		return err
	}
	q.logger.Infof("queue: captured session for retry (subject=%s, %dmin)",
		session.SubjectID, session.DurationMinutes)
	return nil
}

func (q *Queue) Len() (int, error) {
	records, err := q.store.ListPending()
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

// Flush attempts every pending entry in capture order. Entries that succeed
// are removed; failures stay, in order, for the next flush. Each entry is
// independent — one failure does not stop the pass. Only one flush runs at
// a time.
func (q *Queue) Flush(ctx context.Context) (flushed, remaining int, err error) {
	q.flushMu.Lock()
	defer q.flushMu.Unlock()

	records, err := q.store.ListPending()
	if err != nil {
		return 0, 0, err
	}

	for _, rec := range records {
		if ctx.Err() != nil {
			return flushed, len(records) - flushed, ctx.Err()
		}
		if err := q.recorder.RecordSession(ctx, &rec.Session); err != nil {
			q.logger.Warnf("queue: retry failed for %s: %v", rec.ID, err)
			remaining++
			continue
		}
		if err := q.store.RemovePending(rec.ID); err != nil {
			q.logger.Errorf("queue: failed to prune %s: %v", rec.ID, err)
			remaining++
			continue
		}
		flushed++
	}
	if flushed > 0 {
		q.logger.Infof("queue: flushed %d session(s), %d remaining", flushed, remaining)
	}
	return flushed, remaining, nil
}

// Watch polls connectivity and flushes whenever the API transitions from
// unreachable to reachable. Blocks until the context is cancelled.
func (q *Queue) Watch(ctx context.Context, pinger Pinger, interval time.Duration) {
	online := pinger.Ping(ctx) == nil

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			reachable := pinger.Ping(ctx) == nil
			if reachable && !online {
				q.logger.Infof("queue: back online, flushing")
				if _, _, err := q.Flush(ctx); err != nil {
					q.logger.Errorf("queue: flush failed: %v", err)
				}
			}
			online = reachable
		}
	}
}
