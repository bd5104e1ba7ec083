package history

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/spboyer/simarchive/internal/models"
)

// Recorder merges newly archived records into a build's history.
type Recorder struct {
	store Store
	now   func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewRecorder creates a Recorder writing to store.
func NewRecorder(store Store) *Recorder {
	return &Recorder{
		store: store,
		now:   time.Now,
		locks: make(map[string]*sync.Mutex),
	}
}

// AppendOrCreate appends records to the history of buildID, creating the
// history when the build has none. Calls for the same build are serialized,
// across processes too when the store is a Locker, so repeated or concurrent
// calls only ever add records. An empty records
// slice leaves the store untouched and returns the current history, which is
// nil when none exists.
func (r *Recorder) AppendOrCreate(ctx context.Context, buildID string, records []models.SummaryRecord) (*models.History, error) {
	if err := ValidateBuildID(buildID); err != nil {
		return nil, err
	}

	lock := r.lockFor(buildID)
	lock.Lock()
	defer lock.Unlock()

	if l, ok := r.store.(Locker); ok {
		unlock, err := l.Lock(ctx, buildID)
		if err != nil {
			return nil, fmt.Errorf("locking history of build %s: %w", buildID, err)
		}
		defer unlock()
	}

	h, err := r.store.Get(ctx, buildID)
	switch {
	case errors.Is(err, ErrNotFound):
		h = nil
	case err != nil:
		return nil, fmt.Errorf("loading history of build %s: %w", buildID, err)
	}

	if len(records) == 0 {
		return h, nil
	}

	now := r.now().UTC()
	if h == nil {
		h = &models.History{
			BuildID:   buildID,
			CreatedAt: now,
		}
	}
	h.Records = append(h.Records, records...)
	h.UpdatedAt = now

	if err := r.store.Put(ctx, h); err != nil {
		return nil, fmt.Errorf("saving history of build %s: %w", buildID, err)
	}
	return h, nil
}

func (r *Recorder) lockFor(buildID string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.locks[buildID]
	if !ok {
		l = &sync.Mutex{}
		r.locks[buildID] = l
	}
	return l
}
