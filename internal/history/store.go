// Package history persists the per-build list of summary records.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/spboyer/simarchive/internal/models"
)

const (
	lockPollInterval = 20 * time.Millisecond
	defaultLockWait  = 30 * time.Second

	// staleLockAge is how old a lock file must be before it is treated as
	// left behind by a crashed process.
	staleLockAge = 2 * time.Minute
)

var (
	// ErrNotFound is returned when no history exists for a build.
	ErrNotFound = errors.New("history not found")

	// ErrInvalidBuildID is returned for build IDs that cannot be used as a
	// file name.
	ErrInvalidBuildID = errors.New("invalid build id")

	// ErrLocked is returned when another process holds a build's history
	// lock for longer than the store is willing to wait.
	ErrLocked = errors.New("history is locked by another process")
)

// Store is a keyed store of build histories.
type Store interface {
	// Get returns the history of a build, or ErrNotFound.
	Get(ctx context.Context, buildID string) (*models.History, error)
	// Put replaces the stored history of h.BuildID.
	Put(ctx context.Context, h *models.History) error
	// List returns every stored history sorted by build ID.
	List(ctx context.Context) ([]*models.History, error)
}

// Locker is implemented by stores shared between processes. Recorder holds
// the lock of a build around each read-modify-write of its history.
type Locker interface {
	Lock(ctx context.Context, buildID string) (unlock func(), err error)
}

// FileStore keeps one JSON file per build in a directory.
type FileStore struct {
	dir      string
	mu       sync.RWMutex
	lockWait time.Duration
}

var _ Locker = (*FileStore)(nil)

// NewFileStore creates a FileStore rooted at dir. The directory is created on
// first write.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir, lockWait: defaultLockWait}
}

// Dir returns the directory histories are stored in.
func (fs *FileStore) Dir() string {
	return fs.dir
}

// ValidateBuildID checks that id can be used as a history key.
func ValidateBuildID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: empty", ErrInvalidBuildID)
	}
	if id == "." || id == ".." || strings.ContainsAny(id, `/\`) || strings.ContainsRune(id, 0) {
		return fmt.Errorf("%w: %q", ErrInvalidBuildID, id)
	}
	return nil
}

// Get reads the history of buildID.
func (fs *FileStore) Get(_ context.Context, buildID string) (*models.History, error) {
	if err := ValidateBuildID(buildID); err != nil {
		return nil, err
	}

	fs.mu.RLock()
	defer fs.mu.RUnlock()

	return fs.read(fs.path(buildID))
}

// Put writes h atomically: the file is written next to its destination and
// renamed over it.
func (fs *FileStore) Put(_ context.Context, h *models.History) error {
	if h == nil {
		return errors.New("history is nil")
	}
	if err := ValidateBuildID(h.BuildID); err != nil {
		return err
	}

	data, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling history: %w", err)
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	if err := os.MkdirAll(fs.dir, 0755); err != nil {
		return fmt.Errorf("creating history directory: %w", err)
	}

	tmp, err := os.CreateTemp(fs.dir, "."+h.BuildID+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp history file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()        //nolint:errcheck
		os.Remove(tmpName) //nolint:errcheck
		return fmt.Errorf("writing history file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()        //nolint:errcheck
		os.Remove(tmpName) //nolint:errcheck
		return fmt.Errorf("syncing history file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName) //nolint:errcheck
		return fmt.Errorf("closing history file: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName) //nolint:errcheck
		return fmt.Errorf("setting history file mode: %w", err)
	}

	if err := os.Rename(tmpName, fs.path(h.BuildID)); err != nil {
		os.Remove(tmpName) //nolint:errcheck
		return fmt.Errorf("replacing history file: %w", err)
	}
	return nil
}

// Lock takes the lock of buildID's history, shared by every process using the
// same directory. The lock is a .<buildID>.lock file created exclusively;
// Lock polls until it can create it, ctx is done or the wait limit is hit.
func (fs *FileStore) Lock(ctx context.Context, buildID string) (func(), error) {
	if err := ValidateBuildID(buildID); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(fs.dir, 0755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	path := filepath.Join(fs.dir, "."+buildID+".lock")
	backoff := retry.WithMaxDuration(fs.lockWait, retry.NewConstant(lockPollInterval))

	err := retry.Do(ctx, backoff, func(_ context.Context) error {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if err == nil {
			fmt.Fprintf(f, "%d\n", os.Getpid()) //nolint:errcheck
			return f.Close()
		}
		if !errors.Is(err, os.ErrExist) {
			return fmt.Errorf("creating lock file: %w", err)
		}

		if info, statErr := os.Stat(path); statErr == nil && time.Since(info.ModTime()) > staleLockAge {
			os.Remove(path) //nolint:errcheck
		}
		return retry.RetryableError(fmt.Errorf("%w: %s", ErrLocked, path))
	})
	if err != nil {
		return nil, err
	}

	return func() {
		os.Remove(path) //nolint:errcheck
	}, nil
}

// List reads every history in the store. Files that cannot be decoded are
// skipped.
func (fs *FileStore) List(_ context.Context) ([]*models.History, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	entries, err := os.ReadDir(fs.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading history directory: %w", err)
	}

	var out []*models.History
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		h, err := fs.read(filepath.Join(fs.dir, e.Name()))
		if err != nil {
			continue
		}
		if h.BuildID == "" {
			h.BuildID = strings.TrimSuffix(e.Name(), ".json")
		}
		out = append(out, h)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].BuildID < out[j].BuildID })
	return out, nil
}

func (fs *FileStore) read(path string) (*models.History, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading history file: %w", err)
	}

	var h models.History
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("parsing history file %s: %w", path, err)
	}
	return &h, nil
}

func (fs *FileStore) path(buildID string) string {
	return filepath.Join(fs.dir, buildID+".json")
}
