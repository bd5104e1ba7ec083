// Package archive copies selected report directories into a build's
// persistent simulations archive.
package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spboyer/simarchive/internal/models"
)

// SimulationsDir is the archive directory name under a build's root.
const SimulationsDir = "simulations"

var (
	// ErrArchiveDirectoryCreate is returned when the simulations root of a
	// build cannot be created.
	ErrArchiveDirectoryCreate = errors.New("could not create simulations archive directory")

	// ErrSimulationDirectoryCreate is returned when the per-report archive
	// directory cannot be created, including when it already exists.
	ErrSimulationDirectoryCreate = errors.New("could not create simulation archive directory")

	// ErrAlreadyArchived is returned instead of ErrSimulationDirectoryCreate
	// when the collision policy is CollisionSkip.
	ErrAlreadyArchived = errors.New("report already archived")
)

// CollisionPolicy decides what happens when a report's archive directory
// already exists.
type CollisionPolicy string

const (
	CollisionFail CollisionPolicy = "fail"
	CollisionSkip CollisionPolicy = "skip"
)

// ParseCollisionPolicy validates a policy name. Empty means CollisionFail.
func ParseCollisionPolicy(s string) (CollisionPolicy, error) {
	switch CollisionPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", CollisionFail:
		return CollisionFail, nil
	case CollisionSkip:
		return CollisionSkip, nil
	default:
		return "", fmt.Errorf("unknown collision policy %q: must be fail or skip", s)
	}
}

// Option configures a Writer.
type Option func(*Writer)

// WithCollisionPolicy sets how existing archive directories are treated.
func WithCollisionPolicy(p CollisionPolicy) Option {
	return func(w *Writer) {
		if p != "" {
			w.onCollision = p
		}
	}
}

// Writer archives report directories.
type Writer struct {
	onCollision CollisionPolicy
}

// NewWriter creates a Writer. The default collision policy is CollisionFail.
func NewWriter(opts ...Option) *Writer {
	w := &Writer{onCollision: CollisionFail}
	for _, fn := range opts {
		fn(w)
	}
	return w
}

// EnsureRoot creates <buildRoot>/simulations when it does not exist and
// returns its path. Missing parents of buildRoot are created too.
func EnsureRoot(buildRoot string) (string, error) {
	root := filepath.Join(buildRoot, SimulationsDir)
	if err := os.MkdirAll(buildRoot, 0755); err != nil {
		return "", fmt.Errorf("%w '%s': %w", ErrArchiveDirectoryCreate, root, err)
	}

	info, err := os.Stat(root)
	if err == nil {
		if !info.IsDir() {
			return "", fmt.Errorf("%w '%s': not a directory", ErrArchiveDirectoryCreate, root)
		}
		return root, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w '%s': %w", ErrArchiveDirectoryCreate, root, err)
	}

	if err := os.Mkdir(root, 0755); err != nil {
		return "", fmt.Errorf("%w '%s': %w", ErrArchiveDirectoryCreate, root, err)
	}
	return root, nil
}

// SplitName splits a report directory name at its last dash into the
// simulation name and the run identifier. A name without a dash is used as
// the simulation name as-is.
func SplitName(name string) (simulation, runID string) {
	i := strings.LastIndex(name, "-")
	if i < 0 {
		return name, ""
	}
	return name[:i], name[i+1:]
}

// Archive copies the candidate's report tree into root/<candidate name>.
// The destination directory must not exist yet. A failed copy is not
// cleaned up.
func (w *Writer) Archive(ctx context.Context, c models.ReportCandidate, root string) (models.ArchiveEntry, error) {
	simulation, runID := SplitName(c.Name)
	dest := filepath.Join(root, c.Name)

	entry := models.ArchiveEntry{
		Simulation: simulation,
		RunID:      runID,
		Name:       c.Name,
		Dir:        dest,
	}

	if isWithin(c.Dir, dest) {
		return models.ArchiveEntry{}, fmt.Errorf("%w '%s': destination is inside the report directory", ErrSimulationDirectoryCreate, dest)
	}

	if err := os.Mkdir(dest, 0755); err != nil {
		if errors.Is(err, fs.ErrExist) && w.onCollision == CollisionSkip {
			return entry, fmt.Errorf("%w: '%s'", ErrAlreadyArchived, dest)
		}
		return models.ArchiveEntry{}, fmt.Errorf("%w '%s': %w", ErrSimulationDirectoryCreate, dest, err)
	}

	if err := copyTree(ctx, c.Dir, dest); err != nil {
		return models.ArchiveEntry{}, fmt.Errorf("copying report '%s': %w", c.Name, err)
	}

	return entry, nil
}

// copyTree mirrors src into the existing directory dst.
func copyTree(ctx context.Context, src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		target := filepath.Join(dst, rel)

		switch {
		case d.IsDir():
			return os.Mkdir(target, 0755)
		case d.Type()&fs.ModeSymlink != 0:
			link, err := os.Readlink(path)
			if err != nil {
				return err
			}
			return os.Symlink(link, target)
		case d.Type().IsRegular():
			info, err := d.Info()
			if err != nil {
				return err
			}
			return copyFile(path, target, info.Mode().Perm())
		default:
			// sockets, devices and pipes are not part of a report
			return nil
		}
	})
}

func copyFile(src, dst string, perm fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close() //nolint:errcheck

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, perm)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close() //nolint:errcheck
		return err
	}
	return out.Close()
}

// isWithin reports whether path equals dir or lies below it.
func isWithin(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
