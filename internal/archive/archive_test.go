package archive

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spboyer/simarchive/internal/models"
	"github.com/spboyer/simarchive/internal/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const statsContent = `{"name": "All Requests", "numberOfRequests": {"total": 10, "ok": 9, "ko": 1}, "percentiles3": {"total": 120, "ok": 110, "ko": 400}}`

// makeReport creates a minimal report tree and returns its candidate.
func makeReport(t *testing.T, parent, name string) models.ReportCandidate {
	t.Helper()
	dir := filepath.Join(parent, name)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "js"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "style"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html></html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "js", stats.StatsFileName), []byte(statsContent), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "style", "style.css"), []byte("body{}"), 0o600))
	return models.ReportCandidate{
		Dir:       dir,
		Name:      name,
		StatsFile: filepath.Join("js", stats.StatsFileName),
	}
}

func TestSplitName(t *testing.T) {
	tests := []struct {
		name           string
		wantSimulation string
		wantRunID      string
	}{
		{"Sim1Simulation-20240101120000", "Sim1Simulation", "20240101120000"},
		{"my-load-test-1700000000000", "my-load-test", "1700000000000"},
		{"basicsimulation-", "basicsimulation", ""},
		{"nodash", "nodash", ""},
		{"-123", "", "123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim, run := SplitName(tt.name)
			assert.Equal(t, tt.wantSimulation, sim)
			assert.Equal(t, tt.wantRunID, run)
		})
	}
}

func TestParseCollisionPolicy(t *testing.T) {
	p, err := ParseCollisionPolicy("")
	require.NoError(t, err)
	assert.Equal(t, CollisionFail, p)

	p, err = ParseCollisionPolicy("SKIP")
	require.NoError(t, err)
	assert.Equal(t, CollisionSkip, p)

	_, err = ParseCollisionPolicy("overwrite")
	assert.Error(t, err)
}

func TestEnsureRoot(t *testing.T) {
	buildRoot := t.TempDir()

	root, err := EnsureRoot(buildRoot)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(buildRoot, SimulationsDir), root)
	assert.DirExists(t, root)

	// Existing directory is reused.
	again, err := EnsureRoot(buildRoot)
	require.NoError(t, err)
	assert.Equal(t, root, again)
}

func TestEnsureRoot_Failures(t *testing.T) {
	t.Run("build root is a file", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "build")
		require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

		_, err := EnsureRoot(file)
		assert.ErrorIs(t, err, ErrArchiveDirectoryCreate)
	})

	t.Run("simulations is a file", func(t *testing.T) {
		buildRoot := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(buildRoot, SimulationsDir), []byte("x"), 0o644))

		_, err := EnsureRoot(buildRoot)
		assert.ErrorIs(t, err, ErrArchiveDirectoryCreate)
	})

	t.Run("build root below a file", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "builds")
		require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

		_, err := EnsureRoot(filepath.Join(file, "5"))
		assert.ErrorIs(t, err, ErrArchiveDirectoryCreate)
	})
}

func TestEnsureRoot_CreatesMissingBuildRoot(t *testing.T) {
	buildRoot := filepath.Join(t.TempDir(), "builds", "5")

	root, err := EnsureRoot(buildRoot)
	require.NoError(t, err)
	assert.DirExists(t, root)
}

func TestArchive_CopiesReportTree(t *testing.T) {
	c := makeReport(t, t.TempDir(), "Sim1Simulation-20240101120000")
	root, err := EnsureRoot(t.TempDir())
	require.NoError(t, err)

	entry, err := NewWriter().Archive(context.Background(), c, root)
	require.NoError(t, err)

	assert.Equal(t, "Sim1Simulation", entry.Simulation)
	assert.Equal(t, "20240101120000", entry.RunID)
	assert.Equal(t, "Sim1Simulation-20240101120000", entry.Name)
	assert.Equal(t, filepath.Join(root, "Sim1Simulation-20240101120000"), entry.Dir)

	for _, rel := range []string{"index.html", filepath.Join("js", stats.StatsFileName), filepath.Join("style", "style.css")} {
		want, err := os.ReadFile(filepath.Join(c.Dir, rel))
		require.NoError(t, err)
		got, err := os.ReadFile(filepath.Join(entry.Dir, rel))
		require.NoError(t, err, rel)
		assert.Equal(t, want, got, rel)
	}

	info, err := os.Stat(filepath.Join(entry.Dir, "style", "style.css"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestArchive_PreservesSymlinks(t *testing.T) {
	c := makeReport(t, t.TempDir(), "linked-1")
	require.NoError(t, os.Symlink("index.html", filepath.Join(c.Dir, "latest.html")))
	root, err := EnsureRoot(t.TempDir())
	require.NoError(t, err)

	entry, err := NewWriter().Archive(context.Background(), c, root)
	require.NoError(t, err)

	link, err := os.Readlink(filepath.Join(entry.Dir, "latest.html"))
	require.NoError(t, err)
	assert.Equal(t, "index.html", link)
}

func TestArchive_RoundTripStats(t *testing.T) {
	c := makeReport(t, t.TempDir(), "checkout-42")
	root, err := EnsureRoot(t.TempDir())
	require.NoError(t, err)

	entry, err := NewWriter().Archive(context.Background(), c, root)
	require.NoError(t, err)

	original, err := stats.Parse(filepath.Join(c.Dir, c.StatsFile))
	require.NoError(t, err)
	archived, err := stats.Parse(filepath.Join(entry.Dir, c.StatsFile))
	require.NoError(t, err)

	assert.Equal(t, original, archived)
}

func TestArchive_CollisionFails(t *testing.T) {
	c := makeReport(t, t.TempDir(), "checkout-1")
	root, err := EnsureRoot(t.TempDir())
	require.NoError(t, err)

	_, err = NewWriter().Archive(context.Background(), c, root)
	require.NoError(t, err)

	_, err = NewWriter().Archive(context.Background(), c, root)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSimulationDirectoryCreate)
	assert.NotErrorIs(t, err, ErrAlreadyArchived)
}

func TestArchive_CollisionSkip(t *testing.T) {
	c := makeReport(t, t.TempDir(), "checkout-1")
	root, err := EnsureRoot(t.TempDir())
	require.NoError(t, err)

	w := NewWriter(WithCollisionPolicy(CollisionSkip))
	_, err = w.Archive(context.Background(), c, root)
	require.NoError(t, err)

	entry, err := w.Archive(context.Background(), c, root)
	require.ErrorIs(t, err, ErrAlreadyArchived)
	assert.Equal(t, "checkout", entry.Simulation)
}

func TestArchive_MissingRootFails(t *testing.T) {
	c := makeReport(t, t.TempDir(), "checkout-1")

	_, err := NewWriter().Archive(context.Background(), c, filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, ErrSimulationDirectoryCreate)
}

func TestArchive_DestinationInsideReport(t *testing.T) {
	c := makeReport(t, t.TempDir(), "checkout-1")

	_, err := NewWriter().Archive(context.Background(), c, c.Dir)
	assert.ErrorIs(t, err, ErrSimulationDirectoryCreate)
}

func TestArchive_CanceledContext(t *testing.T) {
	c := makeReport(t, t.TempDir(), "checkout-1")
	root, err := EnsureRoot(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = NewWriter().Archive(ctx, c, root)
	assert.ErrorIs(t, err, context.Canceled)
}
