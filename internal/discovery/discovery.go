// Package discovery finds Gatling report directories in a build workspace.
package discovery

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spboyer/simarchive/internal/models"
	"github.com/spboyer/simarchive/internal/stats"
)

// ErrWorkspaceUnavailable is returned when the workspace root cannot be read.
var ErrWorkspaceUnavailable = errors.New("workspace unavailable")

// vcsDirs are never descended into, matching the default excludes of
// Ant-style "**/" patterns.
var vcsDirs = map[string]bool{
	".git": true,
	".svn": true,
	".hg":  true,
	".bzr": true,
	"CVS":  true,
}

// Discover walks the workspace and returns a candidate for every report
// directory holding a stats file. A report is the directory two levels above
// the stats file: <report>/js/global_stats.json.
//
// Directories listed in exclude are not descended into, so archived copies
// stored under the workspace are never reported again.
//
// Candidates are unique per directory and sorted by path.
func Discover(workspace string, exclude ...string) ([]models.ReportCandidate, error) {
	absRoot, err := filepath.Abs(workspace)
	if err != nil {
		return nil, fmt.Errorf("%w: resolving %s: %w", ErrWorkspaceUnavailable, workspace, err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWorkspaceUnavailable, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrWorkspaceUnavailable, absRoot)
	}

	skip := make(map[string]bool, len(exclude))
	for _, e := range exclude {
		if e == "" {
			continue
		}
		if abs, err := filepath.Abs(e); err == nil {
			skip[abs] = true
		}
	}

	seen := make(map[string]bool)
	var candidates []models.ReportCandidate

	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip inaccessible entries
		}

		if d.IsDir() {
			if path != absRoot && (vcsDirs[d.Name()] || skip[path]) {
				return fs.SkipDir
			}
			return nil
		}

		if d.Name() != stats.StatsFileName {
			return nil
		}

		reportDir := filepath.Dir(filepath.Dir(path))
		if !isBelow(absRoot, reportDir) || seen[reportDir] {
			return nil
		}

		dirInfo, err := os.Stat(reportDir)
		if err != nil {
			return nil
		}

		rel, err := filepath.Rel(reportDir, path)
		if err != nil {
			return nil
		}

		seen[reportDir] = true
		candidates = append(candidates, models.ReportCandidate{
			Dir:       reportDir,
			Name:      filepath.Base(reportDir),
			StatsFile: rel,
			ModTime:   dirInfo.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking directory %s: %w", absRoot, err)
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Dir < candidates[j].Dir })
	return candidates, nil
}

// isBelow reports whether path is strictly inside root.
func isBelow(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
