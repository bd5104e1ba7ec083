// Package orchestration runs the archiving pass of a build.
package orchestration

//go:generate go tool mockgen -source=archiver.go -destination=mocks_test.go -package=orchestration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spboyer/simarchive/internal/archive"
	"github.com/spboyer/simarchive/internal/discovery"
	"github.com/spboyer/simarchive/internal/models"
	"github.com/spboyer/simarchive/internal/selection"
	"github.com/spboyer/simarchive/internal/stats"
)

// RunContext is what the build environment provides to an archiving pass.
type RunContext interface {
	// BuildID identifies the build the history is attached to.
	BuildID() string
	// Workspace returns the root of the build's file tree.
	Workspace() (string, error)
	// StartTime is the instant the build started; only reports modified
	// after it are archived.
	StartTime() time.Time
	// Logger receives the status lines of the pass.
	Logger() *slog.Logger
	// RootDir is the build's private storage directory.
	RootDir() string
}

// HistoryRecorder accumulates summary records per build.
type HistoryRecorder interface {
	AppendOrCreate(ctx context.Context, buildID string, records []models.SummaryRecord) (*models.History, error)
}

// Status describes how an archiving pass ended without error.
type Status string

const (
	StatusUnset          Status = "unset"
	StatusDisabled       Status = "disabled"
	StatusNoReports      Status = "no_reports"
	StatusNoFreshReports Status = "no_fresh_reports"
	StatusArchived       Status = "archived"
)

// Result is the outcome of a successful pass. Records is empty unless
// Status is StatusArchived.
type Result struct {
	Status  Status
	Records []models.SummaryRecord
	// Skipped lists reports that were already archived, when the collision
	// policy allows skipping them.
	Skipped []string
	History *models.History
}

// OK reports whether the pass completed. Run returns a nil Result on failure.
func (r *Result) OK() bool {
	return r != nil
}

// Option configures an Archiver.
type Option func(*Archiver)

// WithWriter replaces the default archive.Writer.
func WithWriter(w *archive.Writer) Option {
	return func(a *Archiver) {
		if w != nil {
			a.writer = w
		}
	}
}

// WithExcludes lists directories whose contents are never treated as
// reports, such as the builds and history directories when they live inside
// the workspace. The build's own RootDir is always excluded.
func WithExcludes(dirs ...string) Option {
	return func(a *Archiver) {
		a.excludes = append(a.excludes, dirs...)
	}
}

// Archiver runs the discover, select, archive, parse and record pipeline for
// one build.
type Archiver struct {
	recorder HistoryRecorder
	writer   *archive.Writer
	excludes []string
	now      func() time.Time
}

// NewArchiver creates an Archiver recording into recorder.
func NewArchiver(recorder HistoryRecorder, opts ...Option) *Archiver {
	a := &Archiver{
		recorder: recorder,
		writer:   archive.NewWriter(),
		now:      time.Now,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Run archives the reports produced since rc.StartTime(). Skip conditions
// (tracking unset or disabled, no report, no fresh report) return a Result and
// a nil error. Any failure returns a nil Result: records archived earlier in
// the same pass are not added to the history, and copies already on disk are
// left in place.
func (a *Archiver) Run(ctx context.Context, rc RunContext, enablement models.Enablement) (*Result, error) {
	log := rc.Logger()
	if log == nil {
		log = slog.Default()
	}

	switch enablement {
	case models.EnablementUnset:
		log.Warn("Cannot check simulation tracking status, reports won't be archived.")
		log.Warn("Please make sure simulation tracking is enabled in your build configuration!")
		return &Result{Status: StatusUnset}, nil
	case models.EnablementDisabled:
		log.Info("Simulation tracking disabled, reports were not archived.")
		return &Result{Status: StatusDisabled}, nil
	}

	log.Info("Archiving Gatling reports...")

	candidates, err := a.discover(rc)
	if err != nil {
		log.Error("Failed to access workspace, it may be on a non-connected agent.", "error", err)
		return nil, err
	}
	if len(candidates) == 0 {
		log.Info("Could not find a Gatling report in results folder.")
		return &Result{Status: StatusNoReports}, nil
	}

	selected := selection.SelectFunc(candidates, rc.StartTime(), func(c models.ReportCandidate, fresh bool) {
		if fresh {
			log.Info(fmt.Sprintf("Adding report '%s'", c.Name))
			return
		}
		log.Debug("Ignoring report older than build start", "report", c.Name, "modified", c.ModTime)
	})
	if len(selected) == 0 {
		log.Info("No newer Gatling reports to archive.")
		return &Result{Status: StatusNoFreshReports}, nil
	}

	root, err := archive.EnsureRoot(rc.RootDir())
	if err != nil {
		log.Error(fmt.Sprintf("Could not create simulations archive directory '%s'", filepath.Join(rc.RootDir(), archive.SimulationsDir)), "error", err)
		return nil, err
	}

	var records []models.SummaryRecord
	var skipped []string
	for _, c := range selected {
		if err := ctx.Err(); err != nil {
			log.Error("Archiving interrupted, history was not updated.", "error", err)
			return nil, fmt.Errorf("archiving interrupted: %w", err)
		}

		rec, err := a.archiveOne(ctx, c, root)
		switch {
		case errors.Is(err, archive.ErrAlreadyArchived):
			log.Info(fmt.Sprintf("Report '%s' already archived, skipping", c.Name))
			skipped = append(skipped, c.Name)
			continue
		case errors.Is(err, archive.ErrSimulationDirectoryCreate):
			log.Error(fmt.Sprintf("Could not create simulation archive directory '%s'", filepath.Join(root, c.Name)), "error", err)
			return nil, err
		case errors.Is(err, stats.ErrMalformedReport):
			log.Error(fmt.Sprintf("Could not parse report '%s': %v", c.Name, err))
			return nil, err
		case err != nil:
			log.Error(fmt.Sprintf("Could not archive report '%s'", c.Name), "error", err)
			return nil, err
		}

		records = append(records, rec)
	}

	if len(records) == 0 {
		log.Info("No newer Gatling reports to archive.")
		return &Result{Status: StatusNoFreshReports, Skipped: skipped}, nil
	}

	h, err := a.recorder.AppendOrCreate(ctx, rc.BuildID(), records)
	if err != nil {
		log.Error("Could not record simulation history", "build", rc.BuildID(), "error", err)
		return nil, err
	}

	log.Info(fmt.Sprintf("Archived %d Gatling report(s) for build %s", len(records), rc.BuildID()))
	return &Result{
		Status:  StatusArchived,
		Records: records,
		Skipped: skipped,
		History: h,
	}, nil
}

func (a *Archiver) discover(rc RunContext) ([]models.ReportCandidate, error) {
	ws, err := rc.Workspace()
	if err != nil {
		if errors.Is(err, discovery.ErrWorkspaceUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", discovery.ErrWorkspaceUnavailable, err)
	}
	exclude := append([]string{rc.RootDir()}, a.excludes...)
	return discovery.Discover(ws, exclude...)
}

// archiveOne copies one report and parses the stats file of the copy.
func (a *Archiver) archiveOne(ctx context.Context, c models.ReportCandidate, root string) (models.SummaryRecord, error) {
	entry, err := a.writer.Archive(ctx, c, root)
	if err != nil {
		return models.SummaryRecord{}, err
	}

	st, err := stats.Parse(filepath.Join(entry.Dir, c.StatsFile))
	if err != nil {
		return models.SummaryRecord{}, err
	}

	return models.SummaryRecord{
		Simulation: entry.Simulation,
		RunID:      entry.RunID,
		Stats:      st,
		ArchiveDir: entry.Dir,
		ArchivedAt: a.now().UTC(),
	}, nil
}
