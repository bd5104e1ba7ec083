package orchestration

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/spboyer/simarchive/internal/discovery"
)

// BuildContext is a RunContext backed by plain values, used by the CLI.
type BuildContext struct {
	ID           string
	WorkspaceDir string
	Started      time.Time
	Log          *slog.Logger
	Root         string
}

var _ RunContext = (*BuildContext)(nil)

func (b *BuildContext) BuildID() string { return b.ID }

// Workspace fails when no workspace is configured or it is not a readable
// directory.
func (b *BuildContext) Workspace() (string, error) {
	if b.WorkspaceDir == "" {
		return "", fmt.Errorf("%w: no workspace configured", discovery.ErrWorkspaceUnavailable)
	}
	info, err := os.Stat(b.WorkspaceDir)
	if err != nil {
		return "", fmt.Errorf("%w: %w", discovery.ErrWorkspaceUnavailable, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", discovery.ErrWorkspaceUnavailable, b.WorkspaceDir)
	}
	return b.WorkspaceDir, nil
}

func (b *BuildContext) StartTime() time.Time { return b.Started }

func (b *BuildContext) Logger() *slog.Logger {
	if b.Log == nil {
		return slog.Default()
	}
	return b.Log
}

func (b *BuildContext) RootDir() string { return b.Root }

// ParseStartTime accepts an RFC 3339 timestamp or Unix milliseconds.
func ParseStartTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("build start time is required")
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms), nil
	}
	return time.Time{}, fmt.Errorf("invalid build start time %q: use RFC 3339 or Unix milliseconds", s)
}
