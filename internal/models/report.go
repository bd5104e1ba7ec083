// Package models holds the types shared by the archiving pipeline.
package models

import "time"

// ReportCandidate is a report directory found in the workspace during a
// single archiving pass.
type ReportCandidate struct {
	Dir       string    // absolute path to the report directory
	Name      string    // base name of Dir, e.g. "checkoutsimulation-20240101120000"
	StatsFile string    // stats file path relative to Dir
	ModTime   time.Time // last-modified time of Dir
}

// ArchiveEntry is a report copied into a build's simulations archive.
type ArchiveEntry struct {
	Simulation string `json:"simulation"`
	RunID      string `json:"run_id,omitempty"`
	Name       string `json:"name"`
	Dir        string `json:"dir"`
}
