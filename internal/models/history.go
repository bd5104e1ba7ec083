package models

import "time"

// SummaryRecord is the compact result of one archived report. Records are
// created once per ArchiveEntry and never modified afterwards.
type SummaryRecord struct {
	Simulation string      `json:"simulation"`
	RunID      string      `json:"run_id,omitempty"`
	Stats      GlobalStats `json:"stats"`
	ArchiveDir string      `json:"archive_dir"`
	ArchivedAt time.Time   `json:"archived_at"`
}

// History is the ordered list of summary records attached to one build.
type History struct {
	BuildID   string          `json:"build_id"`
	Records   []SummaryRecord `json:"records"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Simulations returns the distinct simulation names in the order they were
// first recorded.
func (h *History) Simulations() []string {
	seen := make(map[string]bool)
	var names []string
	for _, r := range h.Records {
		if !seen[r.Simulation] {
			seen[r.Simulation] = true
			names = append(names, r.Simulation)
		}
	}
	return names
}

// RecordsFor returns the records of a single simulation, in order.
func (h *History) RecordsFor(simulation string) []SummaryRecord {
	var out []SummaryRecord
	for _, r := range h.Records {
		if r.Simulation == simulation {
			out = append(out, r)
		}
	}
	return out
}
