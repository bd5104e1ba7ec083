// Package selection picks the report directories produced during the
// current build.
package selection

import (
	"time"

	"github.com/spboyer/simarchive/internal/models"
)

// Select returns, in input order, the candidates modified strictly after
// cutoff. A candidate whose modification time equals cutoff is not selected.
func Select(candidates []models.ReportCandidate, cutoff time.Time) []models.ReportCandidate {
	return SelectFunc(candidates, cutoff, nil)
}

// SelectFunc is Select with a callback invoked for every candidate with the
// decision taken for it. onDecision may be nil.
func SelectFunc(candidates []models.ReportCandidate, cutoff time.Time, onDecision func(c models.ReportCandidate, selected bool)) []models.ReportCandidate {
	var selected []models.ReportCandidate
	for _, c := range candidates {
		fresh := c.ModTime.After(cutoff)
		if onDecision != nil {
			onDecision(c, fresh)
		}
		if fresh {
			selected = append(selected, c)
		}
	}
	return selected
}
