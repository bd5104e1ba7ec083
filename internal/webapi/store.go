package webapi

import (
	"context"
	"errors"
	"sort"
	"strconv"

	"github.com/spboyer/simarchive/internal/history"
	"github.com/spboyer/simarchive/internal/models"
)

// ErrBuildNotFound is returned when a build ID has no history.
var ErrBuildNotFound = errors.New("build not found")

// BuildStore provides read access to build histories.
type BuildStore interface {
	// ListBuilds returns all builds, sorted by the given field and order.
	ListBuilds(ctx context.Context, sortField, order string) ([]BuildSummary, error)
	// GetBuild returns the full history of one build.
	GetBuild(ctx context.Context, id string) (*models.History, error)
	// Trend returns the records of one simulation across all builds.
	Trend(ctx context.Context, simulation string) ([]TrendPoint, error)
}

// HistoryStore serves a history.Store over the API. Every call reads the
// store, so builds archived while the server runs show up immediately.
type HistoryStore struct {
	store history.Store
}

var _ BuildStore = (*HistoryStore)(nil)

// NewHistoryStore wraps store.
func NewHistoryStore(store history.Store) *HistoryStore {
	return &HistoryStore{store: store}
}

// ListBuilds implements BuildStore.
func (s *HistoryStore) ListBuilds(ctx context.Context, sortField, order string) ([]BuildSummary, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	builds := make([]BuildSummary, 0, len(all))
	for _, h := range all {
		builds = append(builds, summarize(h))
	}
	sortBuilds(builds, sortField, order)
	return builds, nil
}

// GetBuild implements BuildStore.
func (s *HistoryStore) GetBuild(ctx context.Context, id string) (*models.History, error) {
	h, err := s.store.Get(ctx, id)
	if errors.Is(err, history.ErrNotFound) || errors.Is(err, history.ErrInvalidBuildID) {
		return nil, ErrBuildNotFound
	}
	return h, err
}

// Trend implements BuildStore.
func (s *HistoryStore) Trend(ctx context.Context, simulation string) ([]TrendPoint, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(all, func(i, j int) bool {
		return lessBuildID(all[i].BuildID, all[j].BuildID)
	})

	points := []TrendPoint{}
	for _, h := range all {
		for _, r := range h.RecordsFor(simulation) {
			points = append(points, TrendPoint{
				BuildID:          h.BuildID,
				RunID:            r.RunID,
				TotalRequests:    r.Stats.NumberOfRequests.Total,
				OKRequests:       r.Stats.NumberOfRequests.OK,
				KORequests:       r.Stats.NumberOfRequests.KO,
				MeanResponseTime: r.Stats.MeanResponseTime.Total,
				Percentile95:     r.Stats.Percentiles3.Total,
				ErrorRate:        r.Stats.ErrorRate(),
				ArchivedAt:       r.ArchivedAt,
			})
		}
	}
	return points, nil
}

func summarize(h *models.History) BuildSummary {
	b := BuildSummary{
		ID:          h.BuildID,
		Records:     len(h.Records),
		Simulations: h.Simulations(),
		CreatedAt:   h.CreatedAt,
		UpdatedAt:   h.UpdatedAt,
	}
	if b.Simulations == nil {
		b.Simulations = []string{}
	}
	for _, r := range h.Records {
		b.TotalRequests += r.Stats.TotalRequests()
		b.FailedRequests += r.Stats.FailedRequests()
	}
	return b
}

// lessBuildID orders numeric build IDs numerically and everything else
// lexically, numbers first.
func lessBuildID(a, b string) bool {
	na, errA := strconv.ParseInt(a, 10, 64)
	nb, errB := strconv.ParseInt(b, 10, 64)
	switch {
	case errA == nil && errB == nil:
		return na < nb
	case errA == nil:
		return true
	case errB == nil:
		return false
	default:
		return a < b
	}
}

// sortBuilds sorts build summaries by field and order.
// Supported fields: id (default), updated, records. Order defaults to asc.
func sortBuilds(builds []BuildSummary, field, order string) {
	less := func(i, j int) bool {
		switch field {
		case "updated":
			return builds[i].UpdatedAt.Before(builds[j].UpdatedAt)
		case "records":
			return builds[i].Records < builds[j].Records
		default: // "id" or empty
			return lessBuildID(builds[i].ID, builds[j].ID)
		}
	}

	if order == "desc" {
		sort.SliceStable(builds, func(i, j int) bool { return less(j, i) })
	} else {
		sort.SliceStable(builds, less)
	}
}
