package webapi

import "time"

// BuildSummary is the API response for a single build in the list.
type BuildSummary struct {
	ID             string    `json:"id"`
	Records        int       `json:"records"`
	Simulations    []string  `json:"simulations"`
	TotalRequests  int64     `json:"totalRequests"`
	FailedRequests int64     `json:"failedRequests"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// TrendPoint is one archived run of a simulation, in build order.
type TrendPoint struct {
	BuildID          string    `json:"buildId"`
	RunID            string    `json:"runId"`
	TotalRequests    float64   `json:"totalRequests"`
	OKRequests       float64   `json:"okRequests"`
	KORequests       float64   `json:"koRequests"`
	MeanResponseTime float64   `json:"meanResponseTime"`
	Percentile95     float64   `json:"percentile95"`
	ErrorRate        float64   `json:"errorRate"`
	ArchivedAt       time.Time `json:"archivedAt"`
}

// TrendResponse is the per-simulation trend.
type TrendResponse struct {
	Simulation string       `json:"simulation"`
	Points     []TrendPoint `json:"points"`
}

// HealthResponse is the health check response.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ErrorResponse is returned for errors.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}
