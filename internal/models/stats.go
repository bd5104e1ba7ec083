package models

// StatValue holds one metric split by request outcome.
type StatValue struct {
	Total float64 `json:"total" mapstructure:"total"`
	OK    float64 `json:"ok" mapstructure:"ok"`
	KO    float64 `json:"ko" mapstructure:"ko"`
}

// ResponseTimeGroup is one of the response time buckets of a report,
// e.g. "t < 800 ms".
type ResponseTimeGroup struct {
	Name       string  `json:"name" mapstructure:"name"`
	Count      float64 `json:"count" mapstructure:"count"`
	Percentage float64 `json:"percentage" mapstructure:"percentage"`
}

// GlobalStats is the aggregate block of a global_stats.json file.
// Response times are in milliseconds.
type GlobalStats struct {
	Name                          string            `json:"name,omitempty" mapstructure:"name"`
	NumberOfRequests              StatValue         `json:"numberOfRequests" mapstructure:"numberOfRequests"`
	MinResponseTime               StatValue         `json:"minResponseTime" mapstructure:"minResponseTime"`
	MaxResponseTime               StatValue         `json:"maxResponseTime" mapstructure:"maxResponseTime"`
	MeanResponseTime              StatValue         `json:"meanResponseTime" mapstructure:"meanResponseTime"`
	StandardDeviation             StatValue         `json:"standardDeviation" mapstructure:"standardDeviation"`
	Percentiles1                  StatValue         `json:"percentiles1" mapstructure:"percentiles1"`
	Percentiles2                  StatValue         `json:"percentiles2" mapstructure:"percentiles2"`
	Percentiles3                  StatValue         `json:"percentiles3" mapstructure:"percentiles3"`
	Percentiles4                  StatValue         `json:"percentiles4" mapstructure:"percentiles4"`
	Group1                        ResponseTimeGroup `json:"group1" mapstructure:"group1"`
	Group2                        ResponseTimeGroup `json:"group2" mapstructure:"group2"`
	Group3                        ResponseTimeGroup `json:"group3" mapstructure:"group3"`
	Group4                        ResponseTimeGroup `json:"group4" mapstructure:"group4"`
	MeanNumberOfRequestsPerSecond StatValue         `json:"meanNumberOfRequestsPerSecond" mapstructure:"meanNumberOfRequestsPerSecond"`
}

// TotalRequests returns the number of requests sent during the run.
func (s GlobalStats) TotalRequests() int64 {
	return int64(s.NumberOfRequests.Total)
}

// FailedRequests returns the number of KO requests.
func (s GlobalStats) FailedRequests() int64 {
	return int64(s.NumberOfRequests.KO)
}

// ErrorRate returns the KO percentage, or 0 when no request was sent.
func (s GlobalStats) ErrorRate() float64 {
	if s.NumberOfRequests.Total <= 0 {
		return 0
	}
	return s.NumberOfRequests.KO / s.NumberOfRequests.Total * 100
}
