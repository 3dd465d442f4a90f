package models

import "time"

// MetricsSnapshot is a JSON summary of the process counters.
type MetricsSnapshot struct {
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	GenerationsTotal         uint64    `json:"generations_total"`
	GenerationFailures       uint64    `json:"generation_failures"`
	AverageGenerationMs      float64   `json:"average_generation_ms"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
