package analytics

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/userdef-search/pkg/kafka"
)

const (
	maxLatencySamples = 10000
	defaultTopN       = 10
	maxTopN           = 100
)

type AggregatedStats struct {
	TotalSearches     int64        `json:"total_searches"`
	TotalSelections   int64        `json:"total_selections"`
	CacheHits         int64        `json:"cache_hits"`
	CacheMisses       int64        `json:"cache_misses"`
	PromptCount       int64        `json:"prompt_count"`
	ZeroResultCount   int64        `json:"zero_result_count"`
	AvgLatencyMs      float64      `json:"avg_latency_ms"`
	P50LatencyMs      int64        `json:"p50_latency_ms"`
	P95LatencyMs      int64        `json:"p95_latency_ms"`
	P99LatencyMs      int64        `json:"p99_latency_ms"`
	ContentShare      float64      `json:"content_share"`
	TopQueries        []QueryCount `json:"top_queries"`
	ZeroResultQueries []QueryCount `json:"zero_result_queries"`
	TopDefinitions    []QueryCount `json:"top_definitions"`
	QueriesPerMinute  float64      `json:"queries_per_minute"`
}

type QueryCount struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// Aggregator folds search and select events into running totals.
type Aggregator struct {
	mu                sync.RWMutex
	totalSearches     int64
	totalSelections   int64
	cacheHits         int64
	cacheMisses       int64
	prompts           int64
	zeroResults       int64
	returned          int64
	contentResults    int64
	latencies         []int64
	queryCounts       map[string]int64
	zeroResultQueries map[string]int64
	definitionCounts  map[string]int64
	startTime         time.Time
	logger            *slog.Logger
}

func NewAggregator() *Aggregator {
	return &Aggregator{
		latencies:         make([]int64, 0, 1024),
		queryCounts:       make(map[string]int64),
		zeroResultQueries: make(map[string]int64),
		definitionCounts:  make(map[string]int64),
		startTime:         time.Now(),
		logger:            slog.Default().With("component", "analytics-aggregator"),
	}
}

// HandleEvent decodes an analytics message and records it. Undecodable
// messages are logged and acknowledged.
func HandleEvent(agg *Aggregator) kafka.MessageHandler {
	return func(ctx context.Context, key []byte, value []byte) error {
		env, err := kafka.DecodeJSON[envelope](value)
		if err != nil {
			agg.logger.Error("failed to decode analytics event", "error", err)
			return nil
		}
		switch env.Type {
		case EventSearch:
			var e SearchEvent
			if err := json.Unmarshal(value, &e); err != nil {
				agg.logger.Error("failed to decode search event", "error", err)
				return nil
			}
			agg.RecordSearch(e)
		case EventSelect:
			var e SelectEvent
			if err := json.Unmarshal(value, &e); err != nil {
				agg.logger.Error("failed to decode select event", "error", err)
				return nil
			}
			agg.RecordSelect(e)
		default:
			agg.logger.Warn("unknown analytics event", "type", env.Type, "key", string(key))
		}
		return nil
	}
}

func (a *Aggregator) RecordSearch(e SearchEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.totalSearches++
	if e.CacheHit {
		a.cacheHits++
	} else {
		a.cacheMisses++
	}
	a.returned += int64(e.Returned)
	a.contentResults += int64(e.Content)

	if len(a.latencies) < maxLatencySamples {
		a.latencies = append(a.latencies, e.LatencyMs)
	} else {
		a.latencies[a.totalSearches%maxLatencySamples] = e.LatencyMs
	}

	switch e.Status {
	case "prompt":
		a.prompts++
		return
	case "no_matches":
		a.zeroResults++
		a.zeroResultQueries[e.Query]++
	}
	a.queryCounts[e.Query]++
}

func (a *Aggregator) RecordSelect(e SelectEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.totalSelections++
	if e.DefinitionID != "" {
		a.definitionCounts[e.DefinitionID]++
	}
}

func (a *Aggregator) Stats() AggregatedStats {
	return a.StatsTop(defaultTopN)
}

// StatsTop is Stats with the ranked lists cut to n entries.
func (a *Aggregator) StatsTop(n int) AggregatedStats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := AggregatedStats{
		TotalSearches:   a.totalSearches,
		TotalSelections: a.totalSelections,
		CacheHits:       a.cacheHits,
		CacheMisses:     a.cacheMisses,
		PromptCount:     a.prompts,
		ZeroResultCount: a.zeroResults,
	}
	if len(a.latencies) > 0 {
		sorted := make([]int64, len(a.latencies))
		copy(sorted, a.latencies)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

		var sum int64
		for _, l := range sorted {
			sum += l
		}
		stats.AvgLatencyMs = float64(sum) / float64(len(sorted))
		stats.P50LatencyMs = percentile(sorted, 50)
		stats.P95LatencyMs = percentile(sorted, 95)
		stats.P99LatencyMs = percentile(sorted, 99)
	}
	if a.returned > 0 {
		stats.ContentShare = float64(a.contentResults) / float64(a.returned)
	}
	stats.TopQueries = topN(a.queryCounts, n)
	stats.ZeroResultQueries = topN(a.zeroResultQueries, n)
	stats.TopDefinitions = topN(a.definitionCounts, n)
	if elapsed := time.Since(a.startTime).Minutes(); elapsed > 0 {
		stats.QueriesPerMinute = float64(stats.TotalSearches) / elapsed
	}
	return stats
}

func percentile(sorted []int64, pct int) int64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (pct * len(sorted)) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// topN orders by count, then key, so equal counts are stable.
func topN(counts map[string]int64, n int) []QueryCount {
	result := make([]QueryCount, 0, len(counts))
	for query, count := range counts {
		result = append(result, QueryCount{Query: query, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Query < result[j].Query
	})
	if len(result) > n {
		result = result[:n]
	}
	return result
}
