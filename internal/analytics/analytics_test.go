package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/userdef-search/pkg/kafka"
)

type fakePublisher struct {
	mu     sync.Mutex
	events []kafka.Event
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, event kafka.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *fakePublisher) keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	keys := make([]string, 0, len(p.events))
	for _, e := range p.events {
		keys = append(keys, e.Key)
	}
	return keys
}

func TestCollector_PublishesInOrder(t *testing.T) {
	pub := &fakePublisher{}
	c := NewCollector(pub, 16)
	c.Start(context.Background())

	c.Track(SearchEvent{Type: EventSearch, Query: "orders"})
	c.Track(SelectEvent{Type: EventSelect, ID: "DEF1"})
	c.Track(map[string]string{"other": "x"})
	c.Close()

	assert.Equal(t, []string{"search", "select", "analytics"}, pub.keys())
}

func TestCollector_CloseWithoutStart(t *testing.T) {
	pub := &fakePublisher{}
	c := NewCollector(pub, 0)
	c.Track(SearchEvent{Type: EventSearch})
	c.Close()
	c.Close()
	assert.Len(t, pub.keys(), 1)
}

func TestCollector_DropsWhenFull(t *testing.T) {
	pub := &fakePublisher{}
	c := NewCollector(pub, 1)
	c.Track(SearchEvent{Type: EventSearch, Query: "a"})
	c.Track(SearchEvent{Type: EventSearch, Query: "b"})
	c.Close()
	assert.Len(t, pub.keys(), 1)
}

func TestCollector_TrackAfterClose(t *testing.T) {
	pub := &fakePublisher{}
	c := NewCollector(pub, 4)
	c.Start(context.Background())
	c.Track(SearchEvent{Type: EventSearch, Query: "before"})
	c.Close()

	assert.NotPanics(t, func() {
		c.Track(SearchEvent{Type: EventSearch, Query: "after"})
		c.Track(SelectEvent{Type: EventSelect, ID: "DEF1"})
	})
	assert.Equal(t, []string{"search"}, pub.keys())
}

func TestCollector_ConcurrentTrackAndClose(t *testing.T) {
	pub := &fakePublisher{}
	c := NewCollector(pub, 64)
	c.Start(context.Background())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				c.Track(SearchEvent{Type: EventSearch})
			}
		}()
	}
	c.Close()
	assert.NotPanics(t, wg.Wait)
}

func TestCollector_PublishErrorsAreLogged(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	c := NewCollector(pub, 4)
	c.Start(context.Background())
	c.Track(SearchEvent{Type: EventSearch})
	c.Close()
	assert.Len(t, pub.keys(), 1)
}

func encode(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func TestAggregator_HandleEvent(t *testing.T) {
	agg := NewAggregator()
	handle := HandleEvent(agg)
	ctx := context.Background()

	events := [][]byte{
		encode(t, SearchEvent{Type: EventSearch, Query: "orders", Status: "matches", Returned: 2, Content: 1, LatencyMs: 4}),
		encode(t, SearchEvent{Type: EventSearch, Query: "orders", Status: "matches", Returned: 2, Content: 1, CacheHit: true, LatencyMs: 1}),
		encode(t, SearchEvent{Type: EventSearch, Query: "zzz", Status: "no_matches", LatencyMs: 2}),
		encode(t, SearchEvent{Type: EventSearch, Query: "", Status: "prompt", LatencyMs: 0}),
		encode(t, SelectEvent{Type: EventSelect, Kind: "category", ID: "c1", DefinitionID: "DEF1"}),
		encode(t, SelectEvent{Type: EventSelect, Kind: "definition", ID: "DEF1", DefinitionID: "DEF1"}),
		encode(t, SelectEvent{Type: EventSelect, Kind: "category", ID: "c2"}),
		[]byte(`{"type":"mystery"}`),
		[]byte(`not json`),
	}
	for _, e := range events {
		require.NoError(t, handle(ctx, nil, e))
	}

	stats := agg.Stats()
	assert.Equal(t, int64(4), stats.TotalSearches)
	assert.Equal(t, int64(3), stats.TotalSelections)
	assert.Equal(t, int64(1), stats.CacheHits)
	assert.Equal(t, int64(3), stats.CacheMisses)
	assert.Equal(t, int64(1), stats.PromptCount)
	assert.Equal(t, int64(1), stats.ZeroResultCount)
	assert.InDelta(t, 0.5, stats.ContentShare, 1e-9)
	assert.Equal(t, []QueryCount{{Query: "orders", Count: 2}, {Query: "zzz", Count: 1}}, stats.TopQueries)
	assert.Equal(t, []QueryCount{{Query: "zzz", Count: 1}}, stats.ZeroResultQueries)
	assert.Equal(t, []QueryCount{{Query: "DEF1", Count: 2}}, stats.TopDefinitions)
	assert.Equal(t, int64(4), stats.P99LatencyMs)
	assert.InDelta(t, 1.75, stats.AvgLatencyMs, 1e-9)
}

func TestHandler_Stats(t *testing.T) {
	agg := NewAggregator()
	agg.RecordSearch(SearchEvent{Type: EventSearch, Query: "orders", Status: "matches"})

	rec := httptest.NewRecorder()
	NewHandler(agg).Stats(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analytics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var stats AggregatedStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, int64(1), stats.TotalSearches)
}

func TestHandler_StatsTop(t *testing.T) {
	agg := NewAggregator()
	for _, q := range []string{"orders", "orders", "invoice", "customer"} {
		agg.RecordSearch(SearchEvent{Type: EventSearch, Query: q, Status: "matches"})
	}
	h := NewHandler(agg)

	rec := httptest.NewRecorder()
	h.Stats(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analytics?top=1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var stats AggregatedStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, []QueryCount{{"orders", 2}}, stats.TopQueries)

	for _, bad := range []string{"0", "101", "many"} {
		rec = httptest.NewRecorder()
		h.Stats(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analytics?top="+bad, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, bad)
	}
}

func TestTopN_TiesBreakByKey(t *testing.T) {
	got := topN(map[string]int64{"b": 1, "a": 1, "c": 3}, 2)
	assert.Equal(t, []QueryCount{{"c", 3}, {"a", 1}}, got)
}
