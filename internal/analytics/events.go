package analytics

import "time"

type EventType string

const (
	EventSearch EventType = "search"
	EventSelect EventType = "select"
)

// SearchEvent describes one executed query.
type SearchEvent struct {
	Type        EventType `json:"type"`
	Query       string    `json:"query"`
	Status      string    `json:"status"`
	Categories  int       `json:"categories"`
	Definitions int       `json:"definitions"`
	Content     int       `json:"content"`
	Returned    int       `json:"returned"`
	CacheHit    bool      `json:"cache_hit"`
	Fingerprint string    `json:"fingerprint"`
	LatencyMs   int64     `json:"latency_ms"`
	Timestamp   time.Time `json:"timestamp"`
	RequestID   string    `json:"request_id,omitempty"`
}

// SelectEvent describes a committed selection and the definition it opened.
type SelectEvent struct {
	Type         EventType `json:"type"`
	Kind         string    `json:"kind"`
	ID           string    `json:"id"`
	DefinitionID string    `json:"definition_id"`
	Timestamp    time.Time `json:"timestamp"`
	RequestID    string    `json:"request_id,omitempty"`
}

// envelope reads only the discriminator of an encoded event.
type envelope struct {
	Type EventType `json:"type"`
}
