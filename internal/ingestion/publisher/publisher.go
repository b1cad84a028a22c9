// Package publisher stores validated documents and announces them on Kafka
// so that search replicas reload their snapshot.
package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/userdef-search/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/userdef-search/internal/catalog/store"
	"github.com/Adithya-Monish-Kumar-K/userdef-search/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/userdef-search/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/userdef-search/pkg/resilience"
)

// DocumentStore is the persistence used by the publisher. *store.Store
// satisfies it.
type DocumentStore interface {
	Save(ctx context.Context, name string, body []byte, snap *catalog.Snapshot) (store.Record, bool, error)
	MarkStatus(ctx context.Context, id, status string) error
}

// EventPublisher is satisfied by *kafka.Producer.
type EventPublisher interface {
	Publish(ctx context.Context, event kafka.Event) error
}

type Publisher struct {
	store    DocumentStore
	producer EventPublisher
	breaker  *resilience.CircuitBreaker
	logger   *slog.Logger
}

func New(docs DocumentStore, producer EventPublisher) *Publisher {
	return &Publisher{
		store:    docs,
		producer: producer,
		breaker:  resilience.NewCircuitBreaker("document-uploaded", resilience.BreakerConfig{}),
		logger:   slog.Default().With("component", "publisher"),
	}
}

// Upload persists the document and publishes a DocumentUploaded event.
// Every upload is announced, duplicates included, so re-uploading an older
// document makes replicas switch back to it. A failed publish is logged and
// leaves the document in STORED.
func (p *Publisher) Upload(ctx context.Context, name string, body []byte, snap *catalog.Snapshot) (*ingestion.UploadResponse, error) {
	rec, created, err := p.store.Save(ctx, name, body, snap)
	if err != nil {
		return nil, fmt.Errorf("storing document: %w", err)
	}
	_, _, content := snap.Len()
	resp := &ingestion.UploadResponse{
		DocumentID:  rec.ID,
		Status:      rec.Status,
		Fingerprint: rec.Fingerprint,
		Categories:  rec.Categories,
		Definitions: rec.Definitions,
		Content:     content,
		Duplicate:   !created,
	}
	uploadedAt := rec.UploadedAt
	if uploadedAt.IsZero() {
		uploadedAt = time.Now().UTC()
	}
	event := kafka.Event{
		Key: rec.ID,
		Value: ingestion.DocumentUploaded{
			DocumentID:  rec.ID,
			Name:        rec.Name,
			Fingerprint: rec.Fingerprint,
			Categories:  rec.Categories,
			Definitions: rec.Definitions,
			UploadedAt:  uploadedAt.UTC(),
		},
	}
	err = p.breaker.Execute(func() error {
		return p.producer.Publish(ctx, event)
	})
	if err != nil {
		p.logger.Error("failed to publish upload event, document left in STORED",
			"doc_id", rec.ID,
			"error", err,
		)
		return resp, nil
	}

	if rec.Status == store.StatusPublished {
		return resp, nil
	}
	if err := p.store.MarkStatus(ctx, rec.ID, store.StatusPublished); err != nil {
		p.logger.Error("failed to mark document published", "doc_id", rec.ID, "error", err)
		return resp, nil
	}
	resp.Status = store.StatusPublished
	return resp, nil
}
