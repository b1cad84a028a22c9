// Package consumer reloads the served catalog snapshot when the upload
// service announces a new document.
package consumer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/userdef-search/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/userdef-search/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/userdef-search/pkg/kafka"
)

// SnapshotLoader is satisfied by *store.Store.
type SnapshotLoader interface {
	LoadSnapshot(ctx context.Context, id string) (*catalog.Snapshot, error)
}

// HandleMessage returns a MessageHandler that loads the announced document
// and swaps it into lib. Undecodable events are logged and acknowledged;
// load failures are returned so the event stays uncommitted.
func HandleMessage(lib *catalog.Library, loader SnapshotLoader) kafka.MessageHandler {
	logger := slog.Default().With("component", "reload-consumer")
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[ingestion.DocumentUploaded](value)
		if err != nil {
			logger.Error("failed to decode upload event", "error", err, "key", string(key))
			return nil
		}
		if event.DocumentID == "" {
			logger.Warn("upload event without document id", "key", string(key))
			return nil
		}
		if event.Fingerprint != "" && event.Fingerprint == lib.Current().Fingerprint() {
			logger.Debug("snapshot already current", "doc_id", event.DocumentID)
			return nil
		}

		snap, err := loader.LoadSnapshot(ctx, event.DocumentID)
		if err != nil {
			return fmt.Errorf("loading document %s: %w", event.DocumentID, err)
		}
		changed := lib.Replace(snap)
		logger.Info("snapshot reloaded",
			"doc_id", event.DocumentID,
			"changed", changed,
			"definitions", event.Definitions,
		)
		return nil
	}
}
