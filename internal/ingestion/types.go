// Package ingestion defines the upload response and the Kafka event that
// announces a newly stored document.
package ingestion

import "time"

// UploadResponse is returned once a document has been validated and stored.
type UploadResponse struct {
	DocumentID  string `json:"document_id"`
	Status      string `json:"status"`
	Fingerprint string `json:"fingerprint"`
	Categories  int    `json:"categories"`
	Definitions int    `json:"definitions"`
	Content     int    `json:"content"`
	Duplicate   bool   `json:"duplicate"`
}

// DocumentUploaded is published after a document is persisted. Consumers
// reload their snapshot from the store by DocumentID.
type DocumentUploaded struct {
	DocumentID  string    `json:"document_id"`
	Name        string    `json:"name"`
	Fingerprint string    `json:"fingerprint"`
	Categories  int       `json:"categories"`
	Definitions int       `json:"definitions"`
	UploadedAt  time.Time `json:"uploaded_at"`
}
