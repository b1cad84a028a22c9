// Package store persists uploaded documents in PostgreSQL and loads them
// back as catalog snapshots.
package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Adithya-Monish-Kumar-K/userdef-search/internal/catalog"
	apperrors "github.com/Adithya-Monish-Kumar-K/userdef-search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/userdef-search/pkg/postgres"
)

const (
	StatusStored    = "STORED"
	StatusPublished = "PUBLISHED"
)

// Schema creates the documents table. Identical uploads share a row.
const Schema = `
CREATE TABLE IF NOT EXISTS documents (
    id           TEXT PRIMARY KEY,
    name         TEXT NOT NULL DEFAULT '',
    content_hash TEXT NOT NULL UNIQUE,
    fingerprint  TEXT NOT NULL,
    categories   INTEGER NOT NULL,
    definitions  INTEGER NOT NULL,
    body         BYTEA NOT NULL,
    status       TEXT NOT NULL,
    uploaded_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS documents_uploaded_at_idx ON documents (uploaded_at DESC);
`

const selectColumns = `id, name, content_hash, fingerprint, categories, definitions, body, status, uploaded_at`

// Record is one stored document.
type Record struct {
	ID          string    `json:"document_id"`
	Name        string    `json:"name"`
	ContentHash string    `json:"content_hash"`
	Fingerprint string    `json:"fingerprint"`
	Categories  int       `json:"categories"`
	Definitions int       `json:"definitions"`
	Body        []byte    `json:"-"`
	Status      string    `json:"status"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

type Store struct {
	db     *postgres.Client
	logger *slog.Logger
}

func New(db *postgres.Client) *Store {
	return &Store{
		db:     db,
		logger: slog.Default().With("component", "document-store"),
	}
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.DB.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("creating documents schema: %w", err)
	}
	return nil
}

// ContentHash is the hex SHA-256 of an upload body.
func ContentHash(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// DocumentID derives a stable id from the content hash, so re-uploading the
// same bytes yields the same id.
func DocumentID(contentHash string) string {
	if len(contentHash) > 16 {
		contentHash = contentHash[:16]
	}
	return "doc-" + contentHash
}

// Save stores body under its content-derived id. created is false when an
// identical document was already stored. The existing record is then
// returned with uploaded_at refreshed, so a re-upload becomes Latest again.
func (s *Store) Save(ctx context.Context, name string, body []byte, snap *catalog.Snapshot) (Record, bool, error) {
	hash := ContentHash(body)
	categories, definitions, _ := snap.Len()
	rec := Record{
		ID:          DocumentID(hash),
		Name:        name,
		ContentHash: hash,
		Fingerprint: snap.Fingerprint(),
		Categories:  categories,
		Definitions: definitions,
		Body:        body,
		Status:      StatusStored,
	}

	created := false
	err := s.db.InTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx,
			`INSERT INTO documents (id, name, content_hash, fingerprint, categories, definitions, body, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (content_hash) DO NOTHING
			RETURNING uploaded_at`,
			rec.ID, rec.Name, rec.ContentHash, rec.Fingerprint, rec.Categories, rec.Definitions, rec.Body, rec.Status,
		).Scan(&rec.UploadedAt)
		if errors.Is(err, sql.ErrNoRows) {
			existing, err := scanRecord(tx.QueryRowContext(ctx,
				`UPDATE documents SET uploaded_at = NOW() WHERE content_hash = $1
				RETURNING `+selectColumns, hash))
			if err != nil {
				return err
			}
			rec = existing
			return nil
		}
		if err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return Record{}, false, fmt.Errorf("saving document: %w", err)
	}
	s.logger.Info("document saved", "doc_id", rec.ID, "created", created, "status", rec.Status)
	return rec, created, nil
}

func (s *Store) Get(ctx context.Context, id string) (Record, error) {
	rec, err := scanRecord(s.db.DB.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM documents WHERE id = $1`, id))
	if err != nil {
		return Record{}, fmt.Errorf("loading document %s: %w", id, err)
	}
	return rec, nil
}

// Latest returns the most recently uploaded document.
func (s *Store) Latest(ctx context.Context) (Record, error) {
	rec, err := scanRecord(s.db.DB.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM documents ORDER BY uploaded_at DESC LIMIT 1`))
	if err != nil {
		return Record{}, fmt.Errorf("loading latest document: %w", err)
	}
	return rec, nil
}

func (s *Store) MarkStatus(ctx context.Context, id, status string) error {
	res, err := s.db.DB.ExecContext(ctx, `UPDATE documents SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("updating status of %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.Newf(apperrors.ErrDocumentNotFound, http.StatusNotFound, "document %s", id)
	}
	return nil
}

// LoadSnapshot parses the stored document id, or the latest one when id is
// empty.
func (s *Store) LoadSnapshot(ctx context.Context, id string) (*catalog.Snapshot, error) {
	var (
		rec Record
		err error
	)
	if id == "" {
		rec, err = s.Latest(ctx)
	} else {
		rec, err = s.Get(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	snap, err := catalog.Parse(rec.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing stored document %s: %w", rec.ID, err)
	}
	return snap, nil
}

func scanRecord(row *sql.Row) (Record, error) {
	var rec Record
	err := row.Scan(&rec.ID, &rec.Name, &rec.ContentHash, &rec.Fingerprint,
		&rec.Categories, &rec.Definitions, &rec.Body, &rec.Status, &rec.UploadedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, apperrors.New(apperrors.ErrDocumentNotFound, http.StatusNotFound, "no such document")
	}
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}
