package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/userdef-search/internal/catalog"
	apperrors "github.com/Adithya-Monish-Kumar-K/userdef-search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/userdef-search/pkg/postgres"
)

const doc = `{
  "userCategories": [{"categoryId": "c1", "categoryName": "Orders"}],
  "userDefinitions": [{"definitionId": "DEF1", "definitionName": "Open", "categoryId": "c1",
    "definitionType": "sql", "definitionData": {"elementProperties": {"query": "SELECT 1"}}}]
}`

func TestDocumentID(t *testing.T) {
	hash := ContentHash([]byte(doc))
	assert.Len(t, hash, 64)
	assert.Equal(t, hash, ContentHash([]byte(doc)))
	assert.Equal(t, "doc-"+hash[:16], DocumentID(hash))
	assert.NotEqual(t, DocumentID(hash), DocumentID(ContentHash([]byte(doc+" "))))
	assert.Equal(t, "doc-abc", DocumentID("abc"))
}

// newTestStore connects to the database named by SP_TEST_POSTGRES_DSN.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("SP_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("SP_TEST_POSTGRES_DSN not set")
	}
	db, err := postgres.Open(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s := New(db)
	ctx := context.Background()
	require.NoError(t, s.EnsureSchema(ctx))
	_, err = db.DB.ExecContext(ctx, `TRUNCATE documents`)
	require.NoError(t, err)
	return s
}

func TestStore_SaveAndLoad(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	snap, err := catalog.Parse([]byte(doc))
	require.NoError(t, err)

	rec, created, err := s.Save(ctx, "export.json", []byte(doc), snap)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, StatusStored, rec.Status)
	assert.Equal(t, 1, rec.Definitions)

	again, created, err := s.Save(ctx, "copy.json", []byte(doc), snap)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, rec.ID, again.ID)
	assert.Equal(t, "export.json", again.Name)

	require.NoError(t, s.MarkStatus(ctx, rec.ID, StatusPublished))
	latest, err := s.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, StatusPublished, latest.Status)
	assert.WithinDuration(t, time.Now(), latest.UploadedAt, time.Minute)

	loaded, err := s.LoadSnapshot(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, snap.Fingerprint(), loaded.Fingerprint())

	_, err = s.Get(ctx, "doc-missing")
	assert.ErrorIs(t, err, apperrors.ErrDocumentNotFound)
	assert.ErrorIs(t, s.MarkStatus(ctx, "doc-missing", StatusPublished), apperrors.ErrDocumentNotFound)
}

func TestStore_ReuploadBecomesLatest(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	other := `{"userCategories":[{"categoryId":"c9","categoryName":"Other"}],"userDefinitions":[]}`

	bodies := map[string]string{"a.json": doc, "b.json": other}
	snaps := map[string]*catalog.Snapshot{}
	for name, body := range bodies {
		snap, err := catalog.Parse([]byte(body))
		require.NoError(t, err)
		snaps[name] = snap
	}

	tests := []struct {
		upload string
		latest string
	}{
		{upload: "a.json", latest: "a.json"},
		{upload: "b.json", latest: "b.json"},
		{upload: "a.json", latest: "a.json"},
	}
	for _, tt := range tests {
		rec, _, err := s.Save(ctx, tt.upload, []byte(bodies[tt.upload]), snaps[tt.upload])
		require.NoError(t, err)
		latest, err := s.Latest(ctx)
		require.NoError(t, err)
		assert.Equal(t, rec.ID, latest.ID, "after uploading %s", tt.upload)
		assert.Equal(t, tt.latest, latest.Name)
		time.Sleep(10 * time.Millisecond)
	}
}
