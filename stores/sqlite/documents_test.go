package sqlite

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"document-manager/core"
	"document-manager/stores/storetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T, path string) core.DocumentStore {
	t.Helper()
	s, err := NewDocumentStore(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { s.(io.Closer).Close() })
	return s
}

func TestDocumentStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) core.DocumentStore {
		return newStore(t, filepath.Join(t.TempDir(), "documents.db"))
	})
}

func TestDocumentStore_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "documents.db")
	created := time.Date(2024, 5, 1, 8, 0, 0, 123456789, time.UTC)

	first, err := NewDocumentStore(ctx, path)
	require.NoError(t, err)
	saved, err := first.Save(ctx, &core.Document{
		Title:   "persisted",
		Author:  &core.Author{ID: "a1", Name: "Ada"},
		Created: created,
	})
	require.NoError(t, err)
	require.NoError(t, first.(io.Closer).Close())

	second := newStore(t, path)
	found, err := second.FindID(ctx, saved.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, saved, found)
	assert.True(t, created.Equal(found.Created))
}

func TestDocumentStore_NonUTCBounds(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, filepath.Join(t.TempDir(), "documents.db"))
	created := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	_, err := s.Save(ctx, &core.Document{Title: "t", Created: created})
	require.NoError(t, err)

	// 10:00 in UTC+2 is the same instant as 08:00 UTC
	zone := time.FixedZone("UTC+2", 2*60*60)
	bound := time.Date(2024, 5, 1, 10, 0, 0, 0, zone)
	docs, err := s.Search(ctx, &core.SearchRequest{CreatedFrom: &bound, CreatedTo: &bound})
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}
