package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"document-manager/core"
	"document-manager/stores/storetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) core.DocumentStore {
		s, err := NewDocumentStore(t.TempDir())
		require.NoError(t, err)
		return s
	})
}

func TestIDsStayInsideBasePath(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	base := filepath.Join(root, "docs")
	s, err := NewDocumentStore(base)
	require.NoError(t, err)

	_, err = s.Save(ctx, &core.Document{ID: "../escape/attempt", Title: "sneaky"})
	require.NoError(t, err)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "only the docs directory should exist")

	found, err := s.FindID(ctx, "../escape/attempt")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "sneaky", found.Title)
}

func TestSearchIgnoresForeignFiles(t *testing.T) {
	ctx := context.Background()
	base := t.TempDir()
	s, err := NewDocumentStore(base)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(base, "README.txt"), []byte("not a document"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(base, "nested.json"), 0755))
	_, err = s.Save(ctx, &core.Document{Title: "real"})
	require.NoError(t, err)

	docs, err := s.Search(ctx, nil)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "real", docs[0].Title)
}

func TestSearchReportsCorruptFiles(t *testing.T) {
	base := t.TempDir()
	s, err := NewDocumentStore(base)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(base, "broken.json"), []byte("{"), 0644))

	_, err = s.Search(context.Background(), nil)
	assert.Error(t, err)
}
