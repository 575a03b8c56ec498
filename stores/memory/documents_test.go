package memory

import (
	"context"
	"testing"
	"time"

	"document-manager/core"
	"document-manager/stores/storetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) core.DocumentStore {
		return NewDocumentStore()
	})
}

func TestSearchKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := NewDocumentStore()
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	var ids []string
	for _, title := range []string{"c", "a", "b"} {
		saved, err := s.Save(ctx, &core.Document{Title: title, Created: created})
		require.NoError(t, err)
		ids = append(ids, saved.ID)
	}

	// overwriting keeps the original position
	_, err := s.Save(ctx, &core.Document{ID: ids[0], Title: "c2", Created: created})
	require.NoError(t, err)

	docs, err := s.Search(ctx, nil)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, []string{"c2", "a", "b"}, []string{docs[0].Title, docs[1].Title, docs[2].Title})
}

func TestStoresAreIndependent(t *testing.T) {
	ctx := context.Background()
	first := NewDocumentStore()
	second := NewDocumentStore()

	saved, err := first.Save(ctx, &core.Document{Title: "only in first"})
	require.NoError(t, err)

	found, err := second.FindID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Nil(t, found)
}
