// Package storetest runs the behaviour every core.DocumentStore must share.
package storetest

import (
	"context"
	"testing"
	"time"

	"document-manager/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns an empty store. It is called once per subtest.
type Factory func(t *testing.T) core.DocumentStore

var base = time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)

func at(hours int) time.Time {
	return base.Add(time.Duration(hours) * time.Hour)
}

func save(t *testing.T, s core.DocumentStore, d *core.Document) *core.Document {
	t.Helper()
	saved, err := s.Save(context.Background(), d)
	require.NoError(t, err)
	require.NotNil(t, saved)
	return saved
}

func search(t *testing.T, s core.DocumentStore, r *core.SearchRequest) []*core.Document {
	t.Helper()
	docs, err := s.Search(context.Background(), r)
	require.NoError(t, err)
	return docs
}

func titles(docs []*core.Document) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.Title)
	}
	return out
}

// Run executes the conformance suite against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Helper()
	ctx := context.Background()

	t.Run("Save assigns id", func(t *testing.T) {
		s := newStore(t)
		doc := &core.Document{
			Title:   "Alpha Report",
			Content: "body",
			Author:  &core.Author{ID: "a1", Name: "Ada"},
			Created: at(0),
		}
		saved := save(t, s, doc)
		assert.NotEmpty(t, saved.ID)
		assert.Equal(t, saved.ID, doc.ID)

		found, err := s.FindID(ctx, saved.ID)
		require.NoError(t, err)
		assert.Equal(t, saved, found)
	})

	t.Run("Save keeps given id", func(t *testing.T) {
		s := newStore(t)
		saved := save(t, s, &core.Document{ID: "custom-id", Title: "x", Created: at(0)})
		assert.Equal(t, "custom-id", saved.ID)

		found, err := s.FindID(ctx, "custom-id")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "x", found.Title)
	})

	t.Run("Save nil", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Save(ctx, nil)
		assert.ErrorIs(t, err, core.ErrNilDocument)
	})

	t.Run("Generated ids are unique", func(t *testing.T) {
		s := newStore(t)
		seen := make(map[string]struct{}, 1000)
		for i := 0; i < 1000; i++ {
			saved := save(t, s, &core.Document{Title: "doc", Created: at(0)})
			_, dup := seen[saved.ID]
			require.False(t, dup, "duplicate id %s", saved.ID)
			seen[saved.ID] = struct{}{}
		}
		assert.Len(t, search(t, s, nil), 1000)
	})

	t.Run("Save overwrites", func(t *testing.T) {
		s := newStore(t)
		first := save(t, s, &core.Document{
			Title:   "old title",
			Content: "old content",
			Author:  &core.Author{ID: "a1", Name: "Ada"},
			Created: at(0),
		})

		replacement := &core.Document{ID: first.ID, Title: "new title", Created: at(5)}
		save(t, s, replacement)

		found, err := s.FindID(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, replacement, found)
		assert.Nil(t, found.Author)
		assert.Empty(t, found.Content)
		assert.Len(t, search(t, s, nil), 1)
	})

	t.Run("FindID miss", func(t *testing.T) {
		s := newStore(t)
		found, err := s.FindID(ctx, "nonexistent")
		require.NoError(t, err)
		assert.Nil(t, found)

		save(t, s, &core.Document{Title: "present", Created: at(0)})
		found, err = s.FindID(ctx, "nonexistent")
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("Returned documents are copies", func(t *testing.T) {
		s := newStore(t)
		doc := &core.Document{Title: "original", Author: &core.Author{ID: "a1", Name: "Ada"}, Created: at(0)}
		saved := save(t, s, doc)

		doc.Title = "mutated input"
		saved.Author.Name = "mutated output"
		found, err := s.FindID(ctx, saved.ID)
		require.NoError(t, err)
		found.Title = "mutated lookup"

		again, err := s.FindID(ctx, saved.ID)
		require.NoError(t, err)
		assert.Equal(t, "original", again.Title)
		assert.Equal(t, "Ada", again.Author.Name)
	})

	t.Run("Search nil request returns all", func(t *testing.T) {
		s := newStore(t)
		assert.Empty(t, search(t, s, nil))

		save(t, s, &core.Document{Title: "one", Created: at(0)})
		save(t, s, &core.Document{Title: "two", Created: at(1)})
		save(t, s, &core.Document{Title: "three", Created: at(2)})

		assert.ElementsMatch(t, []string{"one", "two", "three"}, titles(search(t, s, nil)))
		assert.ElementsMatch(t, []string{"one", "two", "three"}, titles(search(t, s, &core.SearchRequest{})))
	})

	t.Run("Search title prefixes", func(t *testing.T) {
		s := newStore(t)
		save(t, s, &core.Document{Title: "Alpha Report", Created: at(0)})
		save(t, s, &core.Document{Title: "Beta Summary", Created: at(0)})

		got := search(t, s, &core.SearchRequest{TitlePrefixes: []string{"Alpha", "Gamma"}})
		assert.Equal(t, []string{"Alpha Report"}, titles(got))

		got = search(t, s, &core.SearchRequest{TitlePrefixes: []string{"alpha"}})
		assert.Empty(t, got)

		got = search(t, s, &core.SearchRequest{TitlePrefixes: []string{}})
		assert.Len(t, got, 2)
	})

	t.Run("Search contents", func(t *testing.T) {
		s := newStore(t)
		save(t, s, &core.Document{Title: "a", Content: "the quick brown fox", Created: at(0)})
		save(t, s, &core.Document{Title: "b", Content: "lazy dog 100%", Created: at(0)})
		save(t, s, &core.Document{Title: "c", Content: "nothing here", Created: at(0)})

		got := search(t, s, &core.SearchRequest{ContainsContents: []string{"brown", "dog"}})
		assert.ElementsMatch(t, []string{"a", "b"}, titles(got))

		got = search(t, s, &core.SearchRequest{ContainsContents: []string{"Brown"}})
		assert.Empty(t, got)

		got = search(t, s, &core.SearchRequest{ContainsContents: []string{"0%"}})
		assert.Equal(t, []string{"b"}, titles(got))

		got = search(t, s, &core.SearchRequest{ContainsContents: []string{"_"}})
		assert.Empty(t, got)
	})

	t.Run("Search combines dimensions", func(t *testing.T) {
		s := newStore(t)
		save(t, s, &core.Document{Title: "match", Author: &core.Author{ID: "a1"}, Created: at(5)})
		save(t, s, &core.Document{Title: "too early", Author: &core.Author{ID: "a1"}, Created: at(1)})
		save(t, s, &core.Document{Title: "other author", Author: &core.Author{ID: "a2"}, Created: at(5)})

		from := at(3)
		got := search(t, s, &core.SearchRequest{AuthorIDs: []string{"a1"}, CreatedFrom: &from})
		assert.Equal(t, []string{"match"}, titles(got))
	})

	t.Run("Search bounds are inclusive", func(t *testing.T) {
		s := newStore(t)
		save(t, s, &core.Document{Title: "first", Created: at(0)})
		save(t, s, &core.Document{Title: "middle", Created: at(1)})
		save(t, s, &core.Document{Title: "last", Created: at(2)})
		save(t, s, &core.Document{Title: "outside", Created: at(3)})

		from, to := at(0), at(2)
		got := search(t, s, &core.SearchRequest{CreatedFrom: &from, CreatedTo: &to})
		assert.ElementsMatch(t, []string{"first", "middle", "last"}, titles(got))

		got = search(t, s, &core.SearchRequest{CreatedFrom: &to, CreatedTo: &to})
		assert.Equal(t, []string{"last"}, titles(got))
	})

	t.Run("Search skips documents without author", func(t *testing.T) {
		s := newStore(t)
		save(t, s, &core.Document{Title: "anonymous", Created: at(0)})
		save(t, s, &core.Document{Title: "signed", Author: &core.Author{ID: "a1"}, Created: at(0)})

		got := search(t, s, &core.SearchRequest{AuthorIDs: []string{"a1"}})
		assert.Equal(t, []string{"signed"}, titles(got))

		got = search(t, s, &core.SearchRequest{TitlePrefixes: []string{"anon"}})
		assert.Equal(t, []string{"anonymous"}, titles(got))
	})
}
