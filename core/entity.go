package core

import (
	"context"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
)

var ErrNilDocument = errors.New("document is nil")

type (
	Author struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}

	// Document is the stored record. An empty ID means the store assigns one on Save.
	Document struct {
		ID      string    `json:"id,omitempty"`
		Title   string    `json:"title"`
		Content string    `json:"content"`
		Author  *Author   `json:"author,omitempty"`
		Created time.Time `json:"created"`
	}

	// SearchRequest filters documents. Nil slices, empty slices and nil bounds
	// place no constraint on their dimension.
	SearchRequest struct {
		TitlePrefixes    []string   `json:"titlePrefixes,omitempty"`
		ContainsContents []string   `json:"containsContents,omitempty"`
		AuthorIDs        []string   `json:"authorIds,omitempty"`
		CreatedFrom      *time.Time `json:"createdFrom,omitempty"`
		CreatedTo        *time.Time `json:"createdTo,omitempty"`
	}

	DocumentStore interface {
		// FindID returns nil and no error when no document has the given id.
		FindID(ctx context.Context, id string) (*Document, error)
		// Save upserts the document, assigning a new id when it has none.
		Save(ctx context.Context, document *Document) (*Document, error)
		// Search returns every document matching the request. A nil request matches all.
		Search(ctx context.Context, request *SearchRequest) ([]*Document, error)
	}
)

// NewID returns a ULID string. ULIDs from one process are monotonic, so two
// calls never return the same value.
func NewID() string {
	return ulid.Make().String()
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	c := *d
	if d.Author != nil {
		a := *d.Author
		c.Author = &a
	}
	return &c
}
