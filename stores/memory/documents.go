package memory

import (
	"context"
	"sync"

	"document-manager/core"
)

// documentStore keeps documents in process memory. Search returns documents in
// the order their ids were first saved.
type documentStore struct {
	mu             sync.RWMutex
	order          []string
	savedDocuments map[string]*core.Document
}

func NewDocumentStore() core.DocumentStore {
	return &documentStore{
		savedDocuments: make(map[string]*core.Document),
	}
}

func (s *documentStore) FindID(ctx context.Context, id string) (*core.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if val, ok := s.savedDocuments[id]; ok {
		return val.Clone(), nil
	}
	return nil, nil
}

func (s *documentStore) Save(ctx context.Context, document *core.Document) (*core.Document, error) {
	if document == nil {
		return nil, core.ErrNilDocument
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if document.ID == "" {
		document.ID = core.NewID()
	}
	if _, ok := s.savedDocuments[document.ID]; !ok {
		s.order = append(s.order, document.ID)
	}
	stored := document.Clone()
	s.savedDocuments[document.ID] = stored
	return stored.Clone(), nil
}

func (s *documentStore) Search(ctx context.Context, request *core.SearchRequest) ([]*core.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*core.Document, 0)
	for _, id := range s.order {
		if doc := s.savedDocuments[id]; request.Matches(doc) {
			result = append(result, doc.Clone())
		}
	}
	return result, nil
}
