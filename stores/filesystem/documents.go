package filesystem

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"document-manager/core"

	"github.com/sirupsen/logrus"
)

const extension = ".json"

type documentStore struct {
	mu       sync.RWMutex
	basePath string // Directory where documents are stored.
}

// NewDocumentStore stores each document as <id>.json under basePath.
func NewDocumentStore(basePath string) (core.DocumentStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &documentStore{basePath: basePath}, nil
}

// filePath escapes the id so that it always names a file directly inside basePath.
func (s *documentStore) filePath(id string) string {
	return filepath.Join(s.basePath, url.PathEscape(id)+extension)
}

func (s *documentStore) FindID(ctx context.Context, id string) (*core.Document, error) {
	filePath := s.filePath(id)
	log := logrus.WithFields(logrus.Fields{
		"document_id": id,
		"file_path":   filePath,
	})
	log.Debug("Retrieving document by ID")

	s.mu.RLock()
	defer s.mu.RUnlock()
	document, err := readDocument(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Debug("Document with specified ID not found")
			return nil, nil
		}
		log.WithField("error", err).Error("Failed to retrieve document")
		return nil, err
	}
	return document, nil
}

func (s *documentStore) Save(ctx context.Context, document *core.Document) (*core.Document, error) {
	if document == nil {
		return nil, core.ErrNilDocument
	}
	if document.ID == "" {
		document.ID = core.NewID()
	}
	filePath := s.filePath(document.ID)
	log := logrus.WithFields(logrus.Fields{
		"document_id": document.ID,
		"file_path":   filePath,
	})

	data, err := json.Marshal(document)
	if err != nil {
		return nil, fmt.Errorf("encode document %s: %w", document.ID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		log.WithField("error", err).Error("Failed to save document")
		return nil, fmt.Errorf("save document %s: %w", document.ID, err)
	}
	log.Debug("Document saved successfully")
	return document.Clone(), nil
}

func (s *documentStore) Search(ctx context.Context, request *core.SearchRequest) ([]*core.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	result := make([]*core.Document, 0)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), extension) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		document, err := readDocument(filepath.Join(s.basePath, e.Name()))
		if err != nil {
			return nil, err
		}
		if request.Matches(document) {
			result = append(result, document)
		}
	}
	return result, nil
}

func readDocument(filePath string) (*core.Document, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	var document core.Document
	if err := json.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filePath, err)
	}
	return &document, nil
}
