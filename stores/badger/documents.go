package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"document-manager/core"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/sirupsen/logrus"
)

const documentPrefix = "document/"

type documentStore struct {
	db *badger.DB
}

// NewDocumentStore opens a Badger database at path. With inMemory set the path
// is ignored and nothing touches the disk.
func NewDocumentStore(path string, inMemory bool) (core.DocumentStore, error) {
	var opts badger.Options
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(path, 0755); err != nil {
			return nil, fmt.Errorf("failed to create badger directory: %w", err)
		}
		opts = badger.DefaultOptions(path)
	}
	opts.Logger = logrus.WithField("component", "badger")
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &documentStore{db: db}, nil
}

func (s *documentStore) Close() error {
	return s.db.Close()
}

func documentKey(id string) []byte {
	return []byte(documentPrefix + id)
}

func (s *documentStore) FindID(ctx context.Context, id string) (*core.Document, error) {
	var document *core.Document
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(documentKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			document, err = decode(val)
			return err
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		logrus.WithField("document_id", id).Debug("Document with specified ID not found")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find document %s: %w", id, err)
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
	value, err := json.Marshal(document)
	if err != nil {
		return nil, fmt.Errorf("encode document %s: %w", document.ID, err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(documentKey(document.ID), value)
	})
	if err != nil {
		return nil, fmt.Errorf("save document %s: %w", document.ID, err)
	}
	return document.Clone(), nil
}

func (s *documentStore) Search(ctx context.Context, request *core.SearchRequest) ([]*core.Document, error) {
	result := make([]*core.Document, 0)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(documentPrefix)
		iter := txn.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var document *core.Document
			err := iter.Item().Value(func(val []byte) error {
				var err error
				document, err = decode(val)
				return err
			})
			if err != nil {
				return err
			}
			if request.Matches(document) {
				result = append(result, document)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("search documents: %w", err)
	}
	return result, nil
}

func decode(val []byte) (*core.Document, error) {
	var document core.Document
	if err := json.Unmarshal(val, &document); err != nil {
		return nil, err
	}
	return &document, nil
}
