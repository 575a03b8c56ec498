// Package importer bulk-loads documents from JSON into a document store.
package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync"
	"sync/atomic"

	"document-manager/core"

	"github.com/panjf2000/ants/v2"
	"github.com/sirupsen/logrus"
)

// DefaultPoolSize is used when Import is given a pool size below one.
var DefaultPoolSize = max(runtime.NumCPU()/2, 1)

// Import reads a JSON array of documents from r and saves them concurrently.
// Documents without an id get one assigned by the store. It returns how many
// documents were saved together with every save error joined.
func Import(ctx context.Context, store core.DocumentStore, r io.Reader, poolSize int) (int, error) {
	var documents []*core.Document
	if err := json.NewDecoder(r).Decode(&documents); err != nil {
		return 0, fmt.Errorf("decode documents: %w", err)
	}
	if poolSize < 1 {
		poolSize = DefaultPoolSize
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return 0, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		errs  []error
		saved atomic.Int64
	)
	fail := func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}

	for i, document := range documents {
		if err := ctx.Err(); err != nil {
			fail(err)
			break
		}
		if document == nil {
			fail(fmt.Errorf("document %d: %w", i, core.ErrNilDocument))
			continue
		}
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			if _, err := store.Save(ctx, document); err != nil {
				fail(fmt.Errorf("document %d: %w", i, err))
				return
			}
			saved.Add(1)
		})
		if err != nil {
			wg.Done()
			fail(fmt.Errorf("submit document %d: %w", i, err))
		}
	}
	wg.Wait()

	logrus.WithFields(logrus.Fields{
		"total":  len(documents),
		"saved":  saved.Load(),
		"failed": len(errs),
	}).Info("Import finished")
	return int(saved.Load()), errors.Join(errs...)
}
