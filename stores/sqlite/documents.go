package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"document-manager/core"
	"document-manager/stores/sqlstore"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

// NewDocumentStore opens the SQLite database at dataSourceName, for example a
// file path or "file::memory:?cache=shared", and creates the schema.
func NewDocumentStore(ctx context.Context, dataSourceName string) (core.DocumentStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// ":memory:" databases exist per connection
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	store := sqlstore.New(db, sqlstore.SQLite)
	if err := store.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	logrus.WithField("dataSourceName", dataSourceName).Debug("SQLite document store ready")
	return store, nil
}
