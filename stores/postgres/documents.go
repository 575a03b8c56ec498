package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"document-manager/core"
	"document-manager/stores/sqlstore"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

const (
	pingAttempts = 5
	pingDelay    = 2 * time.Second
)

// NewDocumentStore connects to PostgreSQL, retrying the first ping a few times
// before giving up, and creates the schema.
func NewDocumentStore(ctx context.Context, dataSourceName string) (core.DocumentStore, error) {
	db, err := sql.Open("postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	for i := 0; i < pingAttempts; i++ {
		if err = db.PingContext(ctx); err == nil {
			break
		}
		logrus.WithField("error", err).Warnf("Database connection failed, retrying in %s", pingDelay)
		select {
		case <-ctx.Done():
			db.Close()
			return nil, ctx.Err()
		case <-time.After(pingDelay):
		}
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to database after %d attempts: %w", pingAttempts, err)
	}

	return newDocumentStore(ctx, db)
}

func newDocumentStore(ctx context.Context, db *sql.DB) (*sqlstore.Store, error) {
	store := sqlstore.New(db, sqlstore.Postgres)
	if err := store.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	logrus.Info("Successfully connected to the database")
	return store, nil
}
