package stores

import (
	"context"
	"errors"
	"fmt"

	"document-manager/core"
	"document-manager/stores/aws"
	"document-manager/stores/badger"
	"document-manager/stores/filesystem"
	"document-manager/stores/memory"
	"document-manager/stores/postgres"
	"document-manager/stores/sqlite"

	"github.com/sirupsen/logrus"
)

var ErrUnknownStorage = errors.New("unknown storage type")

// Config selects and parameterises a backend. Field comments name the
// environment variable each one is read from.
type Config struct {
	StorageType      string // STORAGE_TYPE: memory, filesystem, sqlite, postgres, s3, badger
	LocalStoragePath string // LOCAL_STORAGE_PATH
	DataSourceName   string // DATA_SOURCE_NAME
	PostgresDSN      string // POSTGRES_DSN
	S3BucketName     string // S3_BUCKET_NAME
	BadgerPath       string // BADGER_PATH
}

// GetStore builds the backend named by cfg.StorageType. Backends that hold
// connections or files also implement io.Closer.
func GetStore(ctx context.Context, cfg Config) (core.DocumentStore, error) {
	storageField := logrus.Fields{
		"storageType": cfg.StorageType,
	}

	var (
		store core.DocumentStore
		err   error
	)
	switch cfg.StorageType {
	case "filesystem":
		storageField["basePath"] = cfg.LocalStoragePath
		store, err = filesystem.NewDocumentStore(cfg.LocalStoragePath)
	case "sqlite":
		storageField["dataSourceName"] = cfg.DataSourceName
		store, err = sqlite.NewDocumentStore(ctx, cfg.DataSourceName)
	case "postgres":
		store, err = postgres.NewDocumentStore(ctx, cfg.PostgresDSN)
	case "s3":
		storageField["bucketName"] = cfg.S3BucketName
		store, err = aws.NewDocumentStore(ctx, cfg.S3BucketName)
	case "badger":
		storageField["badgerPath"] = cfg.BadgerPath
		store, err = badger.NewDocumentStore(cfg.BadgerPath, cfg.BadgerPath == "")
	case "", "memory":
		store = memory.NewDocumentStore()
		storageField["storageType"] = "in-memory"
	default:
		return nil, fmt.Errorf("%w: %q (supported: memory, filesystem, sqlite, postgres, s3, badger)", ErrUnknownStorage, cfg.StorageType)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s store: %w", cfg.StorageType, err)
	}
	logrus.WithFields(storageField).Info("Use storage")
	return store, nil
}
