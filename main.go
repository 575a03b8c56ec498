package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"document-manager/core"
	"document-manager/handlers/api/documents"
	"document-manager/handlers/realtime"
	"document-manager/importer"
	"document-manager/stores"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var storageFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "storage-type",
		Usage:   "Storage backend (memory, filesystem, sqlite, postgres, s3, badger)",
		EnvVars: []string{"STORAGE_TYPE"},
		Value:   "memory",
	},
	&cli.StringFlag{
		Name:    "local-storage-path",
		Usage:   "Directory for the filesystem backend",
		EnvVars: []string{"LOCAL_STORAGE_PATH"},
		Value:   "./data/documents",
	},
	&cli.StringFlag{
		Name:    "data-source-name",
		Usage:   "SQLite data source name",
		EnvVars: []string{"DATA_SOURCE_NAME"},
		Value:   "./data/documents.db",
	},
	&cli.StringFlag{
		Name:    "postgres-dsn",
		Usage:   "PostgreSQL connection string",
		EnvVars: []string{"POSTGRES_DSN"},
	},
	&cli.StringFlag{
		Name:    "s3-bucket-name",
		Usage:   "S3 bucket for the s3 backend",
		EnvVars: []string{"S3_BUCKET_NAME"},
	},
	&cli.StringFlag{
		Name:    "badger-path",
		Usage:   "Badger directory; empty keeps the badger backend in memory",
		EnvVars: []string{"BADGER_PATH"},
	},
}

func main() {
	app := &cli.App{
		Name:  "document-manager",
		Usage: "Store, look up and search documents",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
				Value:   "info",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the document API and realtime notifications",
				Action: serveCommand,
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:    "listen-addr",
						Usage:   "HTTP listen address",
						EnvVars: []string{"LISTEN_ADDR"},
						Value:   ":3002",
					},
				}, storageFlags...),
			},
			{
				Name:      "import",
				Usage:     "Import a JSON array of documents into the configured store",
				ArgsUsage: "<file.json>",
				Action:    importCommand,
				Flags: append([]cli.Flag{
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Number of concurrent save workers",
						Value: importer.DefaultPoolSize,
					},
				}, storageFlags...),
			},
		},
		DefaultCommand: "serve",
	}

	if err := app.Run(os.Args); err != nil {
		logrus.Fatal(err)
	}
}

// setup loads .env when present. Command flags are parsed after it runs, so
// their environment variables can come from that file.
func setup(c *cli.Context) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	level, err := logrus.ParseLevel(strings.ToLower(c.String("log-level")))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.String("log-level"), err)
	}
	logrus.SetLevel(level)
	return nil
}

func storageConfig(c *cli.Context) stores.Config {
	return stores.Config{
		StorageType:      c.String("storage-type"),
		LocalStoragePath: c.String("local-storage-path"),
		DataSourceName:   c.String("data-source-name"),
		PostgresDSN:      c.String("postgres-dsn"),
		S3BucketName:     c.String("s3-bucket-name"),
		BadgerPath:       c.String("badger-path"),
	}
}

func openStore(ctx context.Context, c *cli.Context) (core.DocumentStore, func(), error) {
	documentStore, err := stores.GetStore(ctx, storageConfig(c))
	if err != nil {
		return nil, nil, err
	}
	closeStore := func() {
		if closer, ok := documentStore.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				logrus.WithField("error", err).Warn("Failed to close store")
			}
		}
	}
	return documentStore, closeStore, nil
}

func serveCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	documentStore, closeStore, err := openStore(ctx, c)
	if err != nil {
		return err
	}
	defer closeStore()

	ioo := realtime.NewServer()

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Content-Length", "X-CSRF-Token", "Origin", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("you are all set"))
	})
	r.Mount("/api/v1/documents", documents.Routes(documentStore, realtime.NewBroadcaster(ioo)))
	r.Handle("/socket.io/", ioo.ServeHandler(nil))

	srv := &http.Server{Addr: c.String("listen-addr"), Handler: r}
	errc := make(chan error, 1)
	go func() {
		logrus.WithField("addr", srv.Addr).Info("Document manager listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		logrus.Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	ioo.Close(nil)
	return srv.Shutdown(shutdownCtx)
}

func importCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one input file, got %d", c.NArg())
	}
	f, err := os.Open(c.Args().First())
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	documentStore, closeStore, err := openStore(c.Context, c)
	if err != nil {
		return err
	}
	defer closeStore()
	if t := c.String("storage-type"); t == "" || t == "memory" {
		logrus.Warn("Importing into the in-memory store; documents are gone when the command exits")
	}

	n, err := importer.Import(c.Context, documentStore, f, c.Int("pool-size"))
	fmt.Fprintf(os.Stderr, "Imported %d documents\n", n)
	return err
}
