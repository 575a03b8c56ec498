// Package sqlstore implements core.DocumentStore on database/sql. The sqlite and
// postgres packages open the connection and pick the Dialect.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"document-manager/core"

	"github.com/sirupsen/logrus"
)

type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

func (d Dialect) String() string {
	if d == Postgres {
		return "postgres"
	}
	return "sqlite"
}

func (d Dialect) placeholder(n int) string {
	if d == Postgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// contains renders a case-sensitive literal substring test.
func (d Dialect) contains(column, arg string) string {
	if d == Postgres {
		return fmt.Sprintf("strpos(%s, %s) > 0", column, arg)
	}
	return fmt.Sprintf("instr(%s, %s) > 0", column, arg)
}

// timeLayout is fixed width so created values order correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

var schema = []string{
	`CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		author_id TEXT,
		author_name TEXT,
		created TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_documents_author ON documents(author_id)`,
	`CREATE INDEX IF NOT EXISTS idx_documents_created ON documents(created)`,
}

const selectColumns = `SELECT id, title, content, author_id, author_name, created FROM documents`

type Store struct {
	db      *sql.DB
	dialect Dialect
}

func New(db *sql.DB, dialect Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

// Migrate creates the documents table and its indexes if they are missing.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) FindID(ctx context.Context, id string) (*core.Document, error) {
	log := logrus.WithFields(logrus.Fields{"document_id": id, "dialect": s.dialect})
	log.Debug("Retrieving document by ID")

	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE id = "+s.dialect.placeholder(1), id)
	document, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("Document with specified ID not found")
		return nil, nil
	}
	if err != nil {
		log.WithField("error", err).Error("Failed to retrieve document")
		return nil, fmt.Errorf("find document %s: %w", id, err)
	}
	return document, nil
}

func (s *Store) Save(ctx context.Context, document *core.Document) (*core.Document, error) {
	if document == nil {
		return nil, core.ErrNilDocument
	}
	if document.ID == "" {
		document.ID = core.NewID()
	}
	log := logrus.WithFields(logrus.Fields{"document_id": document.ID, "dialect": s.dialect})

	var authorID, authorName any
	if document.Author != nil {
		authorID, authorName = document.Author.ID, document.Author.Name
	}

	p := s.dialect.placeholder
	stmt := fmt.Sprintf(`INSERT INTO documents (id, title, content, author_id, author_name, created)
	VALUES (%s, %s, %s, %s, %s, %s)
	ON CONFLICT(id) DO UPDATE SET
		title = excluded.title,
		content = excluded.content,
		author_id = excluded.author_id,
		author_name = excluded.author_name,
		created = excluded.created`, p(1), p(2), p(3), p(4), p(5), p(6))

	_, err := s.db.ExecContext(ctx, stmt,
		document.ID, document.Title, document.Content, authorID, authorName, formatTime(document.Created),
	)
	if err != nil {
		log.WithField("error", err).Error("Failed to save document")
		return nil, fmt.Errorf("save document %s: %w", document.ID, err)
	}
	log.Info("Document saved successfully")
	return document.Clone(), nil
}

func (s *Store) Search(ctx context.Context, request *core.SearchRequest) ([]*core.Document, error) {
	query, args := s.searchQuery(request)
	logrus.WithFields(logrus.Fields{"dialect": s.dialect, "args": len(args)}).Debug("Searching documents")

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search documents: %w", err)
	}
	defer rows.Close()

	result := make([]*core.Document, 0)
	for rows.Next() {
		document, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		result = append(result, document)
	}
	return result, rows.Err()
}

type queryBuilder struct {
	dialect Dialect
	where   []string
	args    []any
}

func (b *queryBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return b.dialect.placeholder(len(b.args))
}

func (b *queryBuilder) anyOf(values []string, clause func(string) string) {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, clause(v))
	}
	b.where = append(b.where, "("+strings.Join(parts, " OR ")+")")
}

func (s *Store) searchQuery(request *core.SearchRequest) (string, []any) {
	b := &queryBuilder{dialect: s.dialect}
	if request != nil {
		if len(request.TitlePrefixes) > 0 {
			b.anyOf(request.TitlePrefixes, func(prefix string) string {
				return fmt.Sprintf("substr(title, 1, length(CAST(%s AS TEXT))) = %s", b.arg(prefix), b.arg(prefix))
			})
		}
		if len(request.ContainsContents) > 0 {
			b.anyOf(request.ContainsContents, func(sub string) string {
				return b.dialect.contains("content", b.arg(sub))
			})
		}
		if len(request.AuthorIDs) > 0 {
			placeholders := make([]string, 0, len(request.AuthorIDs))
			for _, id := range request.AuthorIDs {
				placeholders = append(placeholders, b.arg(id))
			}
			b.where = append(b.where, "author_id IN ("+strings.Join(placeholders, ", ")+")")
		}
		if request.CreatedFrom != nil {
			b.where = append(b.where, "created >= "+b.arg(formatTime(*request.CreatedFrom)))
		}
		if request.CreatedTo != nil {
			b.where = append(b.where, "created <= "+b.arg(formatTime(*request.CreatedTo)))
		}
	}

	query := selectColumns
	if len(b.where) > 0 {
		query += " WHERE " + strings.Join(b.where, " AND ")
	}
	return query + " ORDER BY created, id", b.args
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (*core.Document, error) {
	var (
		document             core.Document
		authorID, authorName sql.NullString
		created              string
	)
	if err := row.Scan(&document.ID, &document.Title, &document.Content, &authorID, &authorName, &created); err != nil {
		return nil, err
	}
	if authorID.Valid {
		document.Author = &core.Author{ID: authorID.String, Name: authorName.String}
	}
	t, err := time.Parse(timeLayout, created)
	if err != nil {
		return nil, fmt.Errorf("parse created %q: %w", created, err)
	}
	document.Created = t
	return &document, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}
