// Package vectorstore is a small persistent embedding collection on SQLite with the sqlite-vec extension.
package vectorstore

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"sync"
	"time"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	"github.com/cockroachdb/errors"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// DefaultDimensions matches the default Gemini embedding model.
const DefaultDimensions = 768

// ErrDimensionMismatch is returned when a vector does not have the store's dimensionality.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

var registerOnce sync.Once

// Options configures Open.
type Options struct {
	Dimensions int
	Logger     *zap.Logger
}

// Store owns the SQLite connection and the vector tables.
type Store struct {
	db         *sql.DB
	dimensions int
	logger     *zap.Logger
}

// Open opens (creating if needed) the store at path. An existing store must have
// been created with the same dimensionality.
func Open(ctx context.Context, path string, opts Options) (*Store, error) {
	if path == "" {
		return nil, errors.New("vector store path is empty")
	}
	if opts.Dimensions <= 0 {
		opts.Dimensions = DefaultDimensions
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	registerOnce.Do(sqlite_vec.Auto)

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000", path))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open vector store %s", path)
	}
	// SQLite allows a single writer
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{db: db, dimensions: opts.Dimensions, logger: opts.Logger}
	if err := s.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	s.logger.Debug("opened vector store",
		zap.String("path", path),
		zap.Int("dimensions", s.dimensions))
	return s, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Dimensions returns the vector size the store accepts.
func (s *Store) Dimensions() int {
	return s.dimensions
}

// Collection returns a handle to the named collection. Collections share the
// underlying tables and are created implicitly on first Add.
func (s *Store) Collection(name string) *Collection {
	return &Collection{store: s, name: name}
}

func (s *Store) initSchema(ctx context.Context) error {
	var version string
	if err := s.db.QueryRowContext(ctx, "SELECT vec_version()").Scan(&version); err != nil {
		return errors.Wrap(err, "sqlite-vec extension is not available")
	}

	statements := []string{
		`CREATE TABLE IF NOT EXISTS store_meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS documents (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL,
			collection TEXT NOT NULL,
			text TEXT NOT NULL,
			metadata TEXT NOT NULL DEFAULT '{}',
			created_at TEXT NOT NULL,
			UNIQUE (collection, id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_collection ON documents(collection)`,
		fmt.Sprintf(`CREATE VIRTUAL TABLE IF NOT EXISTS vec_documents USING vec0(embedding float[%d])`, s.dimensions),
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "failed to initialize vector store schema")
		}
	}

	var stored string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM store_meta WHERE key = 'dimensions'`).Scan(&stored)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = s.db.ExecContext(ctx, `INSERT INTO store_meta (key, value) VALUES ('dimensions', ?)`, strconv.Itoa(s.dimensions))
		if err != nil {
			return errors.Wrap(err, "failed to record store dimensions")
		}
	case err != nil:
		return errors.Wrap(err, "failed to read store dimensions")
	case stored != strconv.Itoa(s.dimensions):
		return errors.Wrapf(ErrDimensionMismatch, "store was created with %s dimensions, opened with %d", stored, s.dimensions)
	}

	s.logger.Debug("sqlite-vec ready", zap.String("version", version))
	return nil
}

func (s *Store) checkDimensions(vector []float32) error {
	if len(vector) != s.dimensions {
		return errors.Wrapf(ErrDimensionMismatch, "got %d, want %d", len(vector), s.dimensions)
	}
	return nil
}
