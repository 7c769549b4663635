package vectorstore

import (
	"context"
	"encoding/json"
	"time"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Document is one stored entry: the source text, free-form string metadata and its embedding.
type Document struct {
	ID        string
	Text      string
	Metadata  map[string]string
	Embedding []float32
}

// Match is a query hit. Lower Distance (L2) means more similar.
type Match struct {
	ID       string
	Text     string
	Metadata map[string]string
	Distance float32
}

// Collection is a named group of documents inside a Store.
type Collection struct {
	store *Store
	name  string
}

// Name returns the collection name.
func (c *Collection) Name() string {
	return c.name
}

// Count returns the number of documents in the collection.
func (c *Collection) Count(ctx context.Context) (int, error) {
	var n int
	err := c.store.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM documents WHERE collection = ?`, c.name).Scan(&n)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to count documents in %s", c.name)
	}
	return n, nil
}

// Add stores docs in a single transaction. Documents without an ID get a UUID.
// Adding an ID that already exists in the collection fails.
func (c *Collection) Add(ctx context.Context, docs []Document) (err error) {
	if len(docs) == 0 {
		return nil
	}
	for i, doc := range docs {
		if err := c.store.checkDimensions(doc.Embedding); err != nil {
			return errors.Wrapf(err, "document %d", i)
		}
	}

	tx, err := c.store.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				c.store.logger.Error("failed to rollback add transaction", zap.Error(rollbackErr))
			}
		}
	}()

	docStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO documents (id, collection, text, metadata, created_at)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return errors.Wrap(err, "failed to prepare documents insert statement")
	}
	defer docStmt.Close()

	vecStmt, err := tx.PrepareContext(ctx, `INSERT INTO vec_documents (rowid, embedding) VALUES (?, ?)`)
	if err != nil {
		return errors.Wrap(err, "failed to prepare vec_documents insert statement")
	}
	defer vecStmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, doc := range docs {
		id := doc.ID
		if id == "" {
			id = uuid.NewString()
		}
		metadata, err := encodeMetadata(doc.Metadata)
		if err != nil {
			return errors.Wrapf(err, "document %s", id)
		}
		blob, err := sqlite_vec.SerializeFloat32(doc.Embedding)
		if err != nil {
			return errors.Wrapf(err, "failed to serialize embedding for %s", id)
		}

		res, err := docStmt.ExecContext(ctx, id, c.name, doc.Text, metadata, now)
		if err != nil {
			return errors.Wrapf(err, "failed to insert document %s", id)
		}
		seq, err := res.LastInsertId()
		if err != nil {
			return errors.Wrapf(err, "failed to read rowid of document %s", id)
		}
		if _, err = vecStmt.ExecContext(ctx, seq, blob); err != nil {
			return errors.Wrapf(err, "failed to insert embedding for %s", id)
		}
	}

	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit add transaction")
	}

	c.store.logger.Debug("added documents",
		zap.String("collection", c.name),
		zap.Int("count", len(docs)))
	return nil
}

// Query returns, for each query vector, up to topK matches ordered by ascending distance.
func (c *Collection) Query(ctx context.Context, queries [][]float32, topK int) ([][]Match, error) {
	if topK <= 0 {
		return nil, errors.Newf("topK must be positive, got %d", topK)
	}

	results := make([][]Match, len(queries))
	for i, q := range queries {
		matches, err := c.queryOne(ctx, q, topK)
		if err != nil {
			return nil, errors.Wrapf(err, "query %d", i)
		}
		results[i] = matches
	}
	return results, nil
}

func (c *Collection) queryOne(ctx context.Context, vector []float32, topK int) ([]Match, error) {
	if err := c.store.checkDimensions(vector); err != nil {
		return nil, err
	}
	blob, err := sqlite_vec.SerializeFloat32(vector)
	if err != nil {
		return nil, errors.Wrap(err, "failed to serialize query vector")
	}

	rows, err := c.store.db.QueryContext(ctx, `
		SELECT d.id, d.text, d.metadata, vec_distance_L2(v.embedding, ?) AS distance
		FROM vec_documents v
		JOIN documents d ON d.seq = v.rowid
		WHERE d.collection = ?
		ORDER BY distance, d.seq
		LIMIT ?
	`, blob, c.name, topK)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to search collection %s", c.name)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var (
			m        Match
			metadata string
		)
		if err := rows.Scan(&m.ID, &m.Text, &metadata, &m.Distance); err != nil {
			return nil, errors.Wrapf(err, "failed to scan match at row %d", len(matches)+1)
		}
		if m.Metadata, err = decodeMetadata(metadata); err != nil {
			return nil, errors.Wrapf(err, "document %s", m.ID)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to iterate matches (scanned %d rows)", len(matches))
	}
	return matches, nil
}

func encodeMetadata(metadata map[string]string) (string, error) {
	if len(metadata) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(metadata)
	if err != nil {
		return "", errors.Wrap(err, "failed to encode metadata")
	}
	return string(data), nil
}

func decodeMetadata(raw string) (map[string]string, error) {
	metadata := make(map[string]string)
	if raw == "" {
		return metadata, nil
	}
	if err := json.Unmarshal([]byte(raw), &metadata); err != nil {
		return nil, errors.Wrap(err, "failed to decode metadata")
	}
	return metadata, nil
}
