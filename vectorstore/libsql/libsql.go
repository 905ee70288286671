// Package libsql provides a persistent vectorstore.Store backed by a
// libSQL/SQLite database. Vectors and metadata are stored as JSON columns;
// filtering happens in SQL-adjacent client code after a scoped scan, cosine
// ranking in Go.
package libsql

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	jsoniter "github.com/json-iterator/go"
	_ "github.com/tursodatabase/go-libsql"

	"github.com/hupe1980/agentloop/vectorstore"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Options configure the libSQL store.
type Options struct {
	// Table is the backing table name.
	Table string
}

// Store persists vector documents in a libSQL database.
type Store struct {
	db    *sql.DB
	table string
}

// Open opens (or creates) a local database file and prepares the schema.
func Open(path string, optFns ...func(o *Options)) (*Store, error) {
	db, err := sql.Open("libsql", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("open libsql database: %w", err)
	}
	return NewStore(db, optFns...)
}

// NewStore wraps an existing database handle and prepares the schema.
func NewStore(db *sql.DB, optFns ...func(o *Options)) (*Store, error) {
	opts := Options{Table: "vector_documents"}
	for _, fn := range optFns {
		fn(&opts)
	}

	s := &Store{db: db, table: opts.Table}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) ensureSchema() error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			vector TEXT NOT NULL,
			text TEXT NOT NULL,
			metadata TEXT,
			created_at TIMESTAMP NOT NULL
		)
	`, s.table)

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create table %s: %w", s.table, err)
	}
	return nil
}

// Upsert implements vectorstore.Store.
func (s *Store) Upsert(ctx context.Context, doc vectorstore.Document) error {
	vecJSON, err := json.Marshal(doc.Vector)
	if err != nil {
		return fmt.Errorf("marshal vector: %w", err)
	}
	metaJSON, err := json.Marshal(doc.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT OR REPLACE INTO %s (id, vector, text, metadata, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, s.table)

	if _, err := s.db.ExecContext(ctx, query, doc.ID, string(vecJSON), doc.Text, string(metaJSON), time.Now().UTC()); err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}
	return nil
}

// Query implements vectorstore.Store. Rows are brought back, filtered and
// ranked by cosine similarity client-side.
func (s *Store) Query(ctx context.Context, vector []float64, limit int, filter vectorstore.Filter) ([]vectorstore.Match, error) {
	query := fmt.Sprintf(`SELECT id, vector, text, metadata FROM %s`, s.table)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var matches []vectorstore.Match
	for rows.Next() {
		var id, vecJSON, text string
		var metaJSON sql.NullString
		if err := rows.Scan(&id, &vecJSON, &text, &metaJSON); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}

		var vec []float64
		if err := json.Unmarshal([]byte(vecJSON), &vec); err != nil {
			return nil, fmt.Errorf("unmarshal vector for %s: %w", id, err)
		}
		metadata := map[string]string{}
		if metaJSON.Valid && metaJSON.String != "" && metaJSON.String != "null" {
			if err := json.Unmarshal([]byte(metaJSON.String), &metadata); err != nil {
				return nil, fmt.Errorf("unmarshal metadata for %s: %w", id, err)
			}
		}

		if !filter.Matches(metadata) {
			continue
		}

		matches = append(matches, vectorstore.Match{
			ID:       id,
			Text:     text,
			Metadata: metadata,
			Score:    vectorstore.Cosine(vector, vec),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].ID < matches[j].ID
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// Delete implements vectorstore.Store.
func (s *Store) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, s.table)
	if _, err := s.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}
