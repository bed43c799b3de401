// Package vectorstore implements the retrieval index over catalog
// descriptions, persisted in a SQLite database inside a fixed directory.
package vectorstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// DatabaseFile is the SQLite file name created inside the index directory
const DatabaseFile = "index.db"

// Record is one stored text with its metadata and embedding
type Record struct {
	ID        string
	Content   string
	Metadata  map[string]interface{}
	Embedding []float32
}

// Collection is a named set of records in the index database
type Collection struct {
	db   *sql.DB
	name string
}

// OpenCollection opens (or creates) the database in dir and binds it to the
// named collection.
func OpenCollection(dir, name string) (*Collection, error) {
	if name == "" {
		return nil, fmt.Errorf("collection name is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, DatabaseFile))
	if err != nil {
		return nil, fmt.Errorf("failed to open index database: %w", err)
	}
	db.SetMaxOpenConns(1)

	schema := `
	CREATE TABLE IF NOT EXISTS records (
		id TEXT PRIMARY KEY,
		collection TEXT NOT NULL,
		content TEXT NOT NULL,
		metadata TEXT NOT NULL,
		embedding TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_records_collection ON records(collection);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize index schema: %w", err)
	}

	return &Collection{db: db, name: name}, nil
}

// Name returns the collection name
func (c *Collection) Name() string {
	return c.name
}

// Count returns the number of records in the collection
func (c *Collection) Count(ctx context.Context) (int, error) {
	var n int
	err := c.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM records WHERE collection = ?", c.name).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return n, nil
}

// Add inserts records in one transaction. Records without an ID get a new UUID.
func (c *Collection) Add(ctx context.Context, records []Record) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO records (id, collection, content, metadata, embedding) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		id := r.ID
		if id == "" {
			id = uuid.NewString()
		}
		meta, err := json.Marshal(r.Metadata)
		if err != nil {
			return fmt.Errorf("failed to encode metadata: %w", err)
		}
		emb, err := json.Marshal(r.Embedding)
		if err != nil {
			return fmt.Errorf("failed to encode embedding: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, id, c.name, r.Content, string(meta), string(emb)); err != nil {
			return fmt.Errorf("failed to insert record: %w", err)
		}
	}

	return tx.Commit()
}

// All returns every record of the collection in insertion order
func (c *Collection) All(ctx context.Context) ([]Record, error) {
	rows, err := c.db.QueryContext(ctx,
		"SELECT id, content, metadata, embedding FROM records WHERE collection = ? ORDER BY rowid", c.name)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var meta, emb string
		if err := rows.Scan(&r.ID, &r.Content, &meta, &emb); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		if err := json.Unmarshal([]byte(meta), &r.Metadata); err != nil {
			return nil, fmt.Errorf("record %s has corrupt metadata: %w", r.ID, err)
		}
		if err := json.Unmarshal([]byte(emb), &r.Embedding); err != nil {
			return nil, fmt.Errorf("record %s has corrupt embedding: %w", r.ID, err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Close releases the database handle
func (c *Collection) Close() error {
	return c.db.Close()
}
