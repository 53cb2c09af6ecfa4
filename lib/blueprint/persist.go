package blueprint

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ValentinKolb/kvsub/lib/store"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Persister stores the whole blueprint document of one cache.
type Persister interface {
	// Read returns the last written document or ErrNoBlueprint.
	Read() ([]byte, error)
	// Write replaces the stored document.
	Write(data []byte) error
	// Name identifies the persisted resource in log messages.
	Name() string
}

// ResourceName returns the name of the blueprint resource of a cache
func ResourceName(cache string) string {
	return cache + "_blueprint"
}

// --------------------------------------------------------------------------
// File
// --------------------------------------------------------------------------

// FilePersister keeps the blueprint in {dir}/{cache}_blueprint.json.
type FilePersister struct {
	path string
}

// NewFilePersister returns a persister for the blueprint file of cache inside dir.
func NewFilePersister(dir, cache string) *FilePersister {
	return &FilePersister{path: filepath.Join(dir, ResourceName(cache)+".json")}
}

func (p *FilePersister) Name() string { return p.path }

func (p *FilePersister) Read() ([]byte, error) {
	data, err := os.ReadFile(p.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoBlueprint
	}
	return data, err
}

// Write replaces the file atomically by renaming a temporary file over it.
func (p *FilePersister) Write(data []byte) error {
	dir := filepath.Dir(p.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp := filepath.Join(dir, "."+filepath.Base(p.path)+"."+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, p.path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// --------------------------------------------------------------------------
// Store
// --------------------------------------------------------------------------

// StorePersister keeps the blueprint under the key {cache}_blueprint in a store.
// The key has no '/' so it never shows up in a sub's prefix scan.
type StorePersister struct {
	store store.IStore
	key   string
}

// NewStorePersister returns a persister that writes into s
func NewStorePersister(s store.IStore, cache string) *StorePersister {
	return &StorePersister{store: s, key: ResourceName(cache)}
}

func (p *StorePersister) Name() string { return "store:" + p.key }

func (p *StorePersister) Read() ([]byte, error) {
	data, ok, err := p.store.Get(p.key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoBlueprint
	}
	return data, nil
}

func (p *StorePersister) Write(data []byte) error {
	return p.store.Set(p.key, data)
}

// --------------------------------------------------------------------------
// SQLite
// --------------------------------------------------------------------------

// SQLitePersister keeps the blueprint as one row of the blueprints table.
type SQLitePersister struct {
	db   *sql.DB
	path string
	name string
}

// NewSQLitePersister opens (or creates) the SQLite database at path.
// Use ":memory:" for an in-memory database.
func NewSQLitePersister(path, cache string) (*SQLitePersister, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}
	// a single connection keeps ":memory:" databases alive and serializes writers
	db.SetMaxOpenConns(1)

	const ddl = `
	CREATE TABLE IF NOT EXISTS blueprints (
		name       TEXT PRIMARY KEY,
		document   TEXT NOT NULL,
		updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`
	if _, err := db.Exec(ddl); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLitePersister{db: db, path: path, name: ResourceName(cache)}, nil
}

func (p *SQLitePersister) Name() string { return "sqlite:" + p.path + "#" + p.name }

func (p *SQLitePersister) Read() ([]byte, error) {
	var document string
	err := p.db.QueryRow("SELECT document FROM blueprints WHERE name = ?", p.name).Scan(&document)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoBlueprint
	}
	if err != nil {
		return nil, fmt.Errorf("read blueprint %q: %w", p.name, err)
	}
	return []byte(document), nil
}

func (p *SQLitePersister) Write(data []byte) error {
	_, err := p.db.Exec(`
		INSERT INTO blueprints (name, document, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET document = excluded.document, updated_at = excluded.updated_at`,
		p.name, string(data))
	if err != nil {
		return fmt.Errorf("write blueprint %q: %w", p.name, err)
	}
	return nil
}

// Close closes the underlying database
func (p *SQLitePersister) Close() error {
	return p.db.Close()
}
