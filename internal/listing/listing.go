// Package listing enumerates the known worlds (archives) from the
// SQLite metadata store for the /list endpoint.
package listing

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Record is one world's listing entry. MapDescriptor and LayerKeys are
// stored as JSON text and embedded verbatim after validation.
type Record struct {
	DisplayName   string          `json:"display_name"`
	MapDescriptor json.RawMessage `json:"map"`
	LayerKeys     json.RawMessage `json:"layers"`
	LastUpdated   time.Time       `json:"last_updated"`
}

// MalformedRecordError means a row holds JSON that does not parse. The
// whole listing request fails; there is no partial output.
type MalformedRecordError struct {
	World string
	Field string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("listing: world %q has malformed %s JSON", e.World, e.Field)
}

const schema = `
CREATE TABLE IF NOT EXISTS worlds (
	world_name TEXT PRIMARY KEY,
	display_name TEXT NOT NULL,
	map_descriptor TEXT NOT NULL,
	layer_keys TEXT NOT NULL,
	last_updated INTEGER NOT NULL
);`

// Store persists world listings in SQLite.
type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("listing: storage path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("listing: open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("listing: ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("listing: create schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Put upserts one world's listing record.
func (s *Store) Put(ctx context.Context, world string, rec Record) error {
	world = strings.TrimSpace(world)
	if world == "" {
		return fmt.Errorf("listing: world name is required")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO worlds (world_name, display_name, map_descriptor, layer_keys, last_updated)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(world_name) DO UPDATE SET
			display_name = excluded.display_name,
			map_descriptor = excluded.map_descriptor,
			layer_keys = excluded.layer_keys,
			last_updated = excluded.last_updated`,
		world, rec.DisplayName, string(rec.MapDescriptor), string(rec.LayerKeys),
		rec.LastUpdated.UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("listing: upsert world %q: %w", world, err)
	}
	return nil
}

// List returns every world keyed by name. An empty table yields an
// empty map, not an error.
func (s *Store) List(ctx context.Context) (map[string]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT world_name, display_name, map_descriptor, layer_keys, last_updated
		FROM worlds ORDER BY world_name`)
	if err != nil {
		return nil, fmt.Errorf("listing: query worlds: %w", err)
	}
	defer rows.Close()

	out := make(map[string]Record)
	for rows.Next() {
		var world, display, mapDescriptor, layerKeys string
		var lastUpdated int64
		if err := rows.Scan(&world, &display, &mapDescriptor, &layerKeys, &lastUpdated); err != nil {
			return nil, fmt.Errorf("listing: scan world row: %w", err)
		}
		if !json.Valid([]byte(mapDescriptor)) {
			return nil, &MalformedRecordError{World: world, Field: "map_descriptor"}
		}
		if !json.Valid([]byte(layerKeys)) {
			return nil, &MalformedRecordError{World: world, Field: "layer_keys"}
		}
		out[world] = Record{
			DisplayName:   display,
			MapDescriptor: json.RawMessage(mapDescriptor),
			LayerKeys:     json.RawMessage(layerKeys),
			LastUpdated:   time.UnixMilli(lastUpdated).UTC(),
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing: iterate world rows: %w", err)
	}
	return out, nil
}
