// Package track persists the version record for the cache slot: which asset
// version is on disk, when it was fetched, and how large it is. The record
// backs the staleness decision and is the authority consulted before any
// network fetch.
package track

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"assetd/pkg/types"
)

// Tracker is a single-slot version record backed by SQLite.
type Tracker struct {
	db   *sql.DB
	slot string
}

const createVersionTable = `
CREATE TABLE IF NOT EXISTS asset_versions (
	slot TEXT NOT NULL PRIMARY KEY,
	version_id TEXT NOT NULL,
	fetched_at_ms INTEGER NOT NULL,
	size_bytes INTEGER NOT NULL
);
`

// New opens (creating if needed) the tracker database at dbPath.
func New(dbPath, slot string) (*Tracker, error) {
	if slot == "" {
		return nil, fmt.Errorf("empty slot name")
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open tracker db: %w", err)
	}
	if _, err := db.Exec(createVersionTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate tracker db: %w", err)
	}
	return &Tracker{db: db, slot: slot}, nil
}

// CurrentVersion returns the recorded metadata for the slot, if any.
func (t *Tracker) CurrentVersion() (types.AssetMetadata, bool) {
	var meta types.AssetMetadata
	err := t.db.QueryRow(
		`SELECT version_id, fetched_at_ms, size_bytes FROM asset_versions WHERE slot = ?`,
		t.slot,
	).Scan(&meta.VersionID, &meta.FetchedAtMs, &meta.SizeBytes)
	if err != nil {
		return types.AssetMetadata{}, false
	}
	return meta, true
}

// RecordVersion persists meta for the slot. Callers must invoke this only
// after the asset bytes have been committed to the store, so the record never
// describes bytes that are not on disk.
func (t *Tracker) RecordVersion(meta types.AssetMetadata) error {
	_, err := t.db.Exec(
		`INSERT OR REPLACE INTO asset_versions (slot, version_id, fetched_at_ms, size_bytes)
		 VALUES (?, ?, ?, ?)`,
		t.slot, meta.VersionID, meta.FetchedAtMs, meta.SizeBytes,
	)
	if err != nil {
		return fmt.Errorf("record version: %w", err)
	}
	return nil
}

// Forget drops the slot's record. Used by corrupt-asset purges and resets.
func (t *Tracker) Forget() error {
	if _, err := t.db.Exec(`DELETE FROM asset_versions WHERE slot = ?`, t.slot); err != nil {
		return fmt.Errorf("forget version: %w", err)
	}
	return nil
}

// IsStale reports whether the slot needs a refresh: no record, a version
// other than desiredVersion, or an age beyond maxAgeMs.
func (t *Tracker) IsStale(nowMs, maxAgeMs int64, desiredVersion string) bool {
	meta, ok := t.CurrentVersion()
	if !ok {
		return true
	}
	if meta.VersionID != desiredVersion {
		return true
	}
	return nowMs-meta.FetchedAtMs > maxAgeMs
}

// Reconcile drops a record that does not match the bytes actually on disk.
// A crash between asset commit and version record leaves the old record
// describing overwritten bytes; after this pass the record and the disk are
// mutually consistent again (treating the slot as never fetched).
func (t *Tracker) Reconcile(diskSize func() (int64, bool)) error {
	meta, ok := t.CurrentVersion()
	if !ok {
		return nil
	}
	n, present := diskSize()
	if present && n == meta.SizeBytes {
		return nil
	}
	return t.Forget()
}

// Close releases the database connection.
func (t *Tracker) Close() error {
	return t.db.Close()
}
