// Package snapshot writes point-in-time JSON backups of the fixture tables.
//
// A snapshot holds every row of every fixture model plus the links of each
// many-to-many table. Snapshots are encoded canonically (sorted keys, no
// insignificant whitespace) so two snapshots of the same data are
// byte-identical and carry the same snapshot_rev.
package snapshot

import (
	"time"

	"github.com/lherron/fixq/internal/store"
)

// SchemaVersion is the snapshot format version.
const SchemaVersion = 1

// Snapshot is the complete fixture state of a database.
type Snapshot struct {
	Meta   Meta                          `json:"meta"`
	Models map[store.Model][]store.Attrs `json:"models"`
	Links  map[string][]Link             `json:"links,omitempty"`
}

// Meta contains snapshot metadata.
type Meta struct {
	SchemaVersion  int    `json:"schema_version"`
	FixtureVersion string `json:"fixture_version,omitempty"`
	SnapshotRev    string `json:"snapshot_rev,omitempty"`
	GeneratedAt    string `json:"generated_at,omitempty"`
}

// Link is one row of a many-to-many table. Links are keyed by the table
// name in Snapshot.Links.
type Link struct {
	From  string      `json:"from"`
	To    string      `json:"to"`
	Pivot store.Attrs `json:"pivot,omitempty"`
}

// ExportResult contains the result of an export operation.
type ExportResult struct {
	OutputPath  string              `json:"out"`
	SnapshotRev string              `json:"snapshot_rev"`
	Records     map[store.Model]int `json:"records"`
	Links       int                 `json:"links"`
}

// VerifyResult contains the result of a verify operation.
type VerifyResult struct {
	InputPath   string `json:"input"`
	Valid       bool   `json:"valid"`
	SnapshotRev string `json:"snapshot_rev"`
	Message     string `json:"message,omitempty"`
}

// FormatTimestamp formats a time.Time as ISO-8601 with Z suffix.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}
