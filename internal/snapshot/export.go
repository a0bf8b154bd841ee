package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lherron/fixq/internal/store"
)

// Build reads every fixture model and relation table from s.
func Build(ctx context.Context, s store.Store, fixtureVersion string) (*Snapshot, error) {
	snap := &Snapshot{
		Meta: Meta{
			SchemaVersion:  SchemaVersion,
			FixtureVersion: fixtureVersion,
			GeneratedAt:    FormatTimestamp(time.Now()),
		},
		Models: make(map[store.Model][]store.Attrs),
		Links:  make(map[string][]Link),
	}

	all := make(map[store.Model]store.Collection)
	for _, model := range store.Models() {
		rows, err := s.FindAll(ctx, model, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to export %s: %w", model, err)
		}
		all[model] = rows
		records := make([]store.Attrs, 0, rows.Len())
		for _, rec := range rows {
			records = append(records, rec.Attrs.Clone())
		}
		snap.Models[model] = records
	}

	for _, def := range store.Relations() {
		if _, done := snap.Links[def.Table]; done {
			continue
		}
		links := []Link{}
		err := all[def.From].Each(func(rec *store.Record) error {
			related, err := s.Load(ctx, rec, def.Name)
			if err != nil {
				return err
			}
			for _, rel := range related {
				links = append(links, Link{From: rec.ID, To: rel.ID, Pivot: rel.Pivot})
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to export %s: %w", def.Table, err)
		}
		snap.Links[def.Table] = links
	}

	rev, err := contentRev(snap)
	if err != nil {
		return nil, err
	}
	snap.Meta.SnapshotRev = rev
	return snap, nil
}

// Export builds a snapshot and writes it to path.
func Export(ctx context.Context, s store.Store, fixtureVersion, path string) (*ExportResult, error) {
	snap, err := Build(ctx, s, fixtureVersion)
	if err != nil {
		return nil, fmt.Errorf("failed to build snapshot: %w", err)
	}
	data, err := CanonicalJSON(snap)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write snapshot: %w", err)
	}

	result := &ExportResult{
		OutputPath:  path,
		SnapshotRev: snap.Meta.SnapshotRev,
		Records:     make(map[store.Model]int),
	}
	for model, rows := range snap.Models {
		result.Records[model] = len(rows)
	}
	for _, links := range snap.Links {
		result.Links += len(links)
	}
	return result, nil
}
