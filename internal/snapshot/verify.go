package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/lherron/fixq/internal/store"
)

// LoadSnapshot reads and parses a snapshot file.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	if snap.Meta.SchemaVersion != SchemaVersion {
		return nil, fmt.Errorf("unsupported snapshot schema_version %d", snap.Meta.SchemaVersion)
	}
	return &snap, nil
}

// Verify checks that the snapshot at inputPath is intact and that the
// fixture data in s still matches it.
func Verify(ctx context.Context, s store.Store, inputPath string) (*VerifyResult, error) {
	saved, err := LoadSnapshot(inputPath)
	if err != nil {
		return nil, err
	}
	result := &VerifyResult{InputPath: inputPath, SnapshotRev: saved.Meta.SnapshotRev}

	rev, err := contentRev(saved)
	if err != nil {
		return nil, err
	}
	if rev != saved.Meta.SnapshotRev {
		result.Message = fmt.Sprintf("snapshot_rev mismatch: file says %s, content hashes to %s", saved.Meta.SnapshotRev, rev)
		return result, nil
	}

	current, err := Build(ctx, s, saved.Meta.FixtureVersion)
	if err != nil {
		return nil, err
	}
	if current.Meta.SnapshotRev != saved.Meta.SnapshotRev {
		a, _ := CanonicalJSON(&Snapshot{Models: saved.Models, Links: saved.Links})
		b, _ := CanonicalJSON(&Snapshot{Models: current.Models, Links: current.Links})
		result.Message = "database differs from snapshot: " + findFirstDiff(string(a), string(b))
		return result, nil
	}

	result.Valid = true
	result.Message = "database matches snapshot"
	return result, nil
}

func findFirstDiff(a, b string) string {
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}

	for i := 0; i < minLen; i++ {
		if a[i] != b[i] {
			start := i - 20
			if start < 0 {
				start = 0
			}
			end := i + 20
			if end > minLen {
				end = minLen
			}
			return fmt.Sprintf("difference at byte %d: ...%s... vs ...%s...",
				i, strings.ReplaceAll(a[start:end], "\n", "\\n"),
				strings.ReplaceAll(b[start:end], "\n", "\\n"))
		}
	}

	if len(a) != len(b) {
		return fmt.Sprintf("length mismatch: %d vs %d", len(a), len(b))
	}
	return "unknown difference"
}
