package snapshot

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// CanonicalJSON produces a deterministic JSON encoding: map keys sorted, no
// indentation, no HTML escaping. Row order is preserved.
func CanonicalJSON(s *Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(s); err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// ComputeSnapshotRev computes the sha256 hash of canonical JSON bytes.
// Returns "sha256:<hex>" format.
func ComputeSnapshotRev(data []byte) string {
	hash := sha256.Sum256(data)
	return "sha256:" + hex.EncodeToString(hash[:])
}

// contentRev hashes the snapshot with its volatile metadata cleared, so two
// exports of unchanged data share a rev.
func contentRev(s *Snapshot) (string, error) {
	clone := *s
	clone.Meta.SnapshotRev = ""
	clone.Meta.GeneratedAt = ""
	data, err := CanonicalJSON(&clone)
	if err != nil {
		return "", err
	}
	return ComputeSnapshotRev(data), nil
}
