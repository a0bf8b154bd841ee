// Package cursor implements opaque keyset pagination cursors for the task log.
package cursor

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// Cursor marks the last entry of a page. The next page starts strictly
// after LastID in the page's sort direction.
type Cursor struct {
	LastID  int64  `json:"last_id"`
	Version string `json:"version,omitempty"`
}

// Encode serializes the cursor to an opaque base64 string
func (c *Cursor) Encode() (string, error) {
	if c.LastID <= 0 {
		return "", fmt.Errorf("cursor requires a positive last ID")
	}

	jsonData, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal cursor: %w", err)
	}
	return base64.URLEncoding.EncodeToString(jsonData), nil
}

// Decode deserializes a cursor from an opaque base64 string
func Decode(encoded string) (*Cursor, error) {
	if encoded == "" {
		return nil, fmt.Errorf("empty cursor string")
	}

	jsonData, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("invalid cursor encoding: %w", err)
	}

	var c Cursor
	if err := json.Unmarshal(jsonData, &c); err != nil {
		return nil, fmt.Errorf("invalid cursor format: %w", err)
	}
	if c.LastID <= 0 {
		return nil, fmt.Errorf("cursor missing last ID")
	}
	return &c, nil
}

// BuildWhereClause constructs the SQL condition selecting rows after the
// cursor for a listing ordered by id. A cursor taken from a filtered listing
// keeps its filter.
func (c *Cursor) BuildWhereClause(descending bool) (string, []any) {
	op := ">"
	if descending {
		op = "<"
	}
	clause := fmt.Sprintf("id %s ?", op)
	params := []any{c.LastID}
	if c.Version != "" {
		clause += " AND version = ?"
		params = append(params, c.Version)
	}
	return clause, params
}
