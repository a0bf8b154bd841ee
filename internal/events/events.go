// Package events records the audit trail of upgrade task runs.
package events

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lherron/fixq/internal/cursor"
	"github.com/lherron/fixq/internal/upgrade"
)

// Entry is one recorded task run.
type Entry struct {
	ID        int64  `json:"id" yaml:"id"`
	Version   string `json:"version" yaml:"version"`
	Task      string `json:"task" yaml:"task"`
	Outcome   string `json:"outcome" yaml:"outcome"`
	CreatedAt string `json:"created_at" yaml:"created_at"`
}

// Writer handles writing task runs to the task log
type Writer struct {
	db *sql.DB
}

// NewWriter creates a new task log writer
func NewWriter(db *sql.DB) *Writer {
	return &Writer{db: db}
}

// LogResult writes one task result.
func (w *Writer) LogResult(ctx context.Context, tx *sql.Tx, version string, res upgrade.Result) error {
	_, err := w.getExecutor(tx).ExecContext(ctx,
		`INSERT INTO task_log (version, task, outcome) VALUES (?, ?, ?)`,
		version, res.Task, res.Outcome.String())
	if err != nil {
		return fmt.Errorf("failed to write task log: %w", err)
	}
	return nil
}

// LogReport writes every result of report in a single transaction.
func (w *Writer) LogReport(ctx context.Context, report *upgrade.Report) error {
	if report == nil || len(report.Versions) == 0 {
		return nil
	}
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, v := range report.Versions {
		for _, res := range v.Results {
			if err := w.LogResult(ctx, tx, v.Version, res); err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}

// Recent returns up to limit entries, newest first. A limit of 0 or less
// returns every entry.
func (w *Writer) Recent(ctx context.Context, limit int) ([]Entry, error) {
	entries, _, err := w.Page(ctx, Query{Limit: limit})
	return entries, err
}

// Query selects a page of the task log, newest first.
type Query struct {
	Limit   int
	Version string
	After   *cursor.Cursor
}

// Page returns one page of entries and the cursor for the next page. The
// returned cursor is nil once the log is exhausted.
func (w *Writer) Page(ctx context.Context, q Query) ([]Entry, *cursor.Cursor, error) {
	var conds []string
	var params []any
	version := q.Version
	switch {
	case q.After != nil:
		after := *q.After
		if after.Version == "" {
			after.Version = version
		}
		version = after.Version
		clause, args := after.BuildWhereClause(true)
		conds = append(conds, clause)
		params = append(params, args...)
	case version != "":
		conds = append(conds, "version = ?")
		params = append(params, version)
	}

	query := "SELECT id, version, task, outcome, created_at FROM task_log"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	limit := q.Limit
	if limit <= 0 {
		limit = -1
	} else {
		limit++
	}
	query += " ORDER BY id DESC LIMIT ?"
	params = append(params, limit)

	rows, err := w.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query task log: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Version, &e.Task, &e.Outcome, &e.CreatedAt); err != nil {
			return nil, nil, fmt.Errorf("failed to scan task log: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	if q.Limit <= 0 || len(entries) <= q.Limit {
		return entries, nil, nil
	}
	entries = entries[:q.Limit]
	next := &cursor.Cursor{LastID: entries[len(entries)-1].ID, Version: version}
	return entries, next, nil
}

func (w *Writer) getExecutor(tx *sql.Tx) interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
} {
	if tx != nil {
		return tx
	}
	return w.db
}
