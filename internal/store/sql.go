package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lherron/fixq/internal/db"
	"github.com/lherron/fixq/internal/settings"
)

// SQLStore is the SQLite-backed Store.
type SQLStore struct {
	db *db.DB
}

var _ Store = (*SQLStore)(nil)

// New creates a SQLStore wrapping the given database connection.
func New(database *db.DB) *SQLStore {
	return &SQLStore{db: database}
}

// DB returns the underlying database connection (for read-only queries).
func (s *SQLStore) DB() *db.DB {
	return s.db
}

// withTx executes fn within a transaction. If fn returns nil, the transaction
// is committed; otherwise it is rolled back.
func (s *SQLStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// whereClause renders where as an AND of equality tests with keys in sorted
// order so the generated SQL is stable.
func whereClause(where Attrs, prefix string) (string, []any) {
	if len(where) == 0 {
		return "", nil
	}
	keys := make([]string, 0, len(where))
	for k := range where {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	args := make([]any, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s%s = ?", prefix, k)
		args[i] = sqlValue(where[k])
	}
	return " WHERE " + strings.Join(parts, " AND "), args
}

func sqlValue(v any) any {
	if b, ok := v.(bool); ok {
		if b {
			return 1
		}
		return 0
	}
	return v
}

func (s *SQLStore) FindOne(ctx context.Context, model Model, where Attrs) (*Record, error) {
	all, err := s.FindAll(ctx, model, where)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func (s *SQLStore) FindAll(ctx context.Context, model Model, where Attrs) (Collection, error) {
	if err := checkColumns(model, where, true); err != nil {
		return nil, err
	}
	clause, args := whereClause(where, "")
	query := fmt.Sprintf("SELECT * FROM %s%s ORDER BY rowid", model, clause)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", model, err)
	}
	defer rows.Close()

	var out Collection
	for rows.Next() {
		attrs, err := scanAttrs(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", model, err)
		}
		out = append(out, &Record{Model: model, ID: fmt.Sprint(attrs["id"]), Attrs: attrs})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", model, err)
	}
	return out, nil
}

// scanAttrs reads the current row into a column map.
func scanAttrs(rows *sql.Rows) (Attrs, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}
	attrs := make(Attrs, len(cols))
	for i, col := range cols {
		switch v := values[i].(type) {
		case []byte:
			attrs[col] = string(v)
		case time.Time:
			attrs[col] = v.UTC().Format(time.RFC3339)
		default:
			attrs[col] = v
		}
	}
	return attrs, nil
}

func (s *SQLStore) Add(ctx context.Context, model Model, attrs Attrs) (*Record, error) {
	prepared, err := Prepare(model, attrs)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(prepared))
	for k := range prepared {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = sqlValue(prepared[k])
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		model, strings.Join(keys, ", "), strings.TrimSuffix(strings.Repeat("?, ", len(keys)), ", "))

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("failed to insert into %s: %w", model, err)
	}

	rec, err := s.FindOne(ctx, model, Attrs{"id": prepared["id"]})
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("inserted %s %v vanished", model, prepared["id"])
	}
	return rec, nil
}

func (s *SQLStore) Edit(ctx context.Context, model Model, where Attrs, attrs Attrs) error {
	if len(attrs) == 0 {
		return nil
	}
	if err := checkColumns(model, attrs, false); err != nil {
		return err
	}
	if err := checkColumns(model, where, true); err != nil {
		return err
	}

	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	sets := make([]string, 0, len(keys)+1)
	args := make([]any, 0, len(keys)+len(where))
	for _, k := range keys {
		sets = append(sets, k+" = ?")
		args = append(args, sqlValue(attrs[k]))
	}
	sets = append(sets, "updated_at = strftime('%Y-%m-%dT%H:%M:%SZ','now')")

	clause, whereArgs := whereClause(where, "")
	args = append(args, whereArgs...)
	query := fmt.Sprintf("UPDATE %s SET %s%s", model, strings.Join(sets, ", "), clause)

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", model, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", model, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %v: %w", model, where, ErrNotFound)
	}
	return nil
}

func (s *SQLStore) Load(ctx context.Context, from *Record, relation string) ([]Related, error) {
	if from == nil {
		return nil, fmt.Errorf("load %s: nil record", relation)
	}
	def, err := Relation(from.Model, relation)
	if err != nil {
		return nil, err
	}

	pivotCols := ""
	for _, attr := range def.PivotAttrs {
		pivotCols += fmt.Sprintf(", p.%s AS pivot_%s", attr, attr)
	}
	query := fmt.Sprintf(
		"SELECT t.*%s FROM %s p JOIN %s t ON t.id = p.%s WHERE p.%s = ? ORDER BY p.rowid",
		pivotCols, def.Table, def.To, def.ToColumn, def.FromColumn)

	rows, err := s.db.QueryContext(ctx, query, from.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s.%s: %w", from.Model, relation, err)
	}
	defer rows.Close()

	var out []Related
	for rows.Next() {
		attrs, err := scanAttrs(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s.%s: %w", from.Model, relation, err)
		}
		pivot := Attrs{}
		for _, attr := range def.PivotAttrs {
			pivot[attr] = attrs["pivot_"+attr]
			delete(attrs, "pivot_"+attr)
		}
		out = append(out, Related{
			Record: &Record{Model: def.To, ID: fmt.Sprint(attrs["id"]), Attrs: attrs},
			Pivot:  pivot,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s.%s: %w", from.Model, relation, err)
	}
	return out, nil
}

func (s *SQLStore) UpdatePivot(ctx context.Context, from *Record, relation string, toID string, pivot Attrs) error {
	if from == nil {
		return fmt.Errorf("update pivot %s: nil record", relation)
	}
	def, err := Relation(from.Model, relation)
	if err != nil {
		return err
	}
	if err := def.checkPivot(pivot); err != nil {
		return err
	}
	if len(pivot) == 0 {
		return nil
	}

	keys := make([]string, 0, len(pivot))
	for k := range pivot {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	sets := make([]string, len(keys))
	args := make([]any, 0, len(keys)+2)
	for i, k := range keys {
		sets[i] = k + " = ?"
		args = append(args, sqlValue(pivot[k]))
	}
	args = append(args, from.ID, toID)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ? AND %s = ?",
		def.Table, strings.Join(sets, ", "), def.FromColumn, def.ToColumn)

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", def.Table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", def.Table, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s -> %s: %w", def.Table, from.ID, toID, ErrNotFound)
	}
	return nil
}

func (s *SQLStore) Attach(ctx context.Context, from *Record, relation string, to *Record, pivot Attrs) error {
	if from == nil {
		return fmt.Errorf("attach %s: nil record", relation)
	}
	def, err := Relation(from.Model, relation)
	if err != nil {
		return err
	}
	if to == nil {
		return fmt.Errorf("attach %s.%s: nil target", from.Model, relation)
	}
	if err := def.check(from, to); err != nil {
		return err
	}
	if err := def.checkPivot(pivot); err != nil {
		return err
	}

	cols := []string{"id", def.FromColumn, def.ToColumn}
	args := []any{uuid.NewString(), from.ID, to.ID}
	for _, attr := range def.PivotAttrs {
		if v, ok := pivot[attr]; ok {
			cols = append(cols, attr)
			args = append(args, sqlValue(v))
		}
	}
	query := fmt.Sprintf("INSERT OR IGNORE INTO %s (%s) VALUES (%s)",
		def.Table, strings.Join(cols, ", "), strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", "))

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to attach %s.%s: %w", from.Model, relation, err)
	}
	return nil
}

func (s *SQLStore) PopulateDefaults(ctx context.Context) error {
	defaults, err := settings.Defaults()
	if err != nil {
		return err
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			"INSERT OR IGNORE INTO settings (id, key, value, type) VALUES (?, ?, ?, ?)")
		if err != nil {
			return fmt.Errorf("failed to prepare settings insert: %w", err)
		}
		defer stmt.Close()

		for _, d := range defaults {
			if _, err := stmt.ExecContext(ctx, uuid.NewString(), d.Key, d.Value, string(d.Type)); err != nil {
				return fmt.Errorf("failed to insert default setting %s: %w", d.Key, err)
			}
		}
		return nil
	})
}
