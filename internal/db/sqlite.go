// Package db provides an SQLite item store.
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/javiermolinar/calgrid/internal/item"
)

// timeLayout is fixed width so stored timestamps compare as strings.
const timeLayout = "2006-01-02T15:04:05.000Z"

// SQLite implements item.Source using SQLite.
type SQLite struct {
	db  *sql.DB
	loc *time.Location
}

var _ item.Source = (*SQLite)(nil)

// New opens the store at path and runs migrations. Items come back with
// their stored values; loc is only used to read zoneless timestamps on import.
func New(path string, loc *time.Location) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	if loc == nil {
		loc = time.Local
	}
	s := &SQLite{db: db, loc: loc}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Rejected is an item ImportItems could not store.
type Rejected struct {
	Index int
	ID    string
	Err   error
}

// ImportResult summarizes one import.
type ImportResult struct {
	Imported int
	Rejected []Rejected
}

// ImportItems stores items in one transaction. Items with an identifier
// replace the stored item with the same identifier and keep its position.
// Items whose interval cannot be read are rejected and the rest are stored.
func (s *SQLite) ImportItems(ctx context.Context, items []item.Item, fields item.FieldPair, idField string) (ImportResult, error) {
	if err := fields.Validate(); err != nil {
		return ImportResult{}, err
	}
	if idField == "" {
		idField = item.DefaultIDField
	}

	var res ImportResult
	if len(items) == 0 {
		return res, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return res, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		INSERT INTO items (item_id, start_at, end_at, payload)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(item_id) DO UPDATE SET
			start_at = excluded.start_at,
			end_at = excluded.end_at,
			payload = excluded.payload,
			imported_at = CURRENT_TIMESTAMP
	`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return res, fmt.Errorf("preparing statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, it := range items {
		id := it.ID(idField)
		iv, _, err := item.IntervalOf(it, fields, s.loc)
		if err != nil {
			res.Rejected = append(res.Rejected, Rejected{Index: i, ID: id, Err: err})
			continue
		}
		payload, err := json.Marshal(it)
		if err != nil {
			res.Rejected = append(res.Rejected, Rejected{Index: i, ID: id, Err: fmt.Errorf("encoding item: %w", err)})
			continue
		}

		var itemID any
		if id != "" {
			itemID = id
		}
		if _, err := stmt.ExecContext(ctx,
			itemID,
			iv.Start.UTC().Format(timeLayout),
			iv.End.UTC().Format(timeLayout),
			string(payload),
		); err != nil {
			return ImportResult{}, fmt.Errorf("inserting item %d: %w", i, err)
		}
		res.Imported++
	}

	if err := tx.Commit(); err != nil {
		return ImportResult{}, fmt.Errorf("committing transaction: %w", err)
	}

	return res, nil
}

// ListItems returns the stored items whose interval intersects [start, end],
// in import order.
func (s *SQLite) ListItems(ctx context.Context, start, end time.Time) ([]item.Item, error) {
	query := `
		SELECT payload
		FROM items
		WHERE start_at <= ? AND end_at >= ?
		ORDER BY position
	`

	rows, err := s.db.QueryContext(ctx, query, end.UTC().Format(timeLayout), start.UTC().Format(timeLayout))
	if err != nil {
		return nil, fmt.Errorf("querying items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []item.Item
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		var it item.Item
		if err := json.Unmarshal([]byte(payload), &it); err != nil {
			return nil, fmt.Errorf("decoding item: %w", err)
		}
		items = append(items, it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating items: %w", err)
	}

	return items, nil
}

// Count returns the number of stored items.
func (s *SQLite) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting items: %w", err)
	}
	return n, nil
}

// Clear removes every stored item.
func (s *SQLite) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM items`); err != nil {
		return fmt.Errorf("clearing items: %w", err)
	}
	return nil
}

// Close releases database resources.
func (s *SQLite) Close() error {
	return s.db.Close()
}
