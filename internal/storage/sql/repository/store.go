// Package repository implements the task-storage persistence layer on
// database/sql. Positions are renumbered transactionally so every list's
// live rows always hold a dense 0..n-1 ordering. Deletes are soft: rows get
// a deleted_at stamp and are purged later by the cleanup job.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hallgrim/dayplan/internal/domain"
)

// List is a stored list row.
type List struct {
	ID        string
	Title     string
	CreatedAt time.Time
}

// Item is a stored item row.
type Item struct {
	ID         string
	ListID     string
	Text       string
	Completed  bool
	Priority   int
	DueAt      *time.Time
	Position   int
	Recurring  bool
	Recurrence *domain.RecurrencePattern
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Version    int
}

// Position is one entry of a batch position update.
type Position struct {
	ID       string
	Position int
}

// Store is the SQL-backed repository.
type Store struct {
	db *sql.DB
}

// NewStore wraps an open database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// DB returns the underlying handle, for maintenance jobs.
func (s *Store) DB() *sql.DB { return s.db }

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

const itemColumns = `id, list_id, text, completed, priority, due_at, position, recurring, recurrence, created_at, updated_at, version`

// CreateList inserts a new list.
func (s *Store) CreateList(ctx context.Context, list List) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO lists (id, title, created_at) VALUES ($1, $2, $3)`,
		list.ID, list.Title, encodeTime(list.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to create list: %w", err)
	}
	return nil
}

// GetList returns the list row and its live items in position order.
func (s *Store) GetList(ctx context.Context, id string) (List, []Item, error) {
	var list List
	var createdAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, created_at FROM lists WHERE id = $1`, id).
		Scan(&list.ID, &list.Title, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return List{}, nil, domain.ErrListNotFound
	}
	if err != nil {
		return List{}, nil, fmt.Errorf("failed to get list: %w", err)
	}
	if list.CreatedAt, err = decodeTime(createdAt); err != nil {
		return List{}, nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items
		 WHERE list_id = $1 AND deleted_at IS NULL
		 ORDER BY position`, id)
	if err != nil {
		return List{}, nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return List{}, nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return List{}, nil, fmt.Errorf("failed to iterate items: %w", err)
	}
	return list, items, nil
}

// GetItem returns one live item.
func (s *Store) GetItem(ctx context.Context, listID, itemID string) (Item, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items
		 WHERE id = $1 AND list_id = $2 AND deleted_at IS NULL`, itemID, listID)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Item{}, domain.ErrItemNotFound
	}
	return item, err
}

// CreateItems appends the items to the tail of the list inside one
// transaction, assigning consecutive positions.
func (s *Store) CreateItems(ctx context.Context, listID string, items []Item) ([]Item, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM lists WHERE id = $1)`, listID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check list: %w", err)
	}
	if !exists {
		return nil, domain.ErrListNotFound
	}

	var next int
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position) + 1, 0) FROM items
		 WHERE list_id = $1 AND deleted_at IS NULL`, listID).Scan(&next); err != nil {
		return nil, fmt.Errorf("failed to compute tail position: %w", err)
	}

	out := make([]Item, 0, len(items))
	for i, item := range items {
		item.ListID = listID
		item.Position = next + i
		item.Version = 1
		recurrence, err := encodeRecurrence(item.Recurrence)
		if err != nil {
			return nil, err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO items (`+itemColumns+`)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			item.ID, item.ListID, item.Text, item.Completed, item.Priority,
			encodeNullTime(item.DueAt), item.Position, item.Recurring, recurrence,
			encodeTime(item.CreatedAt), encodeTime(item.UpdatedAt), item.Version)
		if err != nil {
			return nil, fmt.Errorf("failed to insert item: %w", err)
		}
		out = append(out, item)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return out, nil
}

// UpdateItem replaces the item with full-record semantics and bumps the
// version counter. The stored version must match item.Version; a stale
// write fails with ErrVersionConflict. Returns the canonical row.
func (s *Store) UpdateItem(ctx context.Context, item Item) (Item, error) {
	recurrence, err := encodeRecurrence(item.Recurrence)
	if err != nil {
		return Item{}, err
	}
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE items
		 SET text = $1, completed = $2, priority = $3, due_at = $4,
		     recurring = $5, recurrence = $6, updated_at = $7, version = version + 1
		 WHERE id = $8 AND list_id = $9 AND deleted_at IS NULL AND version = $10`,
		item.Text, item.Completed, item.Priority, encodeNullTime(item.DueAt),
		item.Recurring, recurrence, encodeTime(now), item.ID, item.ListID, item.Version)
	if err != nil {
		return Item{}, fmt.Errorf("failed to update item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return Item{}, fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		if _, err := s.GetItem(ctx, item.ListID, item.ID); err == nil {
			return Item{}, fmt.Errorf("%w: item %s at version %d", domain.ErrVersionConflict, item.ID, item.Version)
		}
		return Item{}, domain.ErrItemNotFound
	}
	return s.GetItem(ctx, item.ListID, item.ID)
}

// DeleteItem soft-deletes the item and renumbers the rows after it, inside
// one transaction.
func (s *Store) DeleteItem(ctx context.Context, listID, itemID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var position int
	err = tx.QueryRowContext(ctx,
		`SELECT position FROM items
		 WHERE id = $1 AND list_id = $2 AND deleted_at IS NULL`, itemID, listID).
		Scan(&position)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrItemNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to locate item: %w", err)
	}

	now := encodeTime(time.Now().UTC())
	if _, err := tx.ExecContext(ctx,
		`UPDATE items SET deleted_at = $1 WHERE id = $2`, now, itemID); err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE items SET position = position - 1
		 WHERE list_id = $1 AND deleted_at IS NULL AND position > $2`,
		listID, position); err != nil {
		return fmt.Errorf("failed to renumber items: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// UpdatePositions applies a batch ordering in one transaction. Unknown IDs
// fail the whole batch.
func (s *Store) UpdatePositions(ctx context.Context, listID string, positions []Position) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, p := range positions {
		res, err := tx.ExecContext(ctx,
			`UPDATE items SET position = $1
			 WHERE id = $2 AND list_id = $3 AND deleted_at IS NULL`,
			p.Position, p.ID, listID)
		if err != nil {
			return fmt.Errorf("failed to update position: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read position result: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("%w: %s", domain.ErrItemNotFound, p.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// MoveItemDate moves the item's due date to the target calendar date,
// keeping the stored wall-clock time. Items without a due date land at
// midnight UTC.
func (s *Store) MoveItemDate(ctx context.Context, listID, itemID string, target domain.Date) (bool, error) {
	item, err := s.GetItem(ctx, listID, itemID)
	if err != nil {
		return false, err
	}

	loc := time.UTC
	var tod domain.TimeOfDay
	if item.DueAt != nil {
		loc = item.DueAt.Location()
		tod = domain.TimeOfDay{Hour: item.DueAt.Hour(), Minute: item.DueAt.Minute()}
	}
	moved := target.At(tod, loc)
	item.DueAt = &moved

	if _, err := s.UpdateItem(ctx, item); err != nil {
		return false, err
	}
	return true, nil
}

// MoveListDate reschedules every dated live item of the list to the target
// calendar date inside one transaction, keeping each item's stored
// wall-clock time. Undated items are untouched.
func (s *Store) MoveListDate(ctx context.Context, listID string, target domain.Date) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM lists WHERE id = $1)`, listID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check list: %w", err)
	}
	if !exists {
		return false, domain.ErrListNotFound
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT id, due_at FROM items
		 WHERE list_id = $1 AND deleted_at IS NULL AND due_at IS NOT NULL`, listID)
	if err != nil {
		return false, fmt.Errorf("failed to query items: %w", err)
	}
	type dueRow struct {
		id  string
		due time.Time
	}
	var dated []dueRow
	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			rows.Close()
			return false, fmt.Errorf("failed to scan item: %w", err)
		}
		due, err := decodeTime(raw)
		if err != nil {
			rows.Close()
			return false, err
		}
		dated = append(dated, dueRow{id: id, due: due})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return false, fmt.Errorf("failed to iterate items: %w", err)
	}

	now := encodeTime(time.Now().UTC())
	for _, row := range dated {
		tod := domain.TimeOfDay{Hour: row.due.Hour(), Minute: row.due.Minute()}
		moved := target.At(tod, row.due.Location())
		if _, err := tx.ExecContext(ctx,
			`UPDATE items
			 SET due_at = $1, updated_at = $2, version = version + 1
			 WHERE id = $3`,
			encodeNullTime(&moved), now, row.id); err != nil {
			return false, fmt.Errorf("failed to move item date: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return true, nil
}

// PurgeSoftDeleted permanently removes rows soft-deleted before the cutoff.
// Returns the number of purged rows.
func (s *Store) PurgeSoftDeleted(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM items WHERE deleted_at IS NOT NULL AND deleted_at < $1`,
		encodeTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("failed to purge items: %w", err)
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (Item, error) {
	var item Item
	var due sql.NullString
	var recurrence sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(&item.ID, &item.ListID, &item.Text, &item.Completed,
		&item.Priority, &due, &item.Position, &item.Recurring, &recurrence,
		&createdAt, &updatedAt, &item.Version)
	if err != nil {
		return Item{}, err
	}

	if due.Valid {
		t, err := decodeTime(due.String)
		if err != nil {
			return Item{}, err
		}
		item.DueAt = &t
	}
	if recurrence.Valid && recurrence.String != "" {
		var p domain.RecurrencePattern
		if err := json.Unmarshal([]byte(recurrence.String), &p); err != nil {
			return Item{}, fmt.Errorf("failed to decode recurrence: %w", err)
		}
		item.Recurrence = &p
	}
	if item.CreatedAt, err = decodeTime(createdAt); err != nil {
		return Item{}, err
	}
	if item.UpdatedAt, err = decodeTime(updatedAt); err != nil {
		return Item{}, err
	}
	return item, nil
}

func encodeRecurrence(p *domain.RecurrencePattern) (sql.NullString, error) {
	if p == nil {
		return sql.NullString{}, nil
	}
	buf, err := json.Marshal(p)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to encode recurrence: %w", err)
	}
	return sql.NullString{String: string(buf), Valid: true}, nil
}

func encodeTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func encodeNullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(time.RFC3339Nano), Valid: true}
}

func decodeTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse stored time %q: %w", s, err)
	}
	return t, nil
}
