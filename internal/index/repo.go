package index

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/starford/jera/internal/checksum"
	"github.com/starford/jera/internal/models"
)

// TodoRow represents a row in the todos table.
type TodoRow struct {
	ID            string
	UID           string
	Title         string
	Time          string
	Tags          []string
	IsCloudSynced bool
	Position      int
	UpdatedAt     time.Time
}

// Item converts the row into a list entry. Selection is never persisted.
func (r TodoRow) Item() models.TodoItem {
	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}
	return models.TodoItem{
		ID:            r.ID,
		Title:         r.Title,
		Time:          r.Time,
		Tags:          tags,
		IsCloudSynced: r.IsCloudSynced,
		UID:           r.UID,
	}
}

// RowFromItem builds a row for item at the given list position.
func RowFromItem(item models.TodoItem, position int) TodoRow {
	return TodoRow{
		ID:            item.ID,
		UID:           item.UID,
		Title:         item.Title,
		Time:          item.Time,
		Tags:          item.Tags,
		IsCloudSynced: item.IsCloudSynced,
		Position:      position,
		UpdatedAt:     time.Now(),
	}
}

// SearchResult represents one search hit.
type SearchResult struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// ListTodos returns every todo in list order.
func (db *DB) ListTodos(ctx context.Context) ([]TodoRow, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, uid, title, time, tags, is_cloud_synced, position, updated_at
		FROM todos
		ORDER BY position, rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("index: list todos: %w", err)
	}
	defer rows.Close()

	var out []TodoRow
	for rows.Next() {
		var r TodoRow
		var tagsJSON string
		if err := rows.Scan(&r.ID, &r.UID, &r.Title, &r.Time, &tagsJSON, &r.IsCloudSynced, &r.Position, &r.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(tagsJSON), &r.Tags); err != nil {
			return nil, fmt.Errorf("index: decode tags of %s: %w", r.ID, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// UpsertTodo inserts or replaces the metadata of a todo, leaving its body untouched.
// row.Position is only used on insert; existing rows move through SetTodoPositions.
func (db *DB) UpsertTodo(ctx context.Context, row TodoRow) error {
	return db.upsert(ctx, row, nil)
}

// UpsertTodoWithBody writes metadata and body in one transaction.
func (db *DB) UpsertTodoWithBody(ctx context.Context, row TodoRow, body string) error {
	return db.upsert(ctx, row, &body)
}

func (db *DB) upsert(ctx context.Context, row TodoRow, body *string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	tags := row.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, _ := json.Marshal(tags)
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = time.Now()
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO todos (id, uid, title, time, tags, is_cloud_synced, position, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			uid             = excluded.uid,
			title           = excluded.title,
			time            = excluded.time,
			tags            = excluded.tags,
			is_cloud_synced = excluded.is_cloud_synced,
			updated_at      = excluded.updated_at
	`, row.ID, row.UID, row.Title, row.Time, string(tagsJSON), row.IsCloudSynced, row.Position, row.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert todo: %w", err)
	}

	if body != nil {
		if _, err := tx.ExecContext(ctx, `UPDATE todos SET body = ?, checksum = ? WHERE id = ?`,
			*body, checksum.String(*body), row.ID); err != nil {
			return fmt.Errorf("index: set body: %w", err)
		}
	}

	// FTS refresh (no-op when FTS5 tag is absent).
	if err := ftsSync(tx, row.ID); err != nil {
		return err
	}

	return tx.Commit()
}

// SetBody refreshes the searchable body of an existing todo. found is false
// when no todo with that id is indexed.
func (db *DB) SetBody(ctx context.Context, id, body string) (bool, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx, `UPDATE todos SET body = ?, checksum = ? WHERE id = ?`,
		body, checksum.String(body), id)
	if err != nil {
		return false, fmt.Errorf("index: set body: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return false, nil
	}
	if err := ftsSync(tx, id); err != nil {
		return false, err
	}
	return true, tx.Commit()
}

// DeleteTodos removes every listed todo in one transaction.
func (db *DB) DeleteTodos(ctx context.Context, ids []string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, id := range ids {
		ftsDelete(tx, id)
		if _, err := tx.ExecContext(ctx, `DELETE FROM todos WHERE id = ?`, id); err != nil {
			return fmt.Errorf("index: delete todo %s: %w", id, err)
		}
	}
	return tx.Commit()
}

// SetTodoPositions rewrites positions so that ids[i] sits at position i.
func (db *DB) SetTodoPositions(ctx context.Context, ids []string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `UPDATE todos SET position = ? WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("index: prepare position update: %w", err)
	}
	defer stmt.Close()
	for i, id := range ids {
		if _, err := stmt.ExecContext(ctx, i, id); err != nil {
			return fmt.Errorf("index: set position of %s: %w", id, err)
		}
	}
	return tx.Commit()
}

// GetChecksum returns the stored body checksum, or empty string if not found.
func (db *DB) GetChecksum(ctx context.Context, id string) (string, error) {
	var cs string
	err := db.conn.QueryRowContext(ctx, `SELECT checksum FROM todos WHERE id = ?`, id).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: get checksum: %w", err)
	}
	return cs, nil
}

// AllChecksums returns id → body checksum for every indexed todo.
func (db *DB) AllChecksums(ctx context.Context) (map[string]string, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT id, checksum FROM todos`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var id, cs string
		if err := rows.Scan(&id, &cs); err != nil {
			return nil, err
		}
		out[id] = cs
	}
	return out, rows.Err()
}

// ListTags returns the tag catalog in board order.
func (db *DB) ListTags(ctx context.Context) ([]models.Tag, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, title, description, is_hidden, icon
		FROM tags
		ORDER BY position, rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("index: list tags: %w", err)
	}
	defer rows.Close()

	var out []models.Tag
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.IsHidden, &t.Icon); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ReplaceTags stores tags as the full catalog, in the given order.
func (db *DB) ReplaceTags(ctx context.Context, tags []models.Tag) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM tags`); err != nil {
		return fmt.Errorf("index: clear tags: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO tags (id, title, description, is_hidden, icon, position)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("index: prepare tag insert: %w", err)
	}
	defer stmt.Close()
	for i, t := range tags {
		if _, err := stmt.ExecContext(ctx, t.ID, t.Title, t.Description, t.IsHidden, t.Icon, i); err != nil {
			return fmt.Errorf("index: insert tag %s: %w", t.ID, err)
		}
	}
	return tx.Commit()
}
