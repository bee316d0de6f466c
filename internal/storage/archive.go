package storage

import (
	"fmt"

	"github.com/cherepashka123/browser-pet-companion/internal/types"
)

// InsertArchiveItems adds closed tabs to the nest archive in one
// transaction. Items with an ID already present are ignored.
func (d *DB) InsertArchiveItems(items []types.ArchiveItem) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, item := range items {
		_, err := tx.Exec(
			`INSERT OR IGNORE INTO nest_archive (id, tab_id, url, title, domain, favicon, category_id, closed_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			item.ID, item.TabID, item.URL, item.Title, item.Domain,
			item.Favicon, string(item.CategoryID), item.ClosedAt,
		)
		if err != nil {
			return fmt.Errorf("insert archive item %q: %w", item.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// ListArchive returns archive items, newest first. If category is
// non-empty, only items of that category are returned.
func (d *DB) ListArchive(category types.CategoryID) ([]types.ArchiveItem, error) {
	query := `SELECT id, tab_id, url, title, domain, favicon, category_id, closed_at
		FROM nest_archive`
	var args []interface{}
	if category != "" {
		query += " WHERE category_id = ?"
		args = append(args, string(category))
	}
	query += " ORDER BY closed_at DESC, id DESC"

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query archive: %w", err)
	}
	defer rows.Close()

	var items []types.ArchiveItem
	for rows.Next() {
		var item types.ArchiveItem
		var cat string
		if err := rows.Scan(&item.ID, &item.TabID, &item.URL, &item.Title,
			&item.Domain, &item.Favicon, &cat, &item.ClosedAt); err != nil {
			return nil, fmt.Errorf("scan archive item: %w", err)
		}
		item.CategoryID = types.CategoryID(cat)
		items = append(items, item)
	}
	return items, rows.Err()
}

// RemoveArchiveItem deletes one archive item by ID.
func (d *DB) RemoveArchiveItem(id string) error {
	res, err := d.db.Exec("DELETE FROM nest_archive WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete archive item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("archive item %q not found", id)
	}
	return nil
}

// ClearArchive removes every archive item and returns how many were
// deleted.
func (d *DB) ClearArchive() (int64, error) {
	res, err := d.db.Exec("DELETE FROM nest_archive")
	if err != nil {
		return 0, fmt.Errorf("clear archive: %w", err)
	}
	return res.RowsAffected()
}
