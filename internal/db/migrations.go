package db

import "fmt"

// migrate runs database migrations.
func (s *SQLite) migrate() error {
	query := `
		CREATE TABLE IF NOT EXISTS items (
			position    INTEGER PRIMARY KEY AUTOINCREMENT,
			item_id     TEXT UNIQUE,
			start_at    TEXT NOT NULL,
			end_at      TEXT NOT NULL,
			payload     TEXT NOT NULL,
			imported_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_items_start ON items(start_at);
		CREATE INDEX IF NOT EXISTS idx_items_end ON items(end_at);
	`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("creating items table: %w", err)
	}

	return nil
}
