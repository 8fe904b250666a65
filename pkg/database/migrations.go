package database

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect/sql"
)

// CreateGINIndexes creates the full-text search GIN index on
// unified_messages.content, used by the Store (C1) to back free-text
// filtering in the Review API without shipping a search engine.
func CreateGINIndexes(ctx context.Context, driver *sql.Driver) error {
	db := driver.DB()

	_, err := db.ExecContext(ctx,
		`CREATE INDEX IF NOT EXISTS idx_unified_messages_content_gin
		ON unified_messages USING gin(to_tsvector('english', content))`)
	if err != nil {
		return fmt.Errorf("failed to create content GIN index: %w", err)
	}

	return nil
}
