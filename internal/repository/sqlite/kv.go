package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/msomdec/photolog/internal/domain"
)

// kvStore implements domain.KeyValueStore using a single SQLite table.
type kvStore struct {
	db *sql.DB
}

func (s *kvStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM kv_entries WHERE key = ?", key,
	).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get value: %w", err)
	}
	return value, nil
}

func (s *kvStore) Set(ctx context.Context, key string, value []byte) error {
	// Wholesale overwrite, never a merge.
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv_entries (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set value: %w", err)
	}
	return nil
}
