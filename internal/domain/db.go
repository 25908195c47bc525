package domain

import "context"

// Database defines lifecycle operations for the underlying storage backend.
// Each implementation owns its own migration files and strategy, ensuring
// the entire backend is swappable. Migrate must complete before any
// KeyValueStore call is issued.
type Database interface {
	Migrate(ctx context.Context) error
	Close() error
}
