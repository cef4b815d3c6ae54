// Package db keeps the per-session panel histories.
package db

import (
	"context"
	"fmt"

	"github.com/pro-grammer-SD/multi-tool-ai-app-farewell-to-codingal/internal/models"
)

const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// Store holds the append-only history lists of every live session. Entries
// are only ever removed as a whole list (Clear) or with the session (Drop).
type Store interface {
	Append(ctx context.Context, sessionID string, entry *models.Entry) error
	List(ctx context.Context, sessionID string, feature models.Feature) ([]models.Entry, error)
	Clear(ctx context.Context, sessionID string, feature models.Feature) error
	Drop(ctx context.Context, sessionID string) error
	Close() error
}

// Open returns the store for driver. The sqlite driver defaults to a
// private in-memory database, so nothing outlives the process.
func Open(driver, dsn string) (Store, error) {
	switch driver {
	case "", DriverMemory:
		return NewMemory(), nil
	case DriverSQLite:
		return New(dsn)
	default:
		return nil, fmt.Errorf("unknown history driver %q", driver)
	}
}
