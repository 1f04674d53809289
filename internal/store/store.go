// Package store persists analysis records in append-only per-category logs.
//
// Every category in domain.Categories owns exactly one log. A record's index
// in its log is assigned at append time and never changes, so paginated
// reads are stable and idempotent between writes. Records are never updated
// or deleted. Three backends share the same contract: an in-memory map, Redis
// lists and a SQL table (SQLite or PostgreSQL).
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/ahrav/go-gaucho/internal/domain"
)

// CategoryStore is the category-keyed append-only record log.
type CategoryStore interface {
	// Append adds rec to the end of category's log and returns its index.
	Append(ctx context.Context, category domain.Category, rec domain.AnalysisRecord) (int, error)

	// Read returns the clamped window [start, start+count) of category's log.
	// Pagination parameters never cause an error; see domain.Window.
	Read(ctx context.Context, category domain.Category, start, count int) (domain.Page, error)
}

// Sentinel errors for store operations.
var (
	// ErrUnknownDriver indicates an unsupported store driver in configuration.
	ErrUnknownDriver = errors.New("unknown store driver")

	// ErrCorruptRecord indicates a stored record that could not be decoded.
	ErrCorruptRecord = errors.New("corrupt stored record")
)

// checkCategory rejects categories outside the closed set. Callers resolve
// user-facing keys before reaching the store.
func checkCategory(c domain.Category) error {
	for _, known := range domain.Categories() {
		if c == known {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", domain.ErrUnknownCategory, string(c))
}
