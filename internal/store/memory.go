package store

import (
	"context"
	"sync"

	"github.com/ahrav/go-gaucho/internal/domain"
)

// MemoryStore keeps every log in process memory. It is the default for the
// CLI and for tests. Safe for concurrent use.
type MemoryStore struct {
	mu   sync.RWMutex
	logs map[domain.Category][]domain.AnalysisRecord
}

var _ CategoryStore = (*MemoryStore)(nil)

// NewMemoryStore returns an empty store with one log per category.
func NewMemoryStore() *MemoryStore {
	logs := make(map[domain.Category][]domain.AnalysisRecord, len(domain.Categories()))
	for _, c := range domain.Categories() {
		logs[c] = nil
	}
	return &MemoryStore{logs: logs}
}

// Append implements CategoryStore.
func (s *MemoryStore) Append(_ context.Context, category domain.Category, rec domain.AnalysisRecord) (int, error) {
	if err := checkCategory(category); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs[category] = append(s.logs[category], rec)
	return len(s.logs[category]) - 1, nil
}

// Read implements CategoryStore.
func (s *MemoryStore) Read(_ context.Context, category domain.Category, start, count int) (domain.Page, error) {
	if err := checkCategory(category); err != nil {
		return domain.Page{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.logs[category]
	start, end := domain.Window(len(entries), start, count)
	out := make([]domain.AnalysisRecord, end-start)
	if start < end {
		copy(out, entries[start:end])
	}
	return domain.NewPage(out, len(entries), start, end), nil
}
