// internal/store/memory.go
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"tradeboard/internal/models"
)

// MemoryStore implements Store in memory with the same predicate and cursor
// semantics as the real backends. Used in tests and local development.
type MemoryStore struct {
	mu   sync.Mutex
	rows []models.JobPosting

	// FailNextFetch, when set, is returned (wrapped in ErrStoreUnavailable)
	// by the next FetchPage call and then cleared.
	FailNextFetch error
}

func NewMemory() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Backend() string { return "memory" }

func (s *MemoryStore) Ping(ctx context.Context) error { return nil }

func (s *MemoryStore) Insert(ctx context.Context, p models.JobPosting) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID = uuid.NewString()
	s.rows = append(s.rows, p)
	return p.ID, nil
}

func (s *MemoryStore) FetchPage(ctx context.Context, q NativeQuery, startAfter string, limit int) ([]models.JobPosting, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailNextFetch != nil {
		err := s.FailNextFetch
		s.FailNextFetch = nil
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	var cursor *models.JobPosting
	if startAfter != "" {
		for i := range s.rows {
			if s.rows[i].ID == startAfter {
				cursor = &s.rows[i]
				break
			}
		}
		if cursor == nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidCursor, startAfter)
		}
	}

	matched := []models.JobPosting{}
	for _, row := range s.rows {
		if matchesNative(q, row) {
			matched = append(matched, row)
		}
	}

	// Global sort order: timestamp descending, identity descending tie-break.
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].Timestamp.Equal(matched[j].Timestamp) {
			return matched[i].Timestamp.After(matched[j].Timestamp)
		}
		return matched[i].ID > matched[j].ID
	})

	out := []models.JobPosting{}
	for _, row := range matched {
		if cursor != nil && !sortsAfter(row, *cursor) {
			continue
		}
		out = append(out, row)
		if len(out) == limit {
			break
		}
	}

	return out, nil
}

func (s *MemoryStore) GetByID(ctx context.Context, id string) (models.JobPosting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, row := range s.rows {
		if row.ID == id {
			return row, nil
		}
	}
	return models.JobPosting{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, row := range s.rows {
		if row.ID == id {
			s.rows = append(s.rows[:i], s.rows[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}

func matchesNative(q NativeQuery, p models.JobPosting) bool {
	if q.CityLower != "" && p.CityLower != q.CityLower {
		return false
	}
	if len(q.SkillsAnyOf) > 0 {
		found := false
		for _, want := range q.SkillsAnyOf {
			for _, have := range p.Skills {
				if want == have {
					found = true
					break
				}
			}
		}
		if !found {
			return false
		}
	}
	if !q.PostedAfter.IsZero() && p.Timestamp.Before(q.PostedAfter) {
		return false
	}
	return true
}

// sortsAfter reports whether row comes strictly after cursor in the global
// descending order.
func sortsAfter(row, cursor models.JobPosting) bool {
	if !row.Timestamp.Equal(cursor.Timestamp) {
		return row.Timestamp.Before(cursor.Timestamp)
	}
	return row.ID < cursor.ID
}
