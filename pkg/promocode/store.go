package promocode

import (
	"context"
	"slices"
	"sync"
)

// Store loads promo code definitions by canonical code.
// Returns ErrCodeNotFound when no such code exists.
type Store interface {
	Get(ctx context.Context, code string) (Code, error)
}

type memoryStore struct {
	mu    sync.RWMutex
	codes map[string]Code
}

// NewMemoryStore returns an in-memory Store seeded with the given codes,
// keyed by their canonical form. Intended for tests and demo configurations.
func NewMemoryStore(codes ...Code) Store {
	byCode := make(map[string]Code, len(codes))
	for _, c := range codes {
		c.AppliesTo = slices.Clone(c.AppliesTo)
		byCode[c.Code] = c
	}
	return &memoryStore{codes: byCode}
}

func (s *memoryStore) Get(ctx context.Context, code string) (Code, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.codes[code]
	if !ok {
		return Code{}, ErrCodeNotFound
	}
	c.AppliesTo = slices.Clone(c.AppliesTo)
	return c, nil
}
