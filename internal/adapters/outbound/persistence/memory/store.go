package memory

import (
	"context"
	"sync"

	"addrpool/internal/adapters/outbound/persistence/record"
	portsout "addrpool/internal/application/ports/out"
	"addrpool/internal/domain/entities"
	apperrors "addrpool/internal/shared_kernel/errors"
)

// Store keeps encoded records in process memory. Records go through the same
// codec as the durable stores so callers never share slices with it.
type Store struct {
	mu      sync.RWMutex
	records map[string][]byte
}

var _ portsout.PoolStateStore = (*Store)(nil)

func NewStore() *Store {
	return &Store{records: make(map[string][]byte)}
}

func (s *Store) Get(_ context.Context, key string) (entities.PoolState, bool, *apperrors.AppError) {
	s.mu.RLock()
	raw, ok := s.records[key]
	s.mu.RUnlock()
	if !ok {
		return entities.PoolState{}, false, nil
	}

	state, appErr := record.Decode(raw)
	if appErr != nil {
		return entities.PoolState{}, false, appErr
	}
	return state, true, nil
}

func (s *Store) Put(_ context.Context, key string, state entities.PoolState) *apperrors.AppError {
	encoded, appErr := record.Encode(state)
	if appErr != nil {
		return appErr
	}

	s.mu.Lock()
	s.records[key] = encoded
	s.mu.Unlock()
	return nil
}

func (s *Store) Delete(_ context.Context, key string) *apperrors.AppError {
	s.mu.Lock()
	delete(s.records, key)
	s.mu.Unlock()
	return nil
}
