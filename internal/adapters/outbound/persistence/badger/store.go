package dbbadger

import (
	"context"
	"encoding/json"
	stderrors "errors"

	"addrpool/internal/adapters/outbound/persistence/record"
	portsout "addrpool/internal/application/ports/out"
	"addrpool/internal/domain/entities"
	apperrors "addrpool/internal/shared_kernel/errors"

	"github.com/dgraph-io/badger/v3"
	"github.com/dgraph-io/badger/v3/options"
	"github.com/sirupsen/logrus"
	"github.com/timshannon/badgerhold/v4"
)

// Store is an embedded PoolStateStore backed by badgerhold. Values use the
// shared record encoding so a data directory holds the same JSON documents as
// the other backends.
type Store struct {
	db *badgerhold.Store
}

var _ portsout.PoolStateStore = (*Store)(nil)

// NewStore opens (or creates) the store under dataDir. An empty dataDir keeps
// everything in memory.
func NewStore(dataDir string, logger logrus.FieldLogger) (*Store, error) {
	opts := badger.DefaultOptions(dataDir)
	if dataDir == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Compression = options.ZSTD
	if logger != nil {
		opts.Logger = logger.WithField("component", "badger")
	} else {
		opts.Logger = nil
	}

	db, err := badgerhold.Open(badgerhold.Options{
		Encoder:          encode,
		Decoder:          decode,
		SequenceBandwith: 100,
		Options:          opts,
	})
	if err != nil {
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Get(_ context.Context, key string) (entities.PoolState, bool, *apperrors.AppError) {
	state := entities.PoolState{}
	err := s.db.Get(key, &state)
	if stderrors.Is(err, badgerhold.ErrNotFound) {
		return entities.PoolState{}, false, nil
	}
	if err != nil {
		return entities.PoolState{}, false, apperrors.NewInternal(
			apperrors.CodeStoreRead,
			"failed to read pool state",
			map[string]any{"error": err.Error(), "pool_key": key},
		)
	}

	return state, true, nil
}

func (s *Store) Put(_ context.Context, key string, state entities.PoolState) *apperrors.AppError {
	if err := s.db.Upsert(key, state); err != nil {
		return apperrors.NewInternal(
			apperrors.CodeStoreWrite,
			"failed to write pool state",
			map[string]any{"error": err.Error(), "pool_key": key},
		)
	}

	return nil
}

func (s *Store) Delete(_ context.Context, key string) *apperrors.AppError {
	err := s.db.Delete(key, entities.PoolState{})
	if err != nil && !stderrors.Is(err, badgerhold.ErrNotFound) {
		return apperrors.NewInternal(
			apperrors.CodeStoreDelete,
			"failed to delete pool state",
			map[string]any{"error": err.Error(), "pool_key": key},
		)
	}

	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// encode routes pool states through the record codec. badgerhold also
// encodes keys with it; those stay plain JSON.
func encode(value interface{}) ([]byte, error) {
	var state entities.PoolState
	switch typed := value.(type) {
	case entities.PoolState:
		state = typed
	case *entities.PoolState:
		state = *typed
	default:
		return json.Marshal(value)
	}

	raw, appErr := record.Encode(state)
	if appErr != nil {
		return nil, appErr
	}
	return raw, nil
}

func decode(data []byte, value interface{}) error {
	target, ok := value.(*entities.PoolState)
	if !ok {
		return json.Unmarshal(data, value)
	}

	state, appErr := record.Decode(data)
	if appErr != nil {
		return appErr
	}
	*target = state
	return nil
}
