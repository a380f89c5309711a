package poolstate

import (
	"context"
	"database/sql"
	stderrors "errors"

	"addrpool/internal/adapters/outbound/persistence/record"
	portsout "addrpool/internal/application/ports/out"
	"addrpool/internal/domain/entities"
	apperrors "addrpool/internal/shared_kernel/errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Store keeps each pool as a single JSONB row. Put is an upsert of the whole
// record with no version check.
type Store struct {
	db *sql.DB
}

var _ portsout.PoolStateStore = (*Store)(nil)

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Get(ctx context.Context, key string) (entities.PoolState, bool, *apperrors.AppError) {
	const query = `
SELECT state
FROM app.pool_states
WHERE pool_key = $1
`

	var raw []byte
	err := s.db.QueryRowContext(ctx, query, key).Scan(&raw)
	if stderrors.Is(err, sql.ErrNoRows) {
		return entities.PoolState{}, false, nil
	}
	if err != nil {
		return entities.PoolState{}, false, apperrors.NewInternal(
			apperrors.CodeStoreRead,
			"failed to query pool state",
			withSQLState(map[string]any{"error": err.Error(), "pool_key": key}, err),
		)
	}

	state, appErr := record.Decode(raw)
	if appErr != nil {
		appErr.Details["pool_key"] = key
		return entities.PoolState{}, false, appErr
	}

	return state, true, nil
}

func (s *Store) Put(ctx context.Context, key string, state entities.PoolState) *apperrors.AppError {
	const query = `
INSERT INTO app.pool_states (pool_key, state)
VALUES ($1, $2::jsonb)
ON CONFLICT (pool_key) DO UPDATE
SET state = EXCLUDED.state,
    updated_at = now()
`

	encoded, appErr := record.Encode(state)
	if appErr != nil {
		return appErr
	}

	if _, err := s.db.ExecContext(ctx, query, key, string(encoded)); err != nil {
		return apperrors.NewInternal(
			apperrors.CodeStoreWrite,
			"failed to upsert pool state",
			withSQLState(map[string]any{"error": err.Error(), "pool_key": key}, err),
		)
	}

	return nil
}

func (s *Store) Delete(ctx context.Context, key string) *apperrors.AppError {
	const query = `DELETE FROM app.pool_states WHERE pool_key = $1`

	if _, err := s.db.ExecContext(ctx, query, key); err != nil {
		return apperrors.NewInternal(
			apperrors.CodeStoreDelete,
			"failed to delete pool state",
			withSQLState(map[string]any{"error": err.Error(), "pool_key": key}, err),
		)
	}

	return nil
}

func withSQLState(details map[string]any, err error) map[string]any {
	var pgErr *pgconn.PgError
	if stderrors.As(err, &pgErr) {
		details["sqlstate"] = pgErr.Code
	}
	return details
}
