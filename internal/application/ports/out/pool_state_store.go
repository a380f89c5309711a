package out

import (
	"context"

	"addrpool/internal/domain/entities"
	apperrors "addrpool/internal/shared_kernel/errors"
)

// PoolStateStore persists one whole PoolState per pool key. Put replaces the
// record atomically; there is no conditional write.
type PoolStateStore interface {
	Get(ctx context.Context, key string) (entities.PoolState, bool, *apperrors.AppError)
	Put(ctx context.Context, key string, state entities.PoolState) *apperrors.AppError
	Delete(ctx context.Context, key string) *apperrors.AppError
}
