package in

import (
	"context"

	"addrpool/internal/application/dto"
	apperrors "addrpool/internal/shared_kernel/errors"
)

type GetPoolStatsUseCase interface {
	Execute(ctx context.Context, query dto.GetPoolStatsQuery) (dto.PoolStatsOutput, *apperrors.AppError)
}
