package use_cases

import (
	"context"

	"addrpool/internal/application/dto"
	portsin "addrpool/internal/application/ports/in"
	apperrors "addrpool/internal/shared_kernel/errors"
)

type getPoolStatsUseCase struct {
	manager *PoolManager
}

func NewGetPoolStatsUseCase(manager *PoolManager) portsin.GetPoolStatsUseCase {
	return &getPoolStatsUseCase{manager: manager}
}

func (u *getPoolStatsUseCase) Execute(ctx context.Context, _ dto.GetPoolStatsQuery) (dto.PoolStatsOutput, *apperrors.AppError) {
	if u.manager == nil {
		return dto.PoolStatsOutput{}, apperrors.NewInternal("pool_manager_missing", "pool manager is required", nil)
	}

	return u.manager.Stats(ctx)
}
