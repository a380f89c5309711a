package use_cases

import (
	"context"

	"addrpool/internal/application/dto"
	portsin "addrpool/internal/application/ports/in"
	apperrors "addrpool/internal/shared_kernel/errors"
)

type getCurrentAddressUseCase struct {
	manager *PoolManager
}

func NewGetCurrentAddressUseCase(manager *PoolManager) portsin.GetCurrentAddressUseCase {
	return &getCurrentAddressUseCase{manager: manager}
}

func (u *getCurrentAddressUseCase) Execute(ctx context.Context, _ dto.GetCurrentAddressQuery) (dto.CurrentAddressOutput, *apperrors.AppError) {
	if u.manager == nil {
		return dto.CurrentAddressOutput{}, apperrors.NewInternal("pool_manager_missing", "pool manager is required", nil)
	}

	return u.manager.CurrentAddress(ctx)
}
