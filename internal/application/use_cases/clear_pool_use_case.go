package use_cases

import (
	"context"

	"addrpool/internal/application/dto"
	portsin "addrpool/internal/application/ports/in"
	apperrors "addrpool/internal/shared_kernel/errors"
)

type clearPoolUseCase struct {
	manager *PoolManager
}

func NewClearPoolUseCase(manager *PoolManager) portsin.ClearPoolUseCase {
	return &clearPoolUseCase{manager: manager}
}

func (u *clearPoolUseCase) Execute(ctx context.Context, _ dto.ClearPoolCommand) (dto.ClearPoolOutput, *apperrors.AppError) {
	if u.manager == nil {
		return dto.ClearPoolOutput{}, apperrors.NewInternal("pool_manager_missing", "pool manager is required", nil)
	}

	return u.manager.ClearCache(ctx)
}
