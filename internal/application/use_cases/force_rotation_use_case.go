package use_cases

import (
	"context"

	"addrpool/internal/application/dto"
	portsin "addrpool/internal/application/ports/in"
	apperrors "addrpool/internal/shared_kernel/errors"
)

type forceRotationUseCase struct {
	manager *PoolManager
}

func NewForceRotationUseCase(manager *PoolManager) portsin.ForceRotationUseCase {
	return &forceRotationUseCase{manager: manager}
}

func (u *forceRotationUseCase) Execute(ctx context.Context, _ dto.ForceRotationCommand) (dto.ForceRotationOutput, *apperrors.AppError) {
	if u.manager == nil {
		return dto.ForceRotationOutput{}, apperrors.NewInternal("pool_manager_missing", "pool manager is required", nil)
	}

	return u.manager.ForceRotation(ctx)
}
