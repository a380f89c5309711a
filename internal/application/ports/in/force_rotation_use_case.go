package in

import (
	"context"

	"addrpool/internal/application/dto"
	apperrors "addrpool/internal/shared_kernel/errors"
)

type ForceRotationUseCase interface {
	Execute(ctx context.Context, command dto.ForceRotationCommand) (dto.ForceRotationOutput, *apperrors.AppError)
}
