package in

import (
	"context"

	"addrpool/internal/application/dto"
	apperrors "addrpool/internal/shared_kernel/errors"
)

type ClearPoolUseCase interface {
	Execute(ctx context.Context, command dto.ClearPoolCommand) (dto.ClearPoolOutput, *apperrors.AppError)
}
