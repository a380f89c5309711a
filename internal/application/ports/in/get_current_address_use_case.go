package in

import (
	"context"

	"addrpool/internal/application/dto"
	apperrors "addrpool/internal/shared_kernel/errors"
)

type GetCurrentAddressUseCase interface {
	Execute(ctx context.Context, query dto.GetCurrentAddressQuery) (dto.CurrentAddressOutput, *apperrors.AppError)
}
