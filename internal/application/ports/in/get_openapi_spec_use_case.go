package in

import (
	"context"

	"addrpool/internal/application/dto"
	apperrors "addrpool/internal/shared_kernel/errors"
)

// GetOpenAPISpecUseCase returns the pool API document served under /swagger.
type GetOpenAPISpecUseCase interface {
	Execute(ctx context.Context, query dto.GetOpenAPISpecQuery) (dto.OpenAPISpecOutput, *apperrors.AppError)
}
