package in

import (
	"context"

	"addrpool/internal/application/dto"
	apperrors "addrpool/internal/shared_kernel/errors"
)

// GetHealthUseCase backs the /healthz liveness probe. It does not touch the
// pool store or the activity oracle.
type GetHealthUseCase interface {
	Execute(ctx context.Context, command dto.GetHealthCommand) (dto.HealthOutput, *apperrors.AppError)
}
