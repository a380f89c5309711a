package out

import (
	"context"

	"addrpool/internal/application/dto"
	apperrors "addrpool/internal/shared_kernel/errors"
)

type ActivityOracle interface {
	CheckActivity(ctx context.Context, address string) (dto.ActivityReport, *apperrors.AppError)
}
