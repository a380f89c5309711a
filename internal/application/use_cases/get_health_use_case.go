package use_cases

import (
	"context"

	"addrpool/internal/application/dto"
	portsin "addrpool/internal/application/ports/in"
	"addrpool/internal/domain/value_objects"
	apperrors "addrpool/internal/shared_kernel/errors"
)

// getHealthUseCase reports liveness only. Pool readiness is visible through
// GET /v1/pool/stats instead.
type getHealthUseCase struct{}

func NewGetHealthUseCase() portsin.GetHealthUseCase {
	return &getHealthUseCase{}
}

func (u *getHealthUseCase) Execute(_ context.Context, _ dto.GetHealthCommand) (dto.HealthOutput, *apperrors.AppError) {
	status := valueobjects.NewHealthyStatus()

	return dto.HealthOutput{
		Status: status.String(),
	}, nil
}
