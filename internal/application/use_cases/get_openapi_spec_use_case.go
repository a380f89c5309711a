package use_cases

import (
	"context"

	"addrpool/internal/application/dto"
	portsin "addrpool/internal/application/ports/in"
	portsout "addrpool/internal/application/ports/out"
	apperrors "addrpool/internal/shared_kernel/errors"
)

// getOpenAPISpecUseCase passes the document through untouched so the served
// contract always matches api/openapi.yaml.
type getOpenAPISpecUseCase struct {
	readModel portsout.OpenAPISpecReadModel
}

func NewGetOpenAPISpecUseCase(readModel portsout.OpenAPISpecReadModel) portsin.GetOpenAPISpecUseCase {
	return &getOpenAPISpecUseCase{
		readModel: readModel,
	}
}

func (u *getOpenAPISpecUseCase) Execute(ctx context.Context, _ dto.GetOpenAPISpecQuery) (dto.OpenAPISpecOutput, *apperrors.AppError) {
	content, contentType, appErr := u.readModel.Read(ctx)
	if appErr != nil {
		return dto.OpenAPISpecOutput{}, appErr
	}

	return dto.OpenAPISpecOutput{
		Content:     content,
		ContentType: contentType,
	}, nil
}
