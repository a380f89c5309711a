package controllers

import (
	"net/http"

	"addrpool/internal/application/dto"
	portsin "addrpool/internal/application/ports/in"

	"github.com/sirupsen/logrus"
)

type HealthController struct {
	useCase portsin.GetHealthUseCase
	log     logrus.FieldLogger
}

func NewHealthController(useCase portsin.GetHealthUseCase, logger logrus.FieldLogger) *HealthController {
	return &HealthController{
		useCase: useCase,
		log:     logger,
	}
}

func (c *HealthController) GetHealth(w http.ResponseWriter, r *http.Request) {
	output, appErr := c.useCase.Execute(r.Context(), dto.GetHealthCommand{})
	if appErr != nil {
		logRequestError(c.log, r, appErr)
		writeAppError(w, appErr)
		return
	}

	writeJSON(w, http.StatusOK, output)
}
