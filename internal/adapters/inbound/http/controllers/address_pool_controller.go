package controllers

import (
	"net/http"

	"addrpool/internal/application/dto"
	portsin "addrpool/internal/application/ports/in"

	"github.com/sirupsen/logrus"
)

type AddressPoolUseCases struct {
	GetCurrentAddress portsin.GetCurrentAddressUseCase
	GetPoolStats      portsin.GetPoolStatsUseCase
	ForceRotation     portsin.ForceRotationUseCase
	ClearPool         portsin.ClearPoolUseCase
}

type AddressPoolController struct {
	useCases AddressPoolUseCases
	log      logrus.FieldLogger
}

type forceRotationResponse struct {
	Rotation dto.ForceRotationOutput  `json:"rotation"`
	Current  dto.CurrentAddressOutput `json:"current"`
}

func NewAddressPoolController(useCases AddressPoolUseCases, logger logrus.FieldLogger) *AddressPoolController {
	return &AddressPoolController{
		useCases: useCases,
		log:      logger,
	}
}

func (c *AddressPoolController) GetCurrentAddress(w http.ResponseWriter, r *http.Request) {
	output, appErr := c.useCases.GetCurrentAddress.Execute(r.Context(), dto.GetCurrentAddressQuery{})
	if appErr != nil {
		logRequestError(c.log, r, appErr)
		writeAppError(w, appErr)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, output)
}

func (c *AddressPoolController) GetPoolStats(w http.ResponseWriter, r *http.Request) {
	output, appErr := c.useCases.GetPoolStats.Execute(r.Context(), dto.GetPoolStatsQuery{})
	if appErr != nil {
		logRequestError(c.log, r, appErr)
		writeAppError(w, appErr)
		return
	}

	writeJSON(w, http.StatusOK, output)
}

// ForceRotation rewinds the rotation clock and serves the address the
// resulting rotation selects.
func (c *AddressPoolController) ForceRotation(w http.ResponseWriter, r *http.Request) {
	rotation, appErr := c.useCases.ForceRotation.Execute(r.Context(), dto.ForceRotationCommand{})
	if appErr != nil {
		logRequestError(c.log, r, appErr)
		writeAppError(w, appErr)
		return
	}

	current, appErr := c.useCases.GetCurrentAddress.Execute(r.Context(), dto.GetCurrentAddressQuery{})
	if appErr != nil {
		logRequestError(c.log, r, appErr)
		writeAppError(w, appErr)
		return
	}

	writeJSON(w, http.StatusOK, forceRotationResponse{Rotation: rotation, Current: current})
}

func (c *AddressPoolController) ClearPool(w http.ResponseWriter, r *http.Request) {
	_, appErr := c.useCases.ClearPool.Execute(r.Context(), dto.ClearPoolCommand{})
	if appErr != nil {
		logRequestError(c.log, r, appErr)
		writeAppError(w, appErr)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
