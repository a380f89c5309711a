//go:build !integration

package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"addrpool/internal/application/dto"
	"addrpool/internal/application/use_cases"
	apperrors "addrpool/internal/shared_kernel/errors"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

type stubCurrentAddress struct {
	output dto.CurrentAddressOutput
	err    *apperrors.AppError
	calls  int
}

func (s *stubCurrentAddress) Execute(context.Context, dto.GetCurrentAddressQuery) (dto.CurrentAddressOutput, *apperrors.AppError) {
	s.calls++
	return s.output, s.err
}

type stubPoolStats struct {
	output dto.PoolStatsOutput
	err    *apperrors.AppError
}

func (s *stubPoolStats) Execute(context.Context, dto.GetPoolStatsQuery) (dto.PoolStatsOutput, *apperrors.AppError) {
	return s.output, s.err
}

type stubForceRotation struct {
	output dto.ForceRotationOutput
	err    *apperrors.AppError
}

func (s *stubForceRotation) Execute(context.Context, dto.ForceRotationCommand) (dto.ForceRotationOutput, *apperrors.AppError) {
	return s.output, s.err
}

type stubClearPool struct {
	err   *apperrors.AppError
	calls int
}

func (s *stubClearPool) Execute(context.Context, dto.ClearPoolCommand) (dto.ClearPoolOutput, *apperrors.AppError) {
	s.calls++
	return dto.ClearPoolOutput{PoolKey: "pool:x"}, s.err
}

func TestHealthControllerGetHealth(t *testing.T) {
	logger, _ := test.NewNullLogger()
	controller := NewHealthController(use_cases.NewGetHealthUseCase(), logger)

	rec := httptest.NewRecorder()
	controller.GetHealth(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAddressPoolControllerGetCurrentAddress(t *testing.T) {
	logger, _ := test.NewNullLogger()
	current := &stubCurrentAddress{output: dto.CurrentAddressOutput{
		Address:         "bc1qcr8te4kr609gcawutmrza0j4xv80jy8z306fyu",
		AddressStandard: "p2wpkh",
		PoolKey:         "pool:x",
	}}
	controller := NewAddressPoolController(AddressPoolUseCases{GetCurrentAddress: current}, logger)

	rec := httptest.NewRecorder()
	controller.GetCurrentAddress(rec, httptest.NewRequest(http.MethodGet, "/v1/address", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, "bc1qcr8te4kr609gcawutmrza0j4xv80jy8z306fyu", payload["address"])
	require.Equal(t, "p2wpkh", payload["address_standard"])
}

func TestAddressPoolControllerMapsErrorTypes(t *testing.T) {
	tests := []struct {
		name   string
		err    *apperrors.AppError
		status int
		level  logrus.Level
	}{
		{
			name:   "store write failure",
			err:    apperrors.NewInternal(apperrors.CodeStoreWrite, "failed to persist pool state", nil),
			status: http.StatusInternalServerError,
			level:  logrus.ErrorLevel,
		},
		{
			name:   "configuration error",
			err:    apperrors.NewConfiguration("extended public key is required", nil),
			status: http.StatusBadRequest,
			level:  logrus.WarnLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, hook := test.NewNullLogger()
			controller := NewAddressPoolController(AddressPoolUseCases{
				GetCurrentAddress: &stubCurrentAddress{err: tt.err},
			}, logger)

			rec := httptest.NewRecorder()
			controller.GetCurrentAddress(rec, httptest.NewRequest(http.MethodGet, "/v1/address", nil))

			require.Equal(t, tt.status, rec.Code)
			var payload errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
			require.Equal(t, tt.err.Code, payload.Error.Code)
			require.Equal(t, tt.level, hook.LastEntry().Level)
		})
	}
}

func TestAddressPoolControllerForceRotationServesRotatedAddress(t *testing.T) {
	logger, _ := test.NewNullLogger()
	current := &stubCurrentAddress{output: dto.CurrentAddressOutput{Address: "bc1qnext", Rotated: true}}
	controller := NewAddressPoolController(AddressPoolUseCases{
		GetCurrentAddress: current,
		ForceRotation:     &stubForceRotation{output: dto.ForceRotationOutput{PoolKey: "pool:x", Rewound: true}},
	}, logger)

	rec := httptest.NewRecorder()
	controller.ForceRotation(rec, httptest.NewRequest(http.MethodPost, "/v1/pool/rotation", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, current.calls)

	var payload forceRotationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.True(t, payload.Rotation.Rewound)
	require.True(t, payload.Current.Rotated)
	require.Equal(t, "bc1qnext", payload.Current.Address)
}

func TestAddressPoolControllerForceRotationStopsOnError(t *testing.T) {
	logger, _ := test.NewNullLogger()
	current := &stubCurrentAddress{}
	controller := NewAddressPoolController(AddressPoolUseCases{
		GetCurrentAddress: current,
		ForceRotation: &stubForceRotation{
			err: apperrors.NewInternal(apperrors.CodeStoreWrite, "failed to persist pool state", nil),
		},
	}, logger)

	rec := httptest.NewRecorder()
	controller.ForceRotation(rec, httptest.NewRequest(http.MethodPost, "/v1/pool/rotation", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Zero(t, current.calls)
}

func TestAddressPoolControllerStatsAndClear(t *testing.T) {
	logger, _ := test.NewNullLogger()
	clearPool := &stubClearPool{}
	controller := NewAddressPoolController(AddressPoolUseCases{
		GetPoolStats: &stubPoolStats{output: dto.PoolStatsOutput{PoolKey: "pool:x", PoolSize: 5, Entries: []dto.PoolEntryOutput{}}},
		ClearPool:    clearPool,
	}, logger)

	rec := httptest.NewRecorder()
	controller.GetPoolStats(rec, httptest.NewRequest(http.MethodGet, "/v1/pool/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"pool_size":5`)

	rec = httptest.NewRecorder()
	controller.ClearPool(rec, httptest.NewRequest(http.MethodDelete, "/v1/pool", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, 1, clearPool.calls)
}
