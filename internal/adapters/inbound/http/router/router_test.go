//go:build !integration

package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"addrpool/internal/adapters/inbound/http/controllers"
	"addrpool/internal/adapters/outbound/docs"
	"addrpool/internal/adapters/outbound/persistence/memory"
	"addrpool/internal/adapters/outbound/wallet/hdwallet"
	"addrpool/internal/application/dto"
	"addrpool/internal/application/use_cases"
	valueobjects "addrpool/internal/domain/value_objects"
	"addrpool/internal/infrastructure/metrics"
	apperrors "addrpool/internal/shared_kernel/errors"

	"github.com/lightningnetwork/lnd/clock"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

const (
	bip84AccountXpub = "zpub6rFR7y4Q2AijBEqTUquhVz398htDFrtymD9xYYfG1m4wAcvPhXNfE3EfH1r1ADqtfSdVCToUG868RvUUkgDKf31mGDtKsAYz2oz2AGutZYs"
	bip84Index0      = "bc1qcr8te4kr609gcawutmrza0j4xv80jy8z306fyu"
	bip84Index1      = "bc1qnjg0jd8228aq7egyzacy8cys3knf9xvrerkf9g"
)

type setOracle map[string]bool

func (o setOracle) CheckActivity(_ context.Context, address string) (dto.ActivityReport, *apperrors.AppError) {
	report := dto.ActivityReport{Address: address, ObservationSource: "test"}
	if o[address] {
		report.ConfirmedTxCount = 1
	}
	return report, nil
}

type testRouter struct {
	mux    *http.ServeMux
	clock  *clock.TestClock
	oracle setOracle
}

func newTestRouter(t *testing.T) testRouter {
	t.Helper()

	logger, _ := test.NewNullLogger()
	testClock := clock.NewTestClock(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	oracle := setOracle{}

	wallet, _, appErr := valueobjects.NewWalletConfiguration(valueobjects.WalletConfigurationInput{
		ExtendedPublicKey: bip84AccountXpub,
		DerivationPath:    "m/84'/0'/0'",
	})
	require.Nil(t, appErr)

	manager, appErr := use_cases.NewPoolManager(use_cases.PoolManagerConfig{
		Wallet:  wallet,
		Deriver: hdwallet.NewGateway(logger),
		Oracle:  oracle,
		Store:   memory.NewStore(),
		Clock:   testClock,
		Logger:  logger,
		Metrics: metrics.NewPoolMetrics(),
	})
	require.Nil(t, appErr)

	poolMetrics := metrics.NewPoolMetrics()
	openAPIUseCase := use_cases.NewGetOpenAPISpecUseCase(docs.NewFileOpenAPISpecReadModel(writeTempOpenAPISpec(t)))

	mux := New(Dependencies{
		HealthController:  controllers.NewHealthController(use_cases.NewGetHealthUseCase(), logger),
		SwaggerController: controllers.NewSwaggerController(openAPIUseCase, logger),
		AddressPoolController: controllers.NewAddressPoolController(controllers.AddressPoolUseCases{
			GetCurrentAddress: use_cases.NewGetCurrentAddressUseCase(manager),
			GetPoolStats:      use_cases.NewGetPoolStatsUseCase(manager),
			ForceRotation:     use_cases.NewForceRotationUseCase(manager),
			ClearPool:         use_cases.NewClearPoolUseCase(manager),
		}, logger),
		MetricsHandler: poolMetrics.Handler(),
	})

	return testRouter{mux: mux, clock: testClock, oracle: oracle}
}

func (r testRouter) do(method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.mux.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestRouterHealthAndSwaggerRoutes(t *testing.T) {
	r := newTestRouter(t)

	t.Run("healthz returns 200", func(t *testing.T) {
		rec := r.do(http.MethodGet, "/healthz")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), `"status":"ok"`)
	})

	t.Run("swagger root redirects to index", func(t *testing.T) {
		rec := r.do(http.MethodGet, "/swagger")
		require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
		require.Equal(t, "/swagger/index.html", rec.Header().Get("Location"))
	})

	t.Run("swagger UI index is served", func(t *testing.T) {
		rec := r.do(http.MethodGet, "/swagger/index.html")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	})

	t.Run("openapi document is served", func(t *testing.T) {
		rec := r.do(http.MethodGet, "/swagger/openapi.yaml")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), "openapi: 3.0.3")
	})

	t.Run("metrics are exposed", func(t *testing.T) {
		rec := r.do(http.MethodGet, "/metrics")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), "addrpool_pool_rotations_total")
	})
}

func TestRouterServesAndRotatesAddresses(t *testing.T) {
	r := newTestRouter(t)

	rec := r.do(http.MethodGet, "/v1/address")
	require.Equal(t, http.StatusOK, rec.Code)

	var current dto.CurrentAddressOutput
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &current))
	require.Equal(t, bip84Index0, current.Address)
	require.True(t, current.Initialized)

	r.oracle[bip84Index1] = true

	rec = r.do(http.MethodPost, "/v1/pool/rotation")
	require.Equal(t, http.StatusOK, rec.Code)

	var rotated struct {
		Rotation dto.ForceRotationOutput  `json:"rotation"`
		Current  dto.CurrentAddressOutput `json:"current"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rotated))
	require.True(t, rotated.Rotation.Rewound)
	require.True(t, rotated.Current.Rotated)
	require.Equal(t, uint32(2), rotated.Current.DerivationIndex)
	require.NotEqual(t, bip84Index1, rotated.Current.Address)

	rec = r.do(http.MethodGet, "/v1/pool/stats")
	require.Equal(t, http.StatusOK, rec.Code)

	var stats dto.PoolStatsOutput
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	require.Equal(t, 5, stats.PoolSize)
	require.Len(t, stats.Entries, 5)
	require.Equal(t, uint32(6), stats.NextDerivationIndex)
	require.Equal(t, rotated.Current.Address, stats.CurrentAddress)
	for _, entry := range stats.Entries {
		require.NotEqual(t, bip84Index1, entry.Address)
	}
	require.Equal(t, bip84Index0, stats.Entries[0].Address)
}

func TestRouterClearPoolResetsState(t *testing.T) {
	r := newTestRouter(t)

	require.Equal(t, http.StatusOK, r.do(http.MethodGet, "/v1/address").Code)
	require.Equal(t, http.StatusNoContent, r.do(http.MethodDelete, "/v1/pool").Code)

	rec := r.do(http.MethodGet, "/v1/pool/stats")
	require.Equal(t, http.StatusOK, rec.Code)

	var stats dto.PoolStatsOutput
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	require.False(t, stats.Initialized)
}

func TestRouterRejectsWrongMethods(t *testing.T) {
	r := newTestRouter(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/healthz"},
		{http.MethodPost, "/v1/address"},
		{http.MethodGet, "/v1/pool/rotation"},
		{http.MethodGet, "/v1/pool"},
	} {
		rec := r.do(tc.method, tc.path)
		require.NotEqual(t, http.StatusOK, rec.Code, "%s %s", tc.method, tc.path)
		require.False(t, strings.HasPrefix(rec.Body.String(), "{\"address\""))
	}
}

func writeTempOpenAPISpec(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "openapi.yaml")
	content := []byte("openapi: 3.0.3\ninfo:\n  title: test\n  version: 1.0.0\npaths:\n  /healthz:\n    get:\n      responses:\n        '200':\n          description: ok\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	return path
}
