package esplora

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"addrpool/internal/application/dto"
	portsout "addrpool/internal/application/ports/out"
	apperrors "addrpool/internal/shared_kernel/errors"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"go.uber.org/ratelimit"
)

const (
	observationSource = "esplora"

	defaultFailureThreshold = 5
	defaultOpenTimeout      = 30 * time.Second
)

type Config struct {
	BaseURL    string
	HTTPClient *http.Client
	// HTTPTimeout bounds one request on top of the client. Zero leaves the
	// client's own behaviour untouched.
	HTTPTimeout       time.Duration
	RequestsPerSecond int
	// FailureThreshold is the number of consecutive failed queries that
	// opens the breaker.
	FailureThreshold uint32
	OpenTimeout      time.Duration
	Logger           logrus.FieldLogger
}

type addressStats struct {
	Address    string `json:"address"`
	ChainStats struct {
		TxCount int64 `json:"tx_count"`
	} `json:"chain_stats"`
	MempoolStats struct {
		TxCount int64 `json:"tx_count"`
	} `json:"mempool_stats"`
}

// Oracle reports address usage from an Esplora compatible REST API
// (GET /address/:address).
type Oracle struct {
	baseURL     string
	httpClient  *http.Client
	httpTimeout time.Duration
	limiter     ratelimit.Limiter
	breaker     *gobreaker.CircuitBreaker
	log         logrus.FieldLogger
}

var _ portsout.ActivityOracle = (*Oracle)(nil)

func NewOracle(cfg Config) *Oracle {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	limiter := ratelimit.NewUnlimited()
	if cfg.RequestsPerSecond > 0 {
		limiter = ratelimit.New(cfg.RequestsPerSecond)
	}
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = defaultFailureThreshold
	}
	openTimeout := cfg.OpenTimeout
	if openTimeout <= 0 {
		openTimeout = defaultOpenTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	logger = logger.WithField("component", "esplora_oracle")

	return &Oracle{
		baseURL:     strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		httpClient:  httpClient,
		httpTimeout: cfg.HTTPTimeout,
		limiter:     limiter,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "esplora",
			Timeout: openTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.WithFields(logrus.Fields{
					"breaker": name,
					"from":    from.String(),
					"to":      to.String(),
				}).Warn("activity oracle breaker changed state")
			},
		}),
		log: logger,
	}
}

func (o *Oracle) CheckActivity(ctx context.Context, address string) (dto.ActivityReport, *apperrors.AppError) {
	address = strings.TrimSpace(address)
	if o == nil || o.baseURL == "" {
		return dto.ActivityReport{}, queryError("activity oracle is not configured", map[string]any{"address": address})
	}
	if address == "" {
		return dto.ActivityReport{}, queryError("address is required", nil)
	}

	result, err := o.breaker.Execute(func() (interface{}, error) {
		o.limiter.Take()
		return o.fetch(ctx, address)
	})
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return dto.ActivityReport{}, appErr
		}
		return dto.ActivityReport{}, queryError("activity oracle is unavailable", map[string]any{
			"address": address,
			"error":   err.Error(),
			"breaker": o.breaker.State().String(),
		})
	}

	stats := result.(addressStats)
	report := dto.ActivityReport{
		Address:           address,
		ConfirmedTxCount:  stats.ChainStats.TxCount,
		PendingTxCount:    stats.MempoolStats.TxCount,
		ObservationSource: observationSource,
	}
	o.log.WithFields(logrus.Fields{
		"address":            address,
		"confirmed_tx_count": report.ConfirmedTxCount,
		"pending_tx_count":   report.PendingTxCount,
	}).Debug("address activity checked")

	return report, nil
}

func (o *Oracle) fetch(ctx context.Context, address string) (addressStats, error) {
	endpoint := o.baseURL + "/address/" + url.PathEscape(address)

	requestCtx := ctx
	if o.httpTimeout > 0 {
		var cancel context.CancelFunc
		requestCtx, cancel = context.WithTimeout(ctx, o.httpTimeout)
		defer cancel()
	}

	request, err := http.NewRequestWithContext(requestCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return addressStats{}, queryError("failed to build address activity request", map[string]any{
			"address": address,
			"error":   err.Error(),
		})
	}
	request.Header.Set("Accept", "application/json")

	response, err := o.httpClient.Do(request)
	if err != nil {
		return addressStats{}, queryError("failed to query address activity endpoint", map[string]any{
			"address": address,
			"error":   err.Error(),
		})
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return addressStats{}, queryError("address activity endpoint returned non-200 status", map[string]any{
			"address":     address,
			"status_code": response.StatusCode,
		})
	}

	stats := addressStats{}
	if err := json.NewDecoder(response.Body).Decode(&stats); err != nil {
		return addressStats{}, queryError("failed to decode address activity payload", map[string]any{
			"address": address,
			"error":   err.Error(),
		})
	}
	if stats.ChainStats.TxCount < 0 || stats.MempoolStats.TxCount < 0 {
		return addressStats{}, queryError("address activity payload has negative counts", map[string]any{
			"address": address,
		})
	}

	return stats, nil
}

func queryError(message string, details map[string]any) *apperrors.AppError {
	return apperrors.NewInternal(apperrors.CodeOracleQuery, message, details)
}
