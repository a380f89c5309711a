package rotator

import (
	"context"
	"time"

	"addrpool/internal/application/dto"
	portsin "addrpool/internal/application/ports/in"

	"github.com/lightningnetwork/lnd/clock"
	"github.com/sirupsen/logrus"
)

// Worker touches the current address on a fixed cadence so the pool keeps
// rotating when no client is asking for addresses.
type Worker struct {
	enabled      bool
	pollInterval time.Duration
	useCase      portsin.GetCurrentAddressUseCase
	clock        clock.Clock
	log          logrus.FieldLogger
}

func NewWorker(
	enabled bool,
	pollInterval time.Duration,
	useCase portsin.GetCurrentAddressUseCase,
	clk clock.Clock,
	logger logrus.FieldLogger,
) *Worker {
	if clk == nil {
		clk = clock.NewDefaultClock()
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Worker{
		enabled:      enabled,
		pollInterval: pollInterval,
		useCase:      useCase,
		clock:        clk,
		log:          logger.WithField("component", "rotator"),
	}
}

func (w *Worker) Enabled() bool {
	return w != nil && w.enabled
}

// Start blocks until ctx is done.
func (w *Worker) Start(ctx context.Context) {
	if w == nil || !w.enabled || w.useCase == nil || w.pollInterval <= 0 {
		return
	}

	w.log.WithField("poll_interval", w.pollInterval).Info("pool rotator started")

	w.runCycle(ctx)
	for {
		select {
		case <-ctx.Done():
			w.log.Info("pool rotator stopped")
			return
		case <-w.clock.TickAfter(w.pollInterval):
			w.runCycle(ctx)
		}
	}
}

func (w *Worker) runCycle(ctx context.Context) {
	startedAt := w.clock.Now()
	output, appErr := w.useCase.Execute(ctx, dto.GetCurrentAddressQuery{})
	if appErr != nil {
		w.log.WithFields(logrus.Fields{
			"code":    appErr.Code,
			"details": appErr.Details,
		}).Error("pool rotation cycle failed: " + appErr.Message)
		return
	}

	entry := w.log.WithFields(logrus.Fields{
		"derivation_index": output.DerivationIndex,
		"next_rotation_at": output.NextRotationAt,
		"latency_ms":       w.clock.Now().Sub(startedAt).Milliseconds(),
	})
	switch {
	case output.Initialized:
		entry.Info("pool rotation cycle initialized pool")
	case output.Rotated:
		entry.Info("pool rotation cycle rotated pool")
	default:
		entry.Debug("pool rotation cycle found pool fresh")
	}
}
