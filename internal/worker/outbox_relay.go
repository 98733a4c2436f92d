package worker

// outbox_relay.go
// Background goroutine that periodically re-runs outbox entries still
// pending after their post-commit dispatch failed or never happened (crash
// between commit and dispatch). Backoff and the fallido/DLQ transition live
// with the executor; the relay only drives the clock.

import (
	"context"
	"time"

	"pasteleria/internal/infra"

	"github.com/rs/zerolog/log"
)

const (
	relayTickInterval = 30 * time.Second
	relayBatchSize    = 50
)

// ProcesadorOutbox executes due outbox entries.
type ProcesadorOutbox interface {
	ProcesarPendientes(ctx context.Context, ahora time.Time, limit int) (int, error)
}

// StartOutboxRelay ticks every 30s until ctx is done.
func StartOutboxRelay(ctx context.Context, p ProcesadorOutbox, m *infra.Metrics) {
	go func() {
		ticker := time.NewTicker(relayTickInterval)
		defer ticker.Stop()

		log.Info().Msg("outbox_relay: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("outbox_relay: shutting down")
				return
			case <-ticker.C:
				relayOnce(ctx, p, m, time.Now().UTC())
			}
		}
	}()
}

func relayOnce(ctx context.Context, p ProcesadorOutbox, m *infra.Metrics, ahora time.Time) {
	ok, err := p.ProcesarPendientes(ctx, ahora, relayBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("outbox_relay: failed to query pending entries")
		return
	}
	if ok > 0 {
		m.OutboxRelay(ok)
		log.Info().Int("procesados", ok).Msg("outbox_relay: entries delivered")
	}
}
