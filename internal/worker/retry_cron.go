package worker

// retry_cron.go
// Background goroutine that periodically re-attempts delivery of
// notificaciones stuck in estado='error' with a next_retry_at in the past.
// Uses the Circuit Breaker to avoid hammering a downed notification service.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"vitalexa/internal/infra"
	"vitalexa/internal/model"
	"vitalexa/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	retryTickInterval = 30 * time.Second
	retryBatchSize    = 10
)

// RetryCronConfig holds all dependencies for the retry goroutine.
type RetryCronConfig struct {
	NotificacionRepo repository.NotificacionRepository
	NotifClient      *infra.NotifClient
	CB               *infra.CircuitBreaker
	RDB              *redis.Client
}

// StartRetryCron launches a background goroutine that ticks every 30s,
// queries failed notificaciones, and re-attempts delivery through the CB.
// It respects the context for graceful shutdown.
func StartRetryCron(ctx context.Context, cfg RetryCronConfig) {
	go func() {
		ticker := time.NewTicker(retryTickInterval)
		defer ticker.Stop()

		log.Info().Msg("retry_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron: shutting down")
				return
			case <-ticker.C:
				processRetries(ctx, cfg)
			}
		}
	}()
}

func processRetries(ctx context.Context, cfg RetryCronConfig) {
	// If CB is open, skip entirely — don't hammer a downed service
	if cfg.CB.State() == infra.CBOpen {
		log.Debug().Msg("retry_cron: circuit breaker is open, skipping tick")
		return
	}

	now := time.Now()
	pendientes, err := cfg.NotificacionRepo.FindPendingRetries(ctx, now, retryBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("retry_cron: failed to query pending retries")
		return
	}

	if len(pendientes) == 0 {
		return
	}

	log.Info().Int("count", len(pendientes)).Msg("retry_cron: processing failed notificaciones")

	for i := range pendientes {
		n := &pendientes[i]

		// Check CB state before each call — it may have tripped mid-batch
		if cfg.CB.State() == infra.CBOpen {
			log.Debug().Msg("retry_cron: circuit breaker opened mid-batch, stopping")
			return
		}

		cbErr := cfg.CB.Execute(func() error {
			_, err := cfg.NotifClient.Enviar(ctx, infra.NotifPayload{
				Evento:  n.Evento,
				Payload: json.RawMessage(n.Payload),
			})
			return err
		})

		if cbErr != nil {
			n.RetryCount++
			errMsg := cbErr.Error()
			n.LastError = &errMsg

			if n.RetryCount >= MaxNotificacionRetries {
				n.NextRetryAt = nil
				log.Error().
					Str("notificacion_id", n.ID.String()).
					Str("evento", n.Evento).
					Int("retries", n.RetryCount).
					Msg("retry_cron: max retries exceeded, moving to DLQ")

				MoverADLQ(ctx, cfg.RDB, QueueNotificacion, "notificacion", json.RawMessage(n.Payload),
					fmt.Sprintf("max retries (%d) exceeded: %s", MaxNotificacionRetries, errMsg),
					n.RetryCount)
			} else {
				nextRetry := time.Now().Add(computeRetryBackoff(n.RetryCount))
				n.NextRetryAt = &nextRetry
				log.Warn().
					Str("notificacion_id", n.ID.String()).
					Int("retry_count", n.RetryCount).
					Time("next_retry_at", nextRetry).
					Msg("retry_cron: delivery retry failed, scheduled next attempt")
			}

			_ = cfg.NotificacionRepo.Update(ctx, n)
			continue
		}

		// Success path
		n.Estado = model.NotificacionEnviada
		n.NextRetryAt = nil
		n.LastError = nil
		_ = cfg.NotificacionRepo.Update(ctx, n)

		log.Info().
			Str("notificacion_id", n.ID.String()).
			Str("evento", n.Evento).
			Int("total_retries", n.RetryCount).
			Msg("retry_cron: event delivered after retry")
	}
}
