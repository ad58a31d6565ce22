package worker

// notificacion_worker.go
// Processes notification jobs from QueueNotificacion.
// Persists the outbound event, posts it to the external notification service
// with exponential backoff (max 3 inline retries), and leaves failed rows for
// the retry cron to pick up.

import (
	"context"
	"encoding/json"
	"time"

	"vitalexa/internal/infra"
	"vitalexa/internal/model"
	"vitalexa/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// MaxNotificacionRetries caps cron re-attempts before a row goes to the DLQ.
const MaxNotificacionRetries = 5

// NotifJobPayload is the job envelope sent to QueueNotificacion.
type NotifJobPayload struct {
	Evento   string          `json:"evento"`
	PedidoID *string         `json:"pedido_id,omitempty"`
	Payload  json.RawMessage `json:"payload"`
}

// NotificacionWorker delivers outbound events to the notification service.
type NotificacionWorker struct {
	client *infra.NotifClient
	repo   repository.NotificacionRepository
}

func NewNotificacionWorker(client *infra.NotifClient, repo repository.NotificacionRepository) *NotificacionWorker {
	return &NotificacionWorker{client: client, repo: repo}
}

// Process handles a single notification job:
//  1. Parse NotifJobPayload from the job envelope
//  2. Persist the Notificacion row with estado="pendiente"
//  3. POST to the notification service with exponential backoff
//  4. Mark enviada, or error + next_retry_at for the cron
func (w *NotificacionWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload NotifJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("notificacion_worker: invalid payload")
		return
	}

	n := &model.Notificacion{
		Evento:  payload.Evento,
		Payload: string(payload.Payload),
		Estado:  model.NotificacionPendiente,
	}
	if payload.PedidoID != nil {
		if pid, err := uuid.Parse(*payload.PedidoID); err == nil {
			n.PedidoID = &pid
		}
	}
	if err := w.repo.Create(ctx, n); err != nil {
		log.Error().Err(err).Str("evento", payload.Evento).Msg("notificacion_worker: failed to persist event")
		return
	}

	sendErr := withRetry(ctx, 3, func(attempt int) error {
		_, err := w.client.Enviar(ctx, infra.NotifPayload{
			Evento:  payload.Evento,
			Payload: payload.Payload,
		})
		if err != nil {
			log.Warn().
				Err(err).
				Int("attempt", attempt+1).
				Str("evento", payload.Evento).
				Msg("notificacion_worker: delivery attempt failed, retrying")
		}
		return err
	})

	if sendErr != nil {
		n.Estado = model.NotificacionError
		n.RetryCount = 1
		errMsg := sendErr.Error()
		n.LastError = &errMsg
		nextRetry := time.Now().Add(computeRetryBackoff(1))
		n.NextRetryAt = &nextRetry
		_ = w.repo.Update(ctx, n)
		log.Error().Err(sendErr).Str("evento", payload.Evento).Msg("notificacion_worker: delivery failed, scheduled for cron retry")
		return
	}

	n.Estado = model.NotificacionEnviada
	_ = w.repo.Update(ctx, n)
	log.Info().Str("evento", payload.Evento).Msg("notificacion_worker: event delivered")
}

// withRetry calls fn up to maxAttempts times with exponential backoff.
// Backoff schedule: attempt 1 = immediate, 2 = 1s, 3 = 2s.
// Returns nil if any attempt succeeds; last error otherwise.
func withRetry(ctx context.Context, maxAttempts int, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := time.Duration(1<<uint(i-1)) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := fn(i); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}

// computeRetryBackoff spaces cron re-attempts: 1m, 2m, 4m, 8m …
func computeRetryBackoff(retryCount int) time.Duration {
	return time.Duration(1<<uint(retryCount-1)) * time.Minute
}
