package worker

// dlq.go — cola de mensajes muertos.
// Notification and email jobs that exhaust their retries land here, one
// Redis list per source queue (vitalexa:dlq:jobs:notificacion,
// vitalexa:dlq:jobs:email), kept for manual inspection and replay.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const DLQPrefix = "vitalexa:dlq:"

// EntradaDLQ preserves the failed job together with why and how often it
// failed.
type EntradaDLQ struct {
	ColaOrigen string          `json:"cola_origen"`
	TipoJob    string          `json:"tipo_job"`
	Payload    json.RawMessage `json:"payload"`
	Motivo     string          `json:"motivo"`
	FallidoEn  string          `json:"fallido_en"` // RFC 3339
	Intentos   int             `json:"intentos"`
}

// MoverADLQ pushes an exhausted job onto the dead letter list of its queue.
func MoverADLQ(ctx context.Context, rdb *redis.Client, cola, tipoJob string, payload json.RawMessage, motivo string, intentos int) {
	entrada := EntradaDLQ{
		ColaOrigen: cola,
		TipoJob:    tipoJob,
		Payload:    payload,
		Motivo:     motivo,
		FallidoEn:  time.Now().UTC().Format(time.RFC3339),
		Intentos:   intentos,
	}

	data, err := json.Marshal(entrada)
	if err != nil {
		log.Error().Err(err).Str("cola", cola).Msg("dlq: failed to marshal entry")
		return
	}

	key := DLQPrefix + cola
	if err := rdb.LPush(ctx, key, data).Err(); err != nil {
		log.Error().Err(err).Str("dlq_key", key).Msg("dlq: failed to push entry")
		return
	}

	log.Warn().
		Str("cola", cola).
		Str("tipo_job", tipoJob).
		Str("motivo", motivo).
		Int("intentos", intentos).
		Msg("dlq: job moved to dead letter queue")
}

// LargoDLQ returns the number of dead entries of a queue, for monitoring.
func LargoDLQ(ctx context.Context, rdb *redis.Client, cola string) (int64, error) {
	return rdb.LLen(ctx, DLQPrefix+cola).Result()
}
