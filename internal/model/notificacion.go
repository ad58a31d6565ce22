package model

import (
	"time"

	"github.com/google/uuid"
)

// Estados de notificación.
const (
	NotificacionPendiente = "pendiente"
	NotificacionEnviada   = "enviada"
	NotificacionError     = "error"
)

// Notificacion is an outbound event for the external notification service.
// Evento: "order_created" | "order_status_changed" | "payment_recorded" |
// "payment_cancelled"
type Notificacion struct {
	ID       uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Evento   string     `gorm:"type:varchar(40);not null"`
	PedidoID *uuid.UUID `gorm:"type:uuid;index"`
	// Payload is the JSON body forwarded verbatim to the notification service
	Payload string `gorm:"type:jsonb;not null"`
	Estado  string `gorm:"type:varchar(20);not null;default:'pendiente'"`
	// Retry fields — used by retry_cron to re-attempt failed deliveries
	RetryCount  int        `gorm:"not null;default:0"`
	NextRetryAt *time.Time `gorm:"column:next_retry_at"`
	LastError   *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName overrides GORM's default pluralization.
func (Notificacion) TableName() string { return "notificaciones" }
