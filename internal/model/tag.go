package model

import (
	"time"

	"github.com/google/uuid"
)

// Tipos de etiqueta.
const (
	TagSistema = "SYSTEM"
	TagUsuario = "USER"
)

// TagNombreSR is the seeded system tag marking "sin receta" products.
const TagNombreSR = "S/R"

// Tag classifies catalog products. SYSTEM tags are seeded at migration time
// and can never be edited or deleted; USER tags are managed freely.
type Tag struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre    string    `gorm:"uniqueIndex;not null"`
	Tipo      string    `gorm:"type:varchar(20);not null;default:'USER'"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// EsSistema reports whether the tag is protected against writes.
func (t *Tag) EsSistema() bool { return t.Tipo == TagSistema }
