package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	AccionCreate = "CREATE"
	AccionUpdate = "UPDATE"
	AccionStatus = "STATUS"
	AccionCancel = "CANCEL"
	AccionDelete = "DELETE"

	EntidadFolio   = "FOLIO"
	EntidadUsuario = "USUARIO"
	EntidadCorte   = "CORTE"
)

// Auditoria is write-once. There is no update or delete path anywhere.
// EventoID is set when the entry came through the outbox so retries
// cannot append it twice.
type Auditoria struct {
	ID        uint           `gorm:"primaryKey"`
	TenantID  *uuid.UUID     `gorm:"type:uuid;index"`
	Entidad   string         `gorm:"type:varchar(30);not null;index:idx_auditoria_entidad,priority:1"`
	EntidadID string         `gorm:"type:varchar(64);not null;index:idx_auditoria_entidad,priority:2"`
	Accion    string         `gorm:"type:varchar(20);not null"`
	UsuarioID *uuid.UUID     `gorm:"type:uuid"`
	Metadata  map[string]any `gorm:"serializer:json"`
	EventoID  *uuid.UUID     `gorm:"type:uuid;uniqueIndex"`
	CreatedAt time.Time
}

func (Auditoria) TableName() string { return "auditoria" }
