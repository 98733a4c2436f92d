package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	OutboxPendiente = "pendiente"
	OutboxProcesado = "procesado"
	OutboxFallido   = "fallido"

	EventoRegistrarComision  = "comision.registrar"
	EventoRegistrarAuditoria = "auditoria.registrar"
)

// EventoOutbox is a side effect written in the same transaction as the
// mutation that caused it and executed after commit.
type EventoOutbox struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Tipo             string     `gorm:"type:varchar(50);not null"`
	Payload          []byte     `gorm:"not null"`
	Estado           string     `gorm:"type:varchar(20);not null;default:'pendiente';index:idx_outbox_estado,priority:1"`
	Intentos         int        `gorm:"not null;default:0"`
	UltimoError      *string    `gorm:"type:text"`
	SiguienteIntento *time.Time `gorm:"index:idx_outbox_estado,priority:2"`
	ProcesadoAt      *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (EventoOutbox) TableName() string { return "eventos_outbox" }

func (e *EventoOutbox) BeforeCreate(_ *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
