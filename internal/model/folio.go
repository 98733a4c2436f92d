package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	EstatusPagoPendiente = "Pendiente"
	EstatusPagoPagado    = "Pagado"

	EstatusFolioActivo    = "Activo"
	EstatusFolioCancelado = "Cancelado"

	ProduccionPendiente = "pendiente"
	ProduccionEnProceso = "en_proceso"
	ProduccionTerminado = "terminado"
	ProduccionEntregado = "entregado"
)

// EtapasProduccion is the ordered production pipeline shown on the kanban.
var EtapasProduccion = []string{ProduccionPendiente, ProduccionEnProceso, ProduccionTerminado, ProduccionEntregado}

// Complemento is a secondary cake attached to an order.
type Complemento struct {
	Descripcion string `json:"descripcion"`
	Personas    int    `json:"personas,omitempty"`
	Sabor       string `json:"sabor,omitempty"`
	Relleno     string `json:"relleno,omitempty"`
}

// Folio is a customer order. Client name and phone are snapshots taken at
// creation and do not follow later edits of the Cliente row.
// Once EstatusFolio is Cancelado the row is terminal.
type Folio struct {
	ID          uint      `gorm:"primaryKey"`
	NumeroFolio string    `gorm:"type:varchar(20);uniqueIndex;not null"`
	TenantID    uuid.UUID `gorm:"type:uuid;index;not null"`

	ClienteID     *uint      `gorm:"index"`
	ResponsableID *uuid.UUID `gorm:"type:uuid"`

	ClienteNombre   string `gorm:"type:varchar(150);not null"`
	ClienteTelefono string `gorm:"type:varchar(30);not null"`

	// FechaEntrega is a calendar date (YYYY-MM-DD); HoraEntrega is HH:MM.
	FechaEntrega string `gorm:"type:varchar(10);index;not null"`
	HoraEntrega  string `gorm:"type:varchar(5);not null"`

	CostoBase  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	CostoEnvio decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Anticipo   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Total      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`

	// AplicarComision: the commission is charged to the customer and
	// included in Total.
	AplicarComision bool `gorm:"not null;default:false"`

	EstatusPago       string `gorm:"type:varchar(20);not null;default:'Pendiente'"`
	EstatusProduccion string `gorm:"type:varchar(20);not null;default:'pendiente'"`
	EstatusFolio      string `gorm:"type:varchar(20);not null;default:'Activo';index"`

	Sabores      []string       `gorm:"serializer:json"`
	Rellenos     []string       `gorm:"serializer:json"`
	Complementos []Complemento  `gorm:"serializer:json"`
	Diseno       string         `gorm:"type:text"`
	Metadata     map[string]any `gorm:"serializer:json"`

	CanceladoAt       *time.Time
	MotivoCancelacion *string `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Folio) TableName() string { return "folios" }

// Cancelado reports whether the folio reached its terminal state.
func (f *Folio) Cancelado() bool { return f.EstatusFolio == EstatusFolioCancelado }

// EtapaValida reports whether s is a known production stage.
func EtapaValida(s string) bool {
	for _, e := range EtapasProduccion {
		if e == s {
			return true
		}
	}
	return false
}
