package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	CorteAbierto = "abierto"
	CorteCerrado = "cerrado"

	EmailPendiente = "pendiente"
	EmailEnviado   = "enviado"
	EmailFallido   = "fallido"

	MovimientoIngreso = "ingreso"
	MovimientoEgreso  = "egreso"
)

// CategoriasMovimiento lists the accepted categories per movement type.
var CategoriasMovimiento = map[string][]string{
	MovimientoIngreso: {"venta", "anticipo", "liquidacion", "otro"},
	MovimientoEgreso:  {"insumos", "servicios", "nomina", "renta", "otro"},
}

// CategoriaValida reports whether categoria is accepted for tipo.
func CategoriaValida(tipo, categoria string) bool {
	for _, c := range CategoriasMovimiento[tipo] {
		if c == categoria {
			return true
		}
	}
	return false
}

// CorteCaja is the daily cash reconciliation. One row per tenant and
// calendar date.
// SaldoFinal = TotalIngresos - TotalEgresos, maintained incrementally by each
// movement; reports never recompute it.
// Estado: "abierto" | "cerrado" (terminal)
// EmailEstado tracks report delivery and is independent of Estado.
type CorteCaja struct {
	ID            uint            `gorm:"primaryKey"`
	TenantID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_cortes_caja_tenant_fecha,priority:1"`
	Fecha         string          `gorm:"type:varchar(10);not null;uniqueIndex:idx_cortes_caja_tenant_fecha,priority:2"`
	TotalIngresos decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalEgresos  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	SaldoFinal    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Estado        string          `gorm:"type:varchar(20);not null;default:'abierto'"`
	CerradoPor    *uuid.UUID      `gorm:"type:uuid"`
	CerradoAt     *time.Time
	NotasCierre   *string `gorm:"type:text"`

	EmailEstado    string  `gorm:"type:varchar(20);not null;default:'pendiente'"`
	EmailError     *string `gorm:"type:text"`
	EmailEnviadoAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time

	Movimientos []MovimientoCaja `gorm:"foreignKey:CorteID"`
}

func (CorteCaja) TableName() string { return "cortes_caja" }

// MovimientoCaja is an immutable cash event. Movements are never modified or
// deleted.
type MovimientoCaja struct {
	ID          uint            `gorm:"primaryKey"`
	CorteID     uint            `gorm:"index;not null"`
	Tipo        string          `gorm:"type:varchar(10);not null"`
	Monto       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Categoria   string          `gorm:"type:varchar(30);not null"`
	Descripcion *string         `gorm:"type:text"`
	// Referencia links to an external document, usually a folio number.
	Referencia *string    `gorm:"type:varchar(50)"`
	UsuarioID  *uuid.UUID `gorm:"type:uuid"`
	CreatedAt  time.Time
}

func (MovimientoCaja) TableName() string { return "movimientos_caja" }
