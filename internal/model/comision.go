package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Comision is the sales commission of one folio, keyed by its number.
// MontoRedondeado is only set when the commission was charged to the customer;
// nil means the business absorbed it.
type Comision struct {
	ID              uint             `gorm:"primaryKey"`
	NumeroFolio     string           `gorm:"type:varchar(20);uniqueIndex;not null"`
	Total           decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	Monto           decimal.Decimal  `gorm:"type:decimal(12,4);not null"`
	AplicadaCliente bool             `gorm:"not null;default:false"`
	MontoRedondeado *decimal.Decimal `gorm:"type:decimal(12,2)"`
	CreatedAt       time.Time        `gorm:"index"`
}

func (Comision) TableName() string { return "comisiones" }
