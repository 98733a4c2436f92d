package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	CatalogoSabor   = "sabor"
	CatalogoRelleno = "relleno"
)

// CatalogoItem is an entry of the flavor or filling catalog.
type CatalogoItem struct {
	ID        uint      `gorm:"primaryKey"`
	TenantID  uuid.UUID `gorm:"type:uuid;index;not null"`
	Tipo      string    `gorm:"type:varchar(20);index;not null"`
	Nombre    string    `gorm:"type:varchar(100);not null"`
	Activo    bool      `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (CatalogoItem) TableName() string { return "catalogo_items" }

// TipoCatalogoValido reports whether t names a catalog.
func TipoCatalogoValido(t string) bool {
	return t == CatalogoSabor || t == CatalogoRelleno
}
