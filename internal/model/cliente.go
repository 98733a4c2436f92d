package model

import (
	"time"

	"github.com/google/uuid"
)

// Cliente is the tenant's customer directory. Folios keep their own copy of
// name and phone.
type Cliente struct {
	ID        uint      `gorm:"primaryKey"`
	TenantID  uuid.UUID `gorm:"type:uuid;index;not null"`
	Nombre    string    `gorm:"type:varchar(150);not null"`
	Telefono  string    `gorm:"type:varchar(30);index;not null"`
	Email     *string   `gorm:"type:varchar(150)"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Cliente) TableName() string { return "clientes" }
