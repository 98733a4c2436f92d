package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Usuario stores system users with role-based access.
// Rol: "superadmin" | "admin" | "empleado". TenantID is nil only for superadmins.
type Usuario struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	TenantID     *uuid.UUID `gorm:"type:uuid;index"`
	Username     string     `gorm:"type:varchar(150);uniqueIndex;not null"`
	Nombre       string     `gorm:"type:varchar(100);not null"`
	Email        *string    `gorm:"type:varchar(150)"`
	PasswordHash string     `gorm:"not null"`
	Rol          string     `gorm:"type:varchar(20);not null"`
	Activo       bool       `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Usuario) TableName() string { return "usuarios" }

func (u *Usuario) BeforeCreate(_ *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
