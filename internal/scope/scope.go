// Package scope derives the tenant visibility filter for the acting identity
// and applies it to GORM queries over tables carrying a tenant_id column.
//
// Usage:
//
//	f := scope.Resolver(identidad, override)
//	db.Scopes(f.Aplicar).Find(&folios)
package scope

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Rol is the closed set of actor roles. It is parsed once from the token
// claims; components never inspect raw role strings.
type Rol string

const (
	RolSuperAdmin Rol = "superadmin"
	RolAdmin      Rol = "admin"
	RolEmpleado   Rol = "empleado"
)

// ParseRol maps a claim value to a Rol. Unknown values are rejected.
func ParseRol(s string) (Rol, bool) {
	switch Rol(s) {
	case RolSuperAdmin, RolAdmin, RolEmpleado:
		return Rol(s), true
	}
	return "", false
}

// Privilegiado reports whether the role may override computed order fields.
func (r Rol) Privilegiado() bool {
	return r == RolSuperAdmin || r == RolAdmin
}

// Identidad is the claim bundle issued by authentication.
type Identidad struct {
	UsuarioID uuid.UUID
	Rol       Rol
	TenantID  *uuid.UUID
}

type modo int

const (
	modoNinguno modo = iota // zero value: most restrictive
	modoTodos
	modoTenant
)

// Filtro is the visibility predicate for one request.
type Filtro struct {
	modo     modo
	tenantID uuid.UUID
}

// Todos returns the unrestricted filter. Only Resolver should hand it out to
// request paths; background jobs use it directly.
func Todos() Filtro { return Filtro{modo: modoTodos} }

// Tenant returns a filter for exactly one tenant.
func Tenant(id uuid.UUID) Filtro { return Filtro{modo: modoTenant, tenantID: id} }

// Ninguno returns the filter that matches no rows.
func Ninguno() Filtro { return Filtro{} }

// Resolver computes the filter for an identity and an optional caller-supplied
// tenant override. The override only counts for the superadmin role.
func Resolver(id *Identidad, override *uuid.UUID) Filtro {
	if id == nil {
		return Ninguno()
	}
	if id.Rol == RolSuperAdmin {
		if override != nil && *override != uuid.Nil {
			return Tenant(*override)
		}
		return Todos()
	}
	if _, ok := ParseRol(string(id.Rol)); !ok {
		return Ninguno()
	}
	if id.TenantID == nil || *id.TenantID == uuid.Nil {
		return Ninguno()
	}
	return Tenant(*id.TenantID)
}

// Aplicar is a GORM scope: db.Scopes(f.Aplicar).
func (f Filtro) Aplicar(db *gorm.DB) *gorm.DB {
	switch f.modo {
	case modoTodos:
		return db
	case modoTenant:
		return db.Where("tenant_id = ?", f.tenantID)
	default:
		return db.Where("1 = 0")
	}
}

// TenantParaCrear returns the tenant to stamp on new rows. An unrestricted
// filter has no tenant to stamp, so superadmins must pick one via override.
func (f Filtro) TenantParaCrear() (uuid.UUID, bool) {
	if f.modo == modoTenant {
		return f.tenantID, true
	}
	return uuid.Nil, false
}

// Permite reports whether a row owned by tenantID is visible under f.
func (f Filtro) Permite(tenantID *uuid.UUID) bool {
	switch f.modo {
	case modoTodos:
		return true
	case modoTenant:
		return tenantID != nil && *tenantID == f.tenantID
	default:
		return false
	}
}

// EsTodos reports whether f is unrestricted.
func (f Filtro) EsTodos() bool { return f.modo == modoTodos }
