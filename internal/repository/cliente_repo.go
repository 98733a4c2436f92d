package repository

import (
	"context"
	"strings"

	"pasteleria/internal/model"
	"pasteleria/internal/scope"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ClienteRepository interface {
	Buscar(ctx context.Context, filtro scope.Filtro, q string, limit int) ([]model.Cliente, error)
	FindByID(ctx context.Context, tx *gorm.DB, filtro scope.Filtro, id uint) (*model.Cliente, error)
	FindByTelefono(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, telefono string) (*model.Cliente, error)
	Create(ctx context.Context, tx *gorm.DB, c *model.Cliente) error
}

type clienteRepo struct{ db *gorm.DB }

func NewClienteRepository(db *gorm.DB) ClienteRepository { return &clienteRepo{db: db} }

func (r *clienteRepo) Buscar(ctx context.Context, filtro scope.Filtro, q string, limit int) ([]model.Cliente, error) {
	var out []model.Cliente
	query := r.db.WithContext(ctx).Scopes(filtro.Aplicar)
	if term := strings.TrimSpace(q); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		query = query.Where("(LOWER(nombre) LIKE ? OR telefono LIKE ?)", like, like)
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	err := query.Order("nombre ASC").Limit(limit).Find(&out).Error
	return out, err
}

func (r *clienteRepo) FindByID(ctx context.Context, tx *gorm.DB, filtro scope.Filtro, id uint) (*model.Cliente, error) {
	var c model.Cliente
	err := conn(ctx, r.db, tx).Scopes(filtro.Aplicar).Where("id = ?", id).First(&c).Error
	return &c, err
}

func (r *clienteRepo) FindByTelefono(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, telefono string) (*model.Cliente, error) {
	var c model.Cliente
	err := conn(ctx, r.db, tx).
		Scopes(scope.Tenant(tenantID).Aplicar).
		Where("telefono = ?", telefono).
		First(&c).Error
	return &c, err
}

func (r *clienteRepo) Create(ctx context.Context, tx *gorm.DB, c *model.Cliente) error {
	return conn(ctx, r.db, tx).Create(c).Error
}
