package repository

import (
	"context"

	"pasteleria/internal/model"
	"pasteleria/internal/scope"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CatalogoRepository interface {
	List(ctx context.Context, filtro scope.Filtro, tipo string) ([]model.CatalogoItem, error)
	Create(ctx context.Context, item *model.CatalogoItem) error
	Desactivar(ctx context.Context, filtro scope.Filtro, tipo string, id uint) (int64, error)
	// FindByIDs resolves ids within one tenant's catalog; unknown ids are
	// simply absent from the result.
	FindByIDs(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, tipo string, ids []uint) ([]model.CatalogoItem, error)
}

type catalogoRepo struct{ db *gorm.DB }

func NewCatalogoRepository(db *gorm.DB) CatalogoRepository { return &catalogoRepo{db: db} }

func (r *catalogoRepo) List(ctx context.Context, filtro scope.Filtro, tipo string) ([]model.CatalogoItem, error) {
	var out []model.CatalogoItem
	err := r.db.WithContext(ctx).Scopes(filtro.Aplicar).
		Where("tipo = ? AND activo = ?", tipo, true).
		Order("nombre ASC").
		Find(&out).Error
	return out, err
}

func (r *catalogoRepo) Create(ctx context.Context, item *model.CatalogoItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *catalogoRepo) Desactivar(ctx context.Context, filtro scope.Filtro, tipo string, id uint) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.CatalogoItem{}).
		Scopes(filtro.Aplicar).
		Where("id = ? AND tipo = ?", id, tipo).
		Update("activo", false)
	return res.RowsAffected, res.Error
}

func (r *catalogoRepo) FindByIDs(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, tipo string, ids []uint) ([]model.CatalogoItem, error) {
	var out []model.CatalogoItem
	if len(ids) == 0 {
		return out, nil
	}
	err := conn(ctx, r.db, tx).
		Scopes(scope.Tenant(tenantID).Aplicar).
		Where("tipo = ? AND id IN ?", tipo, ids).
		Find(&out).Error
	return out, err
}
