package repository

import (
	"context"
	"time"

	"pasteleria/internal/model"
	"pasteleria/internal/scope"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ComisionRepository interface {
	FindByNumeroFolio(ctx context.Context, numeroFolio string) (*model.Comision, error)
	// CreateIfAbsent inserts c unless a row for the same folio number exists.
	// Reports whether this call created the row.
	CreateIfAbsent(ctx context.Context, c *model.Comision) (bool, error)
	// ListByRango returns rows with desde <= created_at < hasta, newest first.
	// Commissions carry no tenant; a restricted filter keeps those whose
	// folio it can see.
	ListByRango(ctx context.Context, filtro scope.Filtro, desde, hasta time.Time) ([]model.Comision, error)
}

type comisionRepo struct{ db *gorm.DB }

func NewComisionRepository(db *gorm.DB) ComisionRepository { return &comisionRepo{db: db} }

func (r *comisionRepo) FindByNumeroFolio(ctx context.Context, numeroFolio string) (*model.Comision, error) {
	var c model.Comision
	err := r.db.WithContext(ctx).Where("numero_folio = ?", numeroFolio).First(&c).Error
	return &c, err
}

func (r *comisionRepo) CreateIfAbsent(ctx context.Context, c *model.Comision) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "numero_folio"}}, DoNothing: true}).
		Create(c)
	return res.RowsAffected > 0, res.Error
}

func (r *comisionRepo) ListByRango(ctx context.Context, filtro scope.Filtro, desde, hasta time.Time) ([]model.Comision, error) {
	var out []model.Comision
	q := r.db.WithContext(ctx).
		Where("created_at >= ? AND created_at < ?", desde.UTC(), hasta.UTC())
	if !filtro.EsTodos() {
		visibles := r.db.WithContext(ctx).Model(&model.Folio{}).
			Select("numero_folio").
			Scopes(filtro.Aplicar)
		q = q.Where("numero_folio IN (?)", visibles)
	}
	err := q.Order("created_at DESC, id DESC").Find(&out).Error
	return out, err
}
