package repository

import (
	"context"

	"pasteleria/internal/dto"
	"pasteleria/internal/model"
	"pasteleria/internal/scope"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AuditoriaRepository is append-only: there is no update or delete.
type AuditoriaRepository interface {
	// Create ignores a second insert carrying an EventoID already stored.
	Create(ctx context.Context, tx *gorm.DB, a *model.Auditoria) error
	List(ctx context.Context, filtro scope.Filtro, q dto.FiltroAuditoria) ([]model.Auditoria, int64, error)
}

type auditoriaRepo struct{ db *gorm.DB }

func NewAuditoriaRepository(db *gorm.DB) AuditoriaRepository { return &auditoriaRepo{db: db} }

func (r *auditoriaRepo) Create(ctx context.Context, tx *gorm.DB, a *model.Auditoria) error {
	q := conn(ctx, r.db, tx)
	if a.EventoID != nil {
		q = q.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "evento_id"}}, DoNothing: true})
	}
	return q.Create(a).Error
}

func (r *auditoriaRepo) List(ctx context.Context, filtro scope.Filtro, q dto.FiltroAuditoria) ([]model.Auditoria, int64, error) {
	var out []model.Auditoria
	var total int64
	_, limit, offset := paginar(q.Page, q.Limit)

	query := r.db.WithContext(ctx).Model(&model.Auditoria{}).Scopes(filtro.Aplicar)
	if q.Entidad != "" {
		query = query.Where("entidad = ?", q.Entidad)
	}
	if q.EntidadID != "" {
		query = query.Where("entidad_id = ?", q.EntidadID)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("created_at DESC, id DESC").Offset(offset).Limit(limit).Find(&out).Error
	return out, total, err
}
