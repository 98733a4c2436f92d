package repository

import (
	"context"
	"strings"
	"time"

	"pasteleria/internal/dto"
	"pasteleria/internal/model"
	"pasteleria/internal/scope"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// FolioStats backs the dashboard cards. Cancelled folios are never counted.
type FolioStats struct {
	Total                int64
	PendientesProduccion int64
	EntregasHoy          int64
	TotalVentas          decimal.Decimal
	TotalAnticipos       decimal.Decimal
}

// FolioRepository: every read and every mutation takes the caller's
// scope.Filtro, so there is no unscoped path from a request.
type FolioRepository interface {
	DB() *gorm.DB
	Create(ctx context.Context, tx *gorm.DB, f *model.Folio) error
	FindByID(ctx context.Context, tx *gorm.DB, filtro scope.Filtro, id uint) (*model.Folio, error)
	List(ctx context.Context, filtro scope.Filtro, q dto.FiltroFolios) ([]model.Folio, int64, error)
	Update(ctx context.Context, tx *gorm.DB, f *model.Folio) error
	// Cancelar flips Activo to Cancelado; 0 rows means the folio was not
	// active (or not visible).
	Cancelar(ctx context.Context, tx *gorm.DB, filtro scope.Filtro, id uint, motivo *string, at time.Time) (int64, error)
	UpdateEstatusProduccion(ctx context.Context, tx *gorm.DB, filtro scope.Filtro, id uint, estatus string) (int64, error)
	Delete(ctx context.Context, tx *gorm.DB, filtro scope.Filtro, id uint) (int64, error)
	ListByRangoEntrega(ctx context.Context, filtro scope.Filtro, desde, hasta string) ([]model.Folio, error)
	Stats(ctx context.Context, filtro scope.Filtro, hoy string) (*FolioStats, error)
}

type folioRepo struct{ db *gorm.DB }

func NewFolioRepository(db *gorm.DB) FolioRepository { return &folioRepo{db: db} }

func (r *folioRepo) DB() *gorm.DB { return r.db }

func (r *folioRepo) Create(ctx context.Context, tx *gorm.DB, f *model.Folio) error {
	return conn(ctx, r.db, tx).Create(f).Error
}

func (r *folioRepo) FindByID(ctx context.Context, tx *gorm.DB, filtro scope.Filtro, id uint) (*model.Folio, error) {
	var f model.Folio
	err := conn(ctx, r.db, tx).Scopes(filtro.Aplicar).Where("id = ?", id).First(&f).Error
	return &f, err
}

func (r *folioRepo) List(ctx context.Context, filtro scope.Filtro, q dto.FiltroFolios) ([]model.Folio, int64, error) {
	var folios []model.Folio
	var total int64
	_, limit, offset := paginar(q.Page, q.Limit)

	query := r.db.WithContext(ctx).Model(&model.Folio{}).Scopes(filtro.Aplicar)
	if q.EstatusFolio != "" {
		query = query.Where("estatus_folio = ?", q.EstatusFolio)
	}
	if term := strings.TrimSpace(q.Q); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		query = query.Where(
			"(LOWER(numero_folio) LIKE ? OR LOWER(cliente_nombre) LIKE ? OR LOWER(cliente_telefono) LIKE ?)",
			like, like, like,
		)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("created_at DESC, id DESC").Offset(offset).Limit(limit).Find(&folios).Error
	return folios, total, err
}

func (r *folioRepo) Update(ctx context.Context, tx *gorm.DB, f *model.Folio) error {
	return conn(ctx, r.db, tx).Save(f).Error
}

func (r *folioRepo) Cancelar(ctx context.Context, tx *gorm.DB, filtro scope.Filtro, id uint, motivo *string, at time.Time) (int64, error) {
	res := conn(ctx, r.db, tx).Model(&model.Folio{}).
		Scopes(filtro.Aplicar).
		Where("id = ? AND estatus_folio = ?", id, model.EstatusFolioActivo).
		Updates(map[string]any{
			"estatus_folio":      model.EstatusFolioCancelado,
			"cancelado_at":       at,
			"motivo_cancelacion": motivo,
		})
	return res.RowsAffected, res.Error
}

func (r *folioRepo) UpdateEstatusProduccion(ctx context.Context, tx *gorm.DB, filtro scope.Filtro, id uint, estatus string) (int64, error) {
	res := conn(ctx, r.db, tx).Model(&model.Folio{}).
		Scopes(filtro.Aplicar).
		Where("id = ? AND estatus_folio = ?", id, model.EstatusFolioActivo).
		Update("estatus_produccion", estatus)
	return res.RowsAffected, res.Error
}

func (r *folioRepo) Delete(ctx context.Context, tx *gorm.DB, filtro scope.Filtro, id uint) (int64, error) {
	res := conn(ctx, r.db, tx).Scopes(filtro.Aplicar).Where("id = ?", id).Delete(&model.Folio{})
	return res.RowsAffected, res.Error
}

// ListByRangoEntrega returns folios due between desde and hasta (inclusive,
// YYYY-MM-DD), ordered by date then time.
func (r *folioRepo) ListByRangoEntrega(ctx context.Context, filtro scope.Filtro, desde, hasta string) ([]model.Folio, error) {
	var folios []model.Folio
	err := r.db.WithContext(ctx).Scopes(filtro.Aplicar).
		Where("fecha_entrega >= ? AND fecha_entrega <= ?", desde, hasta).
		Order("fecha_entrega ASC, hora_entrega ASC, id ASC").
		Find(&folios).Error
	return folios, err
}

func (r *folioRepo) Stats(ctx context.Context, filtro scope.Filtro, hoy string) (*FolioStats, error) {
	activos := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&model.Folio{}).
			Scopes(filtro.Aplicar).
			Where("estatus_folio = ?", model.EstatusFolioActivo)
	}

	var s FolioStats
	if err := activos().Count(&s.Total).Error; err != nil {
		return nil, err
	}
	if err := activos().Where("estatus_produccion = ?", model.ProduccionPendiente).Count(&s.PendientesProduccion).Error; err != nil {
		return nil, err
	}
	if err := activos().Where("fecha_entrega = ?", hoy).Count(&s.EntregasHoy).Error; err != nil {
		return nil, err
	}

	var sums struct {
		TotalVentas    decimal.Decimal
		TotalAnticipos decimal.Decimal
	}
	err := activos().
		Select("COALESCE(SUM(total), 0) AS total_ventas, COALESCE(SUM(anticipo), 0) AS total_anticipos").
		Scan(&sums).Error
	if err != nil {
		return nil, err
	}
	s.TotalVentas = sums.TotalVentas.Round(2)
	s.TotalAnticipos = sums.TotalAnticipos.Round(2)
	return &s, nil
}
