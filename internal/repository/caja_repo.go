package repository

import (
	"context"
	"time"

	"pasteleria/internal/model"
	"pasteleria/internal/scope"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CajaRepository interface {
	DB() *gorm.DB
	// ObtenerOCrear returns the tenant's cut for fecha, inserting a zeroed
	// open one when missing. Concurrent callers for a new date all get the
	// same row.
	ObtenerOCrear(ctx context.Context, tenantID uuid.UUID, fecha string) (*model.CorteCaja, error)
	FindByFecha(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, fecha string) (*model.CorteCaja, error)
	// AplicarMovimiento adds monto to the running totals in SQL, guarded by
	// estado = abierto. 0 rows means the cut is closed.
	AplicarMovimiento(ctx context.Context, tx *gorm.DB, corteID uint, tipo string, monto decimal.Decimal) (int64, error)
	CreateMovimiento(ctx context.Context, tx *gorm.DB, m *model.MovimientoCaja) error
	ListMovimientos(ctx context.Context, corteID uint) ([]model.MovimientoCaja, error)
	// Cerrar is the one-way open to closed transition; 0 rows means it was
	// already closed.
	Cerrar(ctx context.Context, tx *gorm.DB, corteID uint, por *uuid.UUID, notas *string, at time.Time) (int64, error)
	Historial(ctx context.Context, filtro scope.Filtro, page, limit int) ([]model.CorteCaja, int64, error)
	ActualizarEmail(ctx context.Context, corteID uint, estado string, errMsg *string, enviadoAt *time.Time) error
}

type cajaRepo struct{ db *gorm.DB }

func NewCajaRepository(db *gorm.DB) CajaRepository { return &cajaRepo{db: db} }

func (r *cajaRepo) DB() *gorm.DB { return r.db }

func (r *cajaRepo) ObtenerOCrear(ctx context.Context, tenantID uuid.UUID, fecha string) (*model.CorteCaja, error) {
	nuevo := model.CorteCaja{
		TenantID:    tenantID,
		Fecha:       fecha,
		Estado:      model.CorteAbierto,
		EmailEstado: model.EmailPendiente,
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "fecha"}},
			DoNothing: true,
		}).
		Create(&nuevo).Error
	if err != nil {
		return nil, err
	}
	return r.FindByFecha(ctx, nil, tenantID, fecha)
}

func (r *cajaRepo) FindByFecha(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, fecha string) (*model.CorteCaja, error) {
	var c model.CorteCaja
	err := conn(ctx, r.db, tx).Where("tenant_id = ? AND fecha = ?", tenantID, fecha).First(&c).Error
	return &c, err
}

func (r *cajaRepo) AplicarMovimiento(ctx context.Context, tx *gorm.DB, corteID uint, tipo string, monto decimal.Decimal) (int64, error) {
	cols := map[string]any{}
	switch tipo {
	case model.MovimientoIngreso:
		cols["total_ingresos"] = gorm.Expr("total_ingresos + ?", monto)
		cols["saldo_final"] = gorm.Expr("saldo_final + ?", monto)
	default:
		cols["total_egresos"] = gorm.Expr("total_egresos + ?", monto)
		cols["saldo_final"] = gorm.Expr("saldo_final - ?", monto)
	}
	res := conn(ctx, r.db, tx).Model(&model.CorteCaja{}).
		Where("id = ? AND estado = ?", corteID, model.CorteAbierto).
		Updates(cols)
	return res.RowsAffected, res.Error
}

func (r *cajaRepo) CreateMovimiento(ctx context.Context, tx *gorm.DB, m *model.MovimientoCaja) error {
	return conn(ctx, r.db, tx).Create(m).Error
}

func (r *cajaRepo) ListMovimientos(ctx context.Context, corteID uint) ([]model.MovimientoCaja, error) {
	var movs []model.MovimientoCaja
	err := r.db.WithContext(ctx).
		Where("corte_id = ?", corteID).
		Order("created_at DESC, id DESC").
		Find(&movs).Error
	return movs, err
}

func (r *cajaRepo) Cerrar(ctx context.Context, tx *gorm.DB, corteID uint, por *uuid.UUID, notas *string, at time.Time) (int64, error) {
	res := conn(ctx, r.db, tx).Model(&model.CorteCaja{}).
		Where("id = ? AND estado = ?", corteID, model.CorteAbierto).
		Updates(map[string]any{
			"estado":       model.CorteCerrado,
			"cerrado_por":  por,
			"cerrado_at":   at,
			"notas_cierre": notas,
		})
	return res.RowsAffected, res.Error
}

func (r *cajaRepo) Historial(ctx context.Context, filtro scope.Filtro, page, limit int) ([]model.CorteCaja, int64, error) {
	var cortes []model.CorteCaja
	var total int64
	_, limit, offset := paginar(page, limit)

	q := r.db.WithContext(ctx).Model(&model.CorteCaja{}).Scopes(filtro.Aplicar)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("fecha DESC, id DESC").Offset(offset).Limit(limit).Find(&cortes).Error
	return cortes, total, err
}

func (r *cajaRepo) ActualizarEmail(ctx context.Context, corteID uint, estado string, errMsg *string, enviadoAt *time.Time) error {
	return r.db.WithContext(ctx).Model(&model.CorteCaja{}).
		Where("id = ?", corteID).
		Updates(map[string]any{
			"email_estado":     estado,
			"email_error":      errMsg,
			"email_enviado_at": enviadoAt,
		}).Error
}
