package repository

import (
	"context"
	"time"

	"pasteleria/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OutboxRepository interface {
	Create(ctx context.Context, tx *gorm.DB, e *model.EventoOutbox) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.EventoOutbox, error)
	// Pendientes returns due entries, oldest first.
	Pendientes(ctx context.Context, ahora time.Time, limit int) ([]model.EventoOutbox, error)
	MarcarProcesado(ctx context.Context, id uuid.UUID, at time.Time) error
	MarcarError(ctx context.Context, id uuid.UUID, estado string, intentos int, msg string, siguiente *time.Time) error
}

type outboxRepo struct{ db *gorm.DB }

func NewOutboxRepository(db *gorm.DB) OutboxRepository { return &outboxRepo{db: db} }

func (r *outboxRepo) Create(ctx context.Context, tx *gorm.DB, e *model.EventoOutbox) error {
	return conn(ctx, r.db, tx).Create(e).Error
}

func (r *outboxRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.EventoOutbox, error) {
	var e model.EventoOutbox
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&e).Error
	return &e, err
}

func (r *outboxRepo) Pendientes(ctx context.Context, ahora time.Time, limit int) ([]model.EventoOutbox, error) {
	var out []model.EventoOutbox
	err := r.db.WithContext(ctx).
		Where("estado = ? AND (siguiente_intento IS NULL OR siguiente_intento <= ?)", model.OutboxPendiente, ahora.UTC()).
		Order("created_at ASC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

func (r *outboxRepo) MarcarProcesado(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.EventoOutbox{}).
		Where("id = ? AND estado = ?", id, model.OutboxPendiente).
		Updates(map[string]any{
			"estado":       model.OutboxProcesado,
			"procesado_at": at.UTC(),
		}).Error
}

func (r *outboxRepo) MarcarError(ctx context.Context, id uuid.UUID, estado string, intentos int, msg string, siguiente *time.Time) error {
	return r.db.WithContext(ctx).Model(&model.EventoOutbox{}).
		Where("id = ? AND estado = ?", id, model.OutboxPendiente).
		Updates(map[string]any{
			"estado":            estado,
			"intentos":          intentos,
			"ultimo_error":      msg,
			"siguiente_intento": siguiente,
		}).Error
}
