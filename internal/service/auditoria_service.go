package service

import (
	"context"
	"time"

	"pasteleria/internal/dto"
	"pasteleria/internal/model"
	"pasteleria/internal/repository"
	"pasteleria/internal/scope"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// EntradaAuditoria is one audit fact, also used as the outbox payload.
type EntradaAuditoria struct {
	TenantID  *uuid.UUID     `json:"tenant_id,omitempty"`
	Entidad   string         `json:"entidad"`
	EntidadID string         `json:"entidad_id"`
	Accion    string         `json:"accion"`
	UsuarioID *uuid.UUID     `json:"usuario_id,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

type AuditoriaService interface {
	// Registrar appends an entry. Failures are logged and swallowed.
	Registrar(ctx context.Context, e EntradaAuditoria)
	// Aplicar stores an entry delivered through the outbox; eventoID makes
	// a redelivery a no-op.
	Aplicar(ctx context.Context, e EntradaAuditoria, eventoID uuid.UUID) error
	Listar(ctx context.Context, filtro scope.Filtro, q dto.FiltroAuditoria) ([]dto.AuditoriaResponse, int64, error)
}

type auditoriaService struct {
	repo repository.AuditoriaRepository
	now  func() time.Time
}

func NewAuditoriaService(repo repository.AuditoriaRepository) AuditoriaService {
	return &auditoriaService{repo: repo, now: time.Now}
}

func (s *auditoriaService) Registrar(ctx context.Context, e EntradaAuditoria) {
	if err := s.repo.Create(ctx, nil, s.toModel(e, nil)); err != nil {
		log.Error().Err(err).
			Str("entidad", e.Entidad).
			Str("entidad_id", e.EntidadID).
			Str("accion", e.Accion).
			Msg("auditoria: no se pudo registrar")
	}
}

func (s *auditoriaService) Aplicar(ctx context.Context, e EntradaAuditoria, eventoID uuid.UUID) error {
	return s.repo.Create(ctx, nil, s.toModel(e, &eventoID))
}

func (s *auditoriaService) toModel(e EntradaAuditoria, eventoID *uuid.UUID) *model.Auditoria {
	return &model.Auditoria{
		TenantID:  e.TenantID,
		Entidad:   e.Entidad,
		EntidadID: e.EntidadID,
		Accion:    e.Accion,
		UsuarioID: e.UsuarioID,
		Metadata:  e.Metadata,
		EventoID:  eventoID,
		CreatedAt: s.now().UTC(),
	}
}

func (s *auditoriaService) Listar(ctx context.Context, filtro scope.Filtro, q dto.FiltroAuditoria) ([]dto.AuditoriaResponse, int64, error) {
	rows, total, err := s.repo.List(ctx, filtro, q)
	if err != nil {
		return nil, 0, err
	}
	out := make([]dto.AuditoriaResponse, 0, len(rows))
	for i := range rows {
		a := &rows[i]
		out = append(out, dto.AuditoriaResponse{
			ID:        a.ID,
			TenantID:  uuidStr(a.TenantID),
			Entidad:   a.Entidad,
			EntidadID: a.EntidadID,
			Accion:    a.Accion,
			UsuarioID: uuidStr(a.UsuarioID),
			Metadata:  a.Metadata,
			CreatedAt: a.CreatedAt.Format(time.RFC3339),
		})
	}
	return out, total, nil
}

func uuidStr(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func timeStr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
