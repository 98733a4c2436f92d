package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pasteleria/internal/dto"
	"pasteleria/internal/model"
	"pasteleria/internal/repository"
	"pasteleria/internal/scope"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CajaService runs one cash register per tenant. Operations on a single
// cut need a concrete tenant in the filter; superadmins name it through the
// tenant override.
type CajaService interface {
	ObtenerOCrearCorte(ctx context.Context, filtro scope.Filtro, fecha string) (*model.CorteCaja, error)
	// RegistrarMovimiento books on today's cut and returns the updated day.
	RegistrarMovimiento(ctx context.Context, actor *scope.Identidad, filtro scope.Filtro, req dto.MovimientoRequest) (*dto.ResumenCajaResponse, error)
	CerrarDia(ctx context.Context, actor *scope.Identidad, filtro scope.Filtro, req dto.CerrarCajaRequest) (*dto.CorteResponse, error)
	// Resumen opens today's cut on first read. Other dates must already
	// have one.
	Resumen(ctx context.Context, filtro scope.Filtro, fecha string) (*dto.ResumenCajaResponse, error)
	Historial(ctx context.Context, filtro scope.Filtro, page, limit int) (*dto.HistorialCajaResponse, error)
	// ReenviarReporte queues the report of a closed day again. A report that
	// already went out is not sent twice.
	ReenviarReporte(ctx context.Context, filtro scope.Filtro, fecha string) error
}

type cajaService struct {
	repo      repository.CajaRepository
	auditoria AuditoriaService
	reportes  ReporteService
	loc       *time.Location
	now       func() time.Time
}

func NewCajaService(repo repository.CajaRepository, auditoria AuditoriaService, reportes ReporteService, loc *time.Location) CajaService {
	if loc == nil {
		loc = time.UTC
	}
	return &cajaService{repo: repo, auditoria: auditoria, reportes: reportes, loc: loc, now: time.Now}
}

func (s *cajaService) hoy() string { return s.now().In(s.loc).Format(formatoFecha) }

func (s *cajaService) fechaODefault(campo, fecha string) (string, error) {
	fecha = strings.TrimSpace(fecha)
	if fecha == "" {
		return s.hoy(), nil
	}
	if _, err := time.Parse(formatoFecha, fecha); err != nil {
		return "", nuevaValidacion(campo, "fecha invalida, se espera YYYY-MM-DD")
	}
	return fecha, nil
}

func tenantDeCaja(filtro scope.Filtro) (uuid.UUID, error) {
	id, ok := filtro.TenantParaCrear()
	if !ok {
		return uuid.Nil, nuevaValidacion("tenant_id", "requerido")
	}
	return id, nil
}

func (s *cajaService) ObtenerOCrearCorte(ctx context.Context, filtro scope.Filtro, fecha string) (*model.CorteCaja, error) {
	tenantID, err := tenantDeCaja(filtro)
	if err != nil {
		return nil, err
	}
	fecha, err = s.fechaODefault("fecha", fecha)
	if err != nil {
		return nil, err
	}
	c, err := s.repo.ObtenerOCrear(ctx, tenantID, fecha)
	if err != nil {
		return nil, fmt.Errorf("caja: corte %s: %w", fecha, err)
	}
	return c, nil
}

// ── RegistrarMovimiento ───────────────────────────────────────────────────────
// Movements are immutable. The running totals move in the same transaction
// as the insert, through an in-SQL increment guarded by estado = abierto.

func (s *cajaService) RegistrarMovimiento(ctx context.Context, actor *scope.Identidad, filtro scope.Filtro, req dto.MovimientoRequest) (*dto.ResumenCajaResponse, error) {
	v := &ValidationError{}
	tenantID, ok := filtro.TenantParaCrear()
	if !ok {
		v.Add("tenant_id", "requerido")
	}
	tipo := strings.TrimSpace(req.Tipo)
	categoria := strings.TrimSpace(req.Categoria)
	if tipo != model.MovimientoIngreso && tipo != model.MovimientoEgreso {
		v.Add("tipo", "debe ser ingreso o egreso")
	} else if !model.CategoriaValida(tipo, categoria) {
		v.Add("categoria", "debe ser una de: "+strings.Join(model.CategoriasMovimiento[tipo], ", "))
	}
	monto, err := NormalizarImporte("monto", req.Monto.Raw)
	if err != nil {
		v.Add("monto", "importe invalido")
	} else if !monto.GreaterThan(decimal.Zero) {
		v.Add("monto", "debe ser mayor a cero")
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	fecha := s.hoy()
	corte, err := s.repo.ObtenerOCrear(ctx, tenantID, fecha)
	if err != nil {
		return nil, fmt.Errorf("caja: corte %s: %w", fecha, err)
	}
	if corte.Estado == model.CorteCerrado {
		return nil, ErrCorteCerrado
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		n, err := s.repo.AplicarMovimiento(ctx, tx, corte.ID, tipo, monto)
		if err != nil {
			return fmt.Errorf("caja: totales: %w", err)
		}
		if n == 0 {
			return ErrCorteCerrado
		}
		mov := &model.MovimientoCaja{
			CorteID:     corte.ID,
			Tipo:        tipo,
			Monto:       monto,
			Categoria:   categoria,
			Descripcion: req.Descripcion,
			Referencia:  req.Referencia,
			UsuarioID:   actorID(actor),
			CreatedAt:   s.now().UTC(),
		}
		if err := s.repo.CreateMovimiento(ctx, tx, mov); err != nil {
			return fmt.Errorf("caja: movimiento: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Reload so the totals include this movement.
	corte, err = s.repo.FindByFecha(ctx, nil, tenantID, fecha)
	if err != nil {
		return nil, fmt.Errorf("caja: releer corte %s: %w", fecha, err)
	}
	return s.armarResumen(ctx, corte)
}

// ── CerrarDia ─────────────────────────────────────────────────────────────────
// abierto → cerrado is one-way. Closing again returns the stored cut without
// touching the closing stamp. The first close queues the daily report.

func (s *cajaService) CerrarDia(ctx context.Context, actor *scope.Identidad, filtro scope.Filtro, req dto.CerrarCajaRequest) (*dto.CorteResponse, error) {
	tenantID, err := tenantDeCaja(filtro)
	if err != nil {
		return nil, err
	}
	fecha, err := s.fechaODefault("fecha", req.Fecha)
	if err != nil {
		return nil, err
	}
	corte, err := s.repo.FindByFecha(ctx, nil, tenantID, fecha)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if corte.Estado == model.CorteCerrado {
		resp := toCorteResponse(corte, s.loc)
		return &resp, nil
	}

	n, err := s.repo.Cerrar(ctx, nil, corte.ID, actorID(actor), req.Notas, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("caja: cerrar %s: %w", fecha, err)
	}
	corte, err = s.repo.FindByFecha(ctx, nil, tenantID, fecha)
	if err != nil {
		return nil, mapNotFound(err)
	}

	if n > 0 {
		log.Info().
			Str("tenant_id", tenantID.String()).
			Str("fecha", fecha).
			Str("saldo_final", corte.SaldoFinal.StringFixed(2)).
			Msg("caja: dia cerrado")

		bg := context.WithoutCancel(ctx)
		s.auditoria.Registrar(bg, EntradaAuditoria{
			TenantID:  &tenantID,
			Entidad:   model.EntidadCorte,
			EntidadID: fecha,
			Accion:    model.AccionUpdate,
			UsuarioID: actorID(actor),
			Metadata: map[string]any{
				"estado":         model.CorteCerrado,
				"total_ingresos": corte.TotalIngresos.StringFixed(2),
				"total_egresos":  corte.TotalEgresos.StringFixed(2),
				"saldo_final":    corte.SaldoFinal.StringFixed(2),
			},
		})
		if s.reportes != nil {
			if err := s.reportes.SolicitarEnvio(bg, tenantID, fecha); err != nil {
				log.Error().Err(err).Str("fecha", fecha).Msg("caja: no se pudo solicitar el reporte")
			}
		}
	}

	resp := toCorteResponse(corte, s.loc)
	return &resp, nil
}

// ── Consultas ─────────────────────────────────────────────────────────────────

func (s *cajaService) Resumen(ctx context.Context, filtro scope.Filtro, fecha string) (*dto.ResumenCajaResponse, error) {
	tenantID, err := tenantDeCaja(filtro)
	if err != nil {
		return nil, err
	}
	fecha, err = s.fechaODefault("fecha", fecha)
	if err != nil {
		return nil, err
	}

	var corte *model.CorteCaja
	if fecha == s.hoy() {
		corte, err = s.repo.ObtenerOCrear(ctx, tenantID, fecha)
		if err != nil {
			return nil, fmt.Errorf("caja: corte %s: %w", fecha, err)
		}
	} else {
		corte, err = s.repo.FindByFecha(ctx, nil, tenantID, fecha)
		if err != nil {
			return nil, mapNotFound(err)
		}
	}
	return s.armarResumen(ctx, corte)
}

func (s *cajaService) armarResumen(ctx context.Context, corte *model.CorteCaja) (*dto.ResumenCajaResponse, error) {
	movs, err := s.repo.ListMovimientos(ctx, corte.ID)
	if err != nil {
		return nil, fmt.Errorf("caja: movimientos: %w", err)
	}
	resp := &dto.ResumenCajaResponse{
		Corte:       toCorteResponse(corte, s.loc),
		Movimientos: make([]dto.MovimientoResponse, 0, len(movs)),
	}
	for i := range movs {
		resp.Movimientos = append(resp.Movimientos, toMovimientoResponse(&movs[i], s.loc))
	}
	return resp, nil
}

func (s *cajaService) Historial(ctx context.Context, filtro scope.Filtro, page, limit int) (*dto.HistorialCajaResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	cortes, total, err := s.repo.Historial(ctx, filtro, page, limit)
	if err != nil {
		return nil, err
	}
	resp := &dto.HistorialCajaResponse{
		Data:  make([]dto.CorteResponse, 0, len(cortes)),
		Total: total,
		Page:  page,
		Limit: limit,
	}
	for i := range cortes {
		resp.Data = append(resp.Data, toCorteResponse(&cortes[i], s.loc))
	}
	return resp, nil
}

func (s *cajaService) ReenviarReporte(ctx context.Context, filtro scope.Filtro, fecha string) error {
	tenantID, err := tenantDeCaja(filtro)
	if err != nil {
		return err
	}
	if _, err := time.Parse(formatoFecha, fecha); err != nil {
		return nuevaValidacion("fecha", "fecha invalida, se espera YYYY-MM-DD")
	}
	corte, err := s.repo.FindByFecha(ctx, nil, tenantID, fecha)
	if err != nil {
		return mapNotFound(err)
	}
	if corte.Estado != model.CorteCerrado {
		return fmt.Errorf("%w: el corte del %s sigue abierto", ErrConflict, fecha)
	}
	if s.reportes == nil {
		return errors.New("caja: envio de reportes no configurado")
	}
	return s.reportes.SolicitarEnvio(ctx, tenantID, fecha)
}

func toCorteResponse(c *model.CorteCaja, loc *time.Location) dto.CorteResponse {
	return dto.CorteResponse{
		ID:             c.ID,
		TenantID:       c.TenantID.String(),
		Fecha:          c.Fecha,
		TotalIngresos:  c.TotalIngresos.Round(2),
		TotalEgresos:   c.TotalEgresos.Round(2),
		SaldoFinal:     c.SaldoFinal.Round(2),
		Estado:         c.Estado,
		CerradoPor:     uuidStr(c.CerradoPor),
		CerradoAt:      timeIn(c.CerradoAt, loc),
		NotasCierre:    c.NotasCierre,
		EmailEstado:    c.EmailEstado,
		EmailError:     c.EmailError,
		EmailEnviadoAt: timeIn(c.EmailEnviadoAt, loc),
	}
}

func toMovimientoResponse(m *model.MovimientoCaja, loc *time.Location) dto.MovimientoResponse {
	return dto.MovimientoResponse{
		ID:          m.ID,
		Tipo:        m.Tipo,
		Monto:       m.Monto.Round(2),
		Categoria:   m.Categoria,
		Descripcion: m.Descripcion,
		Referencia:  m.Referencia,
		UsuarioID:   uuidStr(m.UsuarioID),
		CreatedAt:   m.CreatedAt.In(loc).Format(time.RFC3339),
	}
}

func timeIn(t *time.Time, loc *time.Location) *string {
	if t == nil {
		return nil
	}
	s := t.In(loc).Format(time.RFC3339)
	return &s
}
