package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
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

const formatoHora = "15:04"

// toleranciaPago: a balance at or below one cent counts as paid.
var toleranciaPago = decimal.RequireFromString("0.01")

const (
	colorCancelado = "#9E9E9E"
	colorPagado    = "#4CAF50"
	colorPendiente = "#FF9800"
)

type FolioService interface {
	Crear(ctx context.Context, actor *scope.Identidad, filtro scope.Filtro, req dto.CrearFolioRequest) (*dto.FolioResponse, error)
	Obtener(ctx context.Context, filtro scope.Filtro, id uint) (*dto.FolioResponse, error)
	Listar(ctx context.Context, filtro scope.Filtro, q dto.FiltroFolios) (*dto.FolioListResponse, error)
	Actualizar(ctx context.Context, actor *scope.Identidad, filtro scope.Filtro, id uint, req dto.ActualizarFolioRequest) (*dto.FolioResponse, error)
	Cancelar(ctx context.Context, actor *scope.Identidad, filtro scope.Filtro, id uint, motivo string) (*dto.FolioResponse, error)
	ActualizarEstatus(ctx context.Context, actor *scope.Identidad, filtro scope.Filtro, id uint, estatus string) (*dto.FolioResponse, error)
	Eliminar(ctx context.Context, actor *scope.Identidad, filtro scope.Filtro, id uint) error
	Calendario(ctx context.Context, filtro scope.Filtro, desde, hasta string) ([]dto.EventoCalendario, error)
	Dashboard(ctx context.Context, filtro scope.Filtro) (*dto.DashboardResponse, error)
}

type folioService struct {
	repo       repository.FolioRepository
	secuencias repository.SecuenciaRepository
	clientes   repository.ClienteRepository
	catalogos  repository.CatalogoRepository
	comisiones ComisionService
	efectos    Efectos
	prefijo    string
	loc        *time.Location
	now        func() time.Time
}

func NewFolioService(
	repo repository.FolioRepository,
	secuencias repository.SecuenciaRepository,
	clientes repository.ClienteRepository,
	catalogos repository.CatalogoRepository,
	comisiones ComisionService,
	efectos Efectos,
	prefijo string,
	loc *time.Location,
) FolioService {
	if loc == nil {
		loc = time.UTC
	}
	return &folioService{
		repo:       repo,
		secuencias: secuencias,
		clientes:   clientes,
		catalogos:  catalogos,
		comisiones: comisiones,
		efectos:    efectos,
		prefijo:    prefijo,
		loc:        loc,
		now:        time.Now,
	}
}

// ── Crear ─────────────────────────────────────────────────────────────────────
// Validation first (all missing fields at once), then one transaction:
// catalog resolution, client link, folio number, insert, outbox entries.
// Commission and audit run after commit and never fail the request.

func (s *folioService) Crear(ctx context.Context, actor *scope.Identidad, filtro scope.Filtro, req dto.CrearFolioRequest) (*dto.FolioResponse, error) {
	v := &ValidationError{}
	nombre := strings.TrimSpace(req.ClienteNombre)
	telefono := strings.TrimSpace(req.ClienteTelefono)
	fecha := strings.TrimSpace(req.FechaEntrega)
	hora := strings.TrimSpace(req.HoraEntrega)

	requerir(v, "cliente_nombre", nombre)
	requerir(v, "cliente_telefono", telefono)
	requerir(v, "fecha_entrega", fecha)
	requerir(v, "hora_entrega", hora)
	validarFechaHora(v, fecha, hora)

	importes := normalizarImportes(v, map[string]string{
		"costo_base":  req.CostoBase.Raw,
		"costo_envio": req.CostoEnvio.Raw,
		"anticipo":    req.Anticipo.Raw,
	})

	tenantID, ok := filtro.TenantParaCrear()
	if !ok {
		v.Add("tenant_id", "requerido")
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	subtotal := importes["costo_base"].Add(importes["costo_envio"])
	total := subtotal
	if _, redondeado := s.comisiones.Calcular(subtotal, req.AplicarComision); redondeado != nil {
		total = total.Add(*redondeado)
	}
	anticipo := importes["anticipo"]
	estatusPago := calcularEstatusPago(total, anticipo)

	auditMeta := map[string]any{}
	privilegiado := actor != nil && actor.Rol.Privilegiado()
	if req.Total != nil && req.Total.Present {
		if !privilegiado {
			auditMeta["override_ignorado"] = "total"
		} else {
			t, err := NormalizarImporte("total", req.Total.Raw)
			if err != nil {
				return nil, err
			}
			auditMeta["total_calculado"] = total.StringFixed(2)
			auditMeta["total_override"] = t.StringFixed(2)
			total = t
			estatusPago = calcularEstatusPago(total, anticipo)
		}
	}
	if req.EstatusPago != nil && *req.EstatusPago != "" {
		if !privilegiado {
			auditMeta["override_ignorado_estatus_pago"] = *req.EstatusPago
		} else {
			auditMeta["estatus_pago_calculado"] = estatusPago
			auditMeta["estatus_pago_override"] = *req.EstatusPago
			estatusPago = *req.EstatusPago
		}
	}

	folio := &model.Folio{
		TenantID:          tenantID,
		ResponsableID:     actorID(actor),
		ClienteNombre:     nombre,
		ClienteTelefono:   telefono,
		FechaEntrega:      fecha,
		HoraEntrega:       hora,
		CostoBase:         importes["costo_base"],
		CostoEnvio:        importes["costo_envio"],
		Anticipo:          anticipo,
		Total:             total,
		AplicarComision:   req.AplicarComision,
		EstatusPago:       estatusPago,
		EstatusProduccion: model.ProduccionPendiente,
		EstatusFolio:      model.EstatusFolioActivo,
		Complementos:      toComplementos(req.Complementos),
		Diseno:            req.Diseno,
		Metadata:          copiarMetadata(req.Metadata),
	}
	delete(folio.Metadata, "sabor_ids")
	delete(folio.Metadata, "relleno_ids")

	var eventos []*model.EventoOutbox
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.resolverComposicion(ctx, tx, folio, req.Sabores, req.Rellenos); err != nil {
			return err
		}
		if err := s.vincularCliente(ctx, tx, folio, req.ClienteID); err != nil {
			return err
		}

		n, err := s.secuencias.Siguiente(ctx, tx, model.SecuenciaFolio)
		if err != nil {
			return fmt.Errorf("folio: numerar: %w", err)
		}
		folio.NumeroFolio = fmt.Sprintf("%s%06d", s.prefijo, n)

		if err := s.repo.Create(ctx, tx, folio); err != nil {
			return fmt.Errorf("folio: crear: %w", err)
		}

		ev, err := s.efectos.Encolar(ctx, tx, model.EventoRegistrarComision, comisionPayload{
			NumeroFolio:     folio.NumeroFolio,
			Total:           subtotal,
			AplicadaCliente: folio.AplicarComision,
		})
		if err != nil {
			return err
		}
		eventos = append(eventos, ev)

		auditMeta["numero_folio"] = folio.NumeroFolio
		auditMeta["total"] = folio.Total.StringFixed(2)
		auditMeta["estatus_pago"] = folio.EstatusPago
		ev, err = s.encolarAuditoria(ctx, tx, actor, folio, model.AccionCreate, auditMeta)
		if err != nil {
			return err
		}
		eventos = append(eventos, ev)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.efectos.Despachar(context.WithoutCancel(ctx), eventos...)

	log.Info().
		Str("numero_folio", folio.NumeroFolio).
		Str("tenant_id", folio.TenantID.String()).
		Str("total", folio.Total.StringFixed(2)).
		Msg("folio creado")

	resp := toFolioResponse(folio)
	return &resp, nil
}

// ── Lectura ───────────────────────────────────────────────────────────────────

func (s *folioService) Obtener(ctx context.Context, filtro scope.Filtro, id uint) (*dto.FolioResponse, error) {
	f, err := s.repo.FindByID(ctx, nil, filtro, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	resp := toFolioResponse(f)
	return &resp, nil
}

func (s *folioService) Listar(ctx context.Context, filtro scope.Filtro, q dto.FiltroFolios) (*dto.FolioListResponse, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 || q.Limit > 100 {
		q.Limit = 20
	}
	folios, total, err := s.repo.List(ctx, filtro, q)
	if err != nil {
		return nil, err
	}
	data := make([]dto.FolioResponse, 0, len(folios))
	for i := range folios {
		data = append(data, toFolioResponse(&folios[i]))
	}
	totalPages := int(total) / q.Limit
	if int(total)%q.Limit != 0 {
		totalPages++
	}
	return &dto.FolioListResponse{
		Data:       data,
		Total:      total,
		Page:       q.Page,
		Limit:      q.Limit,
		TotalPages: totalPages,
	}, nil
}

// ── Actualizar ────────────────────────────────────────────────────────────────
// Only the fields in ActualizarFolioRequest can change. Totals and payment
// status are always recomputed from the stored costs.

func (s *folioService) Actualizar(ctx context.Context, actor *scope.Identidad, filtro scope.Filtro, id uint, req dto.ActualizarFolioRequest) (*dto.FolioResponse, error) {
	v := &ValidationError{}
	if req.ClienteNombre != nil {
		requerir(v, "cliente_nombre", strings.TrimSpace(*req.ClienteNombre))
	}
	if req.ClienteTelefono != nil {
		requerir(v, "cliente_telefono", strings.TrimSpace(*req.ClienteTelefono))
	}
	fecha, hora := "", ""
	if req.FechaEntrega != nil {
		fecha = strings.TrimSpace(*req.FechaEntrega)
		requerir(v, "fecha_entrega", fecha)
	}
	if req.HoraEntrega != nil {
		hora = strings.TrimSpace(*req.HoraEntrega)
		requerir(v, "hora_entrega", hora)
	}
	validarFechaHora(v, fecha, hora)

	raw := map[string]string{}
	if req.CostoBase != nil {
		raw["costo_base"] = req.CostoBase.Raw
	}
	if req.CostoEnvio != nil {
		raw["costo_envio"] = req.CostoEnvio.Raw
	}
	if req.Anticipo != nil {
		raw["anticipo"] = req.Anticipo.Raw
	}
	importes := normalizarImportes(v, raw)
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	var folio *model.Folio
	var eventos []*model.EventoOutbox
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		f, err := s.repo.FindByID(ctx, tx, filtro, id)
		if err != nil {
			return mapNotFound(err)
		}
		if f.Cancelado() {
			return ErrFolioCancelado
		}

		var campos []string
		if req.ClienteNombre != nil {
			f.ClienteNombre = strings.TrimSpace(*req.ClienteNombre)
			campos = append(campos, "cliente_nombre")
		}
		if req.ClienteTelefono != nil {
			f.ClienteTelefono = strings.TrimSpace(*req.ClienteTelefono)
			campos = append(campos, "cliente_telefono")
		}
		if req.FechaEntrega != nil {
			f.FechaEntrega = fecha
			campos = append(campos, "fecha_entrega")
		}
		if req.HoraEntrega != nil {
			f.HoraEntrega = hora
			campos = append(campos, "hora_entrega")
		}
		if d, ok := importes["costo_base"]; ok {
			f.CostoBase = d
			campos = append(campos, "costo_base")
		}
		if d, ok := importes["costo_envio"]; ok {
			f.CostoEnvio = d
			campos = append(campos, "costo_envio")
		}
		if d, ok := importes["anticipo"]; ok {
			f.Anticipo = d
			campos = append(campos, "anticipo")
		}
		if req.Sabores != nil || req.Rellenos != nil {
			if err := s.resolverComposicion(ctx, tx, f, req.Sabores, req.Rellenos); err != nil {
				return err
			}
			campos = append(campos, "composicion")
		}
		if req.Complementos != nil {
			f.Complementos = toComplementos(req.Complementos)
			campos = append(campos, "complementos")
		}
		if req.Diseno != nil {
			f.Diseno = *req.Diseno
			campos = append(campos, "diseno")
		}
		if req.Metadata != nil {
			if f.Metadata == nil {
				f.Metadata = map[string]any{}
			}
			for k, val := range req.Metadata {
				if k == "sabor_ids" || k == "relleno_ids" {
					continue
				}
				f.Metadata[k] = val
			}
			campos = append(campos, "metadata")
		}

		subtotal := f.CostoBase.Add(f.CostoEnvio)
		f.Total = subtotal
		if _, redondeado := s.comisiones.Calcular(subtotal, f.AplicarComision); redondeado != nil {
			f.Total = f.Total.Add(*redondeado)
		}
		f.EstatusPago = calcularEstatusPago(f.Total, f.Anticipo)
		f.UpdatedAt = s.now().UTC()

		if err := s.repo.Update(ctx, tx, f); err != nil {
			return fmt.Errorf("folio: actualizar: %w", err)
		}
		ev, err := s.encolarAuditoria(ctx, tx, actor, f, model.AccionUpdate, map[string]any{
			"numero_folio": f.NumeroFolio,
			"campos":       campos,
			"total":        f.Total.StringFixed(2),
			"estatus_pago": f.EstatusPago,
		})
		if err != nil {
			return err
		}
		eventos = append(eventos, ev)
		folio = f
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.efectos.Despachar(context.WithoutCancel(ctx), eventos...)
	resp := toFolioResponse(folio)
	return &resp, nil
}

// ── Cancelar ──────────────────────────────────────────────────────────────────
// Activo → Cancelado is one-way. Cancelling again returns the folio as is,
// without a second audit entry.

func (s *folioService) Cancelar(ctx context.Context, actor *scope.Identidad, filtro scope.Filtro, id uint, motivo string) (*dto.FolioResponse, error) {
	var folio *model.Folio
	var eventos []*model.EventoOutbox
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		f, err := s.repo.FindByID(ctx, tx, filtro, id)
		if err != nil {
			return mapNotFound(err)
		}
		if f.Cancelado() {
			folio = f
			return nil
		}

		var motivoPtr *string
		if m := strings.TrimSpace(motivo); m != "" {
			motivoPtr = &m
		}
		n, err := s.repo.Cancelar(ctx, tx, filtro, id, motivoPtr, s.now().UTC())
		if err != nil {
			return fmt.Errorf("folio: cancelar: %w", err)
		}
		if n > 0 {
			meta := map[string]any{"numero_folio": f.NumeroFolio}
			if motivoPtr != nil {
				meta["motivo"] = *motivoPtr
			}
			ev, err := s.encolarAuditoria(ctx, tx, actor, f, model.AccionCancel, meta)
			if err != nil {
				return err
			}
			eventos = append(eventos, ev)
		}

		folio, err = s.repo.FindByID(ctx, tx, filtro, id)
		return mapNotFound(err)
	})
	if err != nil {
		return nil, err
	}

	s.efectos.Despachar(context.WithoutCancel(ctx), eventos...)
	resp := toFolioResponse(folio)
	return &resp, nil
}

// ── Estatus de produccion ─────────────────────────────────────────────────────

func (s *folioService) ActualizarEstatus(ctx context.Context, actor *scope.Identidad, filtro scope.Filtro, id uint, estatus string) (*dto.FolioResponse, error) {
	estatus = strings.TrimSpace(estatus)
	if !model.EtapaValida(estatus) {
		return nil, nuevaValidacion("estatus_produccion", "debe ser uno de: "+strings.Join(model.EtapasProduccion, ", "))
	}

	var folio *model.Folio
	var eventos []*model.EventoOutbox
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		f, err := s.repo.FindByID(ctx, tx, filtro, id)
		if err != nil {
			return mapNotFound(err)
		}
		if f.Cancelado() {
			return ErrFolioCancelado
		}
		anterior := f.EstatusProduccion
		n, err := s.repo.UpdateEstatusProduccion(ctx, tx, filtro, id, estatus)
		if err != nil {
			return fmt.Errorf("folio: estatus: %w", err)
		}
		if n == 0 {
			return ErrFolioCancelado
		}
		ev, err := s.encolarAuditoria(ctx, tx, actor, f, model.AccionStatus, map[string]any{
			"numero_folio": f.NumeroFolio,
			"de":           anterior,
			"a":            estatus,
		})
		if err != nil {
			return err
		}
		eventos = append(eventos, ev)

		folio, err = s.repo.FindByID(ctx, tx, filtro, id)
		return mapNotFound(err)
	})
	if err != nil {
		return nil, err
	}

	s.efectos.Despachar(context.WithoutCancel(ctx), eventos...)
	resp := toFolioResponse(folio)
	return &resp, nil
}

// ── Eliminar ──────────────────────────────────────────────────────────────────

func (s *folioService) Eliminar(ctx context.Context, actor *scope.Identidad, filtro scope.Filtro, id uint) error {
	var eventos []*model.EventoOutbox
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		f, err := s.repo.FindByID(ctx, tx, filtro, id)
		if err != nil {
			return mapNotFound(err)
		}
		n, err := s.repo.Delete(ctx, tx, filtro, id)
		if err != nil {
			return fmt.Errorf("folio: eliminar: %w", err)
		}
		if n == 0 {
			return ErrNotFound
		}
		ev, err := s.encolarAuditoria(ctx, tx, actor, f, model.AccionDelete, map[string]any{
			"numero_folio":   f.NumeroFolio,
			"cliente_nombre": f.ClienteNombre,
			"total":          f.Total.StringFixed(2),
		})
		if err != nil {
			return err
		}
		eventos = append(eventos, ev)
		return nil
	})
	if err != nil {
		return err
	}
	s.efectos.Despachar(context.WithoutCancel(ctx), eventos...)
	return nil
}

// ── Calendario / Dashboard ────────────────────────────────────────────────────

func (s *folioService) Calendario(ctx context.Context, filtro scope.Filtro, desde, hasta string) ([]dto.EventoCalendario, error) {
	v := &ValidationError{}
	ini, err := time.Parse(formatoFecha, desde)
	if err != nil {
		v.Add("desde", "fecha invalida, se espera YYYY-MM-DD")
	}
	fin, err := time.Parse(formatoFecha, hasta)
	if err != nil {
		v.Add("hasta", "fecha invalida, se espera YYYY-MM-DD")
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}
	if fin.Before(ini) {
		return nil, nuevaValidacion("hasta", "debe ser igual o posterior a desde")
	}

	folios, err := s.repo.ListByRangoEntrega(ctx, filtro, desde, hasta)
	if err != nil {
		return nil, err
	}
	out := make([]dto.EventoCalendario, 0, len(folios))
	for i := range folios {
		f := &folios[i]
		out = append(out, dto.EventoCalendario{
			ID:           f.ID,
			Title:        f.NumeroFolio + " - " + f.ClienteNombre,
			Start:        f.FechaEntrega + "T" + f.HoraEntrega + ":00",
			Color:        colorEvento(f),
			EstatusPago:  f.EstatusPago,
			EstatusFolio: f.EstatusFolio,
		})
	}
	return out, nil
}

func (s *folioService) Dashboard(ctx context.Context, filtro scope.Filtro) (*dto.DashboardResponse, error) {
	hoy := s.now().In(s.loc).Format(formatoFecha)
	st, err := s.repo.Stats(ctx, filtro, hoy)
	if err != nil {
		return nil, err
	}
	return &dto.DashboardResponse{
		Total:                st.Total,
		PendientesProduccion: st.PendientesProduccion,
		EntregasHoy:          st.EntregasHoy,
		TotalVentas:          st.TotalVentas,
		TotalAnticipos:       st.TotalAnticipos,
	}, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// resolverComposicion turns catalog ids into display names. Entries that are
// not numeric are kept as free text. Source ids land in metadata. A nil list
// leaves that part of the composition untouched.
func (s *folioService) resolverComposicion(ctx context.Context, tx *gorm.DB, f *model.Folio, sabores, rellenos []string) error {
	v := &ValidationError{}
	if f.Metadata == nil {
		f.Metadata = map[string]any{}
	}
	partes := []struct {
		tipo, campo, clave string
		entradas           []string
		destino            *[]string
	}{
		{model.CatalogoSabor, "sabores", "sabor_ids", sabores, &f.Sabores},
		{model.CatalogoRelleno, "rellenos", "relleno_ids", rellenos, &f.Rellenos},
	}
	for _, p := range partes {
		if p.entradas == nil {
			continue
		}
		nombres, ids, err := s.resolverCatalogo(ctx, tx, f.TenantID, p.tipo, p.campo, p.entradas, v)
		if err != nil {
			return err
		}
		*p.destino = nombres
		delete(f.Metadata, p.clave)
		if len(ids) > 0 {
			f.Metadata[p.clave] = ids
		}
	}
	return v.OrNil()
}

func (s *folioService) resolverCatalogo(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, tipo, campo string, entradas []string, v *ValidationError) ([]string, []uint, error) {
	var ids []uint
	for _, e := range entradas {
		if n, err := strconv.ParseUint(strings.TrimSpace(e), 10, 64); err == nil {
			ids = append(ids, uint(n))
		}
	}
	items, err := s.catalogos.FindByIDs(ctx, tx, tenantID, tipo, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("folio: catalogo %s: %w", tipo, err)
	}
	porID := make(map[uint]string, len(items))
	for _, it := range items {
		porID[it.ID] = it.Nombre
	}

	nombres := make([]string, 0, len(entradas))
	var usados []uint
	for _, e := range entradas {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		n, err := strconv.ParseUint(e, 10, 64)
		if err != nil {
			nombres = append(nombres, e)
			continue
		}
		nombre, ok := porID[uint(n)]
		if !ok {
			v.Add(campo, "id de catalogo desconocido: "+e)
			continue
		}
		nombres = append(nombres, nombre)
		usados = append(usados, uint(n))
	}
	return nombres, usados, nil
}

// vincularCliente links an explicit client (must be visible in the folio's
// tenant) or finds/creates one by phone.
func (s *folioService) vincularCliente(ctx context.Context, tx *gorm.DB, f *model.Folio, clienteID *uint) error {
	if clienteID != nil {
		c, err := s.clientes.FindByID(ctx, tx, scope.Tenant(f.TenantID), *clienteID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nuevaValidacion("cliente_id", "cliente no encontrado")
		}
		if err != nil {
			return err
		}
		f.ClienteID = &c.ID
		return nil
	}

	c, err := s.clientes.FindByTelefono(ctx, tx, f.TenantID, f.ClienteTelefono)
	if err == nil {
		f.ClienteID = &c.ID
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	nuevo := &model.Cliente{TenantID: f.TenantID, Nombre: f.ClienteNombre, Telefono: f.ClienteTelefono}
	if err := s.clientes.Create(ctx, tx, nuevo); err != nil {
		return fmt.Errorf("folio: crear cliente: %w", err)
	}
	f.ClienteID = &nuevo.ID
	return nil
}

func (s *folioService) encolarAuditoria(ctx context.Context, tx *gorm.DB, actor *scope.Identidad, f *model.Folio, accion string, meta map[string]any) (*model.EventoOutbox, error) {
	tenant := f.TenantID
	return s.efectos.Encolar(ctx, tx, model.EventoRegistrarAuditoria, EntradaAuditoria{
		TenantID:  &tenant,
		Entidad:   model.EntidadFolio,
		EntidadID: strconv.FormatUint(uint64(f.ID), 10),
		Accion:    accion,
		UsuarioID: actorID(actor),
		Metadata:  meta,
	})
}

func calcularEstatusPago(total, anticipo decimal.Decimal) string {
	if total.Sub(anticipo).LessThanOrEqual(toleranciaPago) {
		return model.EstatusPagoPagado
	}
	return model.EstatusPagoPendiente
}

func colorEvento(f *model.Folio) string {
	switch {
	case f.Cancelado():
		return colorCancelado
	case f.EstatusPago == model.EstatusPagoPagado:
		return colorPagado
	default:
		return colorPendiente
	}
}

func requerir(v *ValidationError, campo, valor string) {
	if valor == "" {
		v.Add(campo, "requerido")
	}
}

func validarFechaHora(v *ValidationError, fecha, hora string) {
	if fecha != "" {
		if _, err := time.Parse(formatoFecha, fecha); err != nil {
			v.Add("fecha_entrega", "formato invalido, se espera YYYY-MM-DD")
		}
	}
	if hora != "" {
		if _, err := time.Parse(formatoHora, hora); err != nil {
			v.Add("hora_entrega", "formato invalido, se espera HH:MM")
		}
	}
}

func actorID(actor *scope.Identidad) *uuid.UUID {
	if actor == nil || actor.UsuarioID == uuid.Nil {
		return nil
	}
	id := actor.UsuarioID
	return &id
}

func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func copiarMetadata(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func toComplementos(in []dto.ComplementoRequest) []model.Complemento {
	out := make([]model.Complemento, 0, len(in))
	for _, c := range in {
		out = append(out, model.Complemento{
			Descripcion: strings.TrimSpace(c.Descripcion),
			Personas:    c.Personas,
			Sabor:       c.Sabor,
			Relleno:     c.Relleno,
		})
	}
	return out
}

func toFolioResponse(f *model.Folio) dto.FolioResponse {
	comps := make([]dto.ComplementoResponse, 0, len(f.Complementos))
	for _, c := range f.Complementos {
		comps = append(comps, dto.ComplementoResponse(c))
	}
	sabores := f.Sabores
	if sabores == nil {
		sabores = []string{}
	}
	rellenos := f.Rellenos
	if rellenos == nil {
		rellenos = []string{}
	}
	return dto.FolioResponse{
		ID:                f.ID,
		NumeroFolio:       f.NumeroFolio,
		TenantID:          f.TenantID.String(),
		ClienteID:         f.ClienteID,
		ClienteNombre:     f.ClienteNombre,
		ClienteTelefono:   f.ClienteTelefono,
		FechaEntrega:      f.FechaEntrega,
		HoraEntrega:       f.HoraEntrega,
		CostoBase:         f.CostoBase,
		CostoEnvio:        f.CostoEnvio,
		Anticipo:          f.Anticipo,
		Total:             f.Total,
		Saldo:             f.Total.Sub(f.Anticipo),
		AplicarComision:   f.AplicarComision,
		EstatusPago:       f.EstatusPago,
		EstatusProduccion: f.EstatusProduccion,
		EstatusFolio:      f.EstatusFolio,
		Sabores:           sabores,
		Rellenos:          rellenos,
		Complementos:      comps,
		Diseno:            f.Diseno,
		Metadata:          f.Metadata,
		MotivoCancelacion: f.MotivoCancelacion,
		CanceladoAt:       timeStr(f.CanceladoAt),
		CreatedAt:         f.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         f.UpdatedAt.Format(time.RFC3339),
	}
}

func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}
