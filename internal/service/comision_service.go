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

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const formatoFecha = "2006-01-02"

type ComisionService interface {
	// Registrar is idempotent per folio number: the first stored row wins and
	// later calls return it unchanged, whatever total they carry.
	Registrar(ctx context.Context, numeroFolio string, total decimal.Decimal, aplicadaCliente bool) (*model.Comision, error)
	// Reporte covers the inclusive day range [desde, hasta] in the shop's
	// time zone, limited to folios visible under filtro.
	Reporte(ctx context.Context, filtro scope.Filtro, desde, hasta string) (*dto.ReporteComisionesResponse, error)
	// Calcular returns the raw 4-decimal amount and, when charged to the
	// customer, the 2-decimal amount added to the folio total.
	Calcular(total decimal.Decimal, aplicadaCliente bool) (decimal.Decimal, *decimal.Decimal)
}

type comisionService struct {
	repo repository.ComisionRepository
	tasa decimal.Decimal
	loc  *time.Location
	now  func() time.Time
}

func NewComisionService(repo repository.ComisionRepository, tasa decimal.Decimal, loc *time.Location) ComisionService {
	return newComisionService(repo, tasa, loc, time.Now)
}

func newComisionService(repo repository.ComisionRepository, tasa decimal.Decimal, loc *time.Location, now func() time.Time) *comisionService {
	if loc == nil {
		loc = time.UTC
	}
	return &comisionService{repo: repo, tasa: tasa, loc: loc, now: now}
}

func (s *comisionService) Calcular(total decimal.Decimal, aplicadaCliente bool) (decimal.Decimal, *decimal.Decimal) {
	monto := total.Mul(s.tasa).Round(4)
	if !aplicadaCliente {
		return monto, nil
	}
	r := monto.Round(2)
	return monto, &r
}

func (s *comisionService) Registrar(ctx context.Context, numeroFolio string, total decimal.Decimal, aplicadaCliente bool) (*model.Comision, error) {
	numeroFolio = strings.TrimSpace(numeroFolio)
	if numeroFolio == "" {
		return nil, nuevaValidacion("numero_folio", "requerido")
	}
	if total.IsNegative() {
		return nil, nuevaValidacion("total", "no puede ser negativo")
	}

	existente, err := s.repo.FindByNumeroFolio(ctx, numeroFolio)
	if err == nil {
		return existente, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("comision: buscar %s: %w", numeroFolio, err)
	}

	monto, redondeado := s.Calcular(total, aplicadaCliente)
	c := &model.Comision{
		NumeroFolio:     numeroFolio,
		Total:           total.Round(2),
		Monto:           monto,
		AplicadaCliente: aplicadaCliente,
		MontoRedondeado: redondeado,
		CreatedAt:       s.now().UTC(),
	}
	creada, err := s.repo.CreateIfAbsent(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("comision: crear %s: %w", numeroFolio, err)
	}
	if creada {
		return c, nil
	}

	// Lost the race to a concurrent call: return the winner's row.
	ganador, err := s.repo.FindByNumeroFolio(ctx, numeroFolio)
	if err != nil {
		return nil, fmt.Errorf("comision: releer %s: %w", numeroFolio, err)
	}
	return ganador, nil
}

func (s *comisionService) Reporte(ctx context.Context, filtro scope.Filtro, desde, hasta string) (*dto.ReporteComisionesResponse, error) {
	v := &ValidationError{}
	ini, err := time.ParseInLocation(formatoFecha, desde, s.loc)
	if err != nil {
		v.Add("desde", "fecha invalida, se espera YYYY-MM-DD")
	}
	fin, err := time.ParseInLocation(formatoFecha, hasta, s.loc)
	if err != nil {
		v.Add("hasta", "fecha invalida, se espera YYYY-MM-DD")
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}
	if fin.Before(ini) {
		return nil, nuevaValidacion("hasta", "debe ser igual o posterior a desde")
	}

	rows, err := s.repo.ListByRango(ctx, filtro, ini, fin.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	resp := &dto.ReporteComisionesResponse{
		Desde:          desde,
		Hasta:          hasta,
		TotalAbsorbido: decimal.Zero,
		TotalCliente:   decimal.Zero,
		Cantidad:       len(rows),
		Detalle:        make([]dto.ComisionResponse, 0, len(rows)),
	}
	for i := range rows {
		c := &rows[i]
		if c.AplicadaCliente && c.MontoRedondeado != nil {
			resp.TotalCliente = resp.TotalCliente.Add(*c.MontoRedondeado)
		} else {
			resp.TotalAbsorbido = resp.TotalAbsorbido.Add(c.Monto)
		}
		resp.Detalle = append(resp.Detalle, toComisionResponse(c, s.loc))
	}
	resp.TotalAbsorbido = resp.TotalAbsorbido.Round(4)
	resp.TotalCliente = resp.TotalCliente.Round(2)
	return resp, nil
}

func toComisionResponse(c *model.Comision, loc *time.Location) dto.ComisionResponse {
	return dto.ComisionResponse{
		ID:              c.ID,
		NumeroFolio:     c.NumeroFolio,
		Total:           c.Total,
		Monto:           c.Monto,
		AplicadaCliente: c.AplicadaCliente,
		MontoRedondeado: c.MontoRedondeado,
		CreatedAt:       c.CreatedAt.In(loc).Format(time.RFC3339),
	}
}
