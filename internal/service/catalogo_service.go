package service

import (
	"context"
	"strings"

	"pasteleria/internal/dto"
	"pasteleria/internal/model"
	"pasteleria/internal/repository"
	"pasteleria/internal/scope"
)

// CatalogoService manages the flavor and filling catalogs of each tenant.
type CatalogoService interface {
	Listar(ctx context.Context, filtro scope.Filtro, tipo string) ([]dto.CatalogoResponse, error)
	Crear(ctx context.Context, filtro scope.Filtro, tipo string, req dto.CrearCatalogoRequest) (dto.CatalogoResponse, error)
	Desactivar(ctx context.Context, filtro scope.Filtro, tipo string, id uint) error
}

type catalogoService struct {
	repo repository.CatalogoRepository
}

func NewCatalogoService(repo repository.CatalogoRepository) CatalogoService {
	return &catalogoService{repo: repo}
}

func mapCatalogo(c *model.CatalogoItem) dto.CatalogoResponse {
	return dto.CatalogoResponse{ID: c.ID, Tipo: c.Tipo, Nombre: c.Nombre, Activo: c.Activo}
}

func validarTipo(tipo string) error {
	if !model.TipoCatalogoValido(tipo) {
		return ErrNotFound
	}
	return nil
}

func (s *catalogoService) Listar(ctx context.Context, filtro scope.Filtro, tipo string) ([]dto.CatalogoResponse, error) {
	if err := validarTipo(tipo); err != nil {
		return nil, err
	}
	items, err := s.repo.List(ctx, filtro, tipo)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CatalogoResponse, len(items))
	for i := range items {
		out[i] = mapCatalogo(&items[i])
	}
	return out, nil
}

func (s *catalogoService) Crear(ctx context.Context, filtro scope.Filtro, tipo string, req dto.CrearCatalogoRequest) (dto.CatalogoResponse, error) {
	if err := validarTipo(tipo); err != nil {
		return dto.CatalogoResponse{}, err
	}
	tenantID, ok := filtro.TenantParaCrear()
	if !ok {
		return dto.CatalogoResponse{}, nuevaValidacion("tenant_id", "requerido")
	}
	item := &model.CatalogoItem{
		TenantID: tenantID,
		Tipo:     tipo,
		Nombre:   strings.TrimSpace(req.Nombre),
		Activo:   true,
	}
	if item.Nombre == "" {
		return dto.CatalogoResponse{}, nuevaValidacion("nombre", "requerido")
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return dto.CatalogoResponse{}, err
	}
	return mapCatalogo(item), nil
}

func (s *catalogoService) Desactivar(ctx context.Context, filtro scope.Filtro, tipo string, id uint) error {
	if err := validarTipo(tipo); err != nil {
		return err
	}
	n, err := s.repo.Desactivar(ctx, filtro, tipo, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
