package service

import (
	"context"

	"pasteleria/internal/dto"
	"pasteleria/internal/repository"
	"pasteleria/internal/scope"
)

type ClienteService interface {
	Buscar(ctx context.Context, filtro scope.Filtro, q string, limit int) ([]dto.ClienteResponse, error)
}

type clienteService struct {
	repo repository.ClienteRepository
}

func NewClienteService(repo repository.ClienteRepository) ClienteService {
	return &clienteService{repo: repo}
}

func (s *clienteService) Buscar(ctx context.Context, filtro scope.Filtro, q string, limit int) ([]dto.ClienteResponse, error) {
	rows, err := s.repo.Buscar(ctx, filtro, q, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ClienteResponse, len(rows))
	for i, c := range rows {
		out[i] = dto.ClienteResponse{ID: c.ID, Nombre: c.Nombre, Telefono: c.Telefono, Email: c.Email}
	}
	return out, nil
}
