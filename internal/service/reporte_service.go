package service

import (
	"context"

	"pasteleria/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ReporteService hands a tenant's daily cash report to whoever delivers it.
type ReporteService interface {
	SolicitarEnvio(ctx context.Context, tenantID uuid.UUID, fecha string) error
}

type reporteService struct {
	dispatcher *worker.Dispatcher
	procesador worker.ProcesadorReporte
}

// NewReporteService queues through Redis when the dispatcher has a queue and
// falls back to running the job inline.
func NewReporteService(dispatcher *worker.Dispatcher, procesador worker.ProcesadorReporte) ReporteService {
	return &reporteService{dispatcher: dispatcher, procesador: procesador}
}

func (s *reporteService) SolicitarEnvio(ctx context.Context, tenantID uuid.UUID, fecha string) error {
	if s.dispatcher != nil && s.dispatcher.Disponible() {
		err := s.dispatcher.EnqueueReporte(ctx, worker.ReporteJobPayload{TenantID: tenantID, Fecha: fecha})
		if err == nil {
			return nil
		}
		if s.procesador == nil {
			return err
		}
		log.Warn().Err(err).Str("tenant_id", tenantID.String()).Str("fecha", fecha).Msg("reporte: cola no disponible, se procesa en linea")
	}
	if s.procesador == nil {
		return nil
	}
	return s.procesador.Procesar(ctx, tenantID, fecha)
}
