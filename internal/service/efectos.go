package service

// efectos.go: post-commit side effects (transactional outbox).
// Mutations write an EventoOutbox row in their own transaction; after commit
// the entry is executed right away, and the outbox relay retries whatever is
// still pending with exponential backoff.

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"pasteleria/internal/model"
	"pasteleria/internal/repository"
	"pasteleria/internal/worker"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	MaxIntentosOutbox = 5
	// graciaOutbox keeps the relay away from entries the request path is
	// about to dispatch itself.
	graciaOutbox  = time.Minute
	backoffBase   = 30 * time.Second
	backoffMaximo = 30 * time.Minute
)

type comisionPayload struct {
	NumeroFolio     string          `json:"numero_folio"`
	Total           decimal.Decimal `json:"total"`
	AplicadaCliente bool            `json:"aplicada_cliente"`
}

// Efectos owns the outbox lifecycle.
type Efectos interface {
	Encolar(ctx context.Context, tx *gorm.DB, tipo string, payload any) (*model.EventoOutbox, error)
	Despachar(ctx context.Context, eventos ...*model.EventoOutbox)
	// ProcesarPendientes runs up to limit due entries and returns how many
	// succeeded.
	ProcesarPendientes(ctx context.Context, ahora time.Time, limit int) (int, error)
}

type efectos struct {
	repo       repository.OutboxRepository
	comisiones ComisionService
	auditoria  AuditoriaService
	dispatcher *worker.Dispatcher
	now        func() time.Time
}

func NewEfectos(repo repository.OutboxRepository, comisiones ComisionService, auditoria AuditoriaService, dispatcher *worker.Dispatcher) Efectos {
	return &efectos{repo: repo, comisiones: comisiones, auditoria: auditoria, dispatcher: dispatcher, now: time.Now}
}

func (s *efectos) Encolar(ctx context.Context, tx *gorm.DB, tipo string, payload any) (*model.EventoOutbox, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("outbox: marshal %s: %w", tipo, err)
	}
	ahora := s.now().UTC()
	siguiente := ahora.Add(graciaOutbox)
	e := &model.EventoOutbox{
		Tipo:             tipo,
		Payload:          data,
		Estado:           model.OutboxPendiente,
		SiguienteIntento: &siguiente,
		CreatedAt:        ahora,
		UpdatedAt:        ahora,
	}
	if err := s.repo.Create(ctx, tx, e); err != nil {
		return nil, fmt.Errorf("outbox: crear %s: %w", tipo, err)
	}
	return e, nil
}

func (s *efectos) Despachar(ctx context.Context, eventos ...*model.EventoOutbox) {
	for _, e := range eventos {
		if e == nil {
			continue
		}
		s.procesar(ctx, e)
	}
}

func (s *efectos) ProcesarPendientes(ctx context.Context, ahora time.Time, limit int) (int, error) {
	pendientes, err := s.repo.Pendientes(ctx, ahora, limit)
	if err != nil {
		return 0, err
	}
	ok := 0
	for i := range pendientes {
		if ctx.Err() != nil {
			break
		}
		if s.procesar(ctx, &pendientes[i]) {
			ok++
		}
	}
	return ok, nil
}

func (s *efectos) procesar(ctx context.Context, e *model.EventoOutbox) bool {
	err := s.ejecutar(ctx, e)
	if err == nil {
		if mErr := s.repo.MarcarProcesado(ctx, e.ID, s.now()); mErr != nil {
			log.Error().Err(mErr).Str("evento_id", e.ID.String()).Msg("outbox: no se pudo marcar procesado")
		}
		return true
	}

	intentos := e.Intentos + 1
	msg := err.Error()
	if intentos >= MaxIntentosOutbox {
		log.Error().Err(err).
			Str("evento_id", e.ID.String()).
			Str("tipo", e.Tipo).
			Int("intentos", intentos).
			Msg("outbox: reintentos agotados")
		if mErr := s.repo.MarcarError(ctx, e.ID, model.OutboxFallido, intentos, msg, nil); mErr != nil {
			log.Error().Err(mErr).Str("evento_id", e.ID.String()).Msg("outbox: no se pudo marcar fallido")
		}
		if s.dispatcher != nil {
			s.dispatcher.DeadLetter(ctx, worker.QueueOutbox, e.Tipo, e.Payload,
				fmt.Sprintf("max retries (%d) exceeded: %s", MaxIntentosOutbox, msg), intentos)
		}
		return false
	}

	siguiente := s.now().UTC().Add(backoffOutbox(intentos))
	log.Warn().Err(err).
		Str("evento_id", e.ID.String()).
		Str("tipo", e.Tipo).
		Int("intentos", intentos).
		Time("siguiente_intento", siguiente).
		Msg("outbox: efecto fallido, se reintentara")
	if mErr := s.repo.MarcarError(ctx, e.ID, model.OutboxPendiente, intentos, msg, &siguiente); mErr != nil {
		log.Error().Err(mErr).Str("evento_id", e.ID.String()).Msg("outbox: no se pudo reprogramar")
	}
	return false
}

func (s *efectos) ejecutar(ctx context.Context, e *model.EventoOutbox) error {
	switch e.Tipo {
	case model.EventoRegistrarComision:
		var p comisionPayload
		if err := json.Unmarshal(e.Payload, &p); err != nil {
			return fmt.Errorf("payload invalido: %w", err)
		}
		_, err := s.comisiones.Registrar(ctx, p.NumeroFolio, p.Total, p.AplicadaCliente)
		return err
	case model.EventoRegistrarAuditoria:
		var p EntradaAuditoria
		if err := json.Unmarshal(e.Payload, &p); err != nil {
			return fmt.Errorf("payload invalido: %w", err)
		}
		return s.auditoria.Aplicar(ctx, p, e.ID)
	default:
		return fmt.Errorf("tipo de evento desconocido: %s", e.Tipo)
	}
}

// backoffOutbox doubles from 30s and caps at 30 minutes.
func backoffOutbox(intentos int) time.Duration {
	d := time.Duration(float64(backoffBase) * math.Pow(2, float64(intentos-1)))
	if d > backoffMaximo {
		return backoffMaximo
	}
	return d
}
