package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pasteleria/internal/infra"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueReporte = "jobs:reporte"
	// QueueOutbox has no consumer; it only names the DLQ for exhausted
	// outbox entries.
	QueueOutbox = "outbox"

	JobReporteCorte = "reporte_corte"

	MaxJobAttempts = 3
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts,omitempty"`
}

// ReporteJobPayload asks for a tenant's daily cash report of Fecha
// (YYYY-MM-DD).
type ReporteJobPayload struct {
	TenantID uuid.UUID `json:"tenant_id"`
	Fecha    string    `json:"fecha"`
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP. A Dispatcher without a client is
// valid: Disponible reports false and callers run the work inline.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// Disponible reports whether jobs can be queued.
func (d *Dispatcher) Disponible() bool { return d != nil && d.rdb != nil }

// EnqueueReporte pushes a report job to Redis.
func (d *Dispatcher) EnqueueReporte(ctx context.Context, payload ReporteJobPayload) error {
	return d.enqueue(ctx, QueueReporte, JobReporteCorte, payload)
}

// DeadLetter parks a failed payload for manual inspection. No-op without Redis.
func (d *Dispatcher) DeadLetter(ctx context.Context, queue, jobType string, payload []byte, reason string, attempts int) {
	if !d.Disponible() {
		log.Error().Str("queue", queue).Str("job_type", jobType).Str("reason", reason).
			Msg("dlq: redis no configurado, entrada descartada")
		return
	}
	SendToDLQ(ctx, d.rdb, queue, jobType, payload, reason, attempts)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload any) error {
	if !d.Disponible() {
		return errors.New("dispatcher: redis no configurado")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return push(ctx, d.rdb, queue, Job{Type: jobType, Payload: data})
}

func push(ctx context.Context, rdb *redis.Client, queue string, job Job) error {
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return rdb.LPush(ctx, queue, encoded).Err()
}

// WorkerHandlers are the job executors wired by main.
type WorkerHandlers struct {
	Reporte ProcesadorReporte
	Metrics *infra.Metrics
}

// StartWorkerPool launches numWorkers goroutines consuming the job queues.
// Each goroutine blocks on BRPOP; idle workers use no CPU.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, handlers WorkerHandlers, numWorkers int) {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, handlers, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, h WorkerHandlers, id int) {
	queues := []string{QueueReporte}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop: waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, rdb, h, result[0], result[1])
		}
	}
}

func processJob(ctx context.Context, rdb *redis.Client, h WorkerHandlers, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		SendToDLQ(ctx, rdb, queue, "desconocido", json.RawMessage(fmt.Sprintf("%q", raw)), "json invalido", 0)
		return
	}

	err := ejecutarJob(ctx, h, job)
	if err == nil {
		h.Metrics.Job(job.Type, "ok")
		return
	}

	job.Attempts++
	if job.Attempts >= MaxJobAttempts || errors.Is(err, errJobDesconocido) {
		h.Metrics.Job(job.Type, "dlq")
		SendToDLQ(ctx, rdb, queue, job.Type, job.Payload,
			fmt.Sprintf("max retries (%d) exceeded: %s", MaxJobAttempts, err.Error()), job.Attempts)
		return
	}

	h.Metrics.Job(job.Type, "retry")
	log.Warn().Err(err).Str("type", job.Type).Int("attempts", job.Attempts).Msg("job failed, re-enqueued")
	if pErr := push(ctx, rdb, queue, job); pErr != nil {
		log.Error().Err(pErr).Str("queue", queue).Msg("failed to re-enqueue job")
	}
}

var errJobDesconocido = errors.New("tipo de job desconocido")

func ejecutarJob(ctx context.Context, h WorkerHandlers, job Job) error {
	switch job.Type {
	case JobReporteCorte:
		var p ReporteJobPayload
		if err := json.Unmarshal(job.Payload, &p); err != nil {
			return fmt.Errorf("%w: payload invalido: %v", errJobDesconocido, err)
		}
		if h.Reporte == nil {
			return errors.New("procesador de reportes no configurado")
		}
		if p.TenantID == uuid.Nil {
			return fmt.Errorf("%w: tenant_id faltante", errJobDesconocido)
		}
		log.Info().Str("type", job.Type).Str("tenant_id", p.TenantID.String()).Str("fecha", p.Fecha).Msg("processing job")
		return h.Reporte.Procesar(ctx, p.TenantID, p.Fecha)
	default:
		return fmt.Errorf("%w: %s", errJobDesconocido, job.Type)
	}
}
