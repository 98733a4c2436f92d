package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type procesadorFake struct {
	tenants []uuid.UUID
	fechas  []string
	err     error
}

func (p *procesadorFake) Procesar(_ context.Context, tenantID uuid.UUID, fecha string) error {
	p.tenants = append(p.tenants, tenantID)
	p.fechas = append(p.fechas, fecha)
	return p.err
}

func jobReporte(t *testing.T, tenantID uuid.UUID, fecha string) Job {
	t.Helper()
	data, err := json.Marshal(ReporteJobPayload{TenantID: tenantID, Fecha: fecha})
	require.NoError(t, err)
	return Job{Type: JobReporteCorte, Payload: data}
}

func TestEjecutarJob_Reporte(t *testing.T) {
	p := &procesadorFake{}
	tenant := uuid.New()
	err := ejecutarJob(context.Background(), WorkerHandlers{Reporte: p}, jobReporte(t, tenant, "2026-03-14"))
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{tenant}, p.tenants)
	assert.Equal(t, []string{"2026-03-14"}, p.fechas)
}

func TestEjecutarJob_ReporteSinTenant(t *testing.T) {
	p := &procesadorFake{}
	err := ejecutarJob(context.Background(), WorkerHandlers{Reporte: p}, jobReporte(t, uuid.Nil, "2026-03-14"))
	assert.ErrorIs(t, err, errJobDesconocido)
	assert.Empty(t, p.fechas)
}

func TestEjecutarJob_TipoDesconocido(t *testing.T) {
	err := ejecutarJob(context.Background(), WorkerHandlers{}, Job{Type: "factura_pdf"})
	assert.ErrorIs(t, err, errJobDesconocido)

	err = ejecutarJob(context.Background(), WorkerHandlers{Reporte: &procesadorFake{}},
		Job{Type: JobReporteCorte, Payload: json.RawMessage(`"no es objeto"`)})
	assert.ErrorIs(t, err, errJobDesconocido)
}

func TestEjecutarJob_SinProcesador(t *testing.T) {
	err := ejecutarJob(context.Background(), WorkerHandlers{}, jobReporte(t, uuid.New(), "2026-03-14"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, errJobDesconocido)
}

func TestDispatcher_SinRedis(t *testing.T) {
	var nilDispatcher *Dispatcher
	assert.False(t, nilDispatcher.Disponible())

	d := NewDispatcher(nil)
	assert.False(t, d.Disponible())
	assert.Error(t, d.EnqueueReporte(context.Background(), ReporteJobPayload{TenantID: uuid.New(), Fecha: "2026-03-14"}))

	// only logs
	d.DeadLetter(context.Background(), QueueOutbox, "comision.registrar", []byte(`{}`), "agotado", 5)
}

type outboxFake struct {
	ahora time.Time
	limit int
	ok    int
	err   error
}

func (o *outboxFake) ProcesarPendientes(_ context.Context, ahora time.Time, limit int) (int, error) {
	o.ahora, o.limit = ahora, limit
	return o.ok, o.err
}

func TestRelayOnce(t *testing.T) {
	ahora := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	p := &outboxFake{ok: 3}

	relayOnce(context.Background(), p, nil, ahora)
	assert.Equal(t, ahora, p.ahora)
	assert.Equal(t, relayBatchSize, p.limit)

	p.err = errors.New("db caida")
	relayOnce(context.Background(), p, nil, ahora)
}
