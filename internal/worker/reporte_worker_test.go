package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"pasteleria/internal/infra"
	"pasteleria/internal/model"
	"pasteleria/internal/repository"
	"pasteleria/internal/testutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── Fakes ─────────────────────────────────────────────────────────────────────

type mailerFake struct {
	mu       sync.Mutex
	enviados []mensaje
	err      error
}

type mensaje struct {
	para     []string
	asunto   string
	cuerpo   string
	adjuntos []infra.Adjunto
}

func (m *mailerFake) Enviar(_ context.Context, para []string, asunto, cuerpo string, adjuntos ...infra.Adjunto) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.enviados = append(m.enviados, mensaje{para: para, asunto: asunto, cuerpo: cuerpo, adjuntos: adjuntos})
	return nil
}

func (m *mailerFake) total() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.enviados)
}

type lockerFake struct {
	ocupado   bool
	liberados []string
}

func (l *lockerFake) Adquirir(context.Context, string, time.Duration) (bool, error) {
	return !l.ocupado, nil
}

func (l *lockerFake) Liberar(_ context.Context, key string) error {
	l.liberados = append(l.liberados, key)
	return nil
}

type almacenFake struct{ nombres []string }

func (a *almacenFake) Guardar(_ context.Context, nombre, _ string, _ []byte) (string, error) {
	a.nombres = append(a.nombres, nombre)
	return "/tmp/" + nombre, nil
}

// ── Setup ─────────────────────────────────────────────────────────────────────

type reporteEnv struct {
	cajas  repository.CajaRepository
	worker *ReporteWorker
	mailer *mailerFake
	corte  *model.CorteCaja
	tenant uuid.UUID
}

func nuevoReporteEnv(t *testing.T, destinatarios ...string) *reporteEnv {
	t.Helper()
	db := testutil.NewDB(t)
	ctx := context.Background()

	cajas := repository.NewCajaRepository(db)
	folios := repository.NewFolioRepository(db)

	tenant := uuid.New()
	corte, err := cajas.ObtenerOCrear(ctx, tenant, "2026-03-14")
	require.NoError(t, err)
	n, err := cajas.AplicarMovimiento(ctx, nil, corte.ID, model.MovimientoIngreso, decimal.RequireFromString("500"))
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
	require.NoError(t, cajas.CreateMovimiento(ctx, nil, &model.MovimientoCaja{
		CorteID:   corte.ID,
		Tipo:      model.MovimientoIngreso,
		Monto:     decimal.RequireFromString("500"),
		Categoria: "venta",
		CreatedAt: time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC),
	}))
	require.NoError(t, folios.Create(ctx, nil, &model.Folio{
		NumeroFolio:       "FOL-000001",
		TenantID:          tenant,
		ClienteNombre:     "Ana Torres",
		ClienteTelefono:   "5512345678",
		FechaEntrega:      "2026-03-14",
		HoraEntrega:       "10:00",
		Total:             decimal.RequireFromString("1150"),
		Anticipo:          decimal.RequireFromString("200"),
		EstatusPago:       model.EstatusPagoPendiente,
		EstatusProduccion: model.ProduccionPendiente,
		EstatusFolio:      model.EstatusFolioActivo,
	}))

	mailer := &mailerFake{}
	w := NewReporteWorker(ReporteWorkerConfig{
		Cajas:         cajas,
		Folios:        folios,
		Mailer:        mailer,
		Destinatarios: destinatarios,
		Negocio:       "Pastelería de prueba",
	})
	return &reporteEnv{cajas: cajas, worker: w, mailer: mailer, corte: corte, tenant: tenant}
}

func (e *reporteEnv) recargar(t *testing.T) *model.CorteCaja {
	t.Helper()
	c, err := e.cajas.FindByFecha(context.Background(), nil, e.tenant, "2026-03-14")
	require.NoError(t, err)
	return c
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestReporteWorker_EnviaUnaSolaVez(t *testing.T) {
	env := nuevoReporteEnv(t, "gerencia@pasteleria.mx")
	ctx := context.Background()

	require.NoError(t, env.worker.Procesar(ctx, env.tenant, "2026-03-14"))
	require.Equal(t, 1, env.mailer.total())

	msg := env.mailer.enviados[0]
	assert.Equal(t, []string{"gerencia@pasteleria.mx"}, msg.para)
	assert.Equal(t, "Corte de caja 2026-03-14", msg.asunto)
	assert.Contains(t, msg.cuerpo, "$500.00")
	require.Len(t, msg.adjuntos, 1)
	assert.Equal(t, "corte_2026-03-14.pdf", msg.adjuntos[0].Nombre)
	assert.NotEmpty(t, msg.adjuntos[0].Datos)

	c := env.recargar(t)
	assert.Equal(t, model.EmailEnviado, c.EmailEstado)
	assert.NotNil(t, c.EmailEnviadoAt)

	require.NoError(t, env.worker.Procesar(ctx, env.tenant, "2026-03-14"))
	assert.Equal(t, 1, env.mailer.total())
}

func TestReporteWorker_FalloMarcaFallido(t *testing.T) {
	env := nuevoReporteEnv(t, "gerencia@pasteleria.mx")
	env.mailer.err = errors.New("535 authentication failed")

	err := env.worker.Procesar(context.Background(), env.tenant, "2026-03-14")
	require.Error(t, err)

	c := env.recargar(t)
	assert.Equal(t, model.EmailFallido, c.EmailEstado)
	require.NotNil(t, c.EmailError)
	assert.Contains(t, *c.EmailError, "535")

	env.mailer.err = nil
	require.NoError(t, env.worker.Procesar(context.Background(), env.tenant, "2026-03-14"))
	assert.Equal(t, model.EmailEnviado, env.recargar(t).EmailEstado)
}

func TestReporteWorker_SinDestinatarios(t *testing.T) {
	env := nuevoReporteEnv(t)

	require.NoError(t, env.worker.Procesar(context.Background(), env.tenant, "2026-03-14"))
	assert.Zero(t, env.mailer.total())
	assert.Equal(t, model.EmailFallido, env.recargar(t).EmailEstado)
}

func TestReporteWorker_CircuitoAbierto(t *testing.T) {
	env := nuevoReporteEnv(t, "gerencia@pasteleria.mx")
	env.worker.cfg.CB = infra.NewCircuitBreaker(infra.CircuitBreakerConfig{FailureThreshold: 1, OpenTimeout: time.Hour})
	env.mailer.err = errors.New("dial tcp: timeout")

	require.Error(t, env.worker.Procesar(context.Background(), env.tenant, "2026-03-14"))
	env.mailer.err = nil

	err := env.worker.Procesar(context.Background(), env.tenant, "2026-03-14")
	assert.ErrorIs(t, err, infra.ErrCircuitOpen)
	assert.Zero(t, env.mailer.total())
	assert.Equal(t, model.EmailFallido, env.recargar(t).EmailEstado)
}

func TestReporteWorker_LockOcupado(t *testing.T) {
	env := nuevoReporteEnv(t, "gerencia@pasteleria.mx")
	lock := &lockerFake{ocupado: true}
	env.worker.cfg.Locker = lock

	require.NoError(t, env.worker.Procesar(context.Background(), env.tenant, "2026-03-14"))
	assert.Zero(t, env.mailer.total())
	assert.Empty(t, lock.liberados)

	lock.ocupado = false
	require.NoError(t, env.worker.Procesar(context.Background(), env.tenant, "2026-03-14"))
	assert.Equal(t, 1, env.mailer.total())
	assert.Equal(t, []string{"lock:reporte:" + env.tenant.String() + ":2026-03-14"}, lock.liberados)
}

func TestReporteWorker_GuardaPDF(t *testing.T) {
	env := nuevoReporteEnv(t, "gerencia@pasteleria.mx")
	almacen := &almacenFake{}
	env.worker.cfg.Almacen = almacen

	require.NoError(t, env.worker.Procesar(context.Background(), env.tenant, "2026-03-14"))
	assert.Equal(t, []string{"corte_" + env.tenant.String() + "_2026-03-14.pdf"}, almacen.nombres)
}

func TestReporteWorker_CorteInexistente(t *testing.T) {
	env := nuevoReporteEnv(t, "gerencia@pasteleria.mx")

	assert.Error(t, env.worker.Procesar(context.Background(), env.tenant, "2026-01-01"))
	assert.Zero(t, env.mailer.total())
}

func TestReporteWorker_SoloElCorteDelTenant(t *testing.T) {
	env := nuevoReporteEnv(t, "gerencia@pasteleria.mx")
	ctx := context.Background()

	otro := uuid.New()
	_, err := env.cajas.ObtenerOCrear(ctx, otro, "2026-03-14")
	require.NoError(t, err)

	require.NoError(t, env.worker.Procesar(ctx, otro, "2026-03-14"))
	require.Equal(t, 1, env.mailer.total())
	msg := env.mailer.enviados[0]
	assert.Contains(t, msg.cuerpo, "Movimientos: 0")
	assert.Contains(t, msg.cuerpo, "Entregas: 0 activas")

	c, err := env.cajas.FindByFecha(ctx, nil, otro, "2026-03-14")
	require.NoError(t, err)
	assert.Equal(t, model.EmailEnviado, c.EmailEstado)
	assert.Equal(t, model.EmailPendiente, env.recargar(t).EmailEstado)
}
