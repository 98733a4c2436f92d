package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"pasteleria/internal/dto"
	"pasteleria/internal/model"
	"pasteleria/internal/scope"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type comisionesCaidas struct{ llamadas int }

func (c *comisionesCaidas) Registrar(context.Context, string, decimal.Decimal, bool) (*model.Comision, error) {
	c.llamadas++
	return nil, errors.New("db no disponible")
}

func (c *comisionesCaidas) Reporte(context.Context, scope.Filtro, string, string) (*dto.ReporteComisionesResponse, error) {
	return nil, nil
}

func (c *comisionesCaidas) Calcular(total decimal.Decimal, _ bool) (decimal.Decimal, *decimal.Decimal) {
	return decimal.Zero, nil
}

func TestBackoffOutbox(t *testing.T) {
	assert.Equal(t, 30*time.Second, backoffOutbox(1))
	assert.Equal(t, time.Minute, backoffOutbox(2))
	assert.Equal(t, 4*time.Minute, backoffOutbox(4))
	assert.Equal(t, 30*time.Minute, backoffOutbox(7))
	assert.Equal(t, 30*time.Minute, backoffOutbox(20))
}

func TestEfectos_EncolarRespetaGracia(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()

	ev, err := e.efectos.Encolar(ctx, nil, model.EventoRegistrarComision, comisionPayload{
		NumeroFolio: "FOL-000010",
		Total:       dec("100"),
	})
	require.NoError(t, err)

	n, err := e.efectos.ProcesarPendientes(ctx, e.clock.Now(), 10)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = e.efectos.ProcesarPendientes(ctx, e.clock.Now().Add(2*time.Minute), 10)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := e.outbox.FindByID(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OutboxProcesado, got.Estado)

	_, err = e.comisiones.repo.FindByNumeroFolio(ctx, "FOL-000010")
	assert.NoError(t, err)
}

func TestEfectos_ReintentosHastaFallido(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	caidas := &comisionesCaidas{}
	e.efectos.comisiones = caidas

	ev, err := e.efectos.Encolar(ctx, nil, model.EventoRegistrarComision, comisionPayload{NumeroFolio: "FOL-000011", Total: dec("10")})
	require.NoError(t, err)

	e.efectos.Despachar(ctx, ev)
	got, err := e.outbox.FindByID(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OutboxPendiente, got.Estado)
	assert.Equal(t, 1, got.Intentos)
	require.NotNil(t, got.UltimoError)
	require.NotNil(t, got.SiguienteIntento)
	assert.True(t, got.SiguienteIntento.Equal(e.clock.Now().Add(30*time.Second)))

	for i := 2; i <= MaxIntentosOutbox; i++ {
		got, err = e.outbox.FindByID(ctx, ev.ID)
		require.NoError(t, err)
		e.efectos.procesar(ctx, got)
	}

	got, err = e.outbox.FindByID(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OutboxFallido, got.Estado)
	assert.Equal(t, MaxIntentosOutbox, got.Intentos)
	assert.Equal(t, MaxIntentosOutbox, caidas.llamadas)

	n, err := e.efectos.ProcesarPendientes(ctx, e.clock.Now().Add(24*time.Hour), 10)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, MaxIntentosOutbox, caidas.llamadas)
}

func TestEfectos_AuditoriaNoSeDuplica(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()

	ev, err := e.efectos.Encolar(ctx, nil, model.EventoRegistrarAuditoria, EntradaAuditoria{
		Entidad:   model.EntidadFolio,
		EntidadID: "1",
		Accion:    model.AccionCancel,
	})
	require.NoError(t, err)

	require.NoError(t, e.efectos.ejecutar(ctx, ev))
	assert.Error(t, e.efectos.ejecutar(ctx, ev))
	assert.Equal(t, int64(1), e.contarAuditoria(t, model.AccionCancel))
}

func TestEfectos_TipoDesconocido(t *testing.T) {
	e := nuevoEntorno(t)

	err := e.efectos.ejecutar(context.Background(), &model.EventoOutbox{Tipo: "pedido.imprimir"})
	assert.ErrorContains(t, err, "desconocido")
}
