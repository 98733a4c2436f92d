package service

import (
	"context"
	"strconv"
	"testing"

	"pasteleria/internal/dto"
	"pasteleria/internal/model"
	"pasteleria/internal/scope"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func folioBase() dto.CrearFolioRequest {
	return dto.CrearFolioRequest{
		ClienteNombre:   "Ana Torres",
		ClienteTelefono: "5512345678",
		FechaEntrega:    "2026-03-14",
		HoraEntrega:     "10:00",
		CostoBase:       dto.ImporteDe("$1,000.00"),
		CostoEnvio:      dto.ImporteDe("150"),
		Anticipo:        dto.ImporteDe("200"),
	}
}

func TestCalcularEstatusPago(t *testing.T) {
	cases := []struct {
		total, anticipo string
		want            string
	}{
		{"100", "100", model.EstatusPagoPagado},
		{"100", "99.99", model.EstatusPagoPagado},
		{"100", "99.98", model.EstatusPagoPendiente},
		{"100", "150", model.EstatusPagoPagado},
		{"0", "0", model.EstatusPagoPagado},
	}
	for _, tc := range cases {
		t.Run(tc.total+"-"+tc.anticipo, func(t *testing.T) {
			assert.Equal(t, tc.want, calcularEstatusPago(dec(tc.total), dec(tc.anticipo)))
		})
	}
}

func TestFolio_CrearCalculaTotalYNumera(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	tenant := uuid.New()

	f1, err := e.folios.Crear(ctx, empleadoDe(tenant), scope.Tenant(tenant), folioBase())
	require.NoError(t, err)
	assert.Equal(t, "FOL-000001", f1.NumeroFolio)
	assert.Equal(t, "1150.00", f1.Total.StringFixed(2))
	assert.Equal(t, "950.00", f1.Saldo.StringFixed(2))
	assert.Equal(t, model.EstatusPagoPendiente, f1.EstatusPago)
	assert.Equal(t, model.ProduccionPendiente, f1.EstatusProduccion)
	assert.Equal(t, model.EstatusFolioActivo, f1.EstatusFolio)
	assert.Equal(t, tenant.String(), f1.TenantID)

	req := folioBase()
	req.Anticipo = dto.ImporteDe("1150")
	f2, err := e.folios.Crear(ctx, empleadoDe(tenant), scope.Tenant(tenant), req)
	require.NoError(t, err)
	assert.Equal(t, "FOL-000002", f2.NumeroFolio)
	assert.Equal(t, model.EstatusPagoPagado, f2.EstatusPago)
}

func TestFolio_CrearConComisionAlCliente(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	tenant := uuid.New()

	req := folioBase()
	req.AplicarComision = true
	f, err := e.folios.Crear(ctx, empleadoDe(tenant), scope.Tenant(tenant), req)
	require.NoError(t, err)
	// 1150 subtotal + 57.50 commission
	assert.Equal(t, "1207.50", f.Total.StringFixed(2))

	c, err := e.comisiones.repo.FindByNumeroFolio(ctx, f.NumeroFolio)
	require.NoError(t, err)
	assert.Equal(t, "1150.00", c.Total.StringFixed(2))
	assert.Equal(t, "57.5000", c.Monto.StringFixed(4))
	assert.True(t, c.AplicadaCliente)

	var pendientes int64
	require.NoError(t, e.db.Model(&model.EventoOutbox{}).Where("estado = ?", model.OutboxPendiente).Count(&pendientes).Error)
	assert.Zero(t, pendientes)
}

func TestFolio_CrearReportaTodosLosFaltantes(t *testing.T) {
	e := nuevoEntorno(t)
	tenant := uuid.New()

	_, err := e.folios.Crear(context.Background(), empleadoDe(tenant), scope.Tenant(tenant), dto.CrearFolioRequest{
		CostoBase: dto.ImporteDe("mil pesos"),
	})
	campos := camposDe(t, err)
	for _, c := range []string{"cliente_nombre", "cliente_telefono", "fecha_entrega", "hora_entrega", "costo_base"} {
		assert.Contains(t, campos, c)
	}

	var n int64
	require.NoError(t, e.db.Model(&model.Folio{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestFolio_CrearSinTenant(t *testing.T) {
	e := nuevoEntorno(t)

	_, err := e.folios.Crear(context.Background(), &scope.Identidad{Rol: scope.RolSuperAdmin}, scope.Todos(), folioBase())
	assert.Contains(t, camposDe(t, err), "tenant_id")
}

func TestFolio_OverridesSoloParaPrivilegiados(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	tenant := uuid.New()

	pagado := model.EstatusPagoPagado
	req := folioBase()
	req.Total = &dto.Importe{Raw: "5", Present: true}
	req.EstatusPago = &pagado

	f, err := e.folios.Crear(ctx, empleadoDe(tenant), scope.Tenant(tenant), req)
	require.NoError(t, err)
	assert.Equal(t, "1150.00", f.Total.StringFixed(2))
	assert.Equal(t, model.EstatusPagoPendiente, f.EstatusPago)

	var a model.Auditoria
	require.NoError(t, e.db.Where("entidad_id = ? AND accion = ?", strconv.FormatUint(uint64(f.ID), 10), model.AccionCreate).First(&a).Error)
	assert.Equal(t, "total", a.Metadata["override_ignorado"])

	f, err = e.folios.Crear(ctx, adminDe(tenant), scope.Tenant(tenant), req)
	require.NoError(t, err)
	assert.Equal(t, "5.00", f.Total.StringFixed(2))
	assert.Equal(t, model.EstatusPagoPagado, f.EstatusPago)
}

func TestFolio_AislamientoPorTenant(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	tenantA, tenantB := uuid.New(), uuid.New()

	f, err := e.folios.Crear(ctx, empleadoDe(tenantA), scope.Tenant(tenantA), folioBase())
	require.NoError(t, err)

	_, err = e.folios.Obtener(ctx, scope.Tenant(tenantB), f.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = e.folios.Obtener(ctx, scope.Ninguno(), f.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = e.folios.Cancelar(ctx, empleadoDe(tenantB), scope.Tenant(tenantB), f.ID, "")
	assert.ErrorIs(t, err, ErrNotFound)

	nombre := "Intruso"
	base := dto.ImporteDe("1")
	_, err = e.folios.Actualizar(ctx, adminDe(tenantB), scope.Tenant(tenantB), f.ID,
		dto.ActualizarFolioRequest{ClienteNombre: &nombre, CostoBase: &base})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = e.folios.ActualizarEstatus(ctx, adminDe(tenantB), scope.Tenant(tenantB), f.ID, model.ProduccionTerminado)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, e.folios.Eliminar(ctx, adminDe(tenantB), scope.Tenant(tenantB), f.ID), ErrNotFound)

	intacto, err := e.folios.Obtener(ctx, scope.Tenant(tenantA), f.ID)
	require.NoError(t, err)
	assert.Equal(t, f.ClienteNombre, intacto.ClienteNombre)
	assert.Equal(t, "1150.00", intacto.Total.StringFixed(2))
	assert.Equal(t, model.ProduccionPendiente, intacto.EstatusProduccion)
	assert.Equal(t, model.EstatusFolioActivo, intacto.EstatusFolio)
	assert.Zero(t, e.contarAuditoria(t, model.AccionUpdate))
	assert.Zero(t, e.contarAuditoria(t, model.AccionStatus))
	assert.Zero(t, e.contarAuditoria(t, model.AccionDelete))

	got, err := e.folios.Obtener(ctx, scope.Todos(), f.ID)
	require.NoError(t, err)
	assert.Equal(t, f.NumeroFolio, got.NumeroFolio)

	lista, err := e.folios.Listar(ctx, scope.Tenant(tenantB), dto.FiltroFolios{})
	require.NoError(t, err)
	assert.Zero(t, lista.Total)

	lista, err = e.folios.Listar(ctx, scope.Tenant(tenantA), dto.FiltroFolios{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), lista.Total)
	assert.Equal(t, 1, lista.TotalPages)
}

func TestFolio_CancelarEsTerminal(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	tenant := uuid.New()
	actor := empleadoDe(tenant)
	filtro := scope.Tenant(tenant)

	f, err := e.folios.Crear(ctx, actor, filtro, folioBase())
	require.NoError(t, err)

	c, err := e.folios.Cancelar(ctx, actor, filtro, f.ID, "cliente desistio")
	require.NoError(t, err)
	assert.Equal(t, model.EstatusFolioCancelado, c.EstatusFolio)
	require.NotNil(t, c.MotivoCancelacion)
	assert.Equal(t, "cliente desistio", *c.MotivoCancelacion)
	assert.Equal(t, int64(1), e.contarAuditoria(t, model.AccionCancel))

	again, err := e.folios.Cancelar(ctx, actor, filtro, f.ID, "otra vez")
	require.NoError(t, err)
	assert.Equal(t, "cliente desistio", *again.MotivoCancelacion)
	assert.Equal(t, int64(1), e.contarAuditoria(t, model.AccionCancel))

	nombre := "Otra Persona"
	_, err = e.folios.Actualizar(ctx, actor, filtro, f.ID, dto.ActualizarFolioRequest{ClienteNombre: &nombre})
	assert.ErrorIs(t, err, ErrFolioCancelado)

	_, err = e.folios.ActualizarEstatus(ctx, actor, filtro, f.ID, model.ProduccionEnProceso)
	assert.ErrorIs(t, err, ErrFolioCancelado)
}

func TestFolio_ActualizarRecalculaTotal(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	tenant := uuid.New()
	filtro := scope.Tenant(tenant)

	f, err := e.folios.Crear(ctx, adminDe(tenant), filtro, folioBase())
	require.NoError(t, err)

	anticipo := dto.ImporteDe("1150")
	got, err := e.folios.Actualizar(ctx, adminDe(tenant), filtro, f.ID, dto.ActualizarFolioRequest{Anticipo: &anticipo})
	require.NoError(t, err)
	assert.Equal(t, "1150.00", got.Total.StringFixed(2))
	assert.Equal(t, model.EstatusPagoPagado, got.EstatusPago)
	assert.Equal(t, f.NumeroFolio, got.NumeroFolio)

	base := dto.ImporteDe("2000")
	got, err = e.folios.Actualizar(ctx, adminDe(tenant), filtro, f.ID, dto.ActualizarFolioRequest{CostoBase: &base})
	require.NoError(t, err)
	assert.Equal(t, "2150.00", got.Total.StringFixed(2))
	assert.Equal(t, model.EstatusPagoPendiente, got.EstatusPago)

	hora := "25:99"
	_, err = e.folios.Actualizar(ctx, adminDe(tenant), filtro, f.ID, dto.ActualizarFolioRequest{HoraEntrega: &hora})
	assert.Contains(t, camposDe(t, err), "hora_entrega")
}

func TestFolio_ActualizarEstatusProduccion(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	tenant := uuid.New()
	filtro := scope.Tenant(tenant)

	f, err := e.folios.Crear(ctx, empleadoDe(tenant), filtro, folioBase())
	require.NoError(t, err)

	got, err := e.folios.ActualizarEstatus(ctx, empleadoDe(tenant), filtro, f.ID, model.ProduccionTerminado)
	require.NoError(t, err)
	assert.Equal(t, model.ProduccionTerminado, got.EstatusProduccion)
	assert.Equal(t, int64(1), e.contarAuditoria(t, model.AccionStatus))

	_, err = e.folios.ActualizarEstatus(ctx, empleadoDe(tenant), filtro, f.ID, "horneando")
	assert.Contains(t, camposDe(t, err), "estatus_produccion")
}

func TestFolio_ComposicionDesdeCatalogo(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	tenant := uuid.New()
	filtro := scope.Tenant(tenant)

	choco := &model.CatalogoItem{TenantID: tenant, Tipo: model.CatalogoSabor, Nombre: "Chocolate", Activo: true}
	require.NoError(t, e.catalogos.Create(ctx, choco))
	ajeno := &model.CatalogoItem{TenantID: uuid.New(), Tipo: model.CatalogoSabor, Nombre: "Fresa", Activo: true}
	require.NoError(t, e.catalogos.Create(ctx, ajeno))

	req := folioBase()
	req.Sabores = []string{strconv.FormatUint(uint64(choco.ID), 10), "Vainilla"}
	req.Rellenos = []string{"Cajeta"}
	f, err := e.folios.Crear(ctx, empleadoDe(tenant), filtro, req)
	require.NoError(t, err)
	assert.Equal(t, []string{"Chocolate", "Vainilla"}, f.Sabores)
	assert.Equal(t, []string{"Cajeta"}, f.Rellenos)
	assert.Contains(t, f.Metadata, "sabor_ids")

	req = folioBase()
	req.Sabores = []string{strconv.FormatUint(uint64(ajeno.ID), 10)}
	_, err = e.folios.Crear(ctx, empleadoDe(tenant), filtro, req)
	assert.Contains(t, camposDe(t, err), "sabores")
}

func TestFolio_ActualizarMetadataNoPisaComposicion(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	tenant := uuid.New()
	filtro := scope.Tenant(tenant)

	choco := &model.CatalogoItem{TenantID: tenant, Tipo: model.CatalogoSabor, Nombre: "Chocolate", Activo: true}
	require.NoError(t, e.catalogos.Create(ctx, choco))

	req := folioBase()
	req.Sabores = []string{strconv.FormatUint(uint64(choco.ID), 10)}
	f, err := e.folios.Crear(ctx, empleadoDe(tenant), filtro, req)
	require.NoError(t, err)
	antes, err := e.folios.Obtener(ctx, filtro, f.ID)
	require.NoError(t, err)
	require.Contains(t, antes.Metadata, "sabor_ids")

	got, err := e.folios.Actualizar(ctx, adminDe(tenant), filtro, f.ID, dto.ActualizarFolioRequest{
		Metadata: map[string]any{"sabor_ids": []any{999}, "relleno_ids": []any{998}, "nota": "sin nuez"},
	})
	require.NoError(t, err)
	assert.Equal(t, "sin nuez", got.Metadata["nota"])
	assert.NotContains(t, got.Metadata, "relleno_ids")

	leido, err := e.folios.Obtener(ctx, filtro, f.ID)
	require.NoError(t, err)
	assert.Equal(t, antes.Metadata["sabor_ids"], leido.Metadata["sabor_ids"])
	assert.Equal(t, []string{"Chocolate"}, leido.Sabores)
}

func TestFolio_VinculaClientePorTelefono(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	tenant := uuid.New()
	filtro := scope.Tenant(tenant)

	f1, err := e.folios.Crear(ctx, empleadoDe(tenant), filtro, folioBase())
	require.NoError(t, err)
	f2, err := e.folios.Crear(ctx, empleadoDe(tenant), filtro, folioBase())
	require.NoError(t, err)

	require.NotNil(t, f1.ClienteID)
	require.NotNil(t, f2.ClienteID)
	assert.Equal(t, *f1.ClienteID, *f2.ClienteID)

	otro := folioBase()
	otro.ClienteTelefono = "5598765432"
	f3, err := e.folios.Crear(ctx, empleadoDe(tenant), filtro, otro)
	require.NoError(t, err)
	assert.NotEqual(t, *f1.ClienteID, *f3.ClienteID)

	desconocido := uint(9999)
	req := folioBase()
	req.ClienteID = &desconocido
	_, err = e.folios.Crear(ctx, empleadoDe(tenant), filtro, req)
	assert.Contains(t, camposDe(t, err), "cliente_id")
}

func TestFolio_CalendarioYDashboard(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	tenant := uuid.New()
	filtro := scope.Tenant(tenant)

	hoy := folioBase()
	hoy.Anticipo = dto.ImporteDe("1150")
	_, err := e.folios.Crear(ctx, empleadoDe(tenant), filtro, hoy)
	require.NoError(t, err)

	despues := folioBase()
	despues.FechaEntrega = "2026-03-20"
	despues.HoraEntrega = "17:30"
	_, err = e.folios.Crear(ctx, empleadoDe(tenant), filtro, despues)
	require.NoError(t, err)

	eventos, err := e.folios.Calendario(ctx, filtro, "2026-03-14", "2026-03-15")
	require.NoError(t, err)
	require.Len(t, eventos, 1)
	assert.Equal(t, "2026-03-14T10:00:00", eventos[0].Start)
	assert.Equal(t, colorPagado, eventos[0].Color)

	_, err = e.folios.Calendario(ctx, filtro, "2026-03-20", "2026-03-14")
	assert.Contains(t, camposDe(t, err), "hasta")

	d, err := e.folios.Dashboard(ctx, filtro)
	require.NoError(t, err)
	assert.Equal(t, int64(2), d.Total)
	assert.Equal(t, int64(1), d.EntregasHoy)
	assert.Equal(t, int64(2), d.PendientesProduccion)
	assert.Equal(t, "2300.00", d.TotalVentas.StringFixed(2))
	assert.Equal(t, "1350.00", d.TotalAnticipos.StringFixed(2))
}

func TestFolio_Eliminar(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	tenant := uuid.New()
	filtro := scope.Tenant(tenant)

	f, err := e.folios.Crear(ctx, adminDe(tenant), filtro, folioBase())
	require.NoError(t, err)

	require.NoError(t, e.folios.Eliminar(ctx, adminDe(tenant), filtro, f.ID))
	assert.Equal(t, int64(1), e.contarAuditoria(t, model.AccionDelete))

	_, err = e.folios.Obtener(ctx, filtro, f.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, e.folios.Eliminar(ctx, adminDe(tenant), filtro, f.ID), ErrNotFound)
}
