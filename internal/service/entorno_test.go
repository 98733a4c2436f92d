package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"pasteleria/internal/model"
	"pasteleria/internal/repository"
	"pasteleria/internal/scope"
	"pasteleria/internal/testutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── Shared wiring ─────────────────────────────────────────────────────────────

type entorno struct {
	db         *gorm.DB
	clock      *testutil.Clock
	comisiones *comisionService
	auditoria  *auditoriaService
	efectos    *efectos
	outbox     repository.OutboxRepository
	folios     *folioService
	caja       *cajaService
	reportes   *reportesFake
	catalogos  repository.CatalogoRepository
}

func nuevoEntorno(t *testing.T) *entorno {
	t.Helper()
	db := testutil.NewDB(t)
	clock := testutil.NewClock(time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC))

	com := newComisionService(repository.NewComisionRepository(db), decimal.RequireFromString("0.05"), time.UTC, clock.Now)
	aud := &auditoriaService{repo: repository.NewAuditoriaRepository(db), now: clock.Now}
	outbox := repository.NewOutboxRepository(db)
	ef := &efectos{repo: outbox, comisiones: com, auditoria: aud, now: clock.Now}
	catalogos := repository.NewCatalogoRepository(db)

	folios := &folioService{
		repo:       repository.NewFolioRepository(db),
		secuencias: repository.NewSecuenciaRepository(db),
		clientes:   repository.NewClienteRepository(db),
		catalogos:  catalogos,
		comisiones: com,
		efectos:    ef,
		prefijo:    "FOL-",
		loc:        time.UTC,
		now:        clock.Now,
	}
	rep := &reportesFake{}
	caja := &cajaService{
		repo:      repository.NewCajaRepository(db),
		auditoria: aud,
		reportes:  rep,
		loc:       time.UTC,
		now:       clock.Now,
	}
	return &entorno{
		db:         db,
		clock:      clock,
		comisiones: com,
		auditoria:  aud,
		efectos:    ef,
		outbox:     outbox,
		folios:     folios,
		caja:       caja,
		reportes:   rep,
		catalogos:  catalogos,
	}
}

func (e *entorno) contarAuditoria(t *testing.T, accion string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&model.Auditoria{}).Where("accion = ?", accion).Count(&n).Error)
	return n
}

type reportesFake struct {
	mu      sync.Mutex
	tenants []uuid.UUID
	fechas  []string
	err     error
}

func (r *reportesFake) SolicitarEnvio(_ context.Context, tenantID uuid.UUID, fecha string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tenants = append(r.tenants, tenantID)
	r.fechas = append(r.fechas, fecha)
	return r.err
}

func (r *reportesFake) solicitadas() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.fechas...)
}

func empleadoDe(tenant uuid.UUID) *scope.Identidad {
	return &scope.Identidad{UsuarioID: uuid.New(), Rol: scope.RolEmpleado, TenantID: &tenant}
}

func adminDe(tenant uuid.UUID) *scope.Identidad {
	return &scope.Identidad{UsuarioID: uuid.New(), Rol: scope.RolAdmin, TenantID: &tenant}
}

func camposDe(t *testing.T, err error) map[string]string {
	t.Helper()
	var v *ValidationError
	require.ErrorAs(t, err, &v)
	return v.Campos
}
