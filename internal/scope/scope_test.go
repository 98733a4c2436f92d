package scope

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type pedido struct {
	ID       uint      `gorm:"primaryKey"`
	TenantID uuid.UUID `gorm:"type:uuid"`
}

func (pedido) TableName() string { return "pedidos" }

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	return db, mock, mockDB
}

func TestResolver(t *testing.T) {
	propio := uuid.New()
	otro := uuid.New()

	cases := []struct {
		name     string
		id       *Identidad
		override *uuid.UUID
		permite  map[uuid.UUID]bool
		todos    bool
		crear    bool
	}{
		{
			name:    "sin identidad no ve nada",
			permite: map[uuid.UUID]bool{propio: false, otro: false},
		},
		{
			name:    "superadmin sin override ve todo",
			id:      &Identidad{Rol: RolSuperAdmin},
			permite: map[uuid.UUID]bool{propio: true, otro: true},
			todos:   true,
		},
		{
			name:     "superadmin con override queda en ese tenant",
			id:       &Identidad{Rol: RolSuperAdmin},
			override: &otro,
			permite:  map[uuid.UUID]bool{propio: false, otro: true},
			crear:    true,
		},
		{
			name:     "admin ignora el override",
			id:       &Identidad{Rol: RolAdmin, TenantID: &propio},
			override: &otro,
			permite:  map[uuid.UUID]bool{propio: true, otro: false},
			crear:    true,
		},
		{
			name:    "empleado ve su tenant",
			id:      &Identidad{Rol: RolEmpleado, TenantID: &propio},
			permite: map[uuid.UUID]bool{propio: true, otro: false},
			crear:   true,
		},
		{
			name:    "empleado sin tenant no ve nada",
			id:      &Identidad{Rol: RolEmpleado},
			permite: map[uuid.UUID]bool{propio: false, otro: false},
		},
		{
			name:    "rol desconocido no ve nada",
			id:      &Identidad{Rol: Rol("cajero"), TenantID: &propio},
			permite: map[uuid.UUID]bool{propio: false, otro: false},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := Resolver(tc.id, tc.override)
			for tenant, want := range tc.permite {
				assert.Equal(t, want, f.Permite(&tenant))
			}
			assert.Equal(t, tc.todos, f.EsTodos())
			_, ok := f.TenantParaCrear()
			assert.Equal(t, tc.crear, ok)
		})
	}
}

func TestFiltro_PermiteFilaSinTenant(t *testing.T) {
	assert.True(t, Todos().Permite(nil))
	assert.False(t, Tenant(uuid.New()).Permite(nil))
	assert.False(t, Ninguno().Permite(nil))
}

func TestParseRol(t *testing.T) {
	r, ok := ParseRol("admin")
	assert.True(t, ok)
	assert.Equal(t, RolAdmin, r)
	assert.True(t, r.Privilegiado())
	assert.False(t, RolEmpleado.Privilegiado())

	_, ok = ParseRol("root")
	assert.False(t, ok)
}

func TestFiltro_Aplicar(t *testing.T) {
	tenantID := uuid.New()

	t.Run("tenant agrega el predicado", func(t *testing.T) {
		db, mock, mockDB := setupMockDB(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "pedidos" WHERE tenant_id = \$1`).
			WithArgs(tenantID.String()).
			WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id"}))

		var out []pedido
		require.NoError(t, db.Scopes(Tenant(tenantID).Aplicar).Find(&out).Error)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("todos no filtra", func(t *testing.T) {
		db, mock, mockDB := setupMockDB(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "pedidos"$`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id"}))

		var out []pedido
		require.NoError(t, db.Scopes(Todos().Aplicar).Find(&out).Error)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ninguno no devuelve filas", func(t *testing.T) {
		db, mock, mockDB := setupMockDB(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "pedidos" WHERE 1 = 0`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id"}))

		var out []pedido
		require.NoError(t, db.Scopes(Filtro{}.Aplicar).Find(&out).Error)
		assert.Empty(t, out)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
