package infra

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"pasteleria/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatoMoneda(t *testing.T) {
	cases := map[string]string{
		"1234.5":  "$1,234.50",
		"0":       "$0.00",
		"379.5":   "$379.50",
		"-50":     "-$50.00",
		"1000000": "$1,000,000.00",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatoMoneda(decimal.RequireFromString(in)), in)
	}
}

func TestResumirFolios_ExcluyeCancelados(t *testing.T) {
	folios := []model.Folio{
		{Total: decimal.RequireFromString("1000"), Anticipo: decimal.RequireFromString("400"), EstatusFolio: model.EstatusFolioActivo},
		{Total: decimal.RequireFromString("500"), Anticipo: decimal.RequireFromString("500"), EstatusFolio: model.EstatusFolioActivo},
		{Total: decimal.RequireFromString("900"), Anticipo: decimal.RequireFromString("100"), EstatusFolio: model.EstatusFolioCancelado},
	}
	r := ResumirFolios(folios)
	assert.Equal(t, 2, r.Activos)
	assert.Equal(t, 1, r.Cancelados)
	assert.Equal(t, "1500.00", r.Total.StringFixed(2))
	assert.Equal(t, "900.00", r.Anticipos.StringFixed(2))
	assert.Equal(t, "600.00", r.Saldo.StringFixed(2))
}

func TestRenderReporteCorte(t *testing.T) {
	cerrado := time.Date(2026, 3, 15, 2, 0, 0, 0, time.UTC)
	desc := "Harina y azúcar para la semana"
	out, err := RenderReporteCorte(DatosReporteCorte{
		Negocio: "Pastelería Dulce Hogar",
		Corte: model.CorteCaja{
			Fecha:         "2026-03-14",
			TotalIngresos: decimal.RequireFromString("500"),
			TotalEgresos:  decimal.RequireFromString("120.50"),
			SaldoFinal:    decimal.RequireFromString("379.50"),
			Estado:        model.CorteCerrado,
			CerradoAt:     &cerrado,
		},
		Movimientos: []model.MovimientoCaja{
			{Tipo: model.MovimientoIngreso, Categoria: "venta", Monto: decimal.RequireFromString("500"), CreatedAt: cerrado},
			{Tipo: model.MovimientoEgreso, Categoria: "insumos", Monto: decimal.RequireFromString("120.50"), Descripcion: &desc, CreatedAt: cerrado},
		},
		Folios: []model.Folio{
			{NumeroFolio: "FOL-000001", ClienteNombre: "Ana Torres", HoraEntrega: "10:00", Total: decimal.RequireFromString("1150"), EstatusFolio: model.EstatusFolioActivo},
		},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestTruncar(t *testing.T) {
	assert.Equal(t, "pastel", truncar("pastel", 10))
	assert.Equal(t, "past...", truncar("pastelería", 5))
}

func TestLocalAlmacen_Guardar(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reportes")
	a := NewLocalAlmacen(dir)

	path, err := a.Guardar(context.Background(), "../corte-2026-03-14.pdf", "application/pdf", []byte("%PDF-1.3"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, dir))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.3", string(data))
}
