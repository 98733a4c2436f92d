package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type MovimientoRequest struct {
	Tipo        string  `json:"tipo"        validate:"required,oneof=ingreso egreso"`
	Monto       Importe `json:"monto"`
	Categoria   string  `json:"categoria"   validate:"required"`
	Descripcion *string `json:"descripcion" validate:"omitempty,max=500"`
	Referencia  *string `json:"referencia"  validate:"omitempty,max=50"`
}

type CerrarCajaRequest struct {
	Fecha string  `json:"fecha" validate:"omitempty,datetime=2006-01-02"`
	Notas *string `json:"notas" validate:"omitempty,max=1000"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type MovimientoResponse struct {
	ID          uint            `json:"id"`
	Tipo        string          `json:"tipo"`
	Monto       decimal.Decimal `json:"monto"`
	Categoria   string          `json:"categoria"`
	Descripcion *string         `json:"descripcion"`
	Referencia  *string         `json:"referencia"`
	UsuarioID   *string         `json:"usuario_id"`
	CreatedAt   string          `json:"created_at"`
}

type CorteResponse struct {
	ID             uint            `json:"id"`
	TenantID       string          `json:"tenant_id"`
	Fecha          string          `json:"fecha"`
	TotalIngresos  decimal.Decimal `json:"total_ingresos"`
	TotalEgresos   decimal.Decimal `json:"total_egresos"`
	SaldoFinal     decimal.Decimal `json:"saldo_final"`
	Estado         string          `json:"estado"`
	CerradoPor     *string         `json:"cerrado_por"`
	CerradoAt      *string         `json:"cerrado_at"`
	NotasCierre    *string         `json:"notas_cierre"`
	EmailEstado    string          `json:"email_estado"`
	EmailError     *string         `json:"email_error"`
	EmailEnviadoAt *string         `json:"email_enviado_at"`
}

type ResumenCajaResponse struct {
	Corte       CorteResponse        `json:"corte"`
	Movimientos []MovimientoResponse `json:"movimientos"`
}

type HistorialCajaResponse struct {
	Data  []CorteResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}
