package dto

import (
	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ComplementoRequest struct {
	Descripcion string `json:"descripcion" validate:"required,max=200"`
	Personas    int    `json:"personas"    validate:"min=0"`
	Sabor       string `json:"sabor"`
	Relleno     string `json:"relleno"`
}

// CrearFolioRequest carries a new order. Required fields are checked by the
// service so all missing ones are reported together.
type CrearFolioRequest struct {
	ClienteID       *uint  `json:"cliente_id"`
	ClienteNombre   string `json:"cliente_nombre"`
	ClienteTelefono string `json:"cliente_telefono"`
	FechaEntrega    string `json:"fecha_entrega"`
	HoraEntrega     string `json:"hora_entrega"`

	CostoBase  Importe `json:"costo_base"`
	CostoEnvio Importe `json:"costo_envio"`
	Anticipo   Importe `json:"anticipo"`

	AplicarComision bool `json:"aplicar_comision"`

	// Sabores / Rellenos hold catalog ids or free-text names.
	Sabores      []string             `json:"sabores"`
	Rellenos     []string             `json:"rellenos"`
	Complementos []ComplementoRequest `json:"complementos" validate:"omitempty,dive"`
	Diseno       string               `json:"diseno"`
	Metadata     map[string]any       `json:"metadata"`

	// Overrides, honored only for privileged roles.
	Total       *Importe `json:"total"`
	EstatusPago *string  `json:"estatus_pago" validate:"omitempty,oneof=Pendiente Pagado"`
}

// ActualizarFolioRequest lists the fields editable after creation. Nil means
// unchanged.
type ActualizarFolioRequest struct {
	ClienteNombre   *string `json:"cliente_nombre"`
	ClienteTelefono *string `json:"cliente_telefono"`
	FechaEntrega    *string `json:"fecha_entrega"`
	HoraEntrega     *string `json:"hora_entrega"`

	CostoBase  *Importe `json:"costo_base"`
	CostoEnvio *Importe `json:"costo_envio"`
	Anticipo   *Importe `json:"anticipo"`

	Sabores      []string             `json:"sabores"`
	Rellenos     []string             `json:"rellenos"`
	Complementos []ComplementoRequest `json:"complementos" validate:"omitempty,dive"`
	Diseno       *string              `json:"diseno"`
	Metadata     map[string]any       `json:"metadata"`
}

type CancelarFolioRequest struct {
	Motivo string `json:"motivo" validate:"max=500"`
}

type EstatusProduccionRequest struct {
	EstatusProduccion string `json:"estatus_produccion" validate:"required"`
}

type FiltroFolios struct {
	Q            string `form:"q"`
	EstatusFolio string `form:"estatus_folio" validate:"omitempty,oneof=Activo Cancelado"`
	Page         int    `form:"page"`
	Limit        int    `form:"limit"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ComplementoResponse struct {
	Descripcion string `json:"descripcion"`
	Personas    int    `json:"personas,omitempty"`
	Sabor       string `json:"sabor,omitempty"`
	Relleno     string `json:"relleno,omitempty"`
}

type FolioResponse struct {
	ID                uint                  `json:"id"`
	NumeroFolio       string                `json:"numero_folio"`
	TenantID          string                `json:"tenant_id"`
	ClienteID         *uint                 `json:"cliente_id"`
	ClienteNombre     string                `json:"cliente_nombre"`
	ClienteTelefono   string                `json:"cliente_telefono"`
	FechaEntrega      string                `json:"fecha_entrega"`
	HoraEntrega       string                `json:"hora_entrega"`
	CostoBase         decimal.Decimal       `json:"costo_base"`
	CostoEnvio        decimal.Decimal       `json:"costo_envio"`
	Anticipo          decimal.Decimal       `json:"anticipo"`
	Total             decimal.Decimal       `json:"total"`
	Saldo             decimal.Decimal       `json:"saldo"`
	AplicarComision   bool                  `json:"aplicar_comision"`
	EstatusPago       string                `json:"estatus_pago"`
	EstatusProduccion string                `json:"estatus_produccion"`
	EstatusFolio      string                `json:"estatus_folio"`
	Sabores           []string              `json:"sabores"`
	Rellenos          []string              `json:"rellenos"`
	Complementos      []ComplementoResponse `json:"complementos"`
	Diseno            string                `json:"diseno"`
	Metadata          map[string]any        `json:"metadata"`
	MotivoCancelacion *string               `json:"motivo_cancelacion"`
	CanceladoAt       *string               `json:"cancelado_at"`
	CreatedAt         string                `json:"created_at"`
	UpdatedAt         string                `json:"updated_at"`
}

type FolioListResponse struct {
	Data       []FolioResponse `json:"data"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
}

type EventoCalendario struct {
	ID           uint   `json:"id"`
	Title        string `json:"title"`
	Start        string `json:"start"`
	End          string `json:"end,omitempty"`
	Color        string `json:"color"`
	EstatusPago  string `json:"estatus_pago"`
	EstatusFolio string `json:"estatus_folio"`
}

type DashboardResponse struct {
	Total                int64           `json:"total"`
	PendientesProduccion int64           `json:"pendientes_produccion"`
	EntregasHoy          int64           `json:"entregas_hoy"`
	TotalVentas          decimal.Decimal `json:"total_ventas"`
	TotalAnticipos       decimal.Decimal `json:"total_anticipos"`
}
