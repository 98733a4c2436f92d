package dto

import "github.com/shopspring/decimal"

type ComisionResponse struct {
	ID              uint             `json:"id"`
	NumeroFolio     string           `json:"numero_folio"`
	Total           decimal.Decimal  `json:"total"`
	Monto           decimal.Decimal  `json:"monto"`
	AplicadaCliente bool             `json:"aplicada_cliente"`
	MontoRedondeado *decimal.Decimal `json:"monto_redondeado"`
	CreatedAt       string           `json:"created_at"`
}

// ReporteComisionesResponse splits commissions by who carried them: the
// business (absorbido) or the customer.
type ReporteComisionesResponse struct {
	Desde          string             `json:"desde"`
	Hasta          string             `json:"hasta"`
	TotalAbsorbido decimal.Decimal    `json:"total_absorbido"`
	TotalCliente   decimal.Decimal    `json:"total_cliente"`
	Cantidad       int                `json:"cantidad"`
	Detalle        []ComisionResponse `json:"detalle"`
}
