package dto

type CrearCatalogoRequest struct {
	Nombre string `json:"nombre" validate:"required,min=2,max=100"`
}

type CatalogoResponse struct {
	ID     uint   `json:"id"`
	Tipo   string `json:"tipo"`
	Nombre string `json:"nombre"`
	Activo bool   `json:"activo"`
}

type ClienteResponse struct {
	ID       uint    `json:"id"`
	Nombre   string  `json:"nombre"`
	Telefono string  `json:"telefono"`
	Email    *string `json:"email"`
}

type AuditoriaResponse struct {
	ID        uint           `json:"id"`
	TenantID  *string        `json:"tenant_id"`
	Entidad   string         `json:"entidad"`
	EntidadID string         `json:"entidad_id"`
	Accion    string         `json:"accion"`
	UsuarioID *string        `json:"usuario_id"`
	Metadata  map[string]any `json:"metadata"`
	CreatedAt string         `json:"created_at"`
}

type FiltroAuditoria struct {
	Entidad   string `form:"entidad"`
	EntidadID string `form:"entidad_id"`
	Page      int    `form:"page"`
	Limit     int    `form:"limit"`
}
