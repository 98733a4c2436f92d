package handler

import (
	"net/http"

	"pasteleria/internal/dto"
	"pasteleria/internal/middleware"
	"pasteleria/internal/service"

	"github.com/gin-gonic/gin"
)

type FoliosHandler struct{ svc service.FolioService }

func NewFoliosHandler(svc service.FolioService) *FoliosHandler { return &FoliosHandler{svc: svc} }

// Crear godoc
// @Summary Registra un nuevo folio (pedido)
// @Tags folios
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CrearFolioRequest true "Datos del pedido"
// @Success 201 {object} dto.FolioResponse
// @Failure 422 {object} apierror.ValidationError
// @Router /v1/folios [post]
func (h *FoliosHandler) Crear(c *gin.Context) {
	var req dto.CrearFolioRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), middleware.GetIdentidad(c), middleware.Filtro(c), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Listar godoc
// @Summary Lista folios paginados
// @Tags folios
// @Produce json
// @Security BearerAuth
// @Param q query string false "Busqueda por numero, cliente o telefono"
// @Param estatus_folio query string false "Activo | Cancelado"
// @Param page query int false "Pagina"
// @Param limit query int false "Tamaño de pagina"
// @Success 200 {object} dto.FolioListResponse
// @Router /v1/folios [get]
func (h *FoliosHandler) Listar(c *gin.Context) {
	var q dto.FiltroFolios
	if !bindQuery(c, &q) {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), middleware.Filtro(c), q)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Obtener godoc
// @Summary Obtiene un folio
// @Tags folios
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID del folio"
// @Success 200 {object} dto.FolioResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/folios/{id} [get]
func (h *FoliosHandler) Obtener(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Obtener(c.Request.Context(), middleware.Filtro(c), id)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Actualizar godoc
// @Summary Edita un folio activo
// @Tags folios
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID del folio"
// @Param body body dto.ActualizarFolioRequest true "Campos a modificar"
// @Success 200 {object} dto.FolioResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/folios/{id} [put]
func (h *FoliosHandler) Actualizar(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.ActualizarFolioRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), middleware.GetIdentidad(c), middleware.Filtro(c), id, req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ActualizarEstatus godoc
// @Summary Mueve el folio a otra etapa de produccion
// @Tags folios
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID del folio"
// @Param body body dto.EstatusProduccionRequest true "Nueva etapa"
// @Success 200 {object} dto.FolioResponse
// @Router /v1/folios/{id}/estatus [patch]
func (h *FoliosHandler) ActualizarEstatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.EstatusProduccionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ActualizarEstatus(c.Request.Context(), middleware.GetIdentidad(c), middleware.Filtro(c), id, req.EstatusProduccion)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cancelar godoc
// @Summary Cancela un folio (terminal)
// @Tags folios
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID del folio"
// @Param body body dto.CancelarFolioRequest false "Motivo"
// @Success 200 {object} dto.FolioResponse
// @Router /v1/folios/{id}/cancelar [post]
func (h *FoliosHandler) Cancelar(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.CancelarFolioRequest
	if c.Request.ContentLength != 0 && !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Cancelar(c.Request.Context(), middleware.GetIdentidad(c), middleware.Filtro(c), id, req.Motivo)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Eliminar godoc
// @Summary Elimina un folio (solo administradores)
// @Tags folios
// @Security BearerAuth
// @Param id path int true "ID del folio"
// @Success 204
// @Router /v1/folios/{id} [delete]
func (h *FoliosHandler) Eliminar(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Eliminar(c.Request.Context(), middleware.GetIdentidad(c), middleware.Filtro(c), id); err != nil {
		responderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Calendario godoc
// @Summary Entregas como eventos de calendario
// @Tags folios
// @Produce json
// @Security BearerAuth
// @Param desde query string true "YYYY-MM-DD"
// @Param hasta query string true "YYYY-MM-DD"
// @Success 200 {array} dto.EventoCalendario
// @Router /v1/folios/calendario [get]
func (h *FoliosHandler) Calendario(c *gin.Context) {
	resp, err := h.svc.Calendario(c.Request.Context(), middleware.Filtro(c), c.Query("desde"), c.Query("hasta"))
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Dashboard godoc
// @Summary Indicadores del tablero
// @Tags folios
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.DashboardResponse
// @Router /v1/folios/dashboard [get]
func (h *FoliosHandler) Dashboard(c *gin.Context) {
	resp, err := h.svc.Dashboard(c.Request.Context(), middleware.Filtro(c))
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
