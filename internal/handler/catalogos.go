package handler

import (
	"net/http"

	"pasteleria/internal/dto"
	"pasteleria/internal/middleware"
	"pasteleria/internal/service"

	"github.com/gin-gonic/gin"
)

type CatalogosHandler struct{ svc service.CatalogoService }

func NewCatalogosHandler(svc service.CatalogoService) *CatalogosHandler {
	return &CatalogosHandler{svc: svc}
}

// Listar godoc
// @Summary Lista sabores o rellenos activos
// @Tags catalogos
// @Produce json
// @Security BearerAuth
// @Param tipo path string true "sabor | relleno"
// @Success 200 {array} dto.CatalogoResponse
// @Router /v1/catalogos/{tipo} [get]
func (h *CatalogosHandler) Listar(c *gin.Context) {
	resp, err := h.svc.Listar(c.Request.Context(), middleware.Filtro(c), c.Param("tipo"))
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CatalogosHandler) Crear(c *gin.Context) {
	var req dto.CrearCatalogoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), middleware.Filtro(c), c.Param("tipo"), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CatalogosHandler) Desactivar(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Desactivar(c.Request.Context(), middleware.Filtro(c), c.Param("tipo"), id); err != nil {
		responderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
