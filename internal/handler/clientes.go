package handler

import (
	"net/http"

	"pasteleria/internal/middleware"
	"pasteleria/internal/service"

	"github.com/gin-gonic/gin"
)

type ClientesHandler struct{ svc service.ClienteService }

func NewClientesHandler(svc service.ClienteService) *ClientesHandler {
	return &ClientesHandler{svc: svc}
}

// Buscar godoc
// @Summary Busca clientes por nombre o telefono
// @Tags clientes
// @Produce json
// @Security BearerAuth
// @Param q query string false "Texto a buscar"
// @Param limit query int false "Maximo de resultados"
// @Success 200 {array} dto.ClienteResponse
// @Router /v1/clientes [get]
func (h *ClientesHandler) Buscar(c *gin.Context) {
	resp, err := h.svc.Buscar(c.Request.Context(), middleware.Filtro(c), c.Query("q"), queryInt(c, "limit", 20))
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
