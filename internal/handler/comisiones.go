package handler

import (
	"net/http"

	"pasteleria/internal/middleware"
	"pasteleria/internal/service"

	"github.com/gin-gonic/gin"
)

type ComisionesHandler struct{ svc service.ComisionService }

func NewComisionesHandler(svc service.ComisionService) *ComisionesHandler {
	return &ComisionesHandler{svc: svc}
}

// Reporte godoc
// @Summary Reporte de comisiones por rango de fechas
// @Tags comisiones
// @Produce json
// @Security BearerAuth
// @Param desde query string true "YYYY-MM-DD"
// @Param hasta query string true "YYYY-MM-DD"
// @Success 200 {object} dto.ReporteComisionesResponse
// @Failure 422 {object} apierror.ValidationError
// @Router /v1/comisiones/reporte [get]
func (h *ComisionesHandler) Reporte(c *gin.Context) {
	resp, err := h.svc.Reporte(c.Request.Context(), middleware.Filtro(c), c.Query("desde"), c.Query("hasta"))
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
