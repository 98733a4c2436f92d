package handler

import (
	"net/http"

	"pasteleria/internal/dto"
	"pasteleria/internal/middleware"
	"pasteleria/internal/service"

	"github.com/gin-gonic/gin"
)

type AuditoriaHandler struct{ svc service.AuditoriaService }

func NewAuditoriaHandler(svc service.AuditoriaService) *AuditoriaHandler {
	return &AuditoriaHandler{svc: svc}
}

// Listar returns audit entries visible to the caller, newest first.
func (h *AuditoriaHandler) Listar(c *gin.Context) {
	var q dto.FiltroAuditoria
	if !bindQuery(c, &q) {
		return
	}
	data, total, err := h.svc.Listar(c.Request.Context(), middleware.Filtro(c), q)
	if err != nil {
		responderError(c, err)
		return
	}
	if data == nil {
		data = []dto.AuditoriaResponse{}
	}
	c.JSON(http.StatusOK, gin.H{"data": data, "total": total})
}
