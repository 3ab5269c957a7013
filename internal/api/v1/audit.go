package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lettercounsel/lettercounsel/internal/api/dto"
	ierr "github.com/lettercounsel/lettercounsel/internal/errors"
	"github.com/lettercounsel/lettercounsel/internal/logger"
	"github.com/lettercounsel/lettercounsel/internal/service"
)

type AuditHandler struct {
	service service.AuditService
	log     *logger.Logger
}

func NewAuditHandler(service service.AuditService, log *logger.Logger) *AuditHandler {
	return &AuditHandler{service: service, log: log}
}

func (h *AuditHandler) GetAuditTrail(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Letter ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	entries, err := h.service.GetAuditTrail(c.Request.Context(), id)
	if err != nil {
		h.log.Error("Failed to get audit trail", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAuditTrailResponse(entries))
}
