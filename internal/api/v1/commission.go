package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lettercounsel/lettercounsel/internal/api/dto"
	"github.com/lettercounsel/lettercounsel/internal/logger"
	"github.com/lettercounsel/lettercounsel/internal/service"
)

type CommissionHandler struct {
	service service.CommissionService
	log     *logger.Logger
}

func NewCommissionHandler(service service.CommissionService, log *logger.Logger) *CommissionHandler {
	return &CommissionHandler{service: service, log: log}
}

func (h *CommissionHandler) ListMyCommissions(c *gin.Context) {
	commissions, err := h.service.ListMyCommissions(c.Request.Context())
	if err != nil {
		h.log.Error("Failed to list commissions", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListCommissionsResponse(commissions))
}
