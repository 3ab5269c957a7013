package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lettercounsel/lettercounsel/internal/api/dto"
	ierr "github.com/lettercounsel/lettercounsel/internal/errors"
	"github.com/lettercounsel/lettercounsel/internal/logger"
	"github.com/lettercounsel/lettercounsel/internal/service"
	"github.com/lettercounsel/lettercounsel/internal/types"
)

type LetterHandler struct {
	service service.LetterService
	log     *logger.Logger
}

func NewLetterHandler(service service.LetterService, log *logger.Logger) *LetterHandler {
	return &LetterHandler{service: service, log: log}
}

func (h *LetterHandler) GenerateLetter(c *gin.Context) {
	var req dto.GenerateLetterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error("Failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}
	if err := req.Validate(); err != nil {
		c.Error(err)
		return
	}

	l, err := h.service.GenerateLetter(c.Request.Context(), service.GenerateLetterRequest{
		LetterType: req.LetterType,
		IntakeData: req.IntakeData,
	})
	if err != nil {
		h.log.Error("Failed to generate letter", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewLetterResponse(l))
}

func (h *LetterHandler) ResubmitLetter(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Letter ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	l, err := h.service.ResubmitLetter(c.Request.Context(), id)
	if err != nil {
		h.log.Error("Failed to resubmit letter", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewLetterResponse(l))
}

func (h *LetterHandler) RetryLetter(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Letter ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	l, err := h.service.RetryLetter(c.Request.Context(), id)
	if err != nil {
		h.log.Error("Failed to retry letter", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewLetterResponse(l))
}

func (h *LetterHandler) DeleteLetter(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Letter ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	if err := h.service.DeleteLetter(c.Request.Context(), id); err != nil {
		h.log.Error("Failed to delete letter", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *LetterHandler) GetLetter(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Letter ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	l, err := h.service.GetLetter(c.Request.Context(), id)
	if err != nil {
		h.log.Error("Failed to get letter", "error", err)
		c.Error(err)
		return
	}

	if types.GetUserRole(c.Request.Context()).IsAdmin() {
		c.JSON(http.StatusOK, dto.NewAdminLetterResponse(l))
		return
	}
	c.JSON(http.StatusOK, dto.NewLetterResponse(l))
}

func (h *LetterHandler) ListLetters(c *gin.Context) {
	var filter types.LetterFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.log.Error("Failed to bind query parameters", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid filter parameters").
			Mark(ierr.ErrValidation))
		return
	}

	letters, total, err := h.service.ListLetters(c.Request.Context(), &filter)
	if err != nil {
		h.log.Error("Failed to list letters", "error", err)
		c.Error(err)
		return
	}

	admin := types.GetUserRole(c.Request.Context()).IsAdmin()
	c.JSON(http.StatusOK, dto.NewListLettersResponse(letters, total, admin))
}
