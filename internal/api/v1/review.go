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

type ReviewHandler struct {
	service service.ReviewService
	log     *logger.Logger
}

func NewReviewHandler(service service.ReviewService, log *logger.Logger) *ReviewHandler {
	return &ReviewHandler{service: service, log: log}
}

func (h *ReviewHandler) ListPendingReview(c *gin.Context) {
	var filter types.LetterFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.log.Error("Failed to bind query parameters", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid filter parameters").
			Mark(ierr.ErrValidation))
		return
	}

	letters, total, err := h.service.ListPendingReview(c.Request.Context(), &filter)
	if err != nil {
		h.log.Error("Failed to list review queue", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListLettersResponse(letters, total, true))
}

func (h *ReviewHandler) StartReview(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Letter ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	l, err := h.service.StartReview(c.Request.Context(), id)
	if err != nil {
		h.log.Error("Failed to start review", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAdminLetterResponse(l))
}

func (h *ReviewHandler) ApproveLetter(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Letter ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	var req dto.ApproveLetterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error("Failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	l, err := h.service.Approve(c.Request.Context(), service.ApproveLetterRequest{
		LetterID:     id,
		FinalContent: req.FinalContent,
		ReviewNotes:  req.ReviewNotes,
	})
	if err != nil {
		h.log.Error("Failed to approve letter", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAdminLetterResponse(l))
}

func (h *ReviewHandler) RejectLetter(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Letter ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	var req dto.RejectLetterRequest
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

	l, err := h.service.Reject(c.Request.Context(), service.RejectLetterRequest{
		LetterID:        id,
		RejectionReason: req.RejectionReason,
		ReviewNotes:     req.ReviewNotes,
	})
	if err != nil {
		h.log.Error("Failed to reject letter", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAdminLetterResponse(l))
}

func (h *ReviewHandler) CompleteLetter(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Letter ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	l, err := h.service.MarkCompleted(c.Request.Context(), id)
	if err != nil {
		h.log.Error("Failed to complete letter", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAdminLetterResponse(l))
}
