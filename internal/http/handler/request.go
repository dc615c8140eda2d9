package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"basegraph.app/helpdesk/internal/http/dto"
	"basegraph.app/helpdesk/internal/http/middleware"
	"basegraph.app/helpdesk/internal/service"
	"github.com/gin-gonic/gin"
)

type RequestHandler struct {
	requestService service.RequestService
	isProduction   bool
}

func NewRequestHandler(requestService service.RequestService, isProduction bool) *RequestHandler {
	return &RequestHandler{requestService: requestService, isProduction: isProduction}
}

func (h *RequestHandler) Submit(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.requestService.Submit(ctx, req.Category, req.Comment, middleware.GetIdentity(ctx))
	if err != nil {
		h.writeError(c, err, "failed to submit request")
		return
	}

	c.JSON(http.StatusOK, dto.SubmitResponse{
		Success:         true,
		RequestID:       result.RequestID,
		IntercomSuccess: result.BridgeSynced,
	})
}

func (h *RequestHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	requests, err := h.requestService.List(ctx, c.Param("category"), middleware.GetIdentity(ctx))
	if err != nil {
		h.writeError(c, err, "failed to list requests")
		return
	}

	c.JSON(http.StatusOK, dto.ToRequestResponses(requests))
}

func (h *RequestHandler) writeError(c *gin.Context, err error, logMsg string) {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
	case errors.Is(err, service.ErrInvalidCategory):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category"})
	case errors.Is(err, service.ErrEmptyComment):
		c.JSON(http.StatusBadRequest, gin.H{"error": "comment is required"})
	case errors.Is(err, service.ErrCommentTooLong):
		c.JSON(http.StatusBadRequest, gin.H{"error": "comment is too long"})
	default:
		slog.ErrorContext(c.Request.Context(), logMsg, "error", err)
		body := gin.H{"error": "Server error"}
		if !h.isProduction {
			body["details"] = err.Error()
		}
		c.JSON(http.StatusInternalServerError, body)
	}
}
