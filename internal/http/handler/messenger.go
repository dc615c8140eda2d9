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

type MessengerHandler struct {
	messengerService service.MessengerService
}

func NewMessengerHandler(messengerService service.MessengerService) *MessengerHandler {
	return &MessengerHandler{messengerService: messengerService}
}

func (h *MessengerHandler) Boot(c *gin.Context) {
	ctx := c.Request.Context()

	boot, err := h.messengerService.Boot(middleware.GetSession(ctx))
	if err != nil {
		if errors.Is(err, service.ErrUnauthenticated) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
			return
		}
		slog.ErrorContext(ctx, "failed to build messenger payload", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusOK, dto.MessengerResponse{
		AppID:     boot.AppID,
		UserID:    boot.UserID,
		Name:      boot.Name,
		Email:     boot.Email,
		CreatedAt: boot.CreatedAt,
		UserHash:  boot.UserHash,
	})
}
