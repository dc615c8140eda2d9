package router

import (
	"basegraph.app/helpdesk/internal/http/handler"
	"github.com/gin-gonic/gin"
)

// RequestRouter expects rg to be behind RequireAuth.
func RequestRouter(rg *gin.RouterGroup, h *handler.RequestHandler) {
	rg.POST("", h.Submit)
	rg.GET("/:category", h.List)
}
