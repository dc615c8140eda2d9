package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// CORS allows the SPA at origin to call the API with its session cookie.
// Requests from any other origin get no CORS headers and are left to the browser to block.
func CORS(origin string) gin.HandlerFunc {
	origin = strings.TrimSuffix(origin, "/")
	return func(c *gin.Context) {
		if c.GetHeader("Origin") == origin && origin != "" {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type")
			h.Add("Vary", "Origin")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
