package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	corsAllowMethods = "POST, OPTIONS"
	corsAllowHeaders = "Content-Type"
)

// corsMiddleware attaches the CORS headers to every response and ends
// preflight requests with 204 before any route handler runs.
func (h *Handler) corsMiddleware(c *gin.Context) {
	header := c.Writer.Header()
	header.Set("Access-Control-Allow-Origin", h.opts.AllowedOrigin)
	header.Set("Access-Control-Allow-Methods", corsAllowMethods)
	header.Set("Access-Control-Allow-Headers", corsAllowHeaders)

	if c.Request.Method == http.MethodOptions {
		c.AbortWithStatus(http.StatusNoContent)
		return
	}
	c.Next()
}
