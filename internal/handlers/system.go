package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// @Summary      Health
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary      Proxy statistics
// @Description  Invocation counts per outcome from the audit trail.
// @Tags         audit
// @Produce      json
// @Success      200  {object}  models.ProxyStats
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/stats [get]
// @Security     BearerAuth
func (h *Handler) getStats(c *gin.Context) {
	st, err := h.services.Monitoring.GetStats(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "stats_failed", "failed to load stats", err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *Handler) logAndJSONError(c *gin.Context, status int, key, msg string, err error, kv ...interface{}) {
	if h.log != nil {
		h.log.Errorw(key, append([]interface{}{"err", err}, kv...)...)
	}
	c.JSON(status, gin.H{"error": msg})
}

// InitUnavailableRoutes builds a router for a proxy that could not start:
// preflight still gets 204, everything else a 500 naming the reason.
func (h *Handler) InitUnavailableRoutes(reason string) *gin.Engine {
	router := gin.New()
	router.Use(gin.CustomRecovery(h.recoverPanic))
	router.Use(h.corsMiddleware)
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   errProxyFailed,
			"message": reason,
		})
	})
	return router
}

// recoverPanic answers a panicking request with the same shape as any other
// unexpected proxy failure.
func (h *Handler) recoverPanic(c *gin.Context, recovered any) {
	if h.log != nil {
		h.log.Errorw("handler_panic", "panic", recovered, "path", c.Request.URL.Path)
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
		"error":   errProxyFailed,
		"message": fmt.Sprint(recovered),
	})
}
