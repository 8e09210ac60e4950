package handlers

import (
	"referral_proxy/internal/logger"
	"referral_proxy/internal/service"

	"github.com/gin-gonic/gin"

	_ "referral_proxy/docs"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Options holds the request-facing settings resolved from configuration.
type Options struct {
	Route         string // path of the referral proxy, e.g. /api/proxy
	AllowedOrigin string // value of Access-Control-Allow-Origin
	AdminToken    string // bearer token for /api/v1 and /ws; empty disables them
}

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
	opts     Options
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger, opts Options) *Handler {
	if opts.Route == "" {
		opts.Route = "/api/proxy"
	}
	return &Handler{services: services, log: log, opts: opts}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.CustomRecovery(h.recoverPanic))

	// Runs for unmatched routes too, so every preflight gets a 204.
	router.Use(h.corsMiddleware)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	// The proxy answers every method itself: POST proxies, others get 405.
	router.Any(h.opts.Route, h.proxyReferrals)

	if h.opts.AdminToken != "" {
		h.registerAdminRoutes(router)
	}

	return router
}

func (h *Handler) registerAdminRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.adminTokenMiddleware)
	{
		api.GET("/audit", h.getAudit)
		api.GET("/stats", h.getStats)
	}
	r.GET("/ws", h.adminTokenMiddleware, h.wsConnect)
}
