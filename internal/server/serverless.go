package server

import (
	"net/http"
	"sync"

	"referral_proxy/internal/config"
	"referral_proxy/internal/handlers"
	"referral_proxy/internal/logger"

	"github.com/gin-gonic/gin"
)

const reasonConfigInvalid = "configuration invalid"

var (
	serverlessOnce    sync.Once
	serverlessHandler http.Handler
)

// ServerlessHandler builds the proxy from PROXY_* settings once per process.
// Warm invocations reuse the router. A bad configuration yields a handler
// that answers 500 with CORS headers instead of crashing the function.
func ServerlessHandler() http.Handler {
	serverlessOnce.Do(func() {
		serverlessHandler = buildServerless()
	})
	return serverlessHandler
}

func buildServerless() http.Handler {
	gin.SetMode(gin.ReleaseMode)

	cfg, err := config.FromEnv()
	log := logger.Get(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Errorw("config_invalid", "err", err)
		return unavailable(config.DefaultAllowedOrigin)
	}

	app, err := NewApp(cfg, log)
	if err != nil {
		log.Errorw("app_init_failed", "err", err)
		return unavailable(cfg.CORS.AllowedOrigin)
	}
	return app.Router
}

func unavailable(origin string) http.Handler {
	return handlers.NewHandler(nil, nil, handlers.Options{AllowedOrigin: origin}).
		InitUnavailableRoutes(reasonConfigInvalid)
}
