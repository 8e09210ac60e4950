package server

import (
	"database/sql"
	"fmt"

	"referral_proxy/internal/config"
	"referral_proxy/internal/handlers"
	"referral_proxy/internal/logger"
	"referral_proxy/internal/repository"
	"referral_proxy/internal/repository/db"
	"referral_proxy/internal/service"
	"referral_proxy/internal/upstream"

	"github.com/gin-gonic/gin"
)

// App is the fully wired proxy shared by the local server and the
// serverless entry points.
type App struct {
	Router   *gin.Engine
	Services *service.Service

	db *sql.DB
}

// NewApp opens the audit store (when configured) and builds the router.
func NewApp(cfg config.Config, log *logger.Logger) (*App, error) {
	var conn *sql.DB
	if cfg.Audit.Enabled() {
		var err error
		conn, err = db.InitDB(cfg.Audit.DBPath)
		if err != nil {
			return nil, fmt.Errorf("init audit db: %w", err)
		}
	}

	repos := repository.NewRepository(conn)
	services := service.NewService(repos, service.Deps{
		Upstream:  upstream.NewClient(cfg.Upstream.URL, cfg.Upstream.Timeout),
		APIKey:    cfg.Upstream.APIKey,
		Retention: cfg.Audit.Retention,
		Log:       log,
	})

	h := handlers.NewHandler(services, log, handlers.Options{
		Route:         cfg.Server.Route,
		AllowedOrigin: cfg.CORS.AllowedOrigin,
		AdminToken:    cfg.Admin.Token,
	})

	if log != nil {
		log.Infow("app_ready",
			"route", cfg.Server.Route,
			"upstream", cfg.Upstream.URL,
			"audit", cfg.Audit.Enabled(),
			"admin", cfg.Admin.Token != "",
		)
	}

	return &App{Router: h.InitRoutes(), Services: services, db: conn}, nil
}

// Close releases the audit database, if any.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}
