package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"referral_proxy/internal/config"
	"referral_proxy/internal/logger"
	"referral_proxy/internal/server"

	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 10 * time.Second

// @title        Shock Referral Proxy API
// @version      1.0
// @description  Injects the Shock API key and relays referral queries for the dashboard frontend.
// @BasePath     /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		// config not loaded yet: fall back to defaults for this one message
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}

	log := logger.Get(cfg.Log.Level, cfg.Log.Format)
	gin.SetMode(gin.ReleaseMode)

	app, err := server.NewApp(cfg, log)
	if err != nil {
		log.Fatalw("failed to init app", "err", err)
	}
	defer func() {
		if cerr := app.Close(); cerr != nil {
			log.Errorw("failed to close audit db", "err", cerr)
		}
	}()

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Audit.Enabled() {
		go app.Services.Retention.Run(ctx, cfg.Audit.PruneInterval)
	}

	srv := &server.Server{}
	runHTTPServer(srv, cfg.Server.Port, app, log)

	waitForShutdown(cancel, srv, log)
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, app *server.App, log *logger.Logger) {
	go func() {
		log.Infow("server_listening", "port", port)
		if err := srv.Run(port, app.Router); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	ctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
