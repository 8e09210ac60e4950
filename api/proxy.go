package handler

import (
	"net/http"

	"referral_proxy/internal/server"
)

// Handler is the entry point for Vercel's Go runtime, served at /api/proxy.
func Handler(w http.ResponseWriter, r *http.Request) {
	server.ServerlessHandler().ServeHTTP(w, r)
}
