package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	addresshandler "cepbook/internal/address/handler"
	cephandler "cepbook/internal/cep/handler"
	"cepbook/internal/platform/health"
	registerhandler "cepbook/internal/register/handler"
	"cepbook/pkg/platform/middleware/device"
	"cepbook/pkg/platform/middleware/metadata"
	request "cepbook/pkg/platform/middleware/request"
)

// newRouter assembles the middleware stack and mounts every HTTP surface.
func newRouter(
	log *slog.Logger,
	recordService addresshandler.Service,
	lookupClient cephandler.Lookuper,
	sessions registerhandler.Sessions,
	healthHandler *health.Handler,
) http.Handler {
	r := chi.NewRouter()

	r.Use(request.Recovery(log))
	r.Use(request.RequestID)
	r.Use(metadata.NewMiddleware(metadata.DefaultConfig()).Handler)
	r.Use(device.Middleware)
	r.Use(request.Logger(log))
	r.Use(request.Timeout(30 * time.Second))
	r.Use(request.LatencyMiddleware(request.NewMetrics()))

	healthHandler.Register(r)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(request.ContentTypeJSON)

		addresshandler.New(recordService, log).Register(r)
		cephandler.New(lookupClient, log).Register(r)
		registerhandler.New(sessions, log).Register(r)
	})

	return r
}
