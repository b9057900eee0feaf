// Package main — HTTP route registration.
//
// initRoutes, endpoint'leri mux'a bağlar ve mux'u middleware zinciriyle sarar:
//
//	CORS → RequestTiming → mux
//
// Route'lar:
//   - GET <DASH_PATH>/          gömülü viewer sayfası
//   - GET <DASH_PATH>/ws        WebSocket (RequestTiming dışında)
//   - GET /api/stats            engine snapshot'ı
//   - GET /api/stats/endpoint   tek endpoint satırı
//   - GET /api/health           liveness, shutdown'da 503
package main

import (
	"net/http"

	"github.com/rs/cors"

	"github.com/akinalp/metricsdash/config"
	"github.com/akinalp/metricsdash/middleware"
	"github.com/akinalp/metricsdash/static"
)

// initRoutes, tam HTTP handler zincirini döner.
func initRoutes(cfg *config.Config, h *Handlers, recorder middleware.RequestRecorder) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", h.Stats.Health)
	mux.HandleFunc("GET /api/stats", h.Stats.GetStats)
	mux.HandleFunc("GET /api/stats/endpoint", h.Stats.GetEndpoint)

	dashPath := cfg.Dashboard.Path
	mux.HandleFunc("GET "+cfg.Dashboard.WSPath(), h.WS.HandleConnection)

	// Viewer sayfası WebSocket adresini kendi path'inden türetir: <DASH_PATH>/ws.
	mux.Handle("GET "+dashPath, http.RedirectHandler(dashPath+"/", http.StatusMovedPermanently))
	mux.Handle("GET "+dashPath+"/", http.StripPrefix(dashPath, http.FileServerFS(static.Dist())))

	timing := middleware.NewRequestTimingMiddleware(recorder, cfg.Dashboard.WSPath())

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.CORS.Origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		Debug:          false,
	})

	return corsHandler.Handler(timing.Wrap(mux))
}
