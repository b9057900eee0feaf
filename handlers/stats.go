// Package handlers, HTTP request handler'larını içerir.
//
// StatsHandler, engine'in o anki durumunu JSON olarak sunar. Dashboard
// dışındaki araçlar (curl, health check, scraper) WebSocket açmadan
// aynı running state'i okuyabilir. Tarihsel veri yoktur.
package handlers

import (
	"net/http"
	"sync/atomic"

	"github.com/akinalp/metricsdash/models"
	"github.com/akinalp/metricsdash/pkg"
)

// StatsSource, handler'ın ihtiyaç duyduğu engine yetenekleri.
// services.DashboardService bunu implement eder.
type StatsSource interface {
	Snapshot() models.DashboardSnapshot
	Endpoint(method, url string) (models.EndpointPayload, error)
}

// HealthResponse, health endpoint'inin response formatı.
type HealthResponse struct {
	Status string `json:"status"`
}

// StatsHandler, istatistik ve health endpoint'lerini yöneten handler.
type StatsHandler struct {
	source   StatsSource
	draining atomic.Bool
}

// NewStatsHandler, constructor. main.go'da wire-up edilir.
func NewStatsHandler(source StatsSource) *StatsHandler {
	return &StatsHandler{source: source}
}

// GetStats, engine snapshot'ını döner.
//
// GET /api/stats
// Response: { "success": true, "data": { "cpu": {...}, "memory": {...}, "endpoints": [...], ... } }
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	pkg.JSON(w, http.StatusOK, h.source.Snapshot())
}

// GetEndpoint, tek bir endpoint satırını döner.
//
// GET /api/stats/endpoint?method=GET&url=/a
// method verilmezse GET varsayılır. Satır yoksa 404.
func (h *StatsHandler) GetEndpoint(w http.ResponseWriter, r *http.Request) {
	method := r.URL.Query().Get("method")
	if method == "" {
		method = http.MethodGet
	}

	row, err := h.source.Endpoint(method, r.URL.Query().Get("url"))
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, row)
}

// Health, liveness/readiness kontrolü.
// Graceful shutdown başladıktan sonra 503 döner.
//
// GET /api/health
func (h *StatsHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h.draining.Load() {
		pkg.Error(w, pkg.ErrUnavailable)
		return
	}
	pkg.JSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// SetDraining, shutdown başladığında main.go tarafından çağrılır.
func (h *StatsHandler) SetDraining() {
	h.draining.Store(true)
}
