// Package main — Handler katmanı başlatma.
//
// Handler'lar "thin" dir: sadece HTTP parse + service call + response write.
package main

import (
	"github.com/akinalp/metricsdash/handlers"
	"github.com/akinalp/metricsdash/ws"
)

// Handlers, tüm handler instance'larını tutan container struct.
type Handlers struct {
	Stats *handlers.StatsHandler
	WS    *ws.Handler
}

// initHandlers, handler'ları service'lerden oluşturur.
func initHandlers(svcs *Services) *Handlers {
	return &Handlers{
		Stats: handlers.NewStatsHandler(svcs.Dashboard),
		WS:    ws.NewHandler(svcs.Hub, svcs.Limiter).WithInboundLimit(svcs.Inbound),
	}
}
