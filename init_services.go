// Package main — Service katmanı başlatma.
//
// initServices, hub'ı, event source'u (Monitor), engine'i (DashboardService)
// ve WebSocket rate limiter'larını oluşturur.
//
// Sıralama: hub → environment → dashboard (hub'ı Publisher olarak alır)
// → sampler/monitor. Callback'ler ayrıca registerCallbacks'te bağlanır.
package main

import (
	"fmt"
	"log"

	"github.com/akinalp/metricsdash/config"
	"github.com/akinalp/metricsdash/pkg/ratelimit"
	"github.com/akinalp/metricsdash/services"
	"github.com/akinalp/metricsdash/ws"
)

// Services, tüm service instance'larını tutan container struct.
type Services struct {
	Hub         *ws.Hub
	Environment *services.HostEnvironment
	Dashboard   *services.DashboardService
	Monitor     *services.Monitor
	Limiter     *ratelimit.ConnectRateLimiter
	Inbound     *ratelimit.MessageRateLimiter
}

// initServices, tüm service'leri oluşturur. Goroutine'ler burada başlatılmaz;
// Start çağrıları main.go'dadır.
func initServices(cfg *config.Config) (*Services, error) {
	hub := ws.NewHub()

	env := services.NewHostEnvironment(cfg.Monitor.EnvCacheTTL)

	dashboard := services.NewDashboardService(hub, env, services.DashboardConfig{
		Title:         cfg.Dashboard.Title,
		DocsURL:       cfg.Dashboard.DocsURL,
		FlushInterval: cfg.Dashboard.FlushInterval,
		FlushLeeway:   cfg.Dashboard.FlushLeeway,
	})

	probe, err := newProcessProbe(cfg.Monitor)
	if err != nil {
		env.Close()
		return nil, err
	}
	sampler := services.NewResourceSampler(probe, services.NewHostSystemProbe())
	monitor := services.NewMonitor(sampler, cfg.Monitor.SampleInterval)

	limiter := ratelimit.NewConnectRateLimiter(cfg.WS.ConnectLimit, cfg.WS.ConnectWindow)
	inbound := ratelimit.NewMessageRateLimiter(cfg.WS.InboundLimit, cfg.WS.InboundWindow, cfg.WS.InboundCooldown)

	return &Services{
		Hub:         hub,
		Environment: env,
		Dashboard:   dashboard,
		Monitor:     monitor,
		Limiter:     limiter,
		Inbound:     inbound,
	}, nil
}

// newProcessProbe, MONITOR_METRICS_URL set ise uzak Prometheus probe'unu,
// değilse mevcut process'i ölçen probe'u seçer.
func newProcessProbe(cfg config.MonitorConfig) (services.ProcessProbe, error) {
	if cfg.MetricsURL != "" {
		log.Printf("[main] monitoring remote process via %s", cfg.MetricsURL)
		return services.NewPromProcessProbe(cfg.MetricsURL), nil
	}

	probe, err := services.NewLocalProcessProbe()
	if err != nil {
		return nil, fmt.Errorf("local process probe: %w", err)
	}
	log.Println("[main] monitoring local process")
	return probe, nil
}
