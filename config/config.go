// Package config, uygulamanın tüm konfigürasyonunu merkezi olarak yönetir.
// Environment variable'lardan okur, .env dosyasını da destekler.
//
// Config struct'ı tüm ayarları tek bir yerde toplar; her yerde ayrı ayrı
// os.Getenv() çağırmak yerine tek bir Config nesnesi taşınır.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config, uygulamanın tüm konfigürasyon değerlerini taşır.
type Config struct {
	Server    ServerConfig
	Dashboard DashboardConfig
	Monitor   MonitorConfig
	WS        WSConfig
	CORS      CORSConfig
}

// ServerConfig, HTTP server ayarları.
type ServerConfig struct {
	Host string
	Port int
}

// DashboardConfig, dashboard yayın ayarları.
type DashboardConfig struct {
	Path          string        // Statik dosyaların mount noktası (ör: /metrics-dash)
	Title         string        // "title" mesajındaki başlık
	DocsURL       string        // "title" mesajındaki doküman linki
	FlushInterval time.Duration // HTTP penceresinin yayın periyodu
	FlushLeeway   time.Duration // Geciken tick'lerin loglanma eşiği
}

// WSPath, WebSocket endpoint'i: <Path>/ws
func (c *DashboardConfig) WSPath() string {
	return c.Path + "/ws"
}

// MonitorConfig, telemetry kaynağı ayarları.
type MonitorConfig struct {
	SampleInterval time.Duration // CPU/bellek ölçüm periyodu
	MetricsURL     string        // Boş değilse process metrikleri bu Prometheus endpoint'inden okunur
	EnvCacheTTL    time.Duration // Ortam bilgisi cache süresi
}

// WSConfig, WebSocket limit ayarları.
type WSConfig struct {
	ConnectLimit    int // IP başına window içinde izin verilen bağlantı denemesi
	ConnectWindow   time.Duration
	InboundLimit    int // Bağlantı başına window içinde loglanan viewer mesajı
	InboundWindow   time.Duration
	InboundCooldown time.Duration
}

// CORSConfig, izin verilen origin listesi.
type CORSConfig struct {
	Origins []string
}

// Load, environment variable'lardan Config oluşturur.
// .env dosyası varsa önce onu yükler (development kolaylığı için).
func Load() (*Config, error) {
	// .env dosyası yoksa hata vermez, sessizce devam eder.
	_ = godotenv.Load()

	// PORT, platformların (container, PaaS) verdiği port; SERVER_PORT önceliklidir.
	port, err := positiveInt("SERVER_PORT", getEnv("PORT", "8080"))
	if err != nil {
		return nil, err
	}

	flushMs, err := positiveInt("FLUSH_INTERVAL_MS", "2000")
	if err != nil {
		return nil, err
	}

	leewayMs, err := positiveInt("FLUSH_LEEWAY_MS", "100")
	if err != nil {
		return nil, err
	}

	sampleMs, err := positiveInt("SAMPLE_INTERVAL_MS", "2000")
	if err != nil {
		return nil, err
	}

	envTTL, err := positiveInt("ENV_CACHE_TTL_SEC", "30")
	if err != nil {
		return nil, err
	}

	connectLimit, err := positiveInt("WS_CONNECT_LIMIT", "30")
	if err != nil {
		return nil, err
	}

	connectWindow, err := positiveInt("WS_CONNECT_WINDOW_SEC", "60")
	if err != nil {
		return nil, err
	}

	inboundLimit, err := positiveInt("WS_INBOUND_LIMIT", "5")
	if err != nil {
		return nil, err
	}

	inboundWindow, err := positiveInt("WS_INBOUND_WINDOW_SEC", "5")
	if err != nil {
		return nil, err
	}

	inboundCooldown, err := positiveInt("WS_INBOUND_COOLDOWN_SEC", "15")
	if err != nil {
		return nil, err
	}

	dashPath := "/" + strings.Trim(getEnv("DASH_PATH", "/metrics-dash"), "/")
	if dashPath == "/" {
		return nil, fmt.Errorf("invalid DASH_PATH: dashboard cannot be mounted at the root")
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: port,
		},
		Dashboard: DashboardConfig{
			Path:          dashPath,
			Title:         getEnv("DASH_TITLE", "Application Metrics for Go"),
			DocsURL:       getEnv("DASH_DOCS_URL", "https://github.com/akinalp/metricsdash"),
			FlushInterval: time.Duration(flushMs) * time.Millisecond,
			FlushLeeway:   time.Duration(leewayMs) * time.Millisecond,
		},
		Monitor: MonitorConfig{
			SampleInterval: time.Duration(sampleMs) * time.Millisecond,
			MetricsURL:     getEnv("MONITOR_METRICS_URL", ""),
			EnvCacheTTL:    time.Duration(envTTL) * time.Second,
		},
		WS: WSConfig{
			ConnectLimit:    connectLimit,
			ConnectWindow:   time.Duration(connectWindow) * time.Second,
			InboundLimit:    inboundLimit,
			InboundWindow:   time.Duration(inboundWindow) * time.Second,
			InboundCooldown: time.Duration(inboundCooldown) * time.Second,
		},
		CORS: CORSConfig{
			Origins: splitList(getEnv("CORS_ORIGINS", "*")),
		},
	}

	return cfg, nil
}

// Addr, HTTP server'ın dinleyeceği adresi döner (ör: "0.0.0.0:8080").
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// getEnv, environment variable'ı okur, yoksa fallback değeri döner.
func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

// positiveInt, key'i tam sayı olarak okur; sıfır veya negatif değerler reddedilir.
func positiveInt(key, fallback string) (int, error) {
	n, err := strconv.Atoi(getEnv(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive, got %d", key, n)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
