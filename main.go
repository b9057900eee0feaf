// Package main, metricsdash uygulamasının giriş noktasıdır.
//
// Bu dosyanın görevi — Dependency Injection "wire-up":
//  1. Config'i yükle
//  2. Service'leri oluştur (hub, environment, dashboard, monitor, limiter)
//  3. Handler'ları oluştur
//  4. Callback'leri bağla (hub → dashboard, monitor → dashboard)
//  5. Route'ları ve middleware zincirini kur
//  6. Arka plan goroutine'lerini başlat (monitor sampler, dashboard flush)
//  7. HTTP Server'ı başlat
//  8. Graceful shutdown
//
// Global değişken yok; her şey bu fonksiyonda oluşturulup birbirine bağlanır.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/akinalp/metricsdash/config"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.Println("[main] metricsdash starting...")

	// ─── 1. Config ───
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[main] failed to load config: %v", err)
	}
	log.Printf("[main] config loaded (port=%d, dashboard=%s)", cfg.Server.Port, cfg.Dashboard.Path)

	// ─── 2. Services ───
	svcs, err := initServices(cfg)
	if err != nil {
		log.Fatalf("[main] failed to initialize services: %v", err)
	}

	// ─── 3. Handlers ───
	h := initHandlers(svcs)

	// ─── 4. Callbacks ───
	registerCallbacks(svcs)

	// ─── 5. Routes + Middleware ───
	handler := initRoutes(cfg, h, svcs.Monitor)

	// ─── 6. Background goroutines ───
	svcs.Monitor.Start()
	svcs.Dashboard.Start()

	// ─── 7. HTTP Server ───
	// WriteTimeout yok: WebSocket bağlantıları uzun ömürlüdür, yazma
	// deadline'ları Client.WritePump'ta mesaj başına ayarlanır.
	srv := &http.Server{
		Addr:        cfg.Server.Addr(),
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("[main] server listening on %s (dashboard at %s/)", cfg.Server.Addr(), cfg.Dashboard.Path)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[main] server error: %v", err)
		}
	}()

	// ─── 8. Graceful Shutdown ───
	<-done
	log.Println("[main] shutting down...")

	h.Stats.SetDraining()

	// Önce üreticiler durur (yeni sample/flush yok), sonra viewer bağlantıları
	// kapanır, en son HTTP server mevcut request'lerin bitmesini bekler.
	svcs.Monitor.Stop()
	svcs.Dashboard.Stop()
	svcs.Hub.Shutdown()
	svcs.Limiter.Stop()
	svcs.Inbound.Stop()
	svcs.Environment.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("[main] forced shutdown: %v", err)
	}

	log.Println("[main] server stopped gracefully")
}
