// Package ratelimit — ConnectRateLimiter: dashboard WebSocket endpoint'ine
// IP bazlı bağlantı sınırlaması.
//
// Tasarım:
// - Her IP adresi için sabit pencere (fixed window) ile bağlantı denemesi sayılır.
// - Pencere içinde maxAttempts aşılırsa istek reddedilir (429).
// - Background goroutine ile süresi dolmuş bucket'lar temizlenir (memory leak engeli).
//
// Neden gerekli?
// Her yeni bağlantı env + title mesajı üretir ve ortam bilgisi sorgular;
// reconnect döngüsüne giren bir viewer bu yolu sürekli tetikleyebilir.
//
// pkg/ratelimit hiçbir proje içi pakete bağımlı değildir (leaf dependency).
package ratelimit

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// bucket, bir IP adresi için deneme sayacı ve pencere başlangıcı tutar.
type bucket struct {
	count       int
	windowStart time.Time
}

// ConnectRateLimiter, IP bazlı bağlantı limiti.
//
// Kullanım:
//
//	limiter := NewConnectRateLimiter(30, time.Minute)
//	defer limiter.Stop()
//	if !limiter.Allow(ip) { return 429 }
type ConnectRateLimiter struct {
	mu          sync.RWMutex
	buckets     map[string]*bucket
	maxAttempts int
	window      time.Duration
	stopCleanup chan struct{}
	stopOnce    sync.Once
}

// NewConnectRateLimiter, yeni rate limiter oluşturur ve arka plan temizleme
// goroutine'ini başlatır.
func NewConnectRateLimiter(maxAttempts int, window time.Duration) *ConnectRateLimiter {
	rl := &ConnectRateLimiter{
		buckets:     make(map[string]*bucket),
		maxAttempts: maxAttempts,
		window:      window,
		stopCleanup: make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Allow, verilen IP'nin yeni bir bağlantı açmasına izin verilip verilmediğini
// kontrol eder. Her çağrı sayacı artırır.
func (rl *ConnectRateLimiter) Allow(ip string) bool {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, exists := rl.buckets[ip]
	if !exists {
		rl.buckets[ip] = &bucket{count: 1, windowStart: now}
		return true
	}

	// Pencere dolmuşsa yeni pencere başlat
	if now.Sub(b.windowStart) > rl.window {
		b.count = 1
		b.windowStart = now
		return true
	}

	b.count++
	return b.count <= rl.maxAttempts
}

// RetryAfterSeconds, limit aşıldığında kalan bekleme süresini saniye
// cinsinden döner. HTTP Retry-After header değeri olarak kullanılır.
func (rl *ConnectRateLimiter) RetryAfterSeconds(ip string) int {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	b, exists := rl.buckets[ip]
	if !exists {
		return 0
	}

	remaining := rl.window - time.Since(b.windowStart)
	if remaining < 0 {
		return 0
	}
	return int(remaining.Seconds()) + 1 // +1 yuvarlama
}

// Stop, temizleme goroutine'ini durdurur. Birden fazla çağrı güvenlidir.
func (rl *ConnectRateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCleanup) })
}

// cleanupLoop, arka planda süresi dolmuş bucket'ları temizler.
func (rl *ConnectRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(60 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCleanup:
			return
		}
	}
}

func (rl *ConnectRateLimiter) cleanup() {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for ip, b := range rl.buckets {
		if now.Sub(b.windowStart) > rl.window {
			delete(rl.buckets, ip)
		}
	}
}

// ExtractIP, HTTP request'ten client IP adresini çıkarır.
//
// Öncelik sırası:
// 1. X-Forwarded-For header (reverse proxy arkasındaysa, ilk IP)
// 2. X-Real-IP header
// 3. RemoteAddr (doğrudan bağlantı)
func ExtractIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// FormatRetryMessage, kalan süreyi okunabilir formata çevirir.
// Örn: 120 → "2 minute(s)", 45 → "45 second(s)"
func FormatRetryMessage(seconds int) string {
	if seconds >= 60 {
		return fmt.Sprintf("%d minute(s)", seconds/60)
	}
	return fmt.Sprintf("%d second(s)", seconds)
}
