// MessageRateLimiter — viewer'dan gelen text frame'leri için bağlantı bazlı
// rate limiting.
//
// Dashboard protokolünde viewer → server yönünde komut yoktur; gelen text
// mesajlar sadece loglanır. Limiter, tek bir bağlantının log'u doldurmasını
// engeller.
//
// ConnectRateLimiter'dan farklar:
//   - Key: bağlantı id'si (IP değil).
//   - Window ve ceza süresi (cooldown) ayrıdır: 5 saniyede 5 mesaj geçer,
//     6. mesajda 15 saniyelik cooldown başlar.
package ratelimit

import (
	"sync"
	"time"
)

// messageBucket, bir bağlantı için mesaj sayacı ve cooldown bilgisi.
type messageBucket struct {
	count         int
	windowStart   time.Time
	cooldownUntil time.Time // zero value = cooldown yok
}

// MessageRateLimiter, bağlantı bazlı mesaj limiti.
//
//	limiter := NewMessageRateLimiter(5, 5*time.Second, 15*time.Second)
//	if limiter.Allow(clientID) { log... }
type MessageRateLimiter struct {
	mu          sync.Mutex
	buckets     map[string]*messageBucket
	maxMessages int
	window      time.Duration
	cooldown    time.Duration

	stopCleanup chan struct{}
	stopOnce    sync.Once
	now         func() time.Time
}

// NewMessageRateLimiter, limiter oluşturur ve arka plan temizleme
// goroutine'ini başlatır.
func NewMessageRateLimiter(maxMessages int, window, cooldown time.Duration) *MessageRateLimiter {
	rl := &MessageRateLimiter{
		buckets:     make(map[string]*messageBucket),
		maxMessages: maxMessages,
		window:      window,
		cooldown:    cooldown,
		stopCleanup: make(chan struct{}),
		now:         time.Now,
	}

	go rl.cleanupLoop()

	return rl
}

// Allow, mesajın kabul edilip edilmeyeceğini döner.
//
// Akış:
// 1. Cooldown'daysa → reject.
// 2. Cooldown bitmişse veya window dolmuşsa → yeni pencere.
// 3. Window içindeyse → count artır, max aşıldıysa cooldown başlat.
func (rl *MessageRateLimiter) Allow(key string) bool {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, exists := rl.buckets[key]
	if !exists {
		rl.buckets[key] = &messageBucket{count: 1, windowStart: now}
		return true
	}

	if !b.cooldownUntil.IsZero() {
		if now.Before(b.cooldownUntil) {
			return false
		}
		*b = messageBucket{count: 1, windowStart: now}
		return true
	}

	if now.Sub(b.windowStart) > rl.window {
		b.count = 1
		b.windowStart = now
		return true
	}

	b.count++
	if b.count > rl.maxMessages {
		b.cooldownUntil = now.Add(rl.cooldown)
		return false
	}

	return true
}

// Forget, bağlantı kapandığında bucket'ını siler.
func (rl *MessageRateLimiter) Forget(key string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	delete(rl.buckets, key)
}

// Stop, cleanup goroutine'ini durdurur. Birden fazla çağrı güvenlidir.
func (rl *MessageRateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCleanup) })
}

func (rl *MessageRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(30 * time.Second)
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

// cleanup, hem window'u hem cooldown'u bitmiş bucket'ları siler.
func (rl *MessageRateLimiter) cleanup() {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, b := range rl.buckets {
		windowExpired := now.Sub(b.windowStart) > rl.window
		cooldownExpired := b.cooldownUntil.IsZero() || now.After(b.cooldownUntil)

		if windowExpired && cooldownExpired {
			delete(rl.buckets, key)
		}
	}
}
