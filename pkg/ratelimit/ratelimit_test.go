package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestConnectRateLimiter_Allow(t *testing.T) {
	rl := NewConnectRateLimiter(3, time.Minute)
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}
	if rl.Allow("10.0.0.1") {
		t.Fatal("4th attempt should be rejected")
	}
	if !rl.Allow("10.0.0.2") {
		t.Fatal("other IPs must not be affected")
	}

	if secs := rl.RetryAfterSeconds("10.0.0.1"); secs <= 0 || secs > 61 {
		t.Errorf("unexpected retry-after: %d", secs)
	}
	if secs := rl.RetryAfterSeconds("unknown"); secs != 0 {
		t.Errorf("expected 0 for unknown IP, got %d", secs)
	}
}

func TestConnectRateLimiter_WindowExpires(t *testing.T) {
	rl := NewConnectRateLimiter(1, 20*time.Millisecond)
	defer rl.Stop()

	if !rl.Allow("ip") {
		t.Fatal("first attempt should be allowed")
	}
	if rl.Allow("ip") {
		t.Fatal("second attempt should be rejected")
	}

	time.Sleep(30 * time.Millisecond)

	if !rl.Allow("ip") {
		t.Fatal("attempt after window should be allowed")
	}
}

func TestConnectRateLimiter_StopIsIdempotent(t *testing.T) {
	rl := NewConnectRateLimiter(1, time.Second)
	rl.Stop()
	rl.Stop()
}

func TestExtractIP(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		want       string
	}{
		{"forwarded for", map[string]string{"X-Forwarded-For": "1.1.1.1, 2.2.2.2"}, "3.3.3.3:1", "1.1.1.1"},
		{"real ip", map[string]string{"X-Real-IP": "4.4.4.4"}, "3.3.3.3:1", "4.4.4.4"},
		{"remote addr", nil, "5.5.5.5:1234", "5.5.5.5"},
		{"remote addr without port", nil, "6.6.6.6", "6.6.6.6"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := ExtractIP(r); got != tt.want {
				t.Errorf("ExtractIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatRetryMessage(t *testing.T) {
	if got := FormatRetryMessage(120); got != "2 minute(s)" {
		t.Errorf("got %q", got)
	}
	if got := FormatRetryMessage(45); got != "45 second(s)" {
		t.Errorf("got %q", got)
	}
}

func TestMessageRateLimiter_WindowAndCooldown(t *testing.T) {
	rl := NewMessageRateLimiter(2, 5*time.Second, 15*time.Second)
	defer rl.Stop()

	clock := time.Unix(1000, 0)
	rl.now = func() time.Time { return clock }

	if !rl.Allow("c1") || !rl.Allow("c1") {
		t.Fatal("first two messages should pass")
	}
	if rl.Allow("c1") {
		t.Fatal("third message in window should start cooldown")
	}
	if !rl.Allow("c2") {
		t.Fatal("other connections must not be affected")
	}

	// Window geçti ama cooldown sürüyor.
	clock = clock.Add(6 * time.Second)
	if rl.Allow("c1") {
		t.Fatal("message during cooldown should be rejected")
	}

	clock = clock.Add(10 * time.Second)
	if !rl.Allow("c1") {
		t.Fatal("message after cooldown should pass")
	}
}

func TestMessageRateLimiter_ForgetAndCleanup(t *testing.T) {
	rl := NewMessageRateLimiter(1, time.Second, time.Second)
	defer rl.Stop()

	clock := time.Unix(1000, 0)
	rl.now = func() time.Time { return clock }

	rl.Allow("c1")
	rl.Allow("c1") // cooldown
	rl.Forget("c1")
	if !rl.Allow("c1") {
		t.Fatal("forgotten connection should start fresh")
	}

	rl.Allow("c2")
	clock = clock.Add(5 * time.Second)
	rl.cleanup()

	rl.mu.Lock()
	n := len(rl.buckets)
	rl.mu.Unlock()
	if n != 0 {
		t.Errorf("buckets after cleanup = %d, want 0", n)
	}
}
