package ws

import (
	"log"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/akinalp/metricsdash/pkg"
	"github.com/akinalp/metricsdash/pkg/ratelimit"
)

// upgrader, HTTP bağlantısını WebSocket bağlantısına yükseltir.
//
// Dashboard salt-okunur bir yayın kanalıdır ve viewer auth'u yoktur;
// origin kontrolü CORS katmanına bırakılır.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler, WebSocket bağlantı isteklerini işleyen HTTP handler'ı.
type Handler struct {
	hub     *Hub
	limiter *ratelimit.ConnectRateLimiter
	inbound *ratelimit.MessageRateLimiter
}

// NewHandler, yeni bir WebSocket handler oluşturur.
// limiter nil ise bağlantı hızı sınırlanmaz.
func NewHandler(hub *Hub, limiter *ratelimit.ConnectRateLimiter) *Handler {
	return &Handler{
		hub:     hub,
		limiter: limiter,
	}
}

// WithInboundLimit, viewer'dan gelen text mesajların log limitini ayarlar.
func (h *Handler) WithInboundLimit(limiter *ratelimit.MessageRateLimiter) *Handler {
	h.inbound = limiter
	return h
}

// HandleConnection, HTTP bağlantısını WebSocket'e yükseltir ve client'ı
// Hub'a kaydeder.
//
// Flow:
// 1. IP bazlı bağlantı limiti (429 + Retry-After)
// 2. HTTP → WebSocket upgrade
// 3. uuid ile bağlantı kimliği, Client oluştur
// 4. WritePump goroutine'i, Hub'a kayıt (hoş geldin mesajları burada gider)
// 5. ReadPump — bağlantı kapanana kadar bloklar
func (h *Handler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	if h.limiter != nil {
		ip := ratelimit.ExtractIP(r)
		if !h.limiter.Allow(ip) {
			retryAfter := h.limiter.RetryAfterSeconds(ip)
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			pkg.ErrorWithMessage(w, http.StatusTooManyRequests,
				"too many connection attempts, retry in "+ratelimit.FormatRetryMessage(retryAfter))
			return
		}
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed for %s: %v", r.RemoteAddr, err)
		return
	}

	client := NewClient(h.hub, conn, uuid.New().String())
	client.inbound = h.inbound

	go client.WritePump()
	h.hub.Register(client.id, client)
	client.ReadPump()
}
