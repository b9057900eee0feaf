package ws

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/akinalp/metricsdash/pkg/ratelimit"
)

// WebSocket bağlantı sabitleri
const (
	// writeWait: Bir mesajı yazmak için maksimum bekleme süresi.
	writeWait = 10 * time.Second

	// pongWait: Viewer'dan pong (veya herhangi bir frame) beklenen maksimum süre.
	pongWait = 60 * time.Second

	// pingPeriod: Ping gönderim aralığı — pongWait'ten kısa olmalı.
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize: Viewer'ın gönderebileceği maksimum mesaj boyutu (byte).
	// Viewer'dan komut beklenmiyor, küçük tutulur.
	maxMessageSize = 4096

	// sendBufferSize: Her client'ın send channel'ının buffer boyutu.
	// Buffer dolarsa (viewer yavaş) Hub client'ı kayıttan çıkarır.
	sendBufferSize = 256
)

// Client, tek bir viewer WebSocket bağlantısı. Hub için bir Sink'tir.
//
// Her bağlantı için iki goroutine çalışır:
// - ReadPump: viewer'dan gelen frame'leri okur (sadece loglanır), kopunca Hub'dan çıkar
// - WritePump: send channel'ındaki mesajları ve periyodik ping'leri yazar
//
// gorilla/websocket aynı anda sadece bir okuyucu ve bir yazıcı destekler;
// tüm yazmalar WritePump goroutine'inden yapılır.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	id   string

	// send, client'a gidecek mesajların buffer'ı.
	// closed=true olduktan sonra channel kapalıdır — Send bunu mu ile kontrol eder,
	// böylece kayıttan çıkmış bir client'a gönderim panic yerine hata döner.
	send   chan []byte
	mu     sync.Mutex
	closed bool

	// inbound, gelen text mesajların loglanma limiti (nil = limitsiz).
	inbound *ratelimit.MessageRateLimiter
}

// NewClient, bağlantı için yeni bir Client oluşturur.
func NewClient(hub *Hub, conn *websocket.Conn, id string) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		id:   id,
		send: make(chan []byte, sendBufferSize),
	}
}

// Send, mesajı client'ın buffer'ına bırakır. Bloklamaz.
func (c *Client) Send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrSubscriberClosed
	}

	select {
	case c.send <- data:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// Close, send channel'ını kapatır. WritePump close frame yazıp çıkar.
// Birden fazla çağrı güvenlidir.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// ReadPump, bağlantıdan gelen frame'leri okur.
//
// Bağlantı kapandığında (hata, timeout veya viewer ayrıldı) client Hub'dan
// çıkarılır. Bu fonksiyon bağlantı kapanana kadar bloklar.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c.id)
		c.conn.Close()
		if c.inbound != nil {
			c.inbound.Forget(c.id)
		}
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Printf("[ws] failed to set read deadline for %s: %v", c.id, err)
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		msgType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[ws] unexpected close for %s: %v", c.id, err)
			}
			return
		}

		if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			return
		}

		// Komut protokolü yok — text mesajlar loglanır, binary mesajlar yok sayılır.
		// Limit aşan mesajlar sessizce düşer.
		if msgType == websocket.TextMessage && (c.inbound == nil || c.inbound.Allow(c.id)) {
			log.Printf("[ws] message from %s: %s", c.id, data)
		}
	}
}

// WritePump, send channel'ındaki mesajları bağlantıya yazar ve
// pingPeriod'da bir ping gönderir.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				// Channel kapatıldı — Hub client'ı çıkardı
				c.write(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.write(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) write(messageType int, data []byte) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(messageType, data)
}
