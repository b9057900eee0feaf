package ws

import (
	"encoding/json"
	"errors"
	"log"
	"sync"
)

var (
	// ErrSubscriberClosed, kapatılmış bir sink'e gönderim yapıldığında döner.
	// Hub bu hatayı sessizce yutar — subscriber zaten ayrılmıştır.
	ErrSubscriberClosed = errors.New("subscriber closed")

	// ErrSendBufferFull, sink'in buffer'ı dolu olduğunda döner (yavaş viewer).
	ErrSendBufferFull = errors.New("send buffer full")
)

// Sink, Hub'ın bir subscriber'a mesaj gönderebilmek için ihtiyaç duyduğu
// tek yetenek. Bağlantının asıl sahibi transport katmanıdır (Client);
// Hub sadece non-owning bir referans tutar.
//
// Send bloklamamalıdır — Hub broadcast sırasında her sink için sırayla çağırır.
type Sink interface {
	Send(data []byte) error
}

// closer, kapatılabilen sink'ler. Client bunu implement eder; test fake'leri
// etmek zorunda değildir.
type closer interface {
	Close()
}

// Publisher, service katmanının viewer'lara mesaj yayınlamak için kullandığı
// interface.
//
// Dependency Inversion: DashboardService Hub'ın concrete struct'ına değil,
// bu interface'e bağımlıdır — testte fake publisher kullanılabilir.
type Publisher interface {
	Broadcast(msg Message)
	Count() int
}

var _ Publisher = (*Hub)(nil)

type subscriber struct {
	id   string
	sink Sink
}

// Hub, bağlı viewer'ların kaydıdır (Subscriber Registry).
//
// subscribers map'i RWMutex ile korunur:
// - Register/Unregister → Lock (yazma)
// - Broadcast → RLock ile kopya alınır, gönderim lock DIŞINDA yapılır
//
// Böylece yavaş bir gönderim yeni bağlantıları veya ayrılmaları bloklamaz.
type Hub struct {
	subscribers map[string]Sink
	mu          sync.RWMutex
	closed      bool

	// onConnect: yeni subscriber'a özel "hoş geldin" mesajlarını üretir
	// (env + title). main package'da DashboardService'e bağlanır.
	onConnect func() []Message
}

// NewHub, yeni bir Hub oluşturur.
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]Sink),
	}
}

// OnConnect, yeni bağlanan her subscriber'a gönderilecek mesajları üreten
// callback'i ayarlar. Register'dan önce çağrılmalıdır.
func (h *Hub) OnConnect(fn func() []Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onConnect = fn
}

// Register, subscriber'ı kayda ekler.
//
// Hoş geldin mesajları sink'e set'e eklenmeden ÖNCE gönderilir — böylece
// viewer ilk olarak env ve title alır, ve bu mesajlar mevcut diğer
// subscriber'lara asla gitmez. Aynı id ile tekrar kayıt önceki entry'yi ezer
// (son kayıt kazanır).
func (h *Hub) Register(id string, sink Sink) {
	h.mu.RLock()
	welcome := h.onConnect
	h.mu.RUnlock()

	if welcome != nil {
		for _, msg := range welcome() {
			data, err := json.Marshal(msg)
			if err != nil {
				log.Printf("[ws] failed to marshal %s message: %v", msg.Topic, err)
				continue
			}
			if err := sink.Send(data); err != nil {
				log.Printf("[ws] failed to send %s to %s: %v", msg.Topic, id, err)
			}
		}
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		log.Printf("[ws] hub is shut down, rejecting subscriber %s", id)
		if c, ok := sink.(closer); ok {
			c.Close()
		}
		return
	}
	h.subscribers[id] = sink
	total := len(h.subscribers)
	h.mu.Unlock()

	log.Printf("[ws] subscriber connected: %s (total: %d)", id, total)
}

// Unregister, subscriber'ı kayıttan çıkarır ve sink kapatılabiliyorsa kapatır.
// Bilinmeyen id için no-op'tur.
func (h *Hub) Unregister(id string) {
	h.remove(id, nil)
}

// remove, id'yi kayıttan siler. expected nil değilse sadece kayıtlı sink
// expected ile aynıysa siler: snapshot alındıktan sonra aynı id ile yeniden
// kayıt olmuş bir sink yerine eskisini düşürmemek için.
func (h *Hub) remove(id string, expected Sink) {
	h.mu.Lock()
	sink, ok := h.subscribers[id]
	if ok && expected != nil && sink != expected {
		ok = false
	}
	if ok {
		delete(h.subscribers, id)
	}
	total := len(h.subscribers)
	h.mu.Unlock()

	if !ok {
		return
	}

	if c, isCloser := sink.(closer); isCloser {
		c.Close()
	}
	log.Printf("[ws] subscriber disconnected: %s (remaining: %d)", id, total)
}

// Broadcast, mesajı o an kayıtlı tüm subscriber'lara gönderir.
//
// Bir subscriber'a gönderim hatası diğerlerini etkilemez. Buffer'ı dolu
// olan (yavaş) subscriber kayıttan çıkarılır; kapanmış olanlar sessizce atlanır.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("[ws] failed to marshal %s broadcast: %v", msg.Topic, err)
		return
	}

	var slow []subscriber
	for _, sub := range h.snapshot() {
		if err := sub.sink.Send(data); err != nil {
			switch {
			case errors.Is(err, ErrSubscriberClosed):
			case errors.Is(err, ErrSendBufferFull):
				slow = append(slow, sub)
			default:
				log.Printf("[ws] failed to send %s to %s: %v", msg.Topic, sub.id, err)
			}
		}
	}

	for _, sub := range slow {
		log.Printf("[ws] send buffer full for %s, dropping connection", sub.id)
		h.remove(sub.id, sub.sink)
	}
}

// Count, kayıtlı subscriber sayısı.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Shutdown, tüm subscriber'ları kapatır ve yeni kayıtları reddeder
// (graceful shutdown).
func (h *Hub) Shutdown() {
	h.mu.Lock()
	subs := h.subscribers
	h.subscribers = make(map[string]Sink)
	h.closed = true
	h.mu.Unlock()

	for _, sink := range subs {
		if c, ok := sink.(closer); ok {
			c.Close()
		}
	}
	log.Println("[ws] hub shut down, all connections closed")
}

// snapshot, subscriber set'inin stabil bir kopyasını döner.
// Gönderimler bu kopya üzerinde, lock tutulmadan yapılır.
func (h *Hub) snapshot() []subscriber {
	h.mu.RLock()
	defer h.mu.RUnlock()

	subs := make([]subscriber, 0, len(h.subscribers))
	for id, sink := range h.subscribers {
		subs = append(subs, subscriber{id: id, sink: sink})
	}
	return subs
}
