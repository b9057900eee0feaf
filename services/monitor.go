// Package services — Monitor, telemetry event source.
//
// Monitor iki kaynaktan event alır ve kayıtlı handler'lara dağıtır:
//   - ResourceSampler: SAMPLE_INTERVAL_MS aralığında CPU + bellek
//   - RequestTiming middleware: her tamamlanan HTTP isteği
//
// Handler'lar üreten goroutine'de senkron çağrılır (sampler goroutine'i veya
// HTTP serving goroutine'i). Handler listesi kopyalanarak dolaşılır; dağıtım
// sırasında lock tutulmaz.
package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/akinalp/metricsdash/models"
)

// sampleTimeout, tek bir sampler turunun üst sınırı.
const sampleTimeout = 10 * time.Second

var _ models.EventSource = (*Monitor)(nil)

// Monitor, models.EventSource implementasyonu.
type Monitor struct {
	mu       sync.RWMutex
	handlers []models.EventHandler

	sampler  *ResourceSampler
	interval time.Duration

	stopCh    chan struct{}
	done      chan struct{}
	startOnce sync.Once
	stopOnce  sync.Once
}

// NewMonitor, constructor. sampler nil ise Start sadece event dağıtımı için
// hazır bekler; periyodik ölçüm yapılmaz.
func NewMonitor(sampler *ResourceSampler, interval time.Duration) *Monitor {
	return &Monitor{
		sampler:  sampler,
		interval: interval,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Subscribe, handler'ı kaydeder. Start'tan önce veya sonra çağrılabilir.
func (m *Monitor) Subscribe(handler models.EventHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.handlers = append(m.handlers, handler)
}

// PublishCPU, CPU sample'ını tüm handler'lara iletir.
func (m *Monitor) PublishCPU(sample models.CPUSample) {
	for _, h := range m.snapshot() {
		h.HandleCPU(sample)
	}
}

// PublishMemory, bellek sample'ını tüm handler'lara iletir.
func (m *Monitor) PublishMemory(sample models.MemorySample) {
	for _, h := range m.snapshot() {
		h.HandleMemory(sample)
	}
}

// PublishHTTPRequest, HTTP isteğini tüm handler'lara iletir.
// middleware.RequestTiming tarafından çağrılır.
func (m *Monitor) PublishHTTPRequest(req models.HTTPRequest) {
	for _, h := range m.snapshot() {
		h.HandleHTTPRequest(req)
	}
}

// Start, sampler goroutine'ini başlatır. İlk ölçüm hemen yapılır.
func (m *Monitor) Start() {
	m.startOnce.Do(func() {
		if m.sampler == nil {
			close(m.done)
			return
		}

		log.Printf("[monitor] starting sampler (interval=%s)", m.interval)
		go m.run()
	})
}

// Stop, sampler goroutine'ini durdurur ve çıkmasını bekler.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
	m.startOnce.Do(func() { close(m.done) })
	<-m.done
}

func (m *Monitor) run() {
	defer close(m.done)

	m.sampleOnce()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.sampleOnce()
		case <-m.stopCh:
			log.Println("[monitor] sampler stopped")
			return
		}
	}
}

// sampleOnce, tek bir ölçüm yapar. Hata loglanır ve tur atlanır.
func (m *Monitor) sampleOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), sampleTimeout)
	defer cancel()

	cpuSample, memSample, err := m.sampler.Sample(ctx)
	if err != nil {
		log.Printf("[sampler] sample failed: %v", err)
		return
	}

	m.PublishCPU(cpuSample)
	m.PublishMemory(memSample)
}

func (m *Monitor) snapshot() []models.EventHandler {
	m.mu.RLock()
	defer m.mu.RUnlock()

	handlers := make([]models.EventHandler, len(m.handlers))
	copy(handlers, m.handlers)
	return handlers
}
