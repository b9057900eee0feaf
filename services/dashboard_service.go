// Package services — DashboardService, telemetry akışlarını running
// istatistiklere indirgeyen ve viewer'lara periyodik olarak yayınlayan engine.
//
// State grupları (her biri kendi lock'u ile, birbirini bloklamaz):
//   - cpu: process/sistem CPU running mean (float)
//   - memory: process/sistem bellek running mean (int64, truncate eden bölme)
//   - window: son flush'tan bu yana HTTP penceresi
//   - endpoints: method + url bazlı kümülatif tablo
//
// CPU ve bellek sample'ları anında yayınlanır (buffer yok). HTTP event'leri
// pencerede biriktirilir ve flush tick'inde (varsayılan 2sn) tek mesaj olarak
// yayınlanır. Hiçbir gönderim state lock'u tutulurken yapılmaz: önce kopya
// alınır, lock bırakılır, sonra Publisher'a verilir.
//
// Goroutine pattern: time.NewTicker + select + stopCh (metrics collector ile aynı).
// Graceful shutdown: main.go'da Stop() çağrılır; Stop devam eden flush'ın
// bitmesini bekler.
package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/akinalp/metricsdash/models"
	"github.com/akinalp/metricsdash/pkg"
	"github.com/akinalp/metricsdash/pkg/aggregate"
	"github.com/akinalp/metricsdash/ws"
)

// envQueryTimeout, yeni bağlantıda ortam bilgisi sorgusunun üst sınırı.
const envQueryTimeout = 5 * time.Second

// DashboardConfig, engine ayarları.
type DashboardConfig struct {
	Title         string
	DocsURL       string
	FlushInterval time.Duration
	FlushLeeway   time.Duration
}

var _ models.EventHandler = (*DashboardService)(nil)

// DashboardService, aggregation engine.
// models.EventHandler'ı implement eder — Monitor'a Subscribe ile bağlanır.
type DashboardService struct {
	publisher ws.Publisher
	env       models.EnvironmentSource
	cfg       DashboardConfig

	cpu       aggregate.RunningMean[float64]
	memory    aggregate.RunningMean[int64]
	window    aggregate.HTTPWindow
	endpoints *aggregate.EndpointTable

	// flushing: aynı pencerenin üst üste binen iki flush'ı engellenir.
	flushing atomic.Bool

	stopCh    chan struct{}
	done      chan struct{}
	startOnce sync.Once
	stopOnce  sync.Once
}

// NewDashboardService, constructor.
func NewDashboardService(publisher ws.Publisher, env models.EnvironmentSource, cfg DashboardConfig) *DashboardService {
	return &DashboardService{
		publisher: publisher,
		env:       env,
		cfg:       cfg,
		endpoints: aggregate.NewEndpointTable(),
		stopCh:    make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// HandleCPU, CPU sample'ını accumulator'a ekler ve hemen yayınlar.
func (s *DashboardService) HandleCPU(sample models.CPUSample) {
	processMean, systemMean := s.cpu.Update(sample.Process, sample.System)

	s.publisher.Broadcast(ws.Message{
		Topic: ws.TopicCPU,
		Payload: models.CPUPayload{
			Process:     formatFloat(sample.Process),
			SystemMean:  formatFloat(systemMean),
			ProcessMean: formatFloat(processMean),
			Time:        strconv.FormatInt(sample.Time, 10),
			System:      formatFloat(sample.System),
		},
	})
}

// HandleMemory, bellek sample'ını accumulator'a ekler ve hemen yayınlar.
// Ortalamalar tam sayı bölmesiyle hesaplanır (truncate).
func (s *DashboardService) HandleMemory(sample models.MemorySample) {
	processMean, systemMean := s.memory.Update(sample.ProcessBytes, sample.SystemBytes)

	s.publisher.Broadcast(ws.Message{
		Topic: ws.TopicMemory,
		Payload: models.MemoryPayload{
			Time:         strconv.FormatInt(sample.Time, 10),
			Physical:     strconv.FormatInt(sample.ProcessBytes, 10),
			PhysicalUsed: strconv.FormatInt(sample.SystemBytes, 10),
			ProcessMean:  strconv.FormatInt(processMean, 10),
			SystemMean:   strconv.FormatInt(systemMean, 10),
		},
	})
}

// HandleHTTPRequest, isteği hem pencereye hem endpoint tablosuna ekler.
// İki state grubu ayrı lock'lardadır; aralarında sıralama garantisi yoktur.
func (s *DashboardService) HandleHTTPRequest(req models.HTTPRequest) {
	s.window.Record(req.Method, req.URL, req.Duration, req.Time)
	s.endpoints.Record(req.Method, req.URL, req.Duration)
}

// Flush, HTTP penceresini yayınlayıp sıfırlar ve endpoint tablosunun tam
// kopyasını yayınlar.
//
// Boş pencere "http" mesajı üretmez; hiç endpoint yoksa "httpURLs" da
// gönderilmez. Başka bir flush devam ediyorsa bu çağrı atlanır.
func (s *DashboardService) Flush() {
	if !s.flushing.CompareAndSwap(false, true) {
		log.Println("[dashboard] flush already in progress, skipping")
		return
	}
	defer s.flushing.Store(false)

	if snap, ok := s.window.SnapshotAndReset(); ok {
		s.publisher.Broadcast(ws.Message{
			Topic: ws.TopicHTTP,
			Payload: models.HTTPPayload{
				Time:    strconv.FormatInt(snap.Timestamp, 10),
				URL:     snap.URL,
				Longest: formatFloat(snap.LongestDuration),
				Average: formatFloat(snap.AverageDuration),
				Total:   strconv.Itoa(snap.RequestCount),
			},
		})
	}

	rows := s.endpointPayloads()
	if len(rows) > 0 {
		s.publisher.Broadcast(ws.Message{
			Topic:   ws.TopicHTTPURLs,
			Payload: rows,
		})
	}
}

// WelcomeMessages, yeni bağlanan viewer'a özel env ve title mesajlarını üretir.
// Hub.OnConnect'e bağlanır.
func (s *DashboardService) WelcomeMessages() []ws.Message {
	ctx, cancel := context.WithTimeout(context.Background(), envQueryTimeout)
	defer cancel()

	var facts map[string]string
	if s.env != nil {
		facts = s.env.EnvironmentData(ctx)
	}

	env := []models.EnvEntry{
		{Parameter: "Command Line", Value: facts[models.EnvCommandLine]},
		{Parameter: "Hostname", Value: facts[models.EnvHostname]},
		{Parameter: "Number of Processors", Value: facts[models.EnvNumProcessors]},
		{Parameter: "OS Architecture", Value: facts[models.EnvOSArch]},
	}

	return []ws.Message{
		{Topic: ws.TopicEnv, Payload: env},
		{Topic: ws.TopicTitle, Payload: models.TitlePayload{Title: s.cfg.Title, Docs: s.cfg.DocsURL}},
	}
}

// Snapshot, engine'in o anki durumunu döner (GET /api/stats).
// Pencere sıfırlanmaz; sadece okunur.
func (s *DashboardService) Snapshot() models.DashboardSnapshot {
	snap := models.DashboardSnapshot{
		CPU:         models.RunningStats{SampleCount: s.cpu.Samples()},
		Memory:      models.RunningStats{SampleCount: s.memory.Samples()},
		Endpoints:   s.endpointPayloads(),
		Subscribers: s.publisher.Count(),
	}

	if p, sys, ok := s.cpu.Mean(); ok {
		snap.CPU.ProcessMean, snap.CPU.SystemMean = &p, &sys
	}
	if p, sys, ok := s.memory.Mean(); ok {
		pf, sf := float64(p), float64(sys)
		snap.Memory.ProcessMean, snap.Memory.SystemMean = &pf, &sf
	}
	if w, ok := s.window.Peek(); ok {
		snap.Window = &models.WindowStats{
			Timestamp:       w.Timestamp,
			URL:             w.URL,
			LongestDuration: w.LongestDuration,
			AverageDuration: w.AverageDuration,
			RequestCount:    w.RequestCount,
		}
	}

	return snap
}

// Endpoint, tek bir endpoint'in kümülatif satırını döner.
// Satır yoksa pkg.ErrNotFound döner.
func (s *DashboardService) Endpoint(method, url string) (models.EndpointPayload, error) {
	if method == "" || url == "" {
		return models.EndpointPayload{}, fmt.Errorf("method and url are required: %w", pkg.ErrBadRequest)
	}

	stats, ok := s.endpoints.Get(method, url)
	if !ok {
		return models.EndpointPayload{}, fmt.Errorf("endpoint %q: %w", aggregate.EndpointKey(method, url), pkg.ErrNotFound)
	}

	return models.EndpointPayload{
		URL:                 aggregate.EndpointKey(method, url),
		AverageResponseTime: stats.AverageDuration,
		Hits:                stats.HitCount,
		LongestResponseTime: stats.LongestDuration,
	}, nil
}

// Start, flush goroutine'ini başlatır.
// İlk flush hemen çalışır, sonra FlushInterval aralığında tekrarlar.
func (s *DashboardService) Start() {
	s.startOnce.Do(func() {
		log.Printf("[dashboard] starting flush loop (interval=%s, leeway=%s)", s.cfg.FlushInterval, s.cfg.FlushLeeway)
		go s.run()
	})
}

// Stop, flush goroutine'ini durdurur ve çıkmasını bekler.
// Start hiç çağrılmadıysa hemen döner; sonraki Start no-op olur.
func (s *DashboardService) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	s.startOnce.Do(func() { close(s.done) })
	<-s.done
}

func (s *DashboardService) run() {
	defer close(s.done)

	s.Flush()

	ticker := time.NewTicker(s.cfg.FlushInterval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case tick := <-ticker.C:
			if late := tick.Sub(last) - s.cfg.FlushInterval; late > s.cfg.FlushLeeway {
				log.Printf("[dashboard] flush tick late by %s", late)
			}
			last = tick
			s.Flush()
		case <-s.stopCh:
			log.Println("[dashboard] flush loop stopped")
			return
		}
	}
}

// endpointPayloads, endpoint tablosunun kopyasını wire formatına çevirir.
// Sıralama protokol için önemsiz; deterministik çıktı için key'e göre sıralanır.
func (s *DashboardService) endpointPayloads() []models.EndpointPayload {
	rows := s.endpoints.Snapshot()
	sort.Slice(rows, func(i, j int) bool { return rows[i].Key < rows[j].Key })

	payloads := make([]models.EndpointPayload, 0, len(rows))
	for _, row := range rows {
		payloads = append(payloads, models.EndpointPayload{
			URL:                 row.Key,
			AverageResponseTime: row.Stats.AverageDuration,
			Hits:                row.Stats.HitCount,
			LongestResponseTime: row.Stats.LongestDuration,
		})
	}
	return payloads
}

// formatFloat, wire'da string olarak taşınan ondalıklı değerleri biçimlendirir.
// En kısa gösterim kullanılır: 15 → "15", 0.25 → "0.25".
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
