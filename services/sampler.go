// Package services — ResourceSampler, CPU ve bellek ölçümlerini toplar.
//
// Sistem tarafı (toplam CPU yükü, kullanılan RAM) her zaman gopsutil ile
// lokal host'tan okunur. Process tarafı bir ProcessProbe üzerinden gelir:
//   - localProcessProbe: dashboard'u çalıştıran process (gopsutil/process)
//   - promProcessProbe: uzak bir process'in Prometheus /metrics endpoint'i
//
// Prometheus probe CPU'yu process_cpu_seconds_total counter delta'sından
// hesaplar (counter reset → 0), RSS'i process_resident_memory_bytes'tan okur.
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/akinalp/metricsdash/models"
	"github.com/akinalp/metricsdash/pkg/promparse"
)

// ErrMetricMissing, scrape edilen endpoint beklenen process metriklerini içermiyorsa.
var ErrMetricMissing = errors.New("process metric missing from scrape")

const (
	promCPUSecondsMetric = "process_cpu_seconds_total"
	promRSSMetric        = "process_resident_memory_bytes"

	// maxScrapeBytes, /metrics yanıtının okunacak üst sınırı.
	maxScrapeBytes = 5 * 1024 * 1024
)

// ProcessStats, izlenen process'in tek bir ölçümü.
// CPU: 0..1 arası oran. RSS: byte.
type ProcessStats struct {
	CPU float64
	RSS int64
}

// SystemStats, host'un tek bir ölçümü.
// CPU: 0..1 arası oran. UsedBytes: kullanılan fiziksel bellek.
type SystemStats struct {
	CPU       float64
	UsedBytes int64
}

// ProcessProbe, izlenen process'in CPU/RSS değerini ölçer.
type ProcessProbe interface {
	SampleProcess(ctx context.Context) (ProcessStats, error)
}

// SystemProbe, host'un CPU/bellek değerini ölçer.
type SystemProbe interface {
	SampleSystem(ctx context.Context) (SystemStats, error)
}

// ResourceSampler, bir process ve bir system probe'u birleştirip
// CPUSample + MemorySample üretir.
type ResourceSampler struct {
	process ProcessProbe
	system  SystemProbe
	now     func() time.Time
}

// NewResourceSampler, constructor.
func NewResourceSampler(process ProcessProbe, system SystemProbe) *ResourceSampler {
	return &ResourceSampler{process: process, system: system, now: time.Now}
}

// Sample, iki probe'u da çalıştırır. Biri hata verirse sample üretilmez.
func (s *ResourceSampler) Sample(ctx context.Context) (models.CPUSample, models.MemorySample, error) {
	proc, err := s.process.SampleProcess(ctx)
	if err != nil {
		return models.CPUSample{}, models.MemorySample{}, fmt.Errorf("sample process: %w", err)
	}

	sys, err := s.system.SampleSystem(ctx)
	if err != nil {
		return models.CPUSample{}, models.MemorySample{}, fmt.Errorf("sample system: %w", err)
	}

	ts := s.now().UnixMilli()
	return models.CPUSample{Time: ts, Process: proc.CPU, System: sys.CPU},
		models.MemorySample{Time: ts, ProcessBytes: proc.RSS, SystemBytes: sys.UsedBytes},
		nil
}

// ─── System Probe (gopsutil) ───

type hostSystemProbe struct{}

// NewHostSystemProbe, lokal host'u gopsutil ile ölçen SystemProbe.
func NewHostSystemProbe() SystemProbe {
	return hostSystemProbe{}
}

// SampleSystem, interval=0 ile cpu.Percent son çağrıdan bu yana geçen süreyi ölçer.
func (hostSystemProbe) SampleSystem(ctx context.Context) (SystemStats, error) {
	percents, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return SystemStats{}, fmt.Errorf("cpu percent: %w", err)
	}
	var load float64
	if len(percents) > 0 {
		load = percents[0] / 100
	}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return SystemStats{}, fmt.Errorf("virtual memory: %w", err)
	}

	return SystemStats{CPU: load, UsedBytes: int64(vm.Used)}, nil
}

// ─── Local Process Probe (gopsutil/process) ───

type localProcessProbe struct {
	proc  *process.Process
	cores float64
}

// NewLocalProcessProbe, mevcut process'i (os.Getpid) ölçen probe.
// gopsutil'in process CPU yüzdesi tek çekirdeğe göredir; çekirdek sayısına
// bölünerek host geneline oranlanır.
func NewLocalProcessProbe() (ProcessProbe, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, fmt.Errorf("open current process: %w", err)
	}

	cores := runtime.NumCPU()
	if cores < 1 {
		cores = 1
	}

	return &localProcessProbe{proc: proc, cores: float64(cores)}, nil
}

func (p *localProcessProbe) SampleProcess(ctx context.Context) (ProcessStats, error) {
	pct, err := p.proc.PercentWithContext(ctx, 0)
	if err != nil {
		return ProcessStats{}, fmt.Errorf("process cpu: %w", err)
	}

	memInfo, err := p.proc.MemoryInfoWithContext(ctx)
	if err != nil {
		return ProcessStats{}, fmt.Errorf("process memory: %w", err)
	}

	return ProcessStats{
		CPU: pct / 100 / p.cores,
		RSS: int64(memInfo.RSS),
	}, nil
}

// ─── Prometheus Process Probe ───

type promProcessProbe struct {
	url        string
	httpClient *http.Client
	now        func() time.Time

	// Delta hesabı için bir önceki counter değeri.
	mu         sync.Mutex
	prevCPU    float64
	prevAt     time.Time
	hasPrevCPU bool
}

// NewPromProcessProbe, uzak process'in Prometheus endpoint'ini scrape eden probe.
// CPU değeri tek çekirdeğe göre orandır (uzak host'un çekirdek sayısı bilinmez).
func NewPromProcessProbe(url string) ProcessProbe {
	return &promProcessProbe{
		url:        url,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		now:        time.Now,
	}
}

func (p *promProcessProbe) SampleProcess(ctx context.Context) (ProcessStats, error) {
	m, err := p.scrape(ctx)
	if err != nil {
		return ProcessStats{}, err
	}

	if !m.Has(promCPUSecondsMetric) || !m.Has(promRSSMetric) {
		return ProcessStats{}, ErrMetricMissing
	}

	cpuSeconds := m.Float64(promCPUSecondsMetric)
	rss := m.Uint64(promRSSMetric)
	now := p.now()

	p.mu.Lock()
	defer p.mu.Unlock()

	// İlk scrape referans noktasıdır: CPU 0 raporlanır.
	var load float64
	if p.hasPrevCPU {
		elapsed := now.Sub(p.prevAt).Seconds()
		// Counter reset (hedef restart): delta < 0 ise 0 kullan
		if delta := cpuSeconds - p.prevCPU; elapsed > 0 && delta >= 0 {
			load = delta / elapsed
		}
	}
	p.prevCPU, p.prevAt, p.hasPrevCPU = cpuSeconds, now, true

	return ProcessStats{CPU: load, RSS: int64(rss)}, nil
}

func (p *promProcessProbe) scrape(ctx context.Context) (*promparse.Metrics, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build scrape request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scrape %s: %w", p.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scrape %s: unexpected status %d", p.url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxScrapeBytes))
	if err != nil {
		return nil, fmt.Errorf("read scrape body: %w", err)
	}

	return promparse.Parse(string(body)), nil
}
