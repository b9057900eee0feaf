// Package services — HostEnvironment, viewer'lara gösterilen ortam bilgisi.
//
// Dört fact üretir: komut satırı, hostname, işlemci sayısı, mimari.
// gopsutil/host ve gopsutil/cpu kullanılır; başarısız olursa os/runtime
// fallback'leri devreye girer. Sonuç TTL cache'te tutulur.
package services

import (
	"context"
	"log"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"

	"github.com/akinalp/metricsdash/models"
	"github.com/akinalp/metricsdash/pkg/cache"
)

const envCacheKey = "host"

var _ models.EnvironmentSource = (*HostEnvironment)(nil)

// HostEnvironment, models.EnvironmentSource implementasyonu.
type HostEnvironment struct {
	cache *cache.TTLCache[string, map[string]string]
	args  []string

	// collect test'lerde değiştirilebilir.
	collect func(ctx context.Context, args []string) map[string]string
}

// NewHostEnvironment, constructor. ttl: fact'lerin cache süresi.
func NewHostEnvironment(ttl time.Duration) *HostEnvironment {
	return &HostEnvironment{
		cache:   cache.New[string, map[string]string](ttl, ttl),
		args:    os.Args,
		collect: collectHostFacts,
	}
}

// EnvironmentData, fact map'inin kopyasını döner.
// Çağıran taraf dönen map'i değiştirse bile cache etkilenmez.
func (e *HostEnvironment) EnvironmentData(ctx context.Context) map[string]string {
	facts, ok := e.cache.Get(envCacheKey)
	if !ok {
		facts = e.collect(ctx, e.args)
		e.cache.Set(envCacheKey, facts)
	}

	out := make(map[string]string, len(facts))
	for k, v := range facts {
		out[k] = v
	}
	return out
}

// Close, cache cleanup goroutine'ini durdurur.
func (e *HostEnvironment) Close() {
	e.cache.Close()
}

func collectHostFacts(ctx context.Context, args []string) map[string]string {
	facts := map[string]string{
		models.EnvCommandLine: strings.Join(args, " "),
	}

	hostname, arch := "", ""
	if info, err := host.InfoWithContext(ctx); err != nil {
		log.Printf("[dashboard] host info unavailable, using fallbacks: %v", err)
	} else {
		hostname, arch = info.Hostname, info.KernelArch
	}
	if hostname == "" {
		hostname, _ = os.Hostname()
	}
	if arch == "" {
		arch = runtime.GOARCH
	}
	facts[models.EnvHostname] = hostname
	facts[models.EnvOSArch] = arch

	cores, err := cpu.CountsWithContext(ctx, true)
	if err != nil || cores < 1 {
		cores = runtime.NumCPU()
	}
	facts[models.EnvNumProcessors] = strconv.Itoa(cores)

	return facts
}
