// Package models — izlenen process'ten gelen telemetry event'leri ve
// event source sözleşmeleri.
//
// Üç event türü vardır:
//   - CPUSample: process ve sistem CPU yükü (0..1 arası oran)
//   - MemorySample: process RSS ve sistemde kullanılan toplam RAM (byte)
//   - HTTPRequest: tek bir HTTP isteğinin süresi (ms) ve hedefi
//
// Event'leri üreten taraf (sampler, HTTP middleware) ile tüketen taraf
// (DashboardService) birbirini tanımaz — aradaki sözleşme EventSource ve
// EventHandler interface'leridir.
package models

import "context"

// CPUSample, tek bir CPU ölçümü.
// Time: ölçüm anı (Unix epoch, milisaniye).
type CPUSample struct {
	Time    int64
	Process float64
	System  float64
}

// MemorySample, tek bir bellek ölçümü.
// ProcessBytes: izlenen process'in RSS değeri.
// SystemBytes: sistemde kullanılan toplam fiziksel bellek.
type MemorySample struct {
	Time         int64
	ProcessBytes int64
	SystemBytes  int64
}

// HTTPRequest, tamamlanmış bir HTTP isteği.
// Duration milisaniye cinsindendir; Time isteğin başladığı an.
type HTTPRequest struct {
	Time     int64
	Method   string
	URL      string
	Duration float64
}

// EventHandler, telemetry event'lerini tüketen taraf.
//
// Handler'lar producer goroutine'inde senkron çağrılır — bu yüzden
// implementasyonlar network I/O için bloklamamalıdır.
type EventHandler interface {
	HandleCPU(sample CPUSample)
	HandleMemory(sample MemorySample)
	HandleHTTPRequest(req HTTPRequest)
}

// EventSource, handler kaydı kabul eden event üreticisi.
// Delivery threading'in sahibi event source'tur.
type EventSource interface {
	Subscribe(handler EventHandler)
}

// Environment fact key'leri.
const (
	EnvCommandLine   = "command.line"
	EnvHostname      = "environment.HOSTNAME"
	EnvNumProcessors = "number.of.processors"
	EnvOSArch        = "os.arch"
)

// EnvironmentSource, izlenen process hakkında key-value ortam bilgisi sağlar.
// Her yeni viewer bağlantısında bir kez sorgulanır.
type EnvironmentSource interface {
	EnvironmentData(ctx context.Context) map[string]string
}
