// Package ws, dashboard viewer'larına WebSocket üzerinden gerçek zamanlı
// metrik dağıtımını sağlar.
//
// Mimari:
// - Hub: Bağlı viewer'ların (subscriber) kaydı ve fan-out gönderim (Observer pattern)
// - Client: Tek bir WebSocket bağlantısı — Hub'ın gözünde bir Sink
// - Message: Viewer'a giden her frame'in zarfı ({topic, payload})
//
// Mesaj akışı:
// 1. Telemetry event'i DashboardService'e gelir (cpu, memory) veya flush tick'i atar (http)
// 2. DashboardService payload'ı hazırlar ve Hub.Broadcast çağırır
// 3. Hub mesajı bir kez JSON'a çevirir, subscriber listesinin kopyası üzerinde gezer
// 4. Her Client'ın WritePump'ı frame'i WebSocket'e yazar
//
// Viewer → server yönünde komut protokolü yoktur; gelen text mesajlar sadece loglanır.
package ws

// Message, viewer'a giden tek bir text frame.
//
// Topic payload'ın şemasını seçer; Payload models paketindeki payload
// struct'larından biridir. Wire formatı:
//
//	{"topic":"cpu","payload":{...}}
type Message struct {
	Topic   string `json:"topic"`
	Payload any    `json:"payload"`
}

// Topic sabitleri — viewer bu isimlere göre render eder.
const (
	TopicCPU      = "cpu"      // her CPU sample'ında
	TopicMemory   = "memory"   // her bellek sample'ında
	TopicEnv      = "env"      // bağlantı kurulduğunda, sadece yeni viewer'a
	TopicTitle    = "title"    // bağlantı kurulduğunda, sadece yeni viewer'a
	TopicHTTP     = "http"     // flush tick'inde, pencere boş değilse
	TopicHTTPURLs = "httpURLs" // flush tick'inde, en az bir endpoint varsa
)
