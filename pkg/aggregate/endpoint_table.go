package aggregate

import "sync"

// EndpointStats, tek bir endpoint'in kümülatif istatistiği.
// HitCount float tutulur; ortalama formülünde doğrudan çarpan olarak kullanılır.
type EndpointStats struct {
	AverageDuration float64
	HitCount        float64
	LongestDuration float64
}

// EndpointRow, Snapshot'ın döndüğü (key, stats) çifti.
type EndpointRow struct {
	Key   string
	Stats EndpointStats
}

// EndpointKey, method ve url'i tek bir opak key'e birleştirir: "GET /a".
// Büyük/küçük harf duyarlıdır, kısaltma yapılmaz.
func EndpointKey(method, url string) string {
	return method + " " + url
}

// EndpointTable, endpoint key → kümülatif istatistik tablosu.
//
// Tablo process ömrü boyunca sadece büyür: entry eklenir veya güncellenir,
// asla silinmez. Key kardinalitesi sınırsızdır — farklı path sayısı kadar
// satır oluşur (ör. /users/{id} gibi parametreli path'ler her id için ayrı satır).
type EndpointTable struct {
	mu      sync.Mutex
	entries map[string]EndpointStats
}

// NewEndpointTable, boş bir tablo oluşturur.
func NewEndpointTable() *EndpointTable {
	return &EndpointTable{entries: make(map[string]EndpointStats)}
}

// Record, isteği ilgili endpoint satırına ekler.
func (t *EndpointTable) Record(method, url string, duration float64) {
	key := EndpointKey(method, url)

	t.mu.Lock()
	defer t.mu.Unlock()

	stats, ok := t.entries[key]
	if !ok {
		t.entries[key] = EndpointStats{
			AverageDuration: duration,
			HitCount:        1,
			LongestDuration: duration,
		}
		return
	}

	stats.AverageDuration = (stats.AverageDuration*stats.HitCount + duration) / (stats.HitCount + 1)
	stats.HitCount++
	if duration > stats.LongestDuration {
		stats.LongestDuration = duration
	}
	t.entries[key] = stats
}

// Snapshot, tablonun o anki kopyasını döner. Sıralama tanımsızdır.
// Dönen slice caller'a aittir; tabloyla paylaşılan state yoktur.
func (t *EndpointTable) Snapshot() []EndpointRow {
	t.mu.Lock()
	defer t.mu.Unlock()

	rows := make([]EndpointRow, 0, len(t.entries))
	for key, stats := range t.entries {
		rows = append(rows, EndpointRow{Key: key, Stats: stats})
	}
	return rows
}

// Len, tablodaki endpoint sayısı.
func (t *EndpointTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// Get, tek bir endpoint satırını döner. Satır yoksa ok=false.
func (t *EndpointTable) Get(method, url string) (EndpointStats, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	stats, ok := t.entries[EndpointKey(method, url)]
	return stats, ok
}
