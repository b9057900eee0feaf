package aggregate

import "sync"

// WindowSnapshot, bir HTTP penceresinin o anki özeti.
// RequestCount == 0 boş pencere demektir.
type WindowSnapshot struct {
	Timestamp       int64
	URL             string
	LongestDuration float64
	AverageDuration float64
	RequestCount    int
}

// HTTPWindow, son flush'tan bu yana gelen HTTP isteklerini özetler.
//
// Yaşam döngüsü:
//  1. Boş oluşturulur (RequestCount == 0).
//  2. İlk Record tüm alanları o tek event'ten doldurur.
//  3. Sonraki Record'lar ortalamayı ağırlıklı olarak günceller; longest ve url
//     sadece yeni süre KESİN olarak büyükse değişir (eşitlikte ilk gelen kalır).
//  4. SnapshotAndReset özet döner ve pencereyi aynı lock altında boşaltır.
//
// Zero value kullanıma hazırdır.
type HTTPWindow struct {
	mu      sync.Mutex
	current WindowSnapshot
}

// Record, tek bir isteği pencereye ekler.
// method pencere özetine girmez; özet sadece path'i taşır.
func (w *HTTPWindow) Record(method, url string, duration float64, timestamp int64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.current.RequestCount == 0 {
		w.current = WindowSnapshot{
			Timestamp:       timestamp,
			URL:             url,
			LongestDuration: duration,
			AverageDuration: duration,
			RequestCount:    1,
		}
		return
	}

	oldCount := float64(w.current.RequestCount)
	newCount := w.current.RequestCount + 1
	w.current.AverageDuration = (w.current.AverageDuration*oldCount + duration) / float64(newCount)
	w.current.RequestCount = newCount

	if duration > w.current.LongestDuration {
		w.current.LongestDuration = duration
		w.current.URL = url
	}
}

// SnapshotAndReset, pencerenin özetini döner ve pencereyi boşaltır.
// Pencere boşsa hiçbir şey değişmez ve ok=false döner — boş periyot
// "http" mesajı üretmez.
func (w *HTTPWindow) SnapshotAndReset() (WindowSnapshot, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.current.RequestCount == 0 {
		return WindowSnapshot{}, false
	}

	snap := w.current
	w.current = WindowSnapshot{}
	return snap, true
}

// Peek, pencereyi sıfırlamadan okur (stats endpoint'i için).
func (w *HTTPWindow) Peek() (WindowSnapshot, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current, w.current.RequestCount > 0
}
