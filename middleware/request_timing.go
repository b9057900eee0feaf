// Package middleware, HTTP request pipeline'ına eklenen ara katmanları barındırır.
//
// Go'da middleware bir fonksiyondur:
//
//	func(next http.Handler) http.Handler
//
// Middleware kendi işini yapar, sonra zincirdeki bir sonraki handler'ı çağırır.
package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/akinalp/metricsdash/models"
)

// RequestRecorder, tamamlanan HTTP isteklerini alan taraf.
// services.Monitor bunu PublishHTTPRequest ile implement eder.
type RequestRecorder interface {
	PublishHTTPRequest(req models.HTTPRequest)
}

// RequestTimingMiddleware, her isteğin süresini ölçüp bir HTTPRequest
// event'i üretir.
//
// Akış: request → start zamanı al → next.ServeHTTP → süreyi hesapla → recorder
//
// Uzun ömürlü bağlantılar (WebSocket upgrade path'i) hariç tutulur; aksi
// halde "longest" değeri bağlantı süresiyle dolardı.
type RequestTimingMiddleware struct {
	recorder RequestRecorder
	excluded []string
	now      func() time.Time
}

// NewRequestTimingMiddleware, constructor.
// excludedPrefixes ile başlayan path'ler ölçülmez.
func NewRequestTimingMiddleware(recorder RequestRecorder, excludedPrefixes ...string) *RequestTimingMiddleware {
	return &RequestTimingMiddleware{
		recorder: recorder,
		excluded: excludedPrefixes,
		now:      time.Now,
	}
}

// Wrap, next handler'ı ölçüm katmanıyla sarar.
func (m *RequestTimingMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.isExcluded(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		start := m.now()
		next.ServeHTTP(w, r)
		elapsed := m.now().Sub(start)

		m.recorder.PublishHTTPRequest(models.HTTPRequest{
			Time:     start.UnixMilli(),
			Method:   r.Method,
			URL:      r.URL.Path,
			Duration: float64(elapsed) / float64(time.Millisecond),
		})
	})
}

func (m *RequestTimingMiddleware) isExcluded(path string) bool {
	for _, prefix := range m.excluded {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
