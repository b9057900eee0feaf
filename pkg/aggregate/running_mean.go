// Package aggregate — telemetry akışlarını sınırlı boyutlu istatistiklere
// indirgeyen yapı taşları.
//
// Üç yapı vardır:
//   - RunningMean: process ömrü boyunca kümülatif ortalama (sliding window değil)
//   - HTTPWindow: iki flush arasındaki HTTP isteklerinin özeti, flush'ta sıfırlanır
//   - EndpointTable: method + url bazlı kümülatif tablo, asla sıfırlanmaz
//
// Her yapı kendi mutex'ine sahiptir — biri üzerindeki contention diğerlerini
// bloklamaz. Paket proje içi hiçbir pakete bağımlı değildir (leaf dependency).
package aggregate

import "sync"

// Number, RunningMean'in kabul ettiği sayı tipleri.
//
// Tip parametresi bölme davranışını da belirler:
// RunningMean[int64] ortalamayı tam sayı bölmesiyle (truncate) hesaplar,
// RunningMean[float64] ondalıklı kalır. Bellek byte sayıları int64,
// CPU yükleri float64 ile tutulur.
type Number interface {
	~int64 | ~float64
}

// RunningMean, iki paralel skaler akış (process + sistem) için kümülatif
// toplam ve sample sayısı tutar.
//
// Mean her Update'te toplam / sayı olarak yeniden hesaplanır —
// incremental averaging yapılmaz, yuvarlama hatası birikmez.
type RunningMean[T Number] struct {
	mu           sync.Mutex
	processTotal T
	systemTotal  T
	samples      int64
}

// Update, yeni sample'ı toplamlara ekler ve güncel ortalamaları döner.
// İlk çağrıda dönen ortalama sample'ın kendisidir.
func (r *RunningMean[T]) Update(process, system T) (processMean, systemMean T) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.processTotal += process
	r.systemTotal += system
	r.samples++

	return r.processTotal / T(r.samples), r.systemTotal / T(r.samples)
}

// Mean, accumulator'ı değiştirmeden güncel ortalamaları döner.
// Hiç sample yoksa ok=false döner — ortalama tanımsızdır, raporlanmamalı.
func (r *RunningMean[T]) Mean() (processMean, systemMean T, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.samples == 0 {
		return 0, 0, false
	}
	return r.processTotal / T(r.samples), r.systemTotal / T(r.samples), true
}

// Samples, şimdiye kadar alınan sample sayısı.
func (r *RunningMean[T]) Samples() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.samples
}
