// Package models — dashboard viewer'larına giden mesajların payload tanımları.
//
// Alan isimleri viewer ile yapılan wire sözleşmesinin parçasıdır; json tag'leri
// değiştirilmemelidir. Orijinal protokolde sayısal değerlerin çoğu string olarak
// taşınır (cpu, memory, http) — httpURLs satırları ise sayıları tırnaksız taşır.
package models

import (
	"encoding/json"
	"math"
	"strconv"
)

// CPUPayload, "cpu" topic'inin payload'ı.
type CPUPayload struct {
	Process     string `json:"process"`
	SystemMean  string `json:"systemMean"`
	ProcessMean string `json:"processMean"`
	Time        string `json:"time"`
	System      string `json:"system"`
}

// MemoryPayload, "memory" topic'inin payload'ı.
type MemoryPayload struct {
	Time         string `json:"time"`
	Physical     string `json:"physical"`
	PhysicalUsed string `json:"physical_used"`
	ProcessMean  string `json:"processMean"`
	SystemMean   string `json:"systemMean"`
}

// EnvEntry, "env" topic'indeki tek bir satır.
type EnvEntry struct {
	Parameter string `json:"Parameter"`
	Value     string `json:"Value"`
}

// TitlePayload, "title" topic'inin payload'ı (statik).
type TitlePayload struct {
	Title string `json:"title"`
	Docs  string `json:"docs"`
}

// HTTPPayload, "http" topic'inin payload'ı — bir flush penceresinin özeti.
type HTTPPayload struct {
	Time    string `json:"time"`
	URL     string `json:"url"`
	Longest string `json:"longest"`
	Average string `json:"average"`
	Total   string `json:"total"`
}

// EndpointPayload, "httpURLs" topic'indeki tek bir endpoint satırı.
// URL alanı endpoint key'idir: "GET /a" gibi method + " " + path.
// Sayılar tırnaksız gider; Inf/NaN string olarak gider (bkz. jsonNumber).
type EndpointPayload struct {
	URL                 string  `json:"url"`
	AverageResponseTime float64 `json:"averageResponseTime"`
	Hits                float64 `json:"hits"`
	LongestResponseTime float64 `json:"longestResponseTime"`
}

// DashboardSnapshot, GET /api/stats yanıtı — engine'in o anki durumu.
// Tarihsel veri içermez; sadece process ömrü boyunca biriken running state.
type DashboardSnapshot struct {
	CPU         RunningStats      `json:"cpu"`
	Memory      RunningStats      `json:"memory"`
	Window      *WindowStats      `json:"window,omitempty"`
	Endpoints   []EndpointPayload `json:"endpoints"`
	Subscribers int               `json:"subscribers"`
}

// RunningStats, bir running-mean accumulator'ın özeti.
// SampleCount == 0 iken mean alanları raporlanmaz (nil).
type RunningStats struct {
	SampleCount int64    `json:"sample_count"`
	ProcessMean *float64 `json:"process_mean,omitempty"`
	SystemMean  *float64 `json:"system_mean,omitempty"`
}

// WindowStats, henüz flush edilmemiş HTTP penceresinin durumu.
type WindowStats struct {
	Timestamp       int64   `json:"timestamp"`
	URL             string  `json:"url"`
	LongestDuration float64 `json:"longest_duration"`
	AverageDuration float64 `json:"average_duration"`
	RequestCount    int     `json:"request_count"`
}

// ─── JSON ───
//
// Süreler dışarıdan olduğu gibi kabul edilir; tek bir +Inf/NaN değeri
// json.Marshal'ı bozar ve endpoint tablosu hiç sıfırlanmadığı için httpURLs
// kalıcı olarak susar. Sonlu olmayan değerler bu yüzden string'e çevrilir.

// jsonNumber, sonlu değeri sayı olarak bırakır; aksi halde "+Inf", "-Inf"
// veya "NaN" string'i döner.
func jsonNumber(v float64) any {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return v
}

func optionalNumber(v *float64) any {
	if v == nil {
		return nil
	}
	return jsonNumber(*v)
}

// MarshalJSON, satırı sonlu olmayan sürelerde de serileştirilebilir tutar.
func (p EndpointPayload) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		URL                 string `json:"url"`
		AverageResponseTime any    `json:"averageResponseTime"`
		Hits                any    `json:"hits"`
		LongestResponseTime any    `json:"longestResponseTime"`
	}{
		URL:                 p.URL,
		AverageResponseTime: jsonNumber(p.AverageResponseTime),
		Hits:                jsonNumber(p.Hits),
		LongestResponseTime: jsonNumber(p.LongestResponseTime),
	})
}

func (r RunningStats) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		SampleCount int64 `json:"sample_count"`
		ProcessMean any   `json:"process_mean,omitempty"`
		SystemMean  any   `json:"system_mean,omitempty"`
	}{
		SampleCount: r.SampleCount,
		ProcessMean: optionalNumber(r.ProcessMean),
		SystemMean:  optionalNumber(r.SystemMean),
	})
}

func (w WindowStats) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Timestamp       int64  `json:"timestamp"`
		URL             string `json:"url"`
		LongestDuration any    `json:"longest_duration"`
		AverageDuration any    `json:"average_duration"`
		RequestCount    int    `json:"request_count"`
	}{
		Timestamp:       w.Timestamp,
		URL:             w.URL,
		LongestDuration: jsonNumber(w.LongestDuration),
		AverageDuration: jsonNumber(w.AverageDuration),
		RequestCount:    w.RequestCount,
	})
}
