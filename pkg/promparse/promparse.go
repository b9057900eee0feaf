// Package promparse — Prometheus text exposition format okuyucusu.
//
// Uzak process probe'u izlenen uygulamanın /metrics çıktısından sadece iki
// değere bakar: process_cpu_seconds_total ve process_resident_memory_bytes.
// Bu yüzden label'lar okunmaz; aynı isim birden fazla satırda geçerse ilk
// satırın değeri kullanılır.
//
//	# TYPE process_cpu_seconds_total counter
//	process_cpu_seconds_total 12.75
//	process_resident_memory_bytes 5.24288e+07
//
// Kullanım:
//
//	m := promparse.Parse(body)
//	if m.Has("process_cpu_seconds_total") {
//		cpuSeconds := m.Float64("process_cpu_seconds_total")
//	}
package promparse

import (
	"bufio"
	"strconv"
	"strings"
)

// Metrics, metrik adı → ilk görülen ham değer.
type Metrics struct {
	values map[string]string
}

// Parse, exposition body'sini okur. Comment (#HELP, #TYPE), boş ve bozuk
// satırlar atlanır; sondaki opsiyonel timestamp yok sayılır.
func Parse(body string) *Metrics {
	m := &Metrics{values: make(map[string]string)}
	scanner := bufio.NewScanner(strings.NewReader(body))

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		name, value, ok := splitSample(line)
		if !ok {
			continue
		}
		if _, seen := m.values[name]; !seen {
			m.values[name] = value
		}
	}

	return m
}

// Has, metriğin body'de bulunup bulunmadığını söyler.
func (m *Metrics) Has(name string) bool {
	_, ok := m.values[name]
	return ok
}

// Float64, metrik değerini float64 olarak döner. Yoksa veya sayı değilse 0.
func (m *Metrics) Float64(name string) float64 {
	f, err := strconv.ParseFloat(m.values[name], 64)
	if err != nil {
		return 0
	}
	return f
}

// Uint64, byte sayıları için. Negatif veya okunamayan değer 0 döner.
// Değer "5.24288e+07" gibi bilimsel gösterimde gelebilir.
func (m *Metrics) Uint64(name string) uint64 {
	f := m.Float64(name)
	if f < 0 {
		return 0
	}
	return uint64(f)
}

// splitSample, tek bir sample satırını ad ve değere ayırır.
//
//	`name{a="b"} 42 1700000000000` → ("name", "42", true)
//	`name 42`                      → ("name", "42", true)
//	`name`                         → ("", "", false)
func splitSample(line string) (name, value string, ok bool) {
	rest := ""
	if brace := strings.IndexByte(line, '{'); brace >= 0 {
		end := strings.IndexByte(line[brace:], '}')
		if end < 0 {
			return "", "", false
		}
		name = line[:brace]
		rest = line[brace+end+1:]
	} else {
		sep := strings.IndexAny(line, " \t")
		if sep < 0 {
			return "", "", false
		}
		name, rest = line[:sep], line[sep:]
	}

	fields := strings.Fields(rest)
	if name == "" || len(fields) == 0 {
		return "", "", false
	}
	return name, fields[0], true
}
