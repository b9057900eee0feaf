// Package static, dashboard viewer sayfasını binary'ye gömer.
//
// dist/ içeriği DASH_PATH altında servis edilir (ör: /metrics-dash/).
// Sayfa aynı path'in /ws alt yoluna WebSocket ile bağlanır ve gelen
// topic'leri (cpu, memory, http, httpURLs, env, title) render eder.
package static

import (
	"embed"
	"io/fs"
)

//go:embed all:dist
var frontendFS embed.FS

// Dist, dist/ dizininin kökü olarak görünen alt file system.
func Dist() fs.FS {
	sub, err := fs.Sub(frontendFS, "dist")
	if err != nil {
		// "dist" derleme anında gömülür; Sub sadece geçersiz path'te hata verir.
		panic(err)
	}
	return sub
}
