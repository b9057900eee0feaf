// Package main — Hub ve event source callback wire-up.
//
// Hub ws paketinde yaşar, engine services paketinde. Hub'ın service'lere
// bağımlı olmaması için bağlantı burada, wire-up noktasında kurulur.
package main

// registerCallbacks, iki bağlantıyı kurar:
//   - Hub.OnConnect: yeni viewer'a env + title mesajları (kayıttan önce)
//   - Monitor.Subscribe: CPU/bellek/HTTP event'leri engine'e akar
//
// Start çağrılarından önce çalışmalıdır; aksi halde ilk sample'lar kaçar.
func registerCallbacks(svcs *Services) {
	svcs.Hub.OnConnect(svcs.Dashboard.WelcomeMessages)
	svcs.Monitor.Subscribe(svcs.Dashboard)
}
