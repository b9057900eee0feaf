package services

import (
	"encoding/json"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/akinalp/metricsdash/models"
	"github.com/akinalp/metricsdash/ws"
)

// frameSink, hub'dan gelen ham frame'leri kaydeden ws.Sink.
type frameSink struct {
	mu     sync.Mutex
	frames []string
}

func (s *frameSink) Send(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, string(data))
	return nil
}

func (s *frameSink) take() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.frames
	s.frames = nil
	return out
}

// newWireDashboard, engine'i gerçek bir ws.Hub'a bağlar ve tek bir viewer kaydeder.
func newWireDashboard(t *testing.T, env staticEnv) (*DashboardService, *frameSink) {
	t.Helper()

	hub := ws.NewHub()
	svc := NewDashboardService(hub, env, DashboardConfig{
		Title:         "Application Metrics for Go",
		DocsURL:       "https://example.com/docs",
		FlushInterval: time.Hour,
		FlushLeeway:   time.Millisecond,
	})
	hub.OnConnect(svc.WelcomeMessages)

	sink := &frameSink{}
	hub.Register("viewer", sink)
	t.Cleanup(hub.Shutdown)
	return svc, sink
}

func assertFrames(t *testing.T, got, want []string) {
	t.Helper()

	for i, frame := range got {
		if !json.Valid([]byte(frame)) {
			t.Errorf("frame %d is not valid JSON: %s", i, frame)
		}
	}
	if len(got) != len(want) {
		t.Fatalf("got %d frames, want %d:\n%s", len(got), len(want), strings.Join(got, "\n"))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("frame %d\n got  %s\n want %s", i, got[i], want[i])
		}
	}
}

func TestDashboardService_WireFrames(t *testing.T) {
	svc, sink := newWireDashboard(t, staticEnv{
		models.EnvCommandLine:   `/usr/bin/app --name "q"`,
		models.EnvHostname:      "box-1",
		models.EnvNumProcessors: "8",
		models.EnvOSArch:        "amd64",
	})

	assertFrames(t, sink.take(), []string{
		`{"topic":"env","payload":[` +
			`{"Parameter":"Command Line","Value":"/usr/bin/app --name \"q\""},` +
			`{"Parameter":"Hostname","Value":"box-1"},` +
			`{"Parameter":"Number of Processors","Value":"8"},` +
			`{"Parameter":"OS Architecture","Value":"amd64"}]}`,
		`{"topic":"title","payload":{"title":"Application Metrics for Go","docs":"https://example.com/docs"}}`,
	})

	svc.HandleCPU(models.CPUSample{Time: 1, Process: 10, System: 1})
	svc.HandleCPU(models.CPUSample{Time: 2, Process: 20, System: 1})
	svc.HandleMemory(models.MemorySample{Time: 3, ProcessBytes: 100, SystemBytes: 7})
	svc.HandleMemory(models.MemorySample{Time: 4, ProcessBytes: 51, SystemBytes: 8})

	assertFrames(t, sink.take(), []string{
		`{"topic":"cpu","payload":{"process":"10","systemMean":"1","processMean":"10","time":"1","system":"1"}}`,
		`{"topic":"cpu","payload":{"process":"20","systemMean":"1","processMean":"15","time":"2","system":"1"}}`,
		`{"topic":"memory","payload":{"time":"3","physical":"100","physical_used":"7","processMean":"100","systemMean":"7"}}`,
		`{"topic":"memory","payload":{"time":"4","physical":"51","physical_used":"8","processMean":"75","systemMean":"7"}}`,
	})

	svc.HandleHTTPRequest(models.HTTPRequest{Time: 1000, Method: "GET", URL: "/a", Duration: 30})
	svc.HandleHTTPRequest(models.HTTPRequest{Time: 1100, Method: "POST", URL: `/b"q`, Duration: 5})
	svc.HandleHTTPRequest(models.HTTPRequest{Time: 1200, Method: "GET", URL: "/a", Duration: 10})
	svc.Flush()

	assertFrames(t, sink.take(), []string{
		`{"topic":"http","payload":{"time":"1000","url":"/a","longest":"30","average":"15","total":"3"}}`,
		`{"topic":"httpURLs","payload":[` +
			`{"url":"GET /a","averageResponseTime":20,"hits":2,"longestResponseTime":30},` +
			`{"url":"POST /b\"q","averageResponseTime":5,"hits":1,"longestResponseTime":5}]}`,
	})
}

func TestDashboardService_NonFiniteDurationKeepsEndpointRows(t *testing.T) {
	svc, sink := newWireDashboard(t, staticEnv{})
	sink.take()

	svc.HandleHTTPRequest(models.HTTPRequest{Time: 1, Method: "GET", URL: "/bad", Duration: math.Inf(1)})
	svc.Flush()

	assertFrames(t, sink.take(), []string{
		`{"topic":"http","payload":{"time":"1","url":"/bad","longest":"+Inf","average":"+Inf","total":"1"}}`,
		`{"topic":"httpURLs","payload":[{"url":"GET /bad","averageResponseTime":"+Inf","hits":1,"longestResponseTime":"+Inf"}]}`,
	})

	svc.HandleHTTPRequest(models.HTTPRequest{Time: 2, Method: "GET", URL: "/ok", Duration: 5})
	svc.Flush()

	assertFrames(t, sink.take(), []string{
		`{"topic":"http","payload":{"time":"2","url":"/ok","longest":"5","average":"5","total":"1"}}`,
		`{"topic":"httpURLs","payload":[` +
			`{"url":"GET /bad","averageResponseTime":"+Inf","hits":1,"longestResponseTime":"+Inf"},` +
			`{"url":"GET /ok","averageResponseTime":5,"hits":1,"longestResponseTime":5}]}`,
	})
}
