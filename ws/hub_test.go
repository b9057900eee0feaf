package ws

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
)

// fakeSink, gönderilen frame'leri kaydeden test sink'i.
type fakeSink struct {
	mu     sync.Mutex
	frames [][]byte
	err    error
	closed bool
}

func (f *fakeSink) Send(data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.frames = append(f.frames, append([]byte(nil), data...))
	return nil
}

func (f *fakeSink) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeSink) topics(t *testing.T) []string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()

	topics := make([]string, 0, len(f.frames))
	for _, frame := range f.frames {
		var msg struct {
			Topic string `json:"topic"`
		}
		if err := json.Unmarshal(frame, &msg); err != nil {
			t.Fatalf("frame is not valid JSON: %v (%s)", err, frame)
		}
		topics = append(topics, msg.Topic)
	}
	return topics
}

func (f *fakeSink) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func equalTopics(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func welcomeHub() *Hub {
	hub := NewHub()
	hub.OnConnect(func() []Message {
		return []Message{
			{Topic: TopicEnv, Payload: []string{}},
			{Topic: TopicTitle, Payload: map[string]string{"title": "t"}},
		}
	})
	return hub
}

func TestHub_WelcomeGoesOnlyToNewSubscriber(t *testing.T) {
	hub := welcomeHub()
	first := &fakeSink{}
	second := &fakeSink{}

	hub.Register("a", first)
	hub.Register("b", second)

	if got := first.topics(t); !equalTopics(got, []string{TopicEnv, TopicTitle}) {
		t.Errorf("first subscriber got %v", got)
	}
	if got := second.topics(t); !equalTopics(got, []string{TopicEnv, TopicTitle}) {
		t.Errorf("second subscriber got %v", got)
	}
	if hub.Count() != 2 {
		t.Errorf("expected 2 subscribers, got %d", hub.Count())
	}
}

func TestHub_BroadcastIsolatesFailures(t *testing.T) {
	hub := NewHub()
	broken := &fakeSink{err: errors.New("boom")}
	healthy := &fakeSink{}

	hub.Register("broken", broken)
	hub.Register("healthy", healthy)

	hub.Broadcast(Message{Topic: TopicCPU, Payload: map[string]string{"process": "1"}})
	hub.Broadcast(Message{Topic: TopicMemory, Payload: map[string]string{"physical": "2"}})

	if got := healthy.topics(t); !equalTopics(got, []string{TopicCPU, TopicMemory}) {
		t.Errorf("healthy subscriber got %v", got)
	}
	if hub.Count() != 2 {
		t.Errorf("a generic send failure must not remove the subscriber, count=%d", hub.Count())
	}
}

func TestHub_UnregisterStopsDelivery(t *testing.T) {
	hub := NewHub()
	leaving := &fakeSink{}
	staying := &fakeSink{}

	hub.Register("leaving", leaving)
	hub.Register("staying", staying)
	hub.Unregister("leaving")
	hub.Unregister("never-registered")

	hub.Broadcast(Message{Topic: TopicCPU, Payload: nil})

	if got := leaving.topics(t); len(got) != 0 {
		t.Errorf("removed subscriber received %v", got)
	}
	if !leaving.isClosed() {
		t.Error("expected removed sink to be closed")
	}
	if got := staying.topics(t); !equalTopics(got, []string{TopicCPU}) {
		t.Errorf("remaining subscriber got %v", got)
	}
}

func TestHub_ReusedIDOverwrites(t *testing.T) {
	hub := NewHub()
	old := &fakeSink{}
	replacement := &fakeSink{}

	hub.Register("same", old)
	hub.Register("same", replacement)
	hub.Broadcast(Message{Topic: TopicHTTP, Payload: nil})

	if hub.Count() != 1 {
		t.Fatalf("expected 1 subscriber, got %d", hub.Count())
	}
	if got := old.topics(t); len(got) != 0 {
		t.Errorf("overwritten sink received %v", got)
	}
	if got := replacement.topics(t); !equalTopics(got, []string{TopicHTTP}) {
		t.Errorf("replacement got %v", got)
	}
}

func TestHub_SlowSubscriberIsDropped(t *testing.T) {
	hub := NewHub()
	slow := &fakeSink{err: ErrSendBufferFull}
	gone := &fakeSink{err: ErrSubscriberClosed}

	hub.Register("slow", slow)
	hub.Register("gone", gone)
	hub.Broadcast(Message{Topic: TopicCPU, Payload: nil})

	if hub.Count() != 1 {
		t.Errorf("expected only the slow subscriber to be dropped, count=%d", hub.Count())
	}
	if !slow.isClosed() {
		t.Error("expected slow sink to be closed")
	}
}

// reregisteringSink, Send sırasında aynı id'yi yeni bir sink ile yeniden
// kaydeder ve ardından buffer dolu hatası döner.
type reregisteringSink struct {
	hub         *Hub
	id          string
	replacement Sink
	closed      bool
}

func (s *reregisteringSink) Send([]byte) error {
	s.hub.Register(s.id, s.replacement)
	return ErrSendBufferFull
}

func (s *reregisteringSink) Close() { s.closed = true }

func TestHub_SlowEvictionKeepsReRegisteredSink(t *testing.T) {
	hub := NewHub()
	replacement := &fakeSink{}
	slow := &reregisteringSink{hub: hub, id: "viewer", replacement: replacement}

	hub.Register("viewer", slow)
	hub.Broadcast(Message{Topic: TopicCPU, Payload: nil})

	if hub.Count() != 1 {
		t.Fatalf("expected the re-registered subscriber to stay, count=%d", hub.Count())
	}
	if replacement.isClosed() {
		t.Error("replacement sink must not be closed by the slow-subscriber eviction")
	}

	hub.Broadcast(Message{Topic: TopicMemory, Payload: nil})
	if got := replacement.topics(t); !equalTopics(got, []string{TopicMemory}) {
		t.Errorf("replacement got %v", got)
	}
}

func TestHub_ShutdownClosesAndRejects(t *testing.T) {
	hub := NewHub()
	existing := &fakeSink{}
	hub.Register("existing", existing)

	hub.Shutdown()

	if !existing.isClosed() {
		t.Error("expected existing sink to be closed on shutdown")
	}

	late := &fakeSink{}
	hub.Register("late", late)
	if hub.Count() != 0 {
		t.Errorf("expected no subscribers after shutdown, got %d", hub.Count())
	}
	if !late.isClosed() {
		t.Error("expected late sink to be closed")
	}
}

func TestHub_ConcurrentRegisterAndBroadcast(t *testing.T) {
	hub := NewHub()
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(2)
		id := string(rune('a' + i))
		go func() {
			defer wg.Done()
			hub.Register(id, &fakeSink{})
			hub.Unregister(id)
		}()
		go func() {
			defer wg.Done()
			hub.Broadcast(Message{Topic: TopicCPU, Payload: nil})
		}()
	}
	wg.Wait()

	if hub.Count() != 0 {
		t.Errorf("expected empty registry, got %d", hub.Count())
	}
}

func TestClient_SendAfterCloseIsAnError(t *testing.T) {
	c := NewClient(nil, nil, "c1")

	if err := c.Send([]byte("x")); err != nil {
		t.Fatalf("Send before close: %v", err)
	}

	c.Close()
	c.Close()

	if err := c.Send([]byte("y")); !errors.Is(err, ErrSubscriberClosed) {
		t.Errorf("expected ErrSubscriberClosed, got %v", err)
	}
}

func TestClient_FullBufferIsReported(t *testing.T) {
	c := NewClient(nil, nil, "c2")

	for i := 0; i < sendBufferSize; i++ {
		if err := c.Send([]byte("x")); err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
	}
	if err := c.Send([]byte("overflow")); !errors.Is(err, ErrSendBufferFull) {
		t.Errorf("expected ErrSendBufferFull, got %v", err)
	}
}
