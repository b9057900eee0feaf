package aggregate

import (
	"sort"
	"sync"
	"testing"
)

func TestEndpointKey(t *testing.T) {
	tests := []struct {
		method, url, want string
	}{
		{"GET", "/a", "GET /a"},
		{"post", "/A", "post /A"},
		{"GET", "/search?q=\"x\"", "GET /search?q=\"x\""},
	}

	for _, tt := range tests {
		if got := EndpointKey(tt.method, tt.url); got != tt.want {
			t.Errorf("EndpointKey(%q, %q) = %q, want %q", tt.method, tt.url, got, tt.want)
		}
	}
}

func TestEndpointTable_RecordAndSnapshot(t *testing.T) {
	table := NewEndpointTable()

	table.Record("GET", "/a", 10)
	table.Record("GET", "/a", 30)
	table.Record("POST", "/b", 5)

	rows := table.Snapshot()
	sort.Slice(rows, func(i, j int) bool { return rows[i].Key < rows[j].Key })

	want := []EndpointRow{
		{Key: "GET /a", Stats: EndpointStats{AverageDuration: 20, HitCount: 2, LongestDuration: 30}},
		{Key: "POST /b", Stats: EndpointStats{AverageDuration: 5, HitCount: 1, LongestDuration: 5}},
	}

	if len(rows) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(rows))
	}
	for i := range want {
		if rows[i] != want[i] {
			t.Errorf("row %d: got %+v, want %+v", i, rows[i], want[i])
		}
	}
}

func TestEndpointTable_LongestOnlyRaises(t *testing.T) {
	table := NewEndpointTable()

	table.Record("GET", "/a", 50)
	table.Record("GET", "/a", 10)

	rows := table.Snapshot()
	if rows[0].Stats.LongestDuration != 50 {
		t.Errorf("expected longest to stay 50, got %v", rows[0].Stats.LongestDuration)
	}
	if rows[0].Stats.AverageDuration != 30 {
		t.Errorf("expected average 30, got %v", rows[0].Stats.AverageDuration)
	}
}

func TestEndpointTable_MethodIsPartOfKey(t *testing.T) {
	table := NewEndpointTable()

	table.Record("GET", "/a", 1)
	table.Record("get", "/a", 1)
	table.Record("POST", "/a", 1)

	if table.Len() != 3 {
		t.Errorf("expected 3 distinct keys, got %d", table.Len())
	}
}

func TestEndpointTable_SnapshotIsACopy(t *testing.T) {
	table := NewEndpointTable()
	table.Record("GET", "/a", 1)

	rows := table.Snapshot()
	rows[0].Stats.HitCount = 999

	again := table.Snapshot()
	if again[0].Stats.HitCount != 1 {
		t.Errorf("snapshot mutation leaked into table: hits=%v", again[0].Stats.HitCount)
	}
}

func TestEndpointTable_HitsAreMonotonic(t *testing.T) {
	table := NewEndpointTable()
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				table.Record("GET", "/hot", float64(j))
			}
		}()
	}

	last := 0.0
	for i := 0; i < 20; i++ {
		for _, row := range table.Snapshot() {
			if row.Stats.HitCount < last {
				t.Fatalf("hit count decreased: %v -> %v", last, row.Stats.HitCount)
			}
			last = row.Stats.HitCount
		}
	}
	wg.Wait()

	rows := table.Snapshot()
	if len(rows) != 1 || rows[0].Stats.HitCount != 1000 {
		t.Errorf("expected single row with 1000 hits, got %+v", rows)
	}
	if rows[0].Stats.LongestDuration != 99 {
		t.Errorf("expected longest 99, got %v", rows[0].Stats.LongestDuration)
	}
}

func TestEndpointTable_Get(t *testing.T) {
	table := NewEndpointTable()
	table.Record("GET", "/a", 10)
	table.Record("GET", "/a", 20)

	stats, ok := table.Get("GET", "/a")
	if !ok || stats.HitCount != 2 || stats.AverageDuration != 15 || stats.LongestDuration != 20 {
		t.Errorf("Get(GET /a) = %+v, %v", stats, ok)
	}

	if _, ok := table.Get("POST", "/a"); ok {
		t.Error("method must be part of the lookup key")
	}
}
