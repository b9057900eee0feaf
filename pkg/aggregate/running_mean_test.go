package aggregate

import (
	"sync"
	"testing"
)

func TestRunningMean_FloatMeanOverAllSamples(t *testing.T) {
	var r RunningMean[float64]

	if _, _, ok := r.Mean(); ok {
		t.Fatal("expected no mean before first sample")
	}

	p, s := r.Update(10, 40)
	if p != 10 || s != 40 {
		t.Errorf("first sample: expected (10, 40), got (%v, %v)", p, s)
	}

	p, s = r.Update(20, 60)
	if p != 15 || s != 50 {
		t.Errorf("second sample: expected (15, 50), got (%v, %v)", p, s)
	}

	p, s = r.Update(0.5, 0.5)
	if p != 30.5/3 || s != 100.5/3 {
		t.Errorf("third sample: expected (%v, %v), got (%v, %v)", 30.5/3, 100.5/3, p, s)
	}

	if r.Samples() != 3 {
		t.Errorf("expected 3 samples, got %d", r.Samples())
	}
}

func TestRunningMean_IntegerMeanTruncates(t *testing.T) {
	var r RunningMean[int64]

	r.Update(10, 3)
	p, s := r.Update(15, 4)

	// (10+15)/2 = 12.5 → 12, (3+4)/2 = 3.5 → 3
	if p != 12 || s != 3 {
		t.Errorf("expected truncated means (12, 3), got (%d, %d)", p, s)
	}

	mp, ms, ok := r.Mean()
	if !ok || mp != 12 || ms != 3 {
		t.Errorf("Mean() = (%d, %d, %v), want (12, 3, true)", mp, ms, ok)
	}
}

func TestRunningMean_ConcurrentUpdates(t *testing.T) {
	var r RunningMean[int64]
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.Update(2, 4)
			}
		}()
	}
	wg.Wait()

	p, s, ok := r.Mean()
	if !ok || p != 2 || s != 4 {
		t.Errorf("Mean() = (%d, %d, %v), want (2, 4, true)", p, s, ok)
	}
	if r.Samples() != 5000 {
		t.Errorf("expected 5000 samples, got %d", r.Samples())
	}
}
