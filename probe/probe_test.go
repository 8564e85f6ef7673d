package probe

import (
	"testing"
	"time"
)

func TestSpanElapsed(t *testing.T) {
	span := Start()
	time.Sleep(20 * time.Millisecond)

	ms, mb, err := span.Stop()
	if err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	if ms < 20 {
		t.Errorf("elapsed = %dms, want >= 20ms", ms)
	}
	if mb < 0 {
		t.Errorf("peak memory = %dMB, want non-negative", mb)
	}
}

func TestSpanPeakMemory(t *testing.T) {
	span := Start()

	// Allocate enough to guarantee a multi-MB high-water mark.
	buf := make([]byte, 32<<20)
	for i := range buf {
		buf[i] = byte(i)
	}

	ms, mb, err := span.Stop()
	if err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	if mb < 1 {
		t.Errorf("peak memory = %dMB, want >= 1MB after 32MB allocation", mb)
	}
	if ms < 0 {
		t.Errorf("elapsed = %dms, want non-negative", ms)
	}

	_ = buf[len(buf)-1]
}

func TestPeakIsMonotonic(t *testing.T) {
	span := Start()

	_, first, err := span.Stop()
	if err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	_, second, err := Start().Stop()
	if err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	if second < first {
		t.Errorf("peak decreased from %dMB to %dMB", first, second)
	}
}
