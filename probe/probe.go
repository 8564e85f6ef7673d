// Package probe measures elapsed time and peak resident memory of the
// current process. Elapsed time comes from the monotonic clock; peak
// memory is the process high-water mark as reported by the OS, so the
// probe must run inside the process that performed the work.
package probe

import "time"

// Span is an in-progress measurement started by Start.
type Span struct {
	start time.Time
}

// Start begins a measurement span.
func Start() *Span {
	return &Span{start: time.Now()}
}

// Stop ends the span and returns the elapsed time in whole milliseconds
// and the process peak resident memory in whole megabytes. Fractional
// units are truncated, identically on every OS.
func (s *Span) Stop() (durationMs, peakMemoryMB int64, err error) {
	elapsed := time.Since(s.start)

	peak, err := peakRSSBytes()
	if err != nil {
		return 0, 0, err
	}

	return elapsed.Milliseconds(), int64(peak / (1024 * 1024)), nil
}
