package scenario

// Measurement is the outcome of running one scenario in its worker
// process. It crosses the process boundary as a single JSON message,
// sent exactly once per worker.
type Measurement struct {
	DurationMs   int64  `json:"duration_ms"`
	PeakMemoryMB int64  `json:"peak_memory_mb"`
	Success      bool   `json:"success"`
	ErrorType    string `json:"error_type,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
	ErrorTrace   string `json:"error_trace,omitempty"`
}

// Failed returns the measurement for a scenario that raised: zeroed
// numerics (rendered as the 0* sentinel, not as real zeros) plus the
// captured error identity.
func Failed(errType, message, trace string) Measurement {
	return Measurement{
		Success:      false,
		ErrorType:    errType,
		ErrorMessage: message,
		ErrorTrace:   trace,
	}
}
