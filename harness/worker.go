package harness

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime/debug"

	"github.com/chanbench/chanbench/probe"
	"github.com/chanbench/chanbench/scenario"
)

// ExecScenario runs one scenario inside the current (worker) process
// and writes its Measurement to w as a single JSON message. This is
// the child side of the process boundary: the probe is scoped around
// exactly the callable, and the measurement is sent exactly once, even
// when the scenario fails.
func ExecScenario(reg *scenario.Registry, id string, w io.Writer) error {
	entry, ok := reg.Lookup(id)
	if !ok {
		return fmt.Errorf("unknown scenario id %q", id)
	}

	m := capture(entry)

	if err := json.NewEncoder(w).Encode(m); err != nil {
		return fmt.Errorf("encode measurement: %w", err)
	}

	return nil
}

func capture(entry *scenario.Entry) scenario.Measurement {
	if entry.Setup != nil {
		if err := runScenario(entry.Setup); err != nil {
			return failedMeasurement(err)
		}
	}

	span := probe.Start()

	if err := runScenario(entry.Run); err != nil {
		return failedMeasurement(err)
	}

	ms, mb, err := span.Stop()
	if err != nil {
		return failedMeasurement(err)
	}

	return scenario.Measurement{
		DurationMs:   ms,
		PeakMemoryMB: mb,
		Success:      true,
	}
}

func failedMeasurement(err error) scenario.Measurement {
	if pe, ok := err.(*panicError); ok {
		return scenario.Failed("panic", pe.Error(), string(pe.stack))
	}

	return scenario.Failed(fmt.Sprintf("%T", err), err.Error(), err.Error())
}

// runScenario invokes the callable, converting a panic into an error
// so a panicking workload is contained like any other failure.
func runScenario(fn scenario.Func) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{value: r, stack: debug.Stack()}
		}
	}()

	return fn()
}

type panicError struct {
	value any
	stack []byte
}

func (e *panicError) Error() string {
	return fmt.Sprintf("panic: %v", e.value)
}
