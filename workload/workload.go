// Package workload generates deterministic synthetic channel
// recordings and wires the benchmark registry that compares the
// candidate container codecs on them.
package workload

import (
	"fmt"
	mrand "math/rand"
)

// Channel is one named signal with a sample per timebase point.
type Channel struct {
	Name    string    `json:"name"`
	Unit    string    `json:"unit"`
	Comment string    `json:"comment"`
	Samples []float64 `json:"samples"`
}

// Recording is a set of channels sharing a common timebase. It is the
// document the candidate codecs encode and decode.
type Recording struct {
	Timebase []float64 `json:"timebase"`
	Channels []Channel `json:"channels"`
}

// SampleCount returns the total number of samples across all channels.
func (r *Recording) SampleCount() int {
	var n int
	for _, ch := range r.Channels {
		n += len(ch.Samples)
	}

	return n
}

// ScanSamples touches every sample of every channel and returns the
// count and sum. It is the "get all channels" workload.
func (r *Recording) ScanSamples() (int, float64) {
	var (
		n   int
		sum float64
	)

	for _, ch := range r.Channels {
		for _, s := range ch.Samples {
			sum += s
			n++
		}
	}

	return n, sum
}

// Merge appends the channels of each recording sample-wise onto the
// first, shifting every timebase after the first so time stays
// monotonic. All recordings must have the same channel count.
func Merge(recs ...*Recording) (*Recording, error) {
	if len(recs) == 0 {
		return nil, fmt.Errorf("nothing to merge")
	}

	first := recs[0]
	out := &Recording{
		Timebase: append([]float64(nil), first.Timebase...),
		Channels: make([]Channel, len(first.Channels)),
	}

	for i, ch := range first.Channels {
		out.Channels[i] = Channel{
			Name:    ch.Name,
			Unit:    ch.Unit,
			Comment: ch.Comment,
			Samples: append([]float64(nil), ch.Samples...),
		}
	}

	for _, rec := range recs[1:] {
		if len(rec.Channels) != len(out.Channels) {
			return nil, fmt.Errorf(
				"channel count mismatch: %d vs %d",
				len(rec.Channels), len(out.Channels),
			)
		}

		var offset float64
		if n := len(out.Timebase); n > 0 {
			offset = out.Timebase[n-1] + 1
		}

		for _, t := range rec.Timebase {
			out.Timebase = append(out.Timebase, t+offset)
		}

		for i, ch := range rec.Channels {
			out.Channels[i].Samples = append(
				out.Channels[i].Samples, ch.Samples...,
			)
		}
	}

	return out, nil
}

// Config controls recording generation parameters.
type Config struct {
	Channels int
	Samples  int
	Seed     int64
}

// Generator produces deterministic recordings from a Config.
type Generator struct {
	cfg Config
	rng *mrand.Rand
}

// NewGenerator creates a Generator from the given Config.
func NewGenerator(cfg Config) *Generator {
	return &Generator{
		cfg: cfg,
		rng: mrand.New(mrand.NewSource(cfg.Seed)),
	}
}

// Generate builds the synthetic recording. The same Config always
// yields the same recording.
func (g *Generator) Generate() *Recording {
	rec := &Recording{
		Timebase: make([]float64, g.cfg.Samples),
		Channels: make([]Channel, g.cfg.Channels),
	}

	for i := range rec.Timebase {
		rec.Timebase[i] = float64(i)
	}

	for i := range rec.Channels {
		samples := make([]float64, g.cfg.Samples)
		for j := range samples {
			samples[j] = float64(i) + g.rng.Float64()
		}

		rec.Channels[i] = Channel{
			Name:    fmt.Sprintf("Channel_%d", i),
			Unit:    fmt.Sprintf("unit_%d", i),
			Comment: fmt.Sprintf("Synthetic channel %d", i),
			Samples: samples,
		}
	}

	return rec
}
