// Package telemetry aggregates per-frame renderer telemetry into rolling windows.
package telemetry

import (
	"encoding/json"
	"time"
)

const (
	// DefaultCapacity is the number of samples kept per window.
	DefaultCapacity = 160
	// DefaultLogInterval throttles downstream reporting, not sampling.
	DefaultLogInterval = time.Second
)

// Sampler is a fixed-capacity sliding window of samples with a running average.
// Samples are kept in a ring; the oldest one is overwritten once the window is full.
type Sampler struct {
	value   float64
	average float64

	samples  []float64
	head     int // next write position once the ring is full
	capacity int
	sum      float64

	lastLoggedTime time.Time
	logInterval    time.Duration
}

// NewSampler returns an empty sampler. Non-positive arguments fall back to defaults.
func NewSampler(capacity int, logInterval time.Duration, now time.Time) *Sampler {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if logInterval <= 0 {
		logInterval = DefaultLogInterval
	}
	return &Sampler{
		samples:        make([]float64, 0, capacity),
		capacity:       capacity,
		lastLoggedTime: now,
		logInterval:    logInterval,
	}
}

// Push records one sample, evicting the oldest when the window is full.
// now is accepted for symmetry with ShouldReport; sampling is never throttled.
func (s *Sampler) Push(sample float64, now time.Time) {
	if len(s.samples) < s.capacity {
		s.samples = append(s.samples, sample)
	} else {
		s.sum -= s.samples[s.head]
		s.samples[s.head] = sample
	}
	s.sum += sample
	s.head = (s.head + 1) % s.capacity
	if s.head == 0 {
		// Resum once per lap so rounding drift cannot accumulate.
		s.sum = sum(s.samples)
	}
	s.value = sample
	s.average = s.sum / float64(len(s.samples))
}

// ShouldReport reports whether at least one log interval has elapsed since the
// last report, and if so marks now as the last report time.
func (s *Sampler) ShouldReport(now time.Time) bool {
	if now.Sub(s.lastLoggedTime) < s.logInterval {
		return false
	}
	s.lastLoggedTime = now
	return true
}

// Value is the most recent sample.
func (s *Sampler) Value() float64 { return s.value }

// Average is the arithmetic mean of the current window.
func (s *Sampler) Average() float64 { return s.average }

// Len is the number of samples in the window.
func (s *Sampler) Len() int { return len(s.samples) }

// Capacity is the window size.
func (s *Sampler) Capacity() int { return s.capacity }

// Samples returns the window oldest first.
func (s *Sampler) Samples() []float64 {
	out := make([]float64, len(s.samples))
	if len(s.samples) < s.capacity {
		copy(out, s.samples)
		return out
	}
	n := copy(out, s.samples[s.head:])
	copy(out[n:], s.samples[:s.head])
	return out
}

// Snapshot captures the sampler for the read model.
func (s *Sampler) Snapshot() SamplerState {
	return SamplerState{
		Value:          s.value,
		Average:        s.average,
		Accumulator:    s.Samples(),
		Capacity:       s.capacity,
		LastLoggedTime: s.lastLoggedTime,
		LogInterval:    s.logInterval,
	}
}

// SamplerState is the serializable view of a Sampler.
type SamplerState struct {
	Value          float64       `json:"value"`
	Average        float64       `json:"average"`
	Accumulator    []float64     `json:"accumulator"`
	Capacity       int           `json:"capacity"`
	LastLoggedTime time.Time     `json:"last_logged_time"`
	LogInterval    time.Duration `json:"-"`
}

// MarshalJSON renders the log interval in milliseconds.
func (s SamplerState) MarshalJSON() ([]byte, error) {
	type plain SamplerState
	return json.Marshal(struct {
		plain
		LogIntervalMS int64 `json:"log_interval_ms"`
	}{plain(s), s.LogInterval.Milliseconds()})
}

func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}
