package telemetry

import (
	"encoding/json"
	"slices"
	"time"
)

// Frame is one tick of performance telemetry sent by the host.
type Frame struct {
	FPS         float64 `json:"fps"`
	MemoryMB    float64 `json:"memory_mb"`
	AllocatedMB float64 `json:"allocated_mb,omitempty"`
}

// RenderCounters are the renderer's per-frame draw statistics.
type RenderCounters struct {
	Frame     int `json:"frame"`
	Calls     int `json:"calls"`
	Triangles int `json:"triangles"`
	Points    int `json:"points"`
	Lines     int `json:"lines"`
}

// MemoryCounters are the renderer's resident resource counts.
type MemoryCounters struct {
	Geometries int `json:"geometries"`
	Textures   int `json:"textures"`
}

// Program is one compiled shader program known to the renderer.
type Program struct {
	ID        int    `json:"id"`
	Name      string `json:"name,omitempty"`
	CacheKey  string `json:"cache_key,omitempty"`
	UsedTimes int    `json:"used_times"`
}

// RendererInfo is passed through from the host on every tick.
type RendererInfo struct {
	Render   RenderCounters `json:"render"`
	Memory   MemoryCounters `json:"memory"`
	Programs []Program      `json:"programs"`
}

// MemoryState extends the memory window with peak and allocated figures.
type MemoryState struct {
	SamplerState
	Max       float64 `json:"max"`
	Allocated float64 `json:"allocated"`
}

// MarshalJSON keeps the embedded sampler's millisecond interval rendering.
func (m MemoryState) MarshalJSON() ([]byte, error) {
	type plain SamplerState
	return json.Marshal(struct {
		plain
		LogIntervalMS int64   `json:"log_interval_ms"`
		Max           float64 `json:"max"`
		Allocated     float64 `json:"allocated"`
	}{plain(m.SamplerState), m.LogInterval.Milliseconds(), m.Max, m.Allocated})
}

// State is a point-in-time copy of everything the aggregator owns.
type State struct {
	FPS      SamplerState `json:"fps"`
	Memory   MemoryState  `json:"memory"`
	Renderer RendererInfo `json:"renderer"`
}

// Aggregator owns the FPS and memory windows and the latest renderer counters.
type Aggregator struct {
	fps       *Sampler
	memory    *Sampler
	maxMemory float64
	allocated float64
	renderer  RendererInfo
}

// NewAggregator returns an aggregator whose windows hold capacity samples.
func NewAggregator(capacity int, logInterval time.Duration, now time.Time) *Aggregator {
	return &Aggregator{
		fps:    NewSampler(capacity, logInterval, now),
		memory: NewSampler(capacity, logInterval, now),
	}
}

// Observe records the renderer counters and, when present, one frame sample.
func (a *Aggregator) Observe(frame *Frame, renderer RendererInfo, now time.Time) {
	a.renderer = RendererInfo{
		Render:   renderer.Render,
		Memory:   renderer.Memory,
		Programs: slices.Clone(renderer.Programs),
	}
	if frame == nil {
		return
	}
	a.fps.Push(frame.FPS, now)
	a.memory.Push(frame.MemoryMB, now)
	if frame.MemoryMB > a.maxMemory {
		a.maxMemory = frame.MemoryMB
	}
	a.allocated = frame.AllocatedMB
}

// ShouldReport gates downstream reporting on the FPS window's log interval.
func (a *Aggregator) ShouldReport(now time.Time) bool {
	return a.fps.ShouldReport(now)
}

// FPS exposes the frame-rate window.
func (a *Aggregator) FPS() *Sampler { return a.fps }

// Memory exposes the memory window.
func (a *Aggregator) Memory() *Sampler { return a.memory }

// Snapshot returns a copy safe to hand to readers.
func (a *Aggregator) Snapshot() State {
	return State{
		FPS: a.fps.Snapshot(),
		Memory: MemoryState{
			SamplerState: a.memory.Snapshot(),
			Max:          a.maxMemory,
			Allocated:    a.allocated,
		},
		Renderer: RendererInfo{
			Render:   a.renderer.Render,
			Memory:   a.renderer.Memory,
			Programs: append([]Program{}, a.renderer.Programs...),
		},
	}
}
