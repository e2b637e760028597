package telemetry

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, 2, 18, 12, 0, 0, 0, time.UTC)

func TestSamplerKeepsLastCapacitySamples(t *testing.T) {
	s := NewSampler(DefaultCapacity, 0, epoch)
	total := DefaultCapacity + 45
	for i := 0; i < total; i++ {
		s.Push(float64(i), epoch.Add(time.Duration(i)*time.Millisecond))
	}

	samples := s.Samples()
	require.Len(t, samples, DefaultCapacity)
	for i, v := range samples {
		assert.Equal(t, float64(total-DefaultCapacity+i), v)
	}

	var sum float64
	for _, v := range samples {
		sum += v
	}
	assert.InDelta(t, sum/float64(len(samples)), s.Average(), 1e-9)
	assert.Equal(t, float64(total-1), s.Value())
}

func TestSamplerBeforeWrap(t *testing.T) {
	s := NewSampler(4, time.Second, epoch)
	s.Push(10, epoch)
	s.Push(20, epoch)

	assert.Equal(t, []float64{10, 20}, s.Samples())
	assert.InDelta(t, 15, s.Average(), 1e-9)
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 4, s.Capacity())
}

func TestSamplerWrapsExactlyAtCapacity(t *testing.T) {
	s := NewSampler(3, time.Second, epoch)
	for _, v := range []float64{1, 2, 3, 4} {
		s.Push(v, epoch)
	}
	assert.Equal(t, []float64{2, 3, 4}, s.Samples())
	assert.InDelta(t, 3, s.Average(), 1e-9)
}

func TestSamplerRunningAverageOverManyLaps(t *testing.T) {
	const capacity = 10000
	s := NewSampler(capacity, time.Second, epoch)
	for i := 0; i < capacity*3+1234; i++ {
		sample := 0.1 * float64(i%7)
		if i%1000 == 0 {
			sample = 1e6
		}
		s.Push(sample, epoch)

		if i%4999 == 0 || i == capacity-1 || i == capacity {
			window := s.Samples()
			var total float64
			for _, v := range window {
				total += v
			}
			require.InDelta(t, total/float64(len(window)), s.Average(), 1e-6, "push %d", i)
		}
	}
	assert.Equal(t, capacity, s.Len())
}

func TestSamplerShouldReportThrottlesOnlyReporting(t *testing.T) {
	s := NewSampler(8, time.Second, epoch)

	assert.False(t, s.ShouldReport(epoch.Add(500*time.Millisecond)))
	assert.True(t, s.ShouldReport(epoch.Add(time.Second)))
	assert.False(t, s.ShouldReport(epoch.Add(1500*time.Millisecond)))
	assert.True(t, s.ShouldReport(epoch.Add(2100*time.Millisecond)))

	for i := 0; i < 5; i++ {
		s.Push(60, epoch.Add(2100*time.Millisecond))
	}
	assert.Equal(t, 5, s.Len())
}

func TestSamplerStateJSON(t *testing.T) {
	s := NewSampler(4, 250*time.Millisecond, epoch)
	s.Push(59.5, epoch)

	data, err := json.Marshal(s.Snapshot())
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))
	assert.Equal(t, 59.5, fields["value"])
	assert.Equal(t, float64(250), fields["log_interval_ms"])
	assert.Len(t, fields["accumulator"], 1)
}

func TestAggregatorObserve(t *testing.T) {
	a := NewAggregator(4, time.Second, epoch)
	renderer := RendererInfo{
		Render:   RenderCounters{Frame: 10, Calls: 3, Triangles: 1200},
		Memory:   MemoryCounters{Geometries: 2, Textures: 1},
		Programs: []Program{{ID: 1, Name: "MeshStandardMaterial", UsedTimes: 2}},
	}

	a.Observe(&Frame{FPS: 60, MemoryMB: 40, AllocatedMB: 64}, renderer, epoch)
	a.Observe(&Frame{FPS: 30, MemoryMB: 20, AllocatedMB: 64}, renderer, epoch.Add(16*time.Millisecond))
	a.Observe(nil, RendererInfo{Render: RenderCounters{Frame: 12}}, epoch.Add(32*time.Millisecond))

	state := a.Snapshot()
	assert.Equal(t, 30.0, state.FPS.Value)
	assert.InDelta(t, 45, state.FPS.Average, 1e-9)
	assert.InDelta(t, 30, state.Memory.Average, 1e-9)
	assert.Equal(t, 40.0, state.Memory.Max)
	assert.Equal(t, 64.0, state.Memory.Allocated)
	assert.Equal(t, 12, state.Renderer.Render.Frame)
	assert.Empty(t, state.Renderer.Programs)
	assert.NotNil(t, state.Renderer.Programs)
}

func TestAggregatorSnapshotIsDetached(t *testing.T) {
	a := NewAggregator(4, time.Second, epoch)
	programs := []Program{{ID: 1}}
	a.Observe(&Frame{FPS: 60}, RendererInfo{Programs: programs}, epoch)

	programs[0].ID = 99
	state := a.Snapshot()
	state.FPS.Accumulator[0] = -1

	assert.Equal(t, 1, a.Snapshot().Renderer.Programs[0].ID)
	assert.Equal(t, 60.0, a.Snapshot().FPS.Accumulator[0])
}

func TestExporterUpdate(t *testing.T) {
	e := NewExporter()
	a := NewAggregator(4, time.Second, epoch)
	a.Observe(&Frame{FPS: 58, MemoryMB: 12}, RendererInfo{Render: RenderCounters{Calls: 7}}, epoch)

	e.Update(a.Snapshot())
	e.SetScene(5, map[string]int{"texture": 1, "material": 2})
	e.RecordRebuild()

	assert.Equal(t, 58.0, testutil.ToFloat64(e.fps))
	assert.Equal(t, 7.0, testutil.ToFloat64(e.renderCalls))
	assert.Equal(t, 5.0, testutil.ToFloat64(e.sceneObjects))
	assert.Equal(t, 2.0, testutil.ToFloat64(e.assets.WithLabelValues("material")))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.rebuilds))

	err := testutil.GatherAndCompare(e.Registry(), strings.NewReader(`
# HELP tres_devtools_scene_objects Objects in the mirrored scene.
# TYPE tres_devtools_scene_objects gauge
tres_devtools_scene_objects 5
`), "tres_devtools_scene_objects")
	assert.NoError(t, err)
}

func TestNilExporterIsNoop(t *testing.T) {
	var e *Exporter
	assert.NotPanics(t, func() {
		e.Update(State{})
		e.SetScene(1, nil)
		e.RecordRebuild()
	})
}
