package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tres_devtools"

// Exporter mirrors the rolled-up telemetry into Prometheus gauges on its own
// registry so several stores in one process do not collide.
type Exporter struct {
	registry *prometheus.Registry

	fps           prometheus.Gauge
	fpsAverage    prometheus.Gauge
	memory        prometheus.Gauge
	memoryAverage prometheus.Gauge
	memoryMax     prometheus.Gauge
	renderCalls   prometheus.Gauge
	triangles     prometheus.Gauge
	programs      prometheus.Gauge
	sceneObjects  prometheus.Gauge
	assets        *prometheus.GaugeVec
	rebuilds      prometheus.Counter
}

// NewExporter creates and registers every gauge.
func NewExporter() *Exporter {
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: name, Help: help})
	}
	e := &Exporter{
		registry:      prometheus.NewRegistry(),
		fps:           gauge("fps", "Most recent frame rate sample."),
		fpsAverage:    gauge("fps_average", "Mean frame rate over the sampling window."),
		memory:        gauge("memory_mb", "Most recent heap sample in MB."),
		memoryAverage: gauge("memory_average_mb", "Mean heap usage over the sampling window in MB."),
		memoryMax:     gauge("memory_max_mb", "Peak heap sample in MB."),
		renderCalls:   gauge("render_calls", "Draw calls in the last rendered frame."),
		triangles:     gauge("render_triangles", "Triangles in the last rendered frame."),
		programs:      gauge("render_programs", "Shader programs known to the renderer."),
		sceneObjects:  gauge("scene_objects", "Objects in the mirrored scene."),
		assets: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "assets",
			Help:      "Catalogued assets by kind.",
		}, []string{"kind"}),
		rebuilds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scene_rebuilds_total",
			Help:      "Scene mirror rebuilds triggered by identity changes.",
		}),
	}
	e.registry.MustRegister(
		e.fps, e.fpsAverage, e.memory, e.memoryAverage, e.memoryMax,
		e.renderCalls, e.triangles, e.programs, e.sceneObjects, e.assets, e.rebuilds,
	)
	return e
}

// Update copies the aggregator state into the gauges.
func (e *Exporter) Update(state State) {
	if e == nil {
		return
	}
	e.fps.Set(state.FPS.Value)
	e.fpsAverage.Set(state.FPS.Average)
	e.memory.Set(state.Memory.Value)
	e.memoryAverage.Set(state.Memory.Average)
	e.memoryMax.Set(state.Memory.Max)
	e.renderCalls.Set(float64(state.Renderer.Render.Calls))
	e.triangles.Set(float64(state.Renderer.Render.Triangles))
	e.programs.Set(float64(len(state.Renderer.Programs)))
}

// SetScene records the mirrored object count and asset totals by kind.
func (e *Exporter) SetScene(objects int, assetsByKind map[string]int) {
	if e == nil {
		return
	}
	e.sceneObjects.Set(float64(objects))
	e.assets.Reset()
	for kind, n := range assetsByKind {
		e.assets.WithLabelValues(kind).Set(float64(n))
	}
}

// RecordRebuild counts one mirror rebuild.
func (e *Exporter) RecordRebuild() {
	if e == nil {
		return
	}
	e.rebuilds.Inc()
}

// Registry exposes the underlying registry, mainly for tests.
func (e *Exporter) Registry() *prometheus.Registry { return e.registry }

// Handler serves the registry in the Prometheus exposition format.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}
