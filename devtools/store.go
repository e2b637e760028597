package devtools

import (
	"sync"
	"time"

	"github.com/jinzhu/copier"

	"github.com/slighter12/tres-devtools-go/assets"
	"github.com/slighter12/tres-devtools-go/logger"
	"github.com/slighter12/tres-devtools-go/mirror"
	"github.com/slighter12/tres-devtools-go/scene"
	"github.com/slighter12/tres-devtools-go/telemetry"
)

// Options configures a Store. Zero values fall back to defaults.
type Options struct {
	Capacity    int
	LogInterval time.Duration
	Extractor   *assets.Extractor
	Exporter    *telemetry.Exporter
	Clock       func() time.Time
}

// Store is the devtools read model. It is mutated only by Handle, which runs
// one message to completion under a single mutex.
type Store struct {
	mu sync.RWMutex

	detector  ChangeDetector
	registry  *assets.Registry
	telemetry *telemetry.Aggregator
	exporter  *telemetry.Exporter
	clock     func() time.Time

	graph     *mirror.Node
	objects   int
	rebuilds  uint64
	version   uint64
	updatedAt time.Time

	unsubscribe func()
	disposed    bool
}

// NewStore returns an empty store that is not yet attached to a Messenger.
func NewStore(opts Options) *Store {
	clock := opts.Clock
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	extractor := assets.NewExtractor()
	if opts.Extractor != nil {
		extractor = *opts.Extractor
	}
	return &Store{
		registry:  assets.NewRegistry(extractor),
		telemetry: telemetry.NewAggregator(opts.Capacity, opts.LogInterval, clock()),
		exporter:  opts.Exporter,
		clock:     clock,
	}
}

// Attach subscribes the store to m. Attaching twice replaces the previous subscription.
func (s *Store) Attach(m *Messenger) {
	unsubscribe := m.Subscribe(s.Handle)
	s.mu.Lock()
	previous := s.unsubscribe
	s.unsubscribe = unsubscribe
	s.disposed = false
	s.mu.Unlock()
	if previous != nil {
		previous()
	}
}

// Dispose unsubscribes the store from its Messenger. Later messages are ignored.
func (s *Store) Dispose() {
	s.mu.Lock()
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.disposed = true
	s.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
}

// Exporter returns the metrics exporter, which may be nil.
func (s *Store) Exporter() *telemetry.Exporter {
	return s.exporter
}

// Disposed reports whether Dispose was called.
func (s *Store) Disposed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.disposed
}

// Handle dispatches one host message by type.
func (s *Store) Handle(msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return
	}

	now := s.clock()
	switch {
	case msg.Type == TypeContext && msg.Context != nil:
		s.handleContextLocked(msg.Context, now)
	case msg.Type == TypeAssetLoad && msg.AssetLoad != nil:
		s.handleAssetLoadLocked(*msg.AssetLoad)
	default:
		logger.Debug("Ignoring devtools message", "type", string(msg.Type))
		return
	}
	s.version++
	s.updatedAt = now
}

func (s *Store) handleContextLocked(payload *ContextPayload, now time.Time) {
	root := payload.Scene
	switch {
	case root == nil || len(root.Children) == 0:
		s.clearLocked()
	case s.detector.ShouldRebuild(root.UUID):
		s.rebuildLocked(root)
	}

	// Telemetry is folded in only after the rebuild decision.
	s.telemetry.Observe(payload.Frame, payload.Renderer, now)
	s.exporter.Update(s.telemetry.Snapshot())
	s.exporter.SetScene(s.objects, s.registry.CountByKind())
	if s.telemetry.ShouldReport(now) {
		fps := s.telemetry.FPS()
		memory := s.telemetry.Memory()
		logger.Debug("Devtools telemetry",
			"fps", fps.Value(),
			"fps_average", fps.Average(),
			"memory_mb", memory.Value(),
			"memory_average_mb", memory.Average(),
			"objects", s.objects,
			"assets", s.registry.Len(),
		)
	}
}

func (s *Store) rebuildLocked(root *scene.Node) {
	s.graph = mirror.Build(root)
	s.objects = mirror.CountObjects(root)
	added := s.registry.Scan(root)
	s.rebuilds++
	s.exporter.RecordRebuild()
	logger.Debug("Scene mirror rebuilt",
		"scene_id", root.UUID,
		"objects", s.objects,
		"assets_added", added,
		"assets_total", s.registry.Len(),
	)
}

func (s *Store) clearLocked() {
	if s.graph != nil || s.registry.Len() > 0 {
		logger.Debug("Scene cleared", "objects", s.objects, "assets", s.registry.Len())
	}
	s.graph = nil
	s.objects = 0
	s.detector.Reset()
	s.registry.Clear()
}

func (s *Store) handleAssetLoadLocked(event assets.LoadEvent) {
	record, ok := s.registry.ObserveLoad(event)
	if !ok {
		logger.Debug("Ignoring unidentifiable asset-load event", "url", event.URL, "kind", string(event.Kind))
		return
	}
	s.exporter.SetScene(s.objects, s.registry.CountByKind())
	logger.Debug("Asset observed", "asset_id", record.ID, "kind", string(record.Kind))
}

// Invalidate forgets the scene identity so the next context message rebuilds
// the mirror even when the scene root is unchanged. It counts as a state change.
func (s *Store) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return
	}
	s.detector.Reset()
	s.version++
	s.updatedAt = s.clock()
}

// Version increments once per handled message and once per Invalidate.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Snapshot returns a deep copy of the read model.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tel := s.telemetry.Snapshot()
	return State{
		Scene: SceneState{
			Objects:  s.objects,
			Rebuilds: s.rebuilds,
			Graph:    copyGraph(s.graph),
			Assets:   s.registry.Records(),
		},
		FPS:       tel.FPS,
		Memory:    tel.Memory,
		Renderer:  RendererState{Info: tel.Renderer},
		Version:   s.version,
		UpdatedAt: s.updatedAt,
	}
}

// Graph returns a copy of the mirrored scene graph.
func (s *Store) Graph() (*mirror.Node, bool, string) {
	if s == nil {
		return nil, false, "devtools_store_unavailable"
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.graph == nil {
		return nil, false, "scene_graph_missing"
	}
	return copyGraph(s.graph), true, ""
}

// Asset looks up one catalogued asset by ID.
func (s *Store) Asset(id string) (assets.Record, bool, string) {
	if s == nil {
		return assets.Record{}, false, "devtools_store_unavailable"
	}
	if id == "" {
		return assets.Record{}, false, "asset_id_missing"
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.registry.Get(id)
	if !ok {
		return assets.Record{}, false, "asset_missing"
	}
	return record, true, ""
}

func copyGraph(graph *mirror.Node) *mirror.Node {
	if graph == nil {
		return nil
	}
	out := &mirror.Node{}
	if err := copier.CopyWithOption(out, graph, copier.Option{DeepCopy: true}); err != nil {
		logger.Warn("Failed to copy scene graph", "error", err)
		return nil
	}
	return out
}
