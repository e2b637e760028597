package assets

import (
	"strings"

	"github.com/slighter12/tres-devtools-go/scene"
)

// LoadEvent describes one resource the host finished loading.
type LoadEvent struct {
	ID       string          `json:"id,omitempty"`
	Name     string          `json:"name,omitempty"`
	Kind     Kind            `json:"kind,omitempty"`
	URL      string          `json:"url,omitempty"`
	Texture  *scene.Texture  `json:"texture,omitempty"`
	Material *scene.Material `json:"material,omitempty"`
	Geometry *scene.Geometry `json:"geometry,omitempty"`
}

// Registry is an identity-keyed catalogue of records in first-seen order.
// Re-observing an identity overwrites the record in place. A record keyed by
// its URL only is provisional: the first record of the same kind and URL that
// carries a real identity takes over its slot.
// Registry is not safe for concurrent use; the devtools store serializes access.
type Registry struct {
	extractor Extractor
	order     []string
	byID      map[string]Record
	byURL     map[string]string
}

// NewRegistry returns an empty registry that builds records with x.
func NewRegistry(x Extractor) *Registry {
	return &Registry{
		extractor: x,
		byID:      make(map[string]Record),
		byURL:     make(map[string]string),
	}
}

// Merge inserts or refreshes records and returns how many were new.
// Records without an ID are dropped.
func (r *Registry) Merge(records ...Record) int {
	added := 0
	for _, record := range records {
		if record.ID == "" {
			continue
		}
		if _, exists := r.byID[record.ID]; !exists && !r.adopt(record) {
			r.order = append(r.order, record.ID)
			added++
		}
		r.byID[record.ID] = record
		if record.URL != "" {
			r.byURL[urlKey(record.Kind, record.URL)] = record.ID
		}
	}
	return added
}

// adopt moves a provisional URL-keyed record to record's identity, keeping
// its position. It reports whether a provisional record was replaced.
func (r *Registry) adopt(record Record) bool {
	if record.URL == "" || record.URL == record.ID {
		return false
	}
	provisional, ok := r.byID[record.URL]
	if !ok || provisional.ID != provisional.URL || provisional.Kind != record.Kind {
		return false
	}
	delete(r.byID, provisional.ID)
	for i, id := range r.order {
		if id == provisional.ID {
			r.order[i] = record.ID
			break
		}
	}
	return true
}

// Scan extracts every asset under root and merges the result.
func (r *Registry) Scan(root *scene.Node) int {
	return r.Merge(r.extractor.ExtractAll(root)...)
}

// ObserveLoad records one load event without rescanning the scene.
// ok is false when the event carries nothing identifiable.
func (r *Registry) ObserveLoad(event LoadEvent) (Record, bool) {
	record, ok := r.recordFor(event)
	if !ok {
		return Record{}, false
	}
	r.Merge(record)
	return record, true
}

func urlKey(kind Kind, url string) string {
	return string(kind) + " " + url
}

func (r *Registry) recordFor(event LoadEvent) (Record, bool) {
	switch {
	case event.Texture != nil && event.Texture.UUID != "":
		return r.extractor.TextureRecord(event.Texture), true
	case event.Material != nil && event.Material.UUID != "":
		return MaterialRecord(event.Material), true
	case event.Geometry != nil && event.Geometry.UUID != "":
		return GeometryRecord(event.Geometry), true
	}

	url := strings.TrimSpace(event.URL)
	id := strings.TrimSpace(event.ID)
	if id == "" {
		if known, ok := r.byURL[urlKey(event.Kind, url)]; ok && known != url {
			return r.byID[known], true
		}
		id = url
	}
	if id == "" || !event.Kind.Valid() {
		return Record{}, false
	}
	record := Record{
		ID:     id,
		Name:   event.Name,
		Kind:   event.Kind,
		URL:    url,
		Source: "Generated",
	}
	if event.URL != "" {
		record.Source = lastSegment(event.URL)
		if event.Kind == KindTexture {
			record.Preview = event.URL
		}
	}
	if record.Name == "" {
		record.Name = record.Source
	}
	return record, true
}

// Get returns the record with the given ID.
func (r *Registry) Get(id string) (Record, bool) {
	record, ok := r.byID[id]
	return record, ok
}

// Records returns every record in first-seen order.
func (r *Registry) Records() []Record {
	out := make([]Record, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// CountByKind tallies records per kind.
func (r *Registry) CountByKind() map[string]int {
	counts := make(map[string]int, 3)
	for _, record := range r.byID {
		counts[string(record.Kind)]++
	}
	return counts
}

// Len is the number of distinct records.
func (r *Registry) Len() int { return len(r.order) }

// Clear drops every record.
func (r *Registry) Clear() {
	r.order = nil
	r.byID = make(map[string]Record)
	r.byURL = make(map[string]string)
}
