// Package assets catalogues GPU-resident resources (textures, materials,
// geometries) referenced by a scene, de-duplicated by resource identity.
package assets

import (
	"fmt"
	"math"
	"strings"

	"github.com/slighter12/tres-devtools-go/logger"
	"github.com/slighter12/tres-devtools-go/scene"
)

// Kind is the resource class of a record.
type Kind string

const (
	KindTexture  Kind = "texture"
	KindGeometry Kind = "geometry"
	KindMaterial Kind = "material"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindTexture, KindGeometry, KindMaterial:
		return true
	default:
		return false
	}
}

// Record describes one catalogued resource.
type Record struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Kind       Kind   `json:"kind"`
	SizeKB     int    `json:"size_kb,omitempty"`
	Dimensions string `json:"dimensions,omitempty"`
	Format     string `json:"format,omitempty"`
	Usage      int    `json:"usage,omitempty"`
	Source     string `json:"source,omitempty"`
	URL        string `json:"url,omitempty"`
	Preview    string `json:"preview,omitempty"`
}

// Extractor turns scene resources into records.
type Extractor struct {
	Previewer Previewer
}

// NewExtractor returns an extractor with default preview settings.
func NewExtractor() Extractor {
	return Extractor{Previewer: Previewer{MaxEdge: DefaultPreviewMaxEdge}}
}

// ExtractAll scans every node under root and returns one record per distinct
// texture (any material slot) followed by one per distinct material.
func (x Extractor) ExtractAll(root *scene.Node) []Record {
	var (
		textures     []*scene.Texture
		materials    []*scene.Material
		seenTexture  = make(map[string]struct{})
		seenMaterial = make(map[string]struct{})
	)

	root.Traverse(func(n *scene.Node) {
		for _, material := range n.Material {
			if material == nil {
				continue
			}
			for _, slot := range scene.TextureSlots {
				tex := material.Maps[slot]
				if tex == nil {
					continue
				}
				if _, ok := seenTexture[tex.UUID]; !ok {
					seenTexture[tex.UUID] = struct{}{}
					textures = append(textures, tex)
				}
			}
			if _, ok := seenMaterial[material.UUID]; !ok {
				seenMaterial[material.UUID] = struct{}{}
				materials = append(materials, material)
			}
		}
	})

	records := make([]Record, 0, len(textures)+len(materials))
	for _, tex := range textures {
		records = append(records, x.TextureRecord(tex))
	}
	for _, material := range materials {
		records = append(records, MaterialRecord(material))
	}
	return records
}

// TextureRecord describes tex, capturing a preview on a best-effort basis.
func (x Extractor) TextureRecord(tex *scene.Texture) Record {
	record := Record{
		ID:         tex.UUID,
		Name:       tex.Name,
		Kind:       KindTexture,
		Dimensions: "Unknown",
		Format:     tex.Format.String(),
		SizeKB:     EstimateTextureKB(tex),
		Source:     textureSource(tex),
	}
	if record.Name == "" {
		record.Name = "Unnamed Texture"
	}
	if tex.Image != nil {
		record.Dimensions = fmt.Sprintf("%dx%d", tex.Image.Width, tex.Image.Height)
		record.URL = tex.Image.Src
		if record.URL == "" {
			record.URL = tex.Image.CurrentSrc
		}
	}

	preview, err := x.Previewer.Capture(tex)
	if err != nil {
		logger.Debug("Texture preview unavailable", "texture_id", tex.UUID, "error", err)
	} else {
		record.Preview = preview
	}
	return record
}

// MaterialRecord describes m. Materials are not memory-estimated.
func MaterialRecord(m *scene.Material) Record {
	name := m.Name
	if name == "" {
		name = m.Type
	}
	if name == "" {
		name = "Unnamed Material"
	}
	return Record{
		ID:     m.UUID,
		Name:   name,
		Kind:   KindMaterial,
		Format: m.Type,
		Usage:  1,
	}
}

// GeometryRecord describes g with a coarse vertex-buffer estimate.
func GeometryRecord(g *scene.Geometry) Record {
	name := g.Name
	if name == "" {
		name = g.Type
	}
	if name == "" {
		name = "Unnamed Geometry"
	}
	return Record{
		ID:         g.UUID,
		Name:       name,
		Kind:       KindGeometry,
		Format:     g.Type,
		Dimensions: fmt.Sprintf("%d vertices", g.VertexCount),
		SizeKB:     EstimateGeometryKB(g),
	}
}

// EstimateTextureKB is width*height*bytesPerPixel/1024, rounded.
func EstimateTextureKB(tex *scene.Texture) int {
	if tex == nil || tex.Image == nil {
		return 0
	}
	bytes := float64(tex.Image.Width * tex.Image.Height * tex.Format.BytesPerPixel())
	return int(math.Round(bytes / 1024))
}

// bytesPerVertex assumes interleaved position, normal and uv in float32.
const bytesPerVertex = (3 + 3 + 2) * 4

// EstimateGeometryKB assumes float32 position/normal/uv and uint32 indices.
func EstimateGeometryKB(g *scene.Geometry) int {
	if g == nil {
		return 0
	}
	bytes := float64(g.VertexCount*bytesPerVertex + g.IndexCount*4)
	return int(math.Round(bytes / 1024))
}

func textureSource(tex *scene.Texture) string {
	if tex.Image == nil {
		return "Generated"
	}
	if tex.Image.Src != "" {
		return lastSegment(tex.Image.Src)
	}
	if tex.Image.CurrentSrc != "" {
		return lastSegment(tex.Image.CurrentSrc)
	}
	return "Generated"
}

func lastSegment(ref string) string {
	segment := ref[strings.LastIndex(ref, "/")+1:]
	if segment == "" {
		return "Unknown"
	}
	return segment
}
