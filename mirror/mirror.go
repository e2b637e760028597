// Package mirror converts a live scene graph into an immutable inspection tree
// for the observer panel.
package mirror

import (
	"strings"

	"github.com/slighter12/tres-devtools-go/scene"
)

// DefaultIcon is used for types missing from the icon table.
const DefaultIcon = "i-carbon-cube"

var icons = map[string]string{
	"scene":             "i-carbon-web-services-container",
	"perspectivecamera": "i-carbon-video",
	"mesh":              "i-carbon-cube",
	"group":             "i-carbon-group-objects",
	"ambientlight":      "i-carbon-light",
	"directionallight":  "i-carbon-light",
	"spotlight":         "i-iconoir-project-curve-3d",
	"position":          "i-iconoir-axes",
	"rotation":          "i-carbon-rotate-clockwise",
	"scale":             "i-iconoir-ellipse-3d-three-points",
	"bone":              "i-ph-bone",
	"skinnedmesh":       "carbon:3d-print-mesh",
}

// Icon returns the panel icon for a host type name.
func Icon(typeName string) string {
	if icon, ok := icons[strings.ToLower(typeName)]; ok {
		return icon
	}
	return DefaultIcon
}

// Vec3 is the serialized form of a vector.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// MaterialRef summarizes the material(s) of a mesh.
type MaterialRef struct {
	ID    string   `json:"id"`
	Name  string   `json:"name,omitempty"`
	Type  string   `json:"type"`
	Color string   `json:"color,omitempty"`
	Maps  []string `json:"maps,omitempty"`
	// Count is the number of materials bound to the mesh; the fields above
	// describe the first one.
	Count int `json:"count"`
}

// GeometryRef summarizes a mesh's geometry.
type GeometryRef struct {
	ID          string `json:"id"`
	Name        string `json:"name,omitempty"`
	Type        string `json:"type"`
	VertexCount int    `json:"vertex_count"`
	IndexCount  int    `json:"index_count"`
}

// Node is the inspection mirror of one scene node.
type Node struct {
	Name      string       `json:"name"`
	Type      string       `json:"type"`
	Icon      string       `json:"icon"`
	Position  Vec3         `json:"position"`
	Rotation  Vec3         `json:"rotation"`
	Scale     *Vec3        `json:"scale,omitempty"`
	Color     string       `json:"color,omitempty"`
	Intensity *float64     `json:"intensity,omitempty"`
	Material  *MaterialRef `json:"material,omitempty"`
	Geometry  *GeometryRef `json:"geometry,omitempty"`
	Children  []*Node      `json:"children"`
}

// Build mirrors root and all of its descendants. It returns nil for a nil root.
// The host graph must be acyclic.
func Build(root *scene.Node) *Node {
	if root == nil {
		return nil
	}
	node := createNode(root)
	for _, child := range root.Children {
		if child == nil {
			continue
		}
		node.Children = append(node.Children, Build(child))
	}
	return node
}

func createNode(object *scene.Node) *Node {
	node := &Node{
		Name:     object.Name,
		Type:     object.Type,
		Icon:     Icon(object.Type),
		Position: vec(object.Position),
		Rotation: vec(object.Rotation),
		Children: make([]*Node, 0, len(object.Children)),
	}

	kind := object.Kind()
	if kind == scene.KindMesh {
		scale := vec(object.Scale)
		node.Scale = &scale
		node.Material = materialRef(object.Material)
		node.Geometry = geometryRef(object.Geometry)
	}
	if kind.IsLight() {
		color := scene.Color{R: 1, G: 1, B: 1}
		if object.Color != nil {
			color = *object.Color
		}
		intensity := object.Intensity
		node.Color = color.HexString()
		node.Intensity = &intensity
	}
	return node
}

func vec(v scene.Vec3) Vec3 {
	return Vec3{X: v.X, Y: v.Y, Z: v.Z}
}

func materialRef(materials scene.MaterialList) *MaterialRef {
	var first *scene.Material
	count := 0
	for _, m := range materials {
		if m == nil {
			continue
		}
		if first == nil {
			first = m
		}
		count++
	}
	if first == nil {
		return nil
	}
	ref := &MaterialRef{
		ID:    first.UUID,
		Name:  first.Name,
		Type:  first.Type,
		Count: count,
	}
	if first.Color != nil {
		ref.Color = first.Color.HexString()
	}
	for _, slot := range scene.TextureSlots {
		if first.Maps[slot] != nil {
			ref.Maps = append(ref.Maps, string(slot))
		}
	}
	return ref
}

func geometryRef(g *scene.Geometry) *GeometryRef {
	if g == nil {
		return nil
	}
	return &GeometryRef{
		ID:          g.UUID,
		Name:        g.Name,
		Type:        g.Type,
		VertexCount: g.VertexCount,
		IndexCount:  g.IndexCount,
	}
}

// CountObjects counts root and every descendant in the live graph.
func CountObjects(root *scene.Node) int {
	count := 0
	root.Traverse(func(*scene.Node) { count++ })
	return count
}

// Count counts n and every descendant in a mirror tree.
func Count(n *Node) int {
	if n == nil {
		return 0
	}
	count := 1
	for _, child := range n.Children {
		count += Count(child)
	}
	return count
}
