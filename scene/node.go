// Package scene models the host engine's live 3D object graph as the devtools
// read it. Values are owned by the host; the devtools never mutate them.
package scene

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/google/uuid"
)

// Vec3 is a 3-component vector (position, euler rotation or scale).
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Color is a linear RGB color with channels in [0, 1].
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// HexString renders c as six lower-case hex digits without a leading '#'.
func (c Color) HexString() string {
	return fmt.Sprintf("%02x%02x%02x", channelByte(c.R), channelByte(c.G), channelByte(c.B))
}

func channelByte(v float64) int {
	return int(math.Round(math.Max(0, math.Min(1, v)) * 255))
}

// ColorFromHex builds a Color from a 0xRRGGBB value.
func ColorFromHex(hex uint32) *Color {
	return &Color{
		R: float64(hex>>16&0xff) / 255,
		G: float64(hex>>8&0xff) / 255,
		B: float64(hex&0xff) / 255,
	}
}

// Node is one element of the host scene graph.
type Node struct {
	UUID      string       `json:"uuid"`
	Name      string       `json:"name"`
	Type      string       `json:"type"`
	Position  Vec3         `json:"position"`
	Rotation  Vec3         `json:"rotation"`
	Scale     Vec3         `json:"scale"`
	Material  MaterialList `json:"material,omitempty"`
	Geometry  *Geometry    `json:"geometry,omitempty"`
	Color     *Color       `json:"color,omitempty"`
	Intensity float64      `json:"intensity,omitempty"`
	Children  []*Node      `json:"children,omitempty"`
}

// NewNode returns a node with a fresh identity and unit scale.
func NewNode(typeName, name string) *Node {
	return &Node{
		UUID:  uuid.NewString(),
		Name:  name,
		Type:  typeName,
		Scale: Vec3{X: 1, Y: 1, Z: 1},
	}
}

// Kind classifies the node's host type name.
func (n *Node) Kind() Kind {
	if n == nil {
		return KindObject3D
	}
	return ParseKind(n.Type)
}

// Add appends children and returns n for chaining.
func (n *Node) Add(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}

// Traverse calls fn for n and every descendant, depth-first pre-order.
func (n *Node) Traverse(fn func(*Node)) {
	if n == nil {
		return
	}
	fn(n)
	for _, child := range n.Children {
		child.Traverse(fn)
	}
}

// MaterialList holds the material(s) of a mesh. The host sends either a single
// material object or an array, both decode into a list.
type MaterialList []*Material

func (l *MaterialList) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*l = nil
		return nil
	}
	if len(data) > 0 && data[0] == '[' {
		var many []*Material
		if err := json.Unmarshal(data, &many); err != nil {
			return fmt.Errorf("decode material list: %w", err)
		}
		*l = many
		return nil
	}
	var one Material
	if err := json.Unmarshal(data, &one); err != nil {
		return fmt.Errorf("decode material: %w", err)
	}
	*l = MaterialList{&one}
	return nil
}

// Geometry describes a mesh's vertex data.
type Geometry struct {
	UUID        string `json:"uuid"`
	Name        string `json:"name,omitempty"`
	Type        string `json:"type"`
	VertexCount int    `json:"vertex_count,omitempty"`
	IndexCount  int    `json:"index_count,omitempty"`
}

// NewGeometry returns a geometry with a fresh identity.
func NewGeometry(typeName string, vertices, indices int) *Geometry {
	return &Geometry{
		UUID:        uuid.NewString(),
		Type:        typeName,
		VertexCount: vertices,
		IndexCount:  indices,
	}
}
