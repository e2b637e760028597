package scene

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	assert.Equal(t, KindMesh, ParseKind("Mesh"))
	assert.Equal(t, KindDirectionalLight, ParseKind("DirectionalLight"))
	assert.Equal(t, KindLight, ParseKind("LightProbeLight"))
	assert.Equal(t, KindObject3D, ParseKind("light"))
	assert.Equal(t, KindObject3D, ParseKind("LOD"))

	assert.True(t, KindSpotLight.IsLight())
	assert.True(t, KindLight.IsLight())
	assert.False(t, KindMesh.IsLight())
	assert.False(t, KindSkinnedMesh.IsLight())
}

func TestColorHexString(t *testing.T) {
	assert.Equal(t, "ffffff", Color{R: 1, G: 1, B: 1}.HexString())
	assert.Equal(t, "000000", Color{}.HexString())
	assert.Equal(t, "ff8000", Color{R: 2, G: 0.5, B: -1}.HexString())
	assert.Equal(t, "12abef", ColorFromHex(0x12abef).HexString())
}

func TestTraverseVisitsPreOrder(t *testing.T) {
	root := NewNode("Scene", "root")
	a := NewNode("Group", "a")
	a.Add(NewNode("Mesh", "a1"))
	root.Add(a, NewNode("Mesh", "b"))

	var names []string
	root.Traverse(func(n *Node) { names = append(names, n.Name) })
	assert.Equal(t, []string{"root", "a", "a1", "b"}, names)
}

func TestMaterialListDecodesObjectOrArray(t *testing.T) {
	var single Node
	require.NoError(t, json.Unmarshal([]byte(`{"type":"Mesh","material":{"uuid":"m1","type":"MeshBasicMaterial"}}`), &single))
	require.Len(t, single.Material, 1)
	assert.Equal(t, "m1", single.Material[0].UUID)

	var many Node
	require.NoError(t, json.Unmarshal([]byte(`{"type":"Mesh","material":[{"uuid":"m1"},{"uuid":"m2"}]}`), &many))
	require.Len(t, many.Material, 2)
	assert.Equal(t, "m2", many.Material[1].UUID)
}

func TestNewNodeAssignsIdentity(t *testing.T) {
	a := NewNode("Mesh", "a")
	b := NewNode("Mesh", "b")
	assert.NotEmpty(t, a.UUID)
	assert.NotEqual(t, a.UUID, b.UUID)
	assert.Equal(t, Vec3{X: 1, Y: 1, Z: 1}, a.Scale)
}

func TestPixelFormat(t *testing.T) {
	assert.Equal(t, "RGB", FormatRGB.String())
	assert.Equal(t, "Unknown", PixelFormat(9).String())
	assert.Equal(t, 3, FormatRGB.BytesPerPixel())
	assert.Equal(t, 1, FormatAlpha.BytesPerPixel())
	assert.Equal(t, 4, FormatLuminance.BytesPerPixel())
}
