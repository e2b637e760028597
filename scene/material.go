package scene

import (
	"image"

	"github.com/google/uuid"
)

// TextureSlot names a texture-map property of a material.
type TextureSlot string

const (
	SlotMap          TextureSlot = "map"
	SlotNormal       TextureSlot = "normalMap"
	SlotBump         TextureSlot = "bumpMap"
	SlotDisplacement TextureSlot = "displacementMap"
	SlotRoughness    TextureSlot = "roughnessMap"
	SlotMetalness    TextureSlot = "metalnessMap"
	SlotAlpha        TextureSlot = "alphaMap"
	SlotEnvironment  TextureSlot = "envMap"
	SlotEmissive     TextureSlot = "emissiveMap"
	SlotSpecular     TextureSlot = "specularMap"
	SlotAO           TextureSlot = "aoMap"
	SlotLight        TextureSlot = "lightMap"
)

// TextureSlots lists every slot in scan order.
var TextureSlots = []TextureSlot{
	SlotMap, SlotNormal, SlotBump, SlotDisplacement,
	SlotRoughness, SlotMetalness, SlotAlpha, SlotEnvironment,
	SlotEmissive, SlotSpecular, SlotAO, SlotLight,
}

// Material is a surface description shared by any number of meshes.
type Material struct {
	UUID  string                   `json:"uuid"`
	Name  string                   `json:"name,omitempty"`
	Type  string                   `json:"type"`
	Color *Color                   `json:"color,omitempty"`
	Maps  map[TextureSlot]*Texture `json:"maps,omitempty"`
}

// NewMaterial returns a material with a fresh identity.
func NewMaterial(typeName, name string) *Material {
	return &Material{
		UUID: uuid.NewString(),
		Name: name,
		Type: typeName,
	}
}

// SetMap binds tex to slot and returns m for chaining.
func (m *Material) SetMap(slot TextureSlot, tex *Texture) *Material {
	if m.Maps == nil {
		m.Maps = make(map[TextureSlot]*Texture)
	}
	m.Maps[slot] = tex
	return m
}

// PixelFormat uses the host renderer's numeric format codes.
type PixelFormat int

const (
	FormatRGB            PixelFormat = 1023
	FormatRGBA           PixelFormat = 1024
	FormatAlpha          PixelFormat = 1025
	FormatLuminance      PixelFormat = 1026
	FormatLuminanceAlpha PixelFormat = 1027
)

func (f PixelFormat) String() string {
	switch f {
	case FormatRGB:
		return "RGB"
	case FormatRGBA:
		return "RGBA"
	case FormatAlpha:
		return "Alpha"
	case FormatLuminance:
		return "Luminance"
	case FormatLuminanceAlpha:
		return "LuminanceAlpha"
	default:
		return "Unknown"
	}
}

// BytesPerPixel is the coarse per-pixel cost used for memory estimates.
func (f PixelFormat) BytesPerPixel() int {
	switch f {
	case FormatRGB:
		return 3
	case FormatAlpha:
		return 1
	default:
		return 4
	}
}

// Texture is a GPU-resident image.
type Texture struct {
	UUID   string      `json:"uuid"`
	Name   string      `json:"name,omitempty"`
	Format PixelFormat `json:"format"`
	Image  *Image      `json:"image,omitempty"`
}

// NewTexture returns a texture with a fresh identity.
func NewTexture(name string, format PixelFormat, img *Image) *Texture {
	return &Texture{
		UUID:   uuid.NewString(),
		Name:   name,
		Format: format,
		Image:  img,
	}
}

// Canvas is a drawable surface backing a texture.
type Canvas interface {
	Snapshot() (image.Image, error)
}

// Image is the data source behind a texture.
type Image struct {
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Src        string `json:"src,omitempty"`
	CurrentSrc string `json:"current_src,omitempty"`
	// Data holds encoded image bytes (PNG, JPEG, ...) when the host inlines them.
	Data   []byte `json:"data,omitempty"`
	Canvas Canvas `json:"-"`
}

// ImageCanvas adapts an in-memory image to Canvas.
type ImageCanvas struct {
	Image image.Image
}

func (c ImageCanvas) Snapshot() (image.Image, error) {
	return c.Image, nil
}
