package scene

import "strings"

// Kind is the closed set of object variants the devtools distinguish.
type Kind int

const (
	KindObject3D Kind = iota
	KindScene
	KindGroup
	KindMesh
	KindSkinnedMesh
	KindInstancedMesh
	KindBone
	KindPerspectiveCamera
	KindOrthographicCamera
	KindAmbientLight
	KindDirectionalLight
	KindPointLight
	KindSpotLight
	KindHemisphereLight
	KindRectAreaLight
	// KindLight covers host light types without a dedicated variant.
	KindLight
)

var kindsByType = map[string]Kind{
	"Object3D":           KindObject3D,
	"Scene":              KindScene,
	"Group":              KindGroup,
	"Mesh":               KindMesh,
	"SkinnedMesh":        KindSkinnedMesh,
	"InstancedMesh":      KindInstancedMesh,
	"Bone":               KindBone,
	"PerspectiveCamera":  KindPerspectiveCamera,
	"OrthographicCamera": KindOrthographicCamera,
	"AmbientLight":       KindAmbientLight,
	"DirectionalLight":   KindDirectionalLight,
	"PointLight":         KindPointLight,
	"SpotLight":          KindSpotLight,
	"HemisphereLight":    KindHemisphereLight,
	"RectAreaLight":      KindRectAreaLight,
}

// ParseKind classifies a host type name. Unknown names that contain "Light"
// (case-sensitive) are treated as lights; everything else is a plain Object3D.
func ParseKind(typeName string) Kind {
	if kind, ok := kindsByType[typeName]; ok {
		return kind
	}
	if strings.Contains(typeName, "Light") {
		return KindLight
	}
	return KindObject3D
}

// IsLight reports whether the kind carries color and intensity.
func (k Kind) IsLight() bool {
	switch k {
	case KindAmbientLight, KindDirectionalLight, KindPointLight, KindSpotLight,
		KindHemisphereLight, KindRectAreaLight, KindLight:
		return true
	case KindObject3D, KindScene, KindGroup, KindMesh, KindSkinnedMesh, KindInstancedMesh,
		KindBone, KindPerspectiveCamera, KindOrthographicCamera:
		return false
	default:
		return false
	}
}

func (k Kind) String() string {
	switch k {
	case KindObject3D:
		return "Object3D"
	case KindScene:
		return "Scene"
	case KindGroup:
		return "Group"
	case KindMesh:
		return "Mesh"
	case KindSkinnedMesh:
		return "SkinnedMesh"
	case KindInstancedMesh:
		return "InstancedMesh"
	case KindBone:
		return "Bone"
	case KindPerspectiveCamera:
		return "PerspectiveCamera"
	case KindOrthographicCamera:
		return "OrthographicCamera"
	case KindAmbientLight:
		return "AmbientLight"
	case KindDirectionalLight:
		return "DirectionalLight"
	case KindPointLight:
		return "PointLight"
	case KindSpotLight:
		return "SpotLight"
	case KindHemisphereLight:
		return "HemisphereLight"
	case KindRectAreaLight:
		return "RectAreaLight"
	case KindLight:
		return "Light"
	default:
		return "unknown"
	}
}
