package devtools

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/slighter12/tres-devtools-go/assets"
	"github.com/slighter12/tres-devtools-go/mirror"
	"github.com/slighter12/tres-devtools-go/scene"
	"github.com/slighter12/tres-devtools-go/telemetry"
)

// MessageType discriminates host messages.
type MessageType string

const (
	TypeContext   MessageType = "context"
	TypeAssetLoad MessageType = "asset-load"
)

// ContextPayload carries the current scene and per-frame telemetry.
type ContextPayload struct {
	Scene    *scene.Node            `json:"scene"`
	Renderer telemetry.RendererInfo `json:"renderer"`
	Frame    *telemetry.Frame       `json:"frame,omitempty"`
}

// Message is one typed event from the host engine. Exactly one payload is set
// for known types; unknown types carry none and are ignored by the store.
type Message struct {
	Type      MessageType
	Context   *ContextPayload
	AssetLoad *assets.LoadEvent
}

// ContextMessage wraps a context payload.
func ContextMessage(payload ContextPayload) Message {
	return Message{Type: TypeContext, Context: &payload}
}

// AssetLoadMessage wraps a load event.
func AssetLoadMessage(event assets.LoadEvent) Message {
	return Message{Type: TypeAssetLoad, AssetLoad: &event}
}

type wireMessage struct {
	Type MessageType     `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// UnmarshalJSON decodes {"type": ..., "data": ...}. Unknown types decode
// without error so newer hosts stay compatible.
func (m *Message) UnmarshalJSON(data []byte) error {
	var wire wireMessage
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("decode message envelope: %w", err)
	}
	*m = Message{Type: wire.Type}
	if len(wire.Data) == 0 || string(wire.Data) == "null" {
		return nil
	}

	switch wire.Type {
	case TypeContext:
		var payload ContextPayload
		if err := json.Unmarshal(wire.Data, &payload); err != nil {
			return fmt.Errorf("decode context payload: %w", err)
		}
		m.Context = &payload
	case TypeAssetLoad:
		var event assets.LoadEvent
		if err := json.Unmarshal(wire.Data, &event); err != nil {
			return fmt.Errorf("decode asset-load payload: %w", err)
		}
		m.AssetLoad = &event
	}
	return nil
}

func (m Message) MarshalJSON() ([]byte, error) {
	var payload any
	switch {
	case m.Context != nil:
		payload = m.Context
	case m.AssetLoad != nil:
		payload = m.AssetLoad
	}
	wire := wireMessage{Type: m.Type}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		wire.Data = data
	}
	return json.Marshal(wire)
}

// SceneState is the mirrored scene as the observer sees it.
type SceneState struct {
	Objects  int             `json:"objects"`
	Rebuilds uint64          `json:"rebuilds"`
	Graph    *mirror.Node    `json:"graph"`
	Assets   []assets.Record `json:"assets"`
}

// RendererState nests renderer counters the way the panel expects them.
type RendererState struct {
	Info telemetry.RendererInfo `json:"info"`
}

// State is the read model exposed to observer panels.
type State struct {
	Scene     SceneState             `json:"scene"`
	FPS       telemetry.SamplerState `json:"fps"`
	Memory    telemetry.MemoryState  `json:"memory"`
	Renderer  RendererState          `json:"renderer"`
	Version   uint64                 `json:"version"`
	UpdatedAt time.Time              `json:"updated_at"`
}
