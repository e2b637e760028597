package assets

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/png"

	"github.com/anthonynsimon/bild/transform"
	"github.com/h2non/filetype"

	"github.com/slighter12/tres-devtools-go/scene"
)

// DefaultPreviewMaxEdge bounds the longest side of canvas captures, in pixels.
const DefaultPreviewMaxEdge = 128

// Previewer produces best-effort preview references for textures.
type Previewer struct {
	// MaxEdge bounds canvas captures; zero disables downscaling.
	MaxEdge int
	// Disabled skips canvas and inline-data capture; URL sources still pass through.
	Disabled bool
}

// Capture returns a preview reference for tex: its source URL, or a data URL
// captured from a canvas or inline image bytes.
func (p Previewer) Capture(tex *scene.Texture) (string, error) {
	if tex == nil || tex.Image == nil {
		return "", newCaptureError(CaptureKindNoImage, "texture has no backing image", nil)
	}
	img := tex.Image
	if img.Src != "" {
		return img.Src, nil
	}
	if img.Canvas != nil && !p.Disabled {
		return p.captureCanvas(img.Canvas)
	}
	if len(img.Data) > 0 && !p.Disabled {
		return encodedDataURL(img.Data)
	}
	if img.CurrentSrc != "" {
		return img.CurrentSrc, nil
	}
	return "", newCaptureError(CaptureKindNoSource, "texture image has no previewable source", nil)
}

func (p Previewer) captureCanvas(canvas scene.Canvas) (url string, err error) {
	// A panicking snapshot degrades like any other capture failure.
	defer func() {
		if r := recover(); r != nil {
			url = ""
			err = newCaptureError(CaptureKindCaptureFailed, "canvas snapshot panicked", nil)
		}
	}()

	src, err := canvas.Snapshot()
	if err != nil {
		return "", newCaptureError(CaptureKindCaptureFailed, "canvas snapshot failed", err)
	}
	if src == nil {
		return "", newCaptureError(CaptureKindCaptureFailed, "canvas snapshot returned no image", nil)
	}

	if w, h, ok := fitWithin(src.Bounds(), p.MaxEdge); ok {
		src = transform.Resize(src, w, h, transform.Linear)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		return "", newCaptureError(CaptureKindCaptureFailed, "encode canvas preview", err)
	}
	return dataURL("image/png", buf.Bytes()), nil
}

// fitWithin scales bounds so the longest edge is maxEdge, preserving aspect.
// ok is false when no resize is needed.
func fitWithin(bounds image.Rectangle, maxEdge int) (w, h int, ok bool) {
	w, h = bounds.Dx(), bounds.Dy()
	if maxEdge <= 0 || w <= 0 || h <= 0 || (w <= maxEdge && h <= maxEdge) {
		return w, h, false
	}
	if w >= h {
		h = max(1, h*maxEdge/w)
		w = maxEdge
	} else {
		w = max(1, w*maxEdge/h)
		h = maxEdge
	}
	return w, h, true
}

func encodedDataURL(data []byte) (string, error) {
	kind, err := filetype.Match(data)
	if err != nil {
		return "", newCaptureError(CaptureKindUnsupportedData, "sniff inline image data", err)
	}
	if kind == filetype.Unknown || !filetype.IsImage(data) {
		return "", newCaptureError(CaptureKindUnsupportedData, "inline data is not a known image format", nil)
	}
	return dataURL(kind.MIME.Value, data), nil
}

func dataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}
