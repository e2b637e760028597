package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slighter12/tres-devtools-go/devtools"
)

const recorded = `{"type":"context","data":{"scene":{"uuid":"root-1","type":"Scene","name":"root","children":[{"uuid":"m-1","type":"Mesh","name":"Crate","material":{"uuid":"mat-1","type":"MeshStandardMaterial","name":"Wood","maps":{"map":{"uuid":"tex-1","name":"crate","format":1023,"image":{"width":32,"height":32,"src":"https://cdn.example.com/crate.jpg"}}}},"geometry":{"uuid":"g-1","type":"BoxGeometry","vertex_count":24,"index_count":36}}]},"renderer":{"render":{"calls":3,"triangles":12}},"frame":{"fps":60,"memory_mb":20}}}
{"type":"asset-load","data":{"kind":"geometry","geometry":{"uuid":"g-1","type":"BoxGeometry","vertex_count":24,"index_count":36}}}
{"type":"context","data":{"scene":{"uuid":"root-1","type":"Scene","name":"root","children":[{"uuid":"m-1","type":"Mesh","name":"Crate"}]},"frame":{"fps":50,"memory_mb":30}}}
`

func writeSession(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(recorded), 0644))
	return path
}

func TestReplayFileBuildsState(t *testing.T) {
	state, stats, err := ReplayFile(writeSession(t), devtools.Options{})
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Published)
	assert.Equal(t, 0, stats.Skipped)
	assert.Equal(t, uint64(3), state.Version)
	assert.Equal(t, 2, state.Scene.Objects)
	assert.Equal(t, uint64(1), state.Scene.Rebuilds)
	require.Len(t, state.Scene.Assets, 3)
	assert.Equal(t, "tex-1", state.Scene.Assets[0].ID)
	assert.Equal(t, "RGB", state.Scene.Assets[0].Format)
	assert.Equal(t, "g-1", state.Scene.Assets[2].ID)
	assert.Equal(t, 50.0, state.FPS.Value)
	assert.Equal(t, 55.0, state.FPS.Average)
	assert.Equal(t, 30.0, state.Memory.Max)
}

func TestReplayFileMissing(t *testing.T) {
	_, _, err := ReplayFile(filepath.Join(t.TempDir(), "absent.jsonl"), devtools.Options{})
	assert.Error(t, err)
}

func TestWriteReplaySummary(t *testing.T) {
	state, stats, err := ReplayFile(writeSession(t), devtools.Options{})
	require.NoError(t, err)

	var buf bytes.Buffer
	WriteReplaySummary(&buf, state, stats)
	out := buf.String()

	for _, want := range []string{"Metric", "Rebuilds", "3 published, 0 skipped", "crate.jpg", "BoxGeometry", "TOTAL"} {
		assert.True(t, strings.Contains(out, want), "summary missing %q:\n%s", want, out)
	}
}
