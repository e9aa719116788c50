package message

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"

	"gonoisesurface/geometry"
	"gonoisesurface/loop"
	"gonoisesurface/params"
	"gonoisesurface/surface"
)

func testFrame(t *testing.T, tick uint64) *loop.Frame {
	t.Helper()
	m, err := geometry.BuildPlane(geometry.PlaneParams{Width: 1, Height: 1, WidthSegments: 1, HeightSegments: 1})
	require.NoError(t, err)
	u := params.DefaultSnapshot()
	u.Time = 0.01 * float32(tick)
	return &loop.Frame{
		Tick:     tick,
		Uniforms: u,
		Geometry: geometry.NewHandle(3, geometry.Plane, m),
		Mesh:     m,
		Samples:  make([]surface.Sample, m.VertexCount()),
	}
}

func TestTraceRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	tw := NewTraceWriter(&buf)
	for tick := uint64(1); tick <= 3; tick++ {
		rec, err := FrameRecord(testFrame(t, tick), loop.Stats{Ticks: tick})
		require.NoError(t, err)
		require.NoError(t, tw.Write(rec))
	}
	assert.Equal(t, 3, tw.Count())
	require.NoError(t, tw.Close())

	recs, err := ReadTrace(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, recs, 3)

	last := recs[2].AsMap()
	assert.Equal(t, float64(3), last["tick"])
	assert.Equal(t, "Plane#3", last["geometry"])
	assert.Equal(t, float64(4), last["vertices"])
	uniforms := last["uniforms"].(map[string]any)
	assert.InDelta(t, 0.03, uniforms[params.Time], 1e-6)
	assert.Len(t, uniforms[params.Color1], 4)
	stats := last["stats"].(map[string]any)
	assert.Equal(t, float64(3), stats["ticks"])
}

func TestReadTraceTruncated(t *testing.T) {
	var buf bytes.Buffer
	rec, err := FrameRecord(testFrame(t, 1), loop.Stats{})
	require.NoError(t, err)
	tw := NewTraceWriter(&buf)
	require.NoError(t, tw.Write(rec))
	require.NoError(t, tw.Close())

	data := buf.Bytes()
	recs, err := ReadTrace(data[:len(data)-2])
	assert.ErrorIs(t, err, ErrTruncated)
	assert.Empty(t, recs)
}

type failingFile struct {
	closed bool
}

func (f *failingFile) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func (f *failingFile) Close() error {
	f.closed = true
	return nil
}

func TestTraceCloseReportsLostRecords(t *testing.T) {
	f := &failingFile{}
	tw := NewTraceWriter(f)
	rec, err := FrameRecord(testFrame(t, 1), loop.Stats{})
	require.NoError(t, err)
	// small records sit in the buffer, so the failure only shows up on Close
	require.NoError(t, tw.Write(rec))

	err = tw.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.True(t, f.closed)
}

func TestDecodeGarbage(t *testing.T) {
	assert.Error(t, Decode([]byte{0xff, 0xff, 0xff}, &structpb.Struct{}))
}
