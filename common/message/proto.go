// Package message records frames as protobuf Structs and frames them into a
// length-prefixed trace stream.
package message

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"gonoisesurface/common/rw"
	"gonoisesurface/loop"
)

var ErrTruncated = errors.New("message: truncated trace")

func Encode(msg proto.Message) ([]byte, error) {
	data, err := proto.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("message: encode: %w", err)
	}
	return data, nil
}

func Decode(data []byte, msg proto.Message) error {
	if err := proto.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("message: decode: %w", err)
	}
	return nil
}

// FrameRecord describes one rendered frame: its tick, geometry, uniforms and the
// loop counters at that point.
func FrameRecord(f *loop.Frame, stats loop.Stats) (*structpb.Struct, error) {
	rec := map[string]any{
		"tick":          float64(f.Tick),
		"geometry":      f.Geometry.String(),
		"vertices":      len(f.Samples),
		"vertex_faults": f.Faults,
		"uniforms":      f.Uniforms.Fields(),
		"stats": map[string]any{
			"ticks":         float64(stats.Ticks),
			"reused_frames": float64(stats.ReusedFrames),
			"render_errors": float64(stats.RenderErrors),
			"swaps":         float64(stats.Swaps),
			"leaked":        stats.Leaked,
		},
	}
	s, err := structpb.NewStruct(rec)
	if err != nil {
		return nil, fmt.Errorf("message: frame %d: %w", f.Tick, err)
	}
	return s, nil
}

// TraceWriter appends length-prefixed messages to w through a buffer. Records are
// only complete on w after Close.
type TraceWriter struct {
	w *bufio.Writer
	c io.Closer
	n int
}

// NewTraceWriter buffers writes to w. If w is an io.Closer, Close closes it too.
func NewTraceWriter(w io.Writer) *TraceWriter {
	t := &TraceWriter{w: bufio.NewWriter(w)}
	if c, ok := w.(io.Closer); ok {
		t.c = c
	}
	return t
}

// Close flushes the buffered records and closes the underlying writer. Either
// failure means the trace on disk is incomplete.
func (t *TraceWriter) Close() error {
	var errs []error
	if err := t.w.Flush(); err != nil {
		errs = append(errs, fmt.Errorf("message: flush trace after %d records: %w", t.n, err))
	}
	if t.c != nil {
		if err := t.c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (t *TraceWriter) Write(msg proto.Message) error {
	data, err := Encode(msg)
	if err != nil {
		return err
	}
	buf := rw.NewWriter()
	buf.WriteBytes(data)
	if _, err := t.w.Write(buf.GetWriteBytes()); err != nil {
		return fmt.Errorf("message: write record %d: %w", t.n, err)
	}
	t.n++
	return nil
}

// Count is the number of records written.
func (t *TraceWriter) Count() int {
	return t.n
}

// ReadTrace decodes every record of a trace written by TraceWriter.
func ReadTrace(data []byte) ([]*structpb.Struct, error) {
	r := rw.NewReader(data)
	var out []*structpb.Struct
	for r.Size() > 0 {
		n := r.ReadUInt32()
		body := r.ReadBytes(int(n))
		if r.Err() != nil {
			return out, fmt.Errorf("%w after %d records: %w", ErrTruncated, len(out), r.Err())
		}
		s := &structpb.Struct{}
		if err := Decode(body, s); err != nil {
			return out, err
		}
		out = append(out, s)
	}
	return out, nil
}
