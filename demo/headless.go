package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"gonoisesurface/common"
	"gonoisesurface/common/message"
	"gonoisesurface/geometry"
	"gonoisesurface/loop"
	"gonoisesurface/raster"
)

// frameWriter wraps the software renderer and saves every frame it draws, plus an
// optional trace record.
type frameWriter struct {
	*raster.Renderer
	dir   string
	log   *zap.Logger
	trace *message.TraceWriter
	stats func() loop.Stats

	last *geometry.Mesh
}

func (w *frameWriter) Render(f *loop.Frame) error {
	if err := w.Renderer.Render(f); err != nil {
		return err
	}
	path := filepath.Join(w.dir, fmt.Sprintf("frame_%05d.png", f.Tick))
	if err := writePNG(path, w.Renderer); err != nil {
		return err
	}
	if w.trace != nil {
		rec, err := message.FrameRecord(f, w.stats())
		if err != nil {
			return err
		}
		if err := w.trace.Write(rec); err != nil {
			return err
		}
	}
	w.keepMesh(f)
	return nil
}

// keepMesh copies the displaced vertices of f.
func (w *frameWriter) keepMesh(f *loop.Frame) {
	m := &geometry.Mesh{
		Positions: make([]common.Vec3, len(f.Samples)),
		UVs:       f.Mesh.UVs,
		Indices:   f.Mesh.Indices,
	}
	for i, s := range f.Samples {
		m.Positions[i] = s.Position
	}
	w.last = m
}

func writePNG(path string, r *raster.Renderer) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(file)
	if err := png.Encode(bw, r.Image()); err != nil {
		file.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func (a *app) runHeadless(ctx context.Context, meshOut string) (err error) {
	if err := os.MkdirAll(a.cfg.Out, 0o755); err != nil {
		_ = a.initial.Dispose()
		return err
	}
	r, err := a.newRaster()
	if err != nil {
		return err
	}
	w := &frameWriter{Renderer: r, dir: a.cfg.Out, log: a.log}

	if a.cfg.Trace.Enabled {
		if err := os.MkdirAll(a.cfg.Trace.Dir, 0o755); err != nil {
			_ = a.initial.Dispose()
			return err
		}
		tf, ferr := os.Create(filepath.Join(a.cfg.Trace.Dir, "frames.pb"))
		if ferr != nil {
			_ = a.initial.Dispose()
			return ferr
		}
		w.trace = message.NewTraceWriter(tf)
		defer func() {
			if cerr := w.trace.Close(); cerr != nil {
				err = errors.Join(err, cerr)
			}
		}()
	}

	lp, err := a.newLoop(w)
	if err != nil {
		return err
	}
	w.stats = lp.Stats
	if err := lp.Start(); err != nil {
		return err
	}
	defer lp.Stop()

	for i := 0; i < a.cfg.Frames; i++ {
		if err := lp.Tick(ctx); err != nil {
			if ctx.Err() != nil {
				a.log.Warn("interrupted", zap.Int("frames", i))
				break
			}
			return err
		}
	}
	stats := lp.Stats()
	if stats.RenderErrors > 0 {
		return fmt.Errorf("%d of %d frames failed to render", stats.RenderErrors, stats.Ticks)
	}
	a.log.Info("frames written",
		zap.String("dir", a.cfg.Out),
		zap.Uint64("frames", stats.Ticks),
		zap.Uint64("fragment_faults", r.FragmentFaults()))
	if w.trace != nil {
		a.log.Info("trace written", zap.Int("records", w.trace.Count()))
	}

	if meshOut != "" && w.last != nil {
		data, err := w.last.MarshalBinary()
		if err != nil {
			return err
		}
		if err := os.WriteFile(meshOut, data, 0o644); err != nil {
			return err
		}
		a.log.Info("mesh written", zap.String("path", meshOut), zap.Int("vertices", w.last.VertexCount()))
	}
	return nil
}
