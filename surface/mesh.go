package surface

import (
	"context"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"gonoisesurface/common"
	"gonoisesurface/params"
)

// minChunk keeps small meshes on a single goroutine.
const minChunk = 2048

// EvaluateMesh evaluates every position into out, which must be at least as long as
// positions, splitting the work across up to workers goroutines. Vertices are
// independent, so the result does not depend on the split. It returns the number of
// vertices that fell back to their base position.
func (e *Evaluator) EvaluateMesh(ctx context.Context, positions []common.Vec3, u params.Snapshot, out []Sample, workers int) (int, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	n := len(positions)
	chunk := max((n+workers-1)/workers, minChunk)

	var faults atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for lo := 0; lo < n; lo += chunk {
		lo, hi := lo, min(lo+chunk, n)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			bad := 0
			for i := lo; i < hi; i++ {
				s, ok := e.Evaluate(positions[i], u)
				if !ok {
					bad++
				}
				out[i] = s
			}
			faults.Add(int64(bad))
			return nil
		})
	}
	err := g.Wait()
	return int(faults.Load()), err
}
