package ui

import (
	"fmt"
	"time"

	"gonoisesurface/loop"
)

func statsText(s loop.Stats, fragmentFaults uint64) string {
	text := fmt.Sprintf("ticks %d  swaps %d\nevaluation %v avg, %v max\nfaults: %d vertex, %d fragment",
		s.Ticks, s.Swaps, s.EvalAvg.Round(time.Microsecond), s.EvalMax.Round(time.Microsecond), s.VertexFaults, fragmentFaults)
	if s.ReusedFrames > 0 || s.RenderErrors > 0 {
		text += fmt.Sprintf("\nreused frames %d  render errors %d", s.ReusedFrames, s.RenderErrors)
	}
	if s.Leaked > 0 {
		text += fmt.Sprintf("\nleaked handles %d", s.Leaked)
	}
	return text
}
