package loop

import (
	"fmt"
	"time"
)

type State int32

const (
	Idle State = iota
	Running
	// Disposing is entered while a geometry handle is being released, either during
	// a swap (the loop then returns to Running) or on Stop.
	Disposing
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Disposing:
		return "disposing"
	case Stopped:
		return "stopped"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// Stats counts what happened since the loop started.
type Stats struct {
	Ticks           uint64
	VertexFaults    uint64
	ReusedFrames    uint64
	RenderErrors    uint64
	Swaps           uint64
	ReleaseFailures uint64
	Leaked          int
	Resizes         uint64
	// evaluation time over the recent ticks
	EvalAvg time.Duration
	EvalMax time.Duration
}
