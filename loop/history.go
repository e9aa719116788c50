package loop

import "time"

const maxHistory = 256

// History keeps the most recent tick durations in a ring.
type History struct {
	samples [maxHistory]time.Duration
	head    int
	n       int
}

func (h *History) Add(d time.Duration) {
	h.head = (h.head + maxHistory - 1) % maxHistory
	h.samples[h.head] = d
	h.n = min(h.n+1, maxHistory)
}

func (h *History) Len() int {
	return h.n
}

// Sample returns the i-th most recent duration, 0 being the newest.
func (h *History) Sample(i int) time.Duration {
	return h.samples[(h.head+i)%maxHistory]
}

func (h *History) Max() time.Duration {
	var v time.Duration
	for i := 0; i < h.n; i++ {
		v = max(v, h.Sample(i))
	}
	return v
}

func (h *History) Average() time.Duration {
	if h.n == 0 {
		return 0
	}
	var sum time.Duration
	for i := 0; i < h.n; i++ {
		sum += h.Sample(i)
	}
	return sum / time.Duration(h.n)
}
