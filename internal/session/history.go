package session

// HistoryCapacity is how many recent overall scores a session keeps.
const HistoryCapacity = 30

// History is a fixed-capacity ring of scores. Once full, each Push
// overwrites the oldest entry.
type History struct {
	buf  [HistoryCapacity]float64
	head int // index of the oldest entry
	n    int
}

// Push appends a score, evicting the oldest when full.
func (h *History) Push(v float64) {
	if h.n < len(h.buf) {
		h.buf[(h.head+h.n)%len(h.buf)] = v
		h.n++
		return
	}
	h.buf[h.head] = v
	h.head = (h.head + 1) % len(h.buf)
}

// Len returns the number of stored scores.
func (h *History) Len() int {
	return h.n
}

// Values returns the stored scores from oldest to newest.
func (h *History) Values() []float64 {
	out := make([]float64, h.n)
	for i := range out {
		out[i] = h.buf[(h.head+i)%len(h.buf)]
	}
	return out
}

// Last returns up to k of the most recent scores, oldest first.
func (h *History) Last(k int) []float64 {
	vals := h.Values()
	k = max(k, 0)
	if k < len(vals) {
		vals = vals[len(vals)-k:]
	}
	return vals
}

// Mean returns the average stored score, or 0 when empty.
func (h *History) Mean() float64 {
	if h.n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < h.n; i++ {
		sum += h.buf[(h.head+i)%len(h.buf)]
	}
	return sum / float64(h.n)
}

// Reset empties the history.
func (h *History) Reset() {
	h.head, h.n = 0, 0
}
