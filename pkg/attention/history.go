package attention

// History is a fixed-capacity ring of recent scores, oldest evicted first.
// It only feeds visualization; the integrator never reads it.
type History struct {
	buf  []float64
	head int // index of the oldest value
}

// NewHistory returns a full buffer of capacity copies of seed.
func NewHistory(capacity int, seed float64) *History {
	if capacity <= 0 {
		capacity = 1
	}
	buf := make([]float64, capacity)
	for i := range buf {
		buf[i] = seed
	}
	return &History{buf: buf}
}

// Push appends a score, evicting the oldest.
func (h *History) Push(score float64) {
	h.buf[h.head] = score
	h.head = (h.head + 1) % len(h.buf)
}

// Len returns the capacity, which is also the number of held values.
func (h *History) Len() int {
	return len(h.buf)
}

// Latest returns the most recently pushed value.
func (h *History) Latest() float64 {
	return h.buf[(h.head+len(h.buf)-1)%len(h.buf)]
}

// Values returns a copy of the buffer, oldest first.
func (h *History) Values() []float64 {
	out := make([]float64, 0, len(h.buf))
	out = append(out, h.buf[h.head:]...)
	return append(out, h.buf[:h.head]...)
}
