package handoff

// A ring is a fixed-size circular byte region. The caller is responsible for
// synchronization and for never putting more than free() bytes or getting
// more than used bytes.
type ring struct {
	buf  []byte
	head int // offset of the oldest byte
	used int // number of bytes held
}

func newRing(size int) *ring { return &ring{buf: make([]byte, size)} }

func (r *ring) size() int { return len(r.buf) }
func (r *ring) free() int { return len(r.buf) - r.used }

// tail returns the offset at which the next byte will be written.
func (r *ring) tail() int {
	if len(r.buf) == 0 {
		return 0
	}
	return (r.head + r.used) % len(r.buf)
}

// put appends p to the ring, wrapping around the end of the region.
func (r *ring) put(p []byte) {
	t := r.tail()
	n := copy(r.buf[t:], p)
	copy(r.buf, p[n:])
	r.used += len(p)
}

// get removes len(p) bytes from the front of the ring into p.
func (r *ring) get(p []byte) {
	n := copy(p, r.buf[r.head:])
	copy(p[n:], r.buf)
	r.used -= len(p)
	if r.used == 0 {
		r.head = 0
	} else {
		r.head = (r.head + len(p)) % len(r.buf)
	}
}

func (r *ring) reset() { r.head, r.used = 0, 0 }
