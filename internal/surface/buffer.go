// pattern: Imperative Shell

package surface

import "sync"

// maxOutputBytes bounds how much terminal scrollback a session keeps in
// memory. Older output is trimmed from the front.
const maxOutputBytes = 256 << 10

// OutputBuffer is a bounded capture of a session's combined output with
// fan-out to live subscribers. It is the io.Writer handed to the pty
// supervisor; the TUI renders its tail and the web bridge streams its
// deltas.
type OutputBuffer struct {
	mu   sync.Mutex
	data []byte
	subs map[chan []byte]struct{}
}

// NewOutputBuffer returns an empty output buffer.
func NewOutputBuffer() *OutputBuffer {
	return &OutputBuffer{subs: make(map[chan []byte]struct{})}
}

// Write appends output, trims the front past the retention bound, and
// fans the chunk out to subscribers. Slow subscribers drop chunks rather
// than block the pty reader.
func (b *OutputBuffer) Write(p []byte) (int, error) {
	chunk := make([]byte, len(p))
	copy(chunk, p)

	b.mu.Lock()
	b.data = append(b.data, chunk...)
	if over := len(b.data) - maxOutputBytes; over > 0 {
		b.data = b.data[over:]
	}
	for ch := range b.subs {
		select {
		case ch <- chunk:
		default:
		}
	}
	b.mu.Unlock()

	return len(p), nil
}

// Bytes returns a copy of the retained output.
func (b *OutputBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]byte, len(b.data))
	copy(out, b.data)
	return out
}

// Subscribe registers a live output channel. The returned cancel func
// unregisters and closes it, ending any range loop draining the channel.
func (b *OutputBuffer) Subscribe() (<-chan []byte, func()) {
	ch := make(chan []byte, 64)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subs[ch]; ok {
			delete(b.subs, ch)
			close(ch)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}
