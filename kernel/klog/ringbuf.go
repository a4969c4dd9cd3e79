package klog

import "io"

// earlyBufferSize is large enough to hold a couple of screens worth of
// 80x25 text-mode output.
const earlyBufferSize = 4096

// ringBuffer retains the most recent earlyBufferSize bytes written to it.
// Log output is captured here until an output sink is attached; once the
// buffer fills up the oldest bytes are overwritten.
type ringBuffer struct {
	data   [earlyBufferSize]byte
	start  int
	length int
}

// Write appends p to the buffer, discarding the oldest bytes on overflow.
// It never fails.
func (rb *ringBuffer) Write(p []byte) (int, error) {
	for _, b := range p {
		rb.data[(rb.start+rb.length)%earlyBufferSize] = b
		if rb.length < earlyBufferSize {
			rb.length++
			continue
		}
		rb.start = (rb.start + 1) % earlyBufferSize
	}

	return len(p), nil
}

// Read drains up to len(p) of the oldest buffered bytes into p. It returns
// io.EOF once the buffer is empty.
func (rb *ringBuffer) Read(p []byte) (int, error) {
	if rb.length == 0 {
		if len(p) == 0 {
			return 0, nil
		}
		return 0, io.EOF
	}

	n := len(p)
	if n > rb.length {
		n = rb.length
	}

	for copied := 0; copied < n; {
		end := rb.start + (n - copied)
		if end > earlyBufferSize {
			end = earlyBufferSize
		}
		copied += copy(p[copied:], rb.data[rb.start:end])
		rb.start = end % earlyBufferSize
	}

	rb.length -= n
	if rb.length == 0 {
		rb.start = 0
	}

	return n, nil
}

// Len returns the number of unread bytes.
func (rb *ringBuffer) Len() int {
	return rb.length
}

// Reset discards all buffered bytes.
func (rb *ringBuffer) Reset() {
	rb.start, rb.length = 0, 0
}
