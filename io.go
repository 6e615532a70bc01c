package handoff

import (
	"context"
	"io"
)

var _ io.ReadWriteCloser = (*Buffer)(nil)

// Write implements io.Writer, blocking until all of p has been accepted. On
// a stream buffer p may be delivered in several pieces; on a discrete buffer
// p is sent as one record. After b is closed, Write reports ErrClosed.
func (b *Buffer) Write(p []byte) (int, error) {
	if b.mode == Discrete {
		return b.send(context.Background(), p, nil)
	}
	var nw int
	for nw < len(p) {
		n, err := b.send(context.Background(), p[nw:], nil)
		nw += n
		if err != nil {
			return nw, err
		}
	}
	return nw, nil
}

// Read implements io.Reader, blocking until data are available. On a
// discrete buffer each Read returns one record. Once b is closed and its
// contents have been drained, Read reports io.EOF.
func (b *Buffer) Read(p []byte) (int, error) {
	n, err := b.receive(context.Background(), p, nil)
	if err == ErrClosed {
		return n, io.EOF
	}
	return n, err
}
