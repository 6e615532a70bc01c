// Package testutil defines internal support code for writing tests.
package testutil

import (
	"testing"

	"github.com/taskbuf/handoff"
)

// MustNew constructs a buffer and fails t if that reports an error. The
// buffer is closed when t completes.
func MustNew(t testing.TB, capacity int, mode handoff.Mode, opts *handoff.Options) *handoff.Buffer {
	t.Helper()
	b, err := handoff.New(capacity, mode, opts)
	if err != nil {
		t.Fatalf("New(%d, %v): unexpected error: %v", capacity, mode, err)
	}
	t.Cleanup(func() { b.Close() })
	return b
}

// MustSend sends data to b without waiting, and fails t unless all of it was
// accepted.
func MustSend(t testing.TB, b *handoff.Buffer, data []byte) {
	t.Helper()
	if n, err := b.Send(data, 0); err != nil || n != len(data) {
		t.Fatalf("Send(%q): got (%d, %v), want (%d, nil)", data, n, err, len(data))
	}
}

// Records receives from b without waiting until it is empty, and returns the
// records or runs of bytes received, each at most size bytes long. It fails t
// if a receive reports an error.
func Records(t testing.TB, b *handoff.Buffer, size int) []string {
	t.Helper()
	var out []string
	buf := make([]byte, size)
	for {
		n, err := b.Receive(buf, 0)
		if err != nil {
			t.Fatalf("Receive: unexpected error: %v", err)
		} else if n == 0 {
			return out
		}
		out = append(out, string(buf[:n]))
	}
}
