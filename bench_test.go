package handoff_test

import (
	"testing"

	"github.com/taskbuf/handoff"
)

func benchmarkTransfer(b *testing.B, mode handoff.Mode, size int) {
	// Measure the cost of handing records from one goroutine to another
	// through a buffer that holds only a few of them.
	buf, err := handoff.New(4*size, mode, nil)
	if err != nil {
		b.Fatalf("New: %v", err)
	}
	defer buf.Close()

	go func() {
		msg := make([]byte, size)
		for {
			if _, err := buf.Send(msg, handoff.Forever); err != nil {
				return
			}
		}
	}()

	dst := make([]byte, size)
	b.SetBytes(int64(size))
	for b.Loop() {
		if _, err := buf.Receive(dst, handoff.Forever); err != nil {
			b.Fatalf("Receive: %v", err)
		}
	}
}

func BenchmarkDiscrete(b *testing.B) {
	b.Run("16", func(b *testing.B) { benchmarkTransfer(b, handoff.Discrete, 16) })
	b.Run("1024", func(b *testing.B) { benchmarkTransfer(b, handoff.Discrete, 1024) })
}

func BenchmarkStream(b *testing.B) {
	b.Run("16", func(b *testing.B) { benchmarkTransfer(b, handoff.Stream, 16) })
	b.Run("1024", func(b *testing.B) { benchmarkTransfer(b, handoff.Stream, 1024) })
}
