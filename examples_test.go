package handoff_test

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/taskbuf/handoff"
)

func ExampleNew() {
	b, err := handoff.New(16, handoff.Discrete, nil)
	if err != nil {
		log.Fatalf("New: %v", err)
	}
	defer b.Close()

	for _, rec := range []string{"ab", "cde", "f"} {
		b.Send([]byte(rec), 0)
	}
	buf := make([]byte, 8)
	for !b.IsEmpty() {
		n, _ := b.Receive(buf, 0)
		fmt.Printf("%q\n", buf[:n])
	}
	// Output:
	// "ab"
	// "cde"
	// "f"
}

func ExampleBuffer_Receive_stream() {
	b, err := handoff.New(100, handoff.Stream, &handoff.Options{TriggerLevel: 10})
	if err != nil {
		log.Fatalf("New: %v", err)
	}
	defer b.Close()

	b.Send([]byte{0, 1, 2, 3}, 0)

	// Fewer bytes than the trigger level are available, so the reader waits
	// out its full wait and then takes what there is.
	buf := make([]byte, 50)
	n, err := b.Receive(buf, 10*time.Millisecond)
	fmt.Println(n, err, buf[:n])
	// Output:
	// 4 <nil> [0 1 2 3]
}

func ExampleHeap() {
	h := handoff.NewHeap(100)
	size := 128
	for {
		b, err := handoff.New(size, handoff.Stream, &handoff.Options{Heap: h})
		var aerr *handoff.AllocationError
		if errors.As(err, &aerr) {
			fmt.Printf("%d bytes do not fit (%d available)\n", aerr.Requested, aerr.Available)
			size /= 2
			continue
		} else if err != nil {
			log.Fatalf("New: %v", err)
		}
		fmt.Printf("Created a buffer of %d bytes\n", b.Cap())
		break
	}
	// Output:
	// 128 bytes do not fit (100 available)
	// Created a buffer of 64 bytes
}
