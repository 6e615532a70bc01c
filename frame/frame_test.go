package frame_test

import (
	"context"
	"errors"
	"io"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/handler"
	"github.com/fortytw2/leaktest"
	"github.com/taskbuf/handoff"
	"github.com/taskbuf/handoff/frame"
)

func newPipe(t *testing.T, framing frame.Framing) (client, server frame.Channel) {
	t.Helper()
	client, server, err := frame.Pipe(framing, 1024, nil)
	if err != nil {
		t.Fatalf("Pipe: unexpected error: %v", err)
	}
	return client, server
}

func testSendRecv(t *testing.T, s, r frame.Channel, msg string) {
	t.Helper()
	var wg sync.WaitGroup
	var sendErr, recvErr error
	var data []byte

	wg.Add(2)
	go func() {
		defer wg.Done()
		data, recvErr = r.Recv()
	}()
	go func() {
		defer wg.Done()
		sendErr = s.Send([]byte(msg))
	}()
	wg.Wait()

	if sendErr != nil {
		t.Errorf("Send(%q): unexpected error: %v", msg, sendErr)
	}
	if recvErr != nil {
		t.Errorf("Recv(): unexpected error: %v", recvErr)
	}
	if got := string(data); got != msg {
		t.Errorf("Recv():\ngot  %#q\nwant %#q", got, msg)
	}
}

var tests = []struct {
	name    string
	framing frame.Framing
}{
	{"Header", frame.Header("binary/octet-stream")},
	{"Line", frame.Line},
	{"NoMIME", frame.Header("")},
	{"Varint", frame.Varint},
}

var messages = []string{
	`["Full plate and packing steel"]`,
	`{"slogan":"Jump on your sword, evil!"}`,
	"",
	"17",
	"    ",
	"xy z z y",

	// Include a record much larger than the buffers, so that sends and
	// receives must proceed in pieces.
	strings.Repeat("ABCDefghIJKLmnopQRSTuvwxYZ!", 800),
}

func TestChannelTypes(t *testing.T) {
	defer leaktest.Check(t)()

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			lhs, rhs := newPipe(t, test.framing)
			defer lhs.Close()
			defer rhs.Close()

			for i, msg := range messages {
				n := strconv.Itoa(i + 1)
				t.Run("LR-"+n, func(t *testing.T) { testSendRecv(t, lhs, rhs, msg) })
				t.Run("RL-"+n, func(t *testing.T) { testSendRecv(t, rhs, lhs, msg) })
			}
		})
	}
}

func TestLineStripsNewlines(t *testing.T) {
	lhs, rhs := newPipe(t, frame.Line)
	defer rhs.Close()

	if err := lhs.Send([]byte("one\ntwo\n")); err != nil {
		t.Fatalf("Send: unexpected error: %v", err)
	}
	got, err := rhs.Recv()
	if err != nil {
		t.Fatalf("Recv: unexpected error: %v", err)
	}
	if string(got) != "onetwo" {
		t.Errorf("Recv: got %q, want %q", got, "onetwo")
	}
}

func TestCloseDrains(t *testing.T) {
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			lhs, rhs := newPipe(t, test.framing)
			defer rhs.Close()

			for _, msg := range []string{"alpha", "bravo"} {
				if err := lhs.Send([]byte(msg)); err != nil {
					t.Fatalf("Send %q: unexpected error: %v", msg, err)
				}
			}
			lhs.Close()
			if err := lhs.Send([]byte("late")); !errors.Is(err, handoff.ErrClosed) {
				t.Errorf("Send after Close: got %v, want %v", err, handoff.ErrClosed)
			}

			for _, want := range []string{"alpha", "bravo"} {
				got, err := rhs.Recv()
				if err != nil || string(got) != want {
					t.Errorf("Recv: got (%q, %v), want (%q, nil)", got, err, want)
				}
			}
			if got, err := rhs.Recv(); err != io.EOF {
				t.Errorf("Recv after drain: got (%q, %v), want io.EOF", got, err)
			}
		})
	}
}

func TestPipeHeap(t *testing.T) {
	h := handoff.NewHeap(100)
	if _, _, err := frame.Pipe(frame.Line, 60, &handoff.Options{Heap: h}); err == nil {
		t.Error("Pipe larger than heap did not fail")
	}
	if got := h.Available(); got != 100 {
		t.Errorf("Available after failed Pipe: got %d, want 100", got)
	}
	lhs, rhs, err := frame.Pipe(frame.Line, 50, &handoff.Options{Heap: h})
	if err != nil {
		t.Fatalf("Pipe: unexpected error: %v", err)
	}
	lhs.Close()
	rhs.Close()
	if got := h.Available(); got != 100 {
		t.Errorf("Available after Close: got %d, want 100", got)
	}
}

func TestByName(t *testing.T) {
	for _, name := range []string{"line", "varint", "header:text/plain", "header:"} {
		if frame.ByName(name) == nil {
			t.Errorf("ByName(%q): got nil, want a framing", name)
		}
	}
	if f := frame.ByName("carrier-pigeon"); f != nil {
		t.Error("ByName(carrier-pigeon): got a framing, want nil")
	}
}

type echoReq struct {
	Text string `json:"text"`
}

func TestJRPC2(t *testing.T) {
	defer leaktest.Check(t)()

	payload := strings.Repeat("0123456789", 50)
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			// The pipe is smaller than a request, so every message crosses the
			// buffers in pieces.
			cch, sch, err := frame.Pipe(test.framing, 64, nil)
			if err != nil {
				t.Fatalf("Pipe: unexpected error: %v", err)
			}
			srv := jrpc2.NewServer(handler.Map{
				"Echo": handler.New(func(_ context.Context, req echoReq) (string, error) { return req.Text, nil }),
			}, nil).Start(sch)
			cli := jrpc2.NewClient(cch, nil)

			var got string
			if err := cli.CallResult(context.Background(), "Echo", echoReq{Text: payload}, &got); err != nil {
				t.Errorf("Call Echo: unexpected error: %v", err)
			} else if got != payload {
				t.Errorf("Call Echo: got %d bytes, want %d", len(got), len(payload))
			}

			cli.Close()
			srv.Wait()
		})
	}
}
