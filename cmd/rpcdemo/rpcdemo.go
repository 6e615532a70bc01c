// Program rpcdemo serves a discrete buffer over JSON-RPC. The client and the
// server are connected by a framed pipe, itself made of two stream buffers,
// so every request and response crosses a handoff buffer on the way.
//
// Usage:
//
//	rpcdemo [options] <record>...
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"time"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/handler"
	"github.com/taskbuf/handoff"
	"github.com/taskbuf/handoff/frame"
	"github.com/taskbuf/handoff/internal/demo"
)

var (
	framing  = flag.String("framing", "varint", "Framing of the pipe (line, varint, header:<type>)")
	pipeSize = flag.Int("pipe", 64, "Capacity in bytes of each direction of the pipe")
	bufSize  = flag.Int("size", 64, "Capacity in bytes of the served buffer")
	wait     = flag.Duration("wait", 100*time.Millisecond, "Maximum wait the server applies to each call")
)

// bufferService exposes a discrete buffer as a set of RPC methods.
type bufferService struct {
	buf  *handoff.Buffer
	wait time.Duration
}

type sendReq struct {
	Data string `json:"data"`
}

type sendRsp struct {
	Sent int `json:"sent"`
}

type recvReq struct {
	Max int `json:"max"`
}

type recvRsp struct {
	Data string `json:"data"`
	OK   bool   `json:"ok"`
}

func (s bufferService) Send(ctx context.Context, req sendReq) (sendRsp, error) {
	ctx, cancel := context.WithTimeout(ctx, s.wait)
	defer cancel()
	n, err := s.buf.SendContext(ctx, []byte(req.Data))
	if errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	return sendRsp{Sent: n}, err
}

func (s bufferService) Receive(ctx context.Context, req recvReq) (recvRsp, error) {
	ctx, cancel := context.WithTimeout(ctx, s.wait)
	defer cancel()
	out := make([]byte, max(req.Max, 1))
	n, err := s.buf.ReceiveContext(ctx, out)
	if errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	return recvRsp{Data: string(out[:n]), OK: n > 0}, err
}

func (s bufferService) Stats(ctx context.Context) (handoff.Stats, error) {
	return s.buf.Stats(), nil
}

func main() {
	env := demo.Init("rpcdemo", `Send each <record> argument to a discrete buffer served over JSON-RPC,
then read the records back and print the buffer statistics. A record
longer than -size is rejected by the server with an error.
`)
	defer env.Close()

	nf := frame.ByName(*framing)
	if nf == nil {
		env.Fatalf("Unknown framing %q", *framing)
	}
	buf, err := handoff.New(*bufSize, handoff.Discrete, env.BufferOptions("served"))
	if err != nil {
		env.Fatalf("Creating the served buffer: %v", err)
	}
	defer buf.Close()

	cch, sch, err := frame.Pipe(nf, *pipeSize, env.BufferOptions("pipe"))
	if err != nil {
		env.Fatalf("Creating the pipe: %v", err)
	}

	svc := bufferService{buf: buf, wait: *wait}
	var sopts *jrpc2.ServerOptions
	if w := env.DebugWriter("rpc"); w != nil {
		sopts = &jrpc2.ServerOptions{Logger: jrpc2.StdLogger(log.New(w, "[server] ", 0))}
	}
	srv := jrpc2.NewServer(handler.Map{
		"Buffer.Send":    handler.New(svc.Send),
		"Buffer.Receive": handler.New(svc.Receive),
		"Buffer.Stats":   handler.New(svc.Stats),
	}, sopts).Start(sch)

	cli := jrpc2.NewClient(cch, nil)
	ctx := context.Background()

	records := flag.Args()
	if len(records) == 0 {
		records = []string{"alpha", "bravo", "charlie"}
	}
	for _, rec := range records {
		var rsp sendRsp
		if err := cli.CallResult(ctx, "Buffer.Send", sendReq{Data: rec}, &rsp); err != nil {
			env.Errorf("Send %q: %v", rec, err)
		} else if rsp.Sent == 0 {
			env.Infof("Send %q: timed out, the buffer is full", rec)
		} else {
			env.Infof("Send %q: %d bytes", rec, rsp.Sent)
		}
	}

	var st handoff.Stats
	if err := cli.CallResult(ctx, "Buffer.Stats", nil, &st); err != nil {
		env.Errorf("Stats: %v", err)
	} else {
		env.Infof("Buffer holds %d records in %d of %d bytes", st.Records, st.Used, st.Capacity)
	}

	for {
		var rsp recvRsp
		if err := cli.CallResult(ctx, "Buffer.Receive", recvReq{Max: *bufSize}, &rsp); err != nil {
			env.Errorf("Receive: %v", err)
			break
		} else if !rsp.OK {
			env.Infof("Receive: timed out, the buffer is empty")
			break
		}
		env.Infof("Receive: %q", rsp.Data)
	}

	cli.Close()
	if err := srv.Wait(); err != nil {
		env.Log.Debugf(env.Tag, "Server exited: %v", err)
	}
	env.Report()
}
