// Package frame carries discrete messages over byte streams, and in
// particular over pairs of stream-mode handoff buffers.
//
// A Framing wraps a reader and a writer into a Channel that adds a framing
// discipline to each message on send, and removes it on receipt. A Channel
// has the same method set as a jrpc2 channel, so it can be used directly as
// the transport for a JSON-RPC client or server.
package frame

import (
	"io"
	"strings"

	"github.com/taskbuf/handoff"
)

// A Channel represents the ability to transmit and receive data records. A
// channel does not interpret the contents of a record, but adds and removes
// framing so that records can be embedded in a byte stream. The methods of a
// Channel need not be safe for concurrent use.
type Channel interface {
	// Send transmits a record on the channel.
	Send([]byte) error

	// Recv returns the next available record from the channel. If no further
	// records are available, it returns io.EOF.
	Recv() ([]byte, error)

	// Close shuts down the sending side of the channel.
	Close() error
}

// A Framing converts a reader and a writer into a Channel with a particular
// message-framing discipline.
type Framing func(io.Reader, io.WriteCloser) Channel

// Pipe creates a pair of connected channels using the specified framing, over
// two stream-mode buffers of the given capacity. Records sent to client are
// received by server, and vice versa. If opts is not nil, it applies to both
// buffers; its TriggerLevel is ignored.
//
// Closing either channel closes the buffer it writes to: the peer receives
// any records already sent, then io.EOF.
func Pipe(framing Framing, capacity int, opts *handoff.Options) (client, server Channel, err error) {
	var o handoff.Options
	if opts != nil {
		o = *opts
	}
	o.TriggerLevel = 1

	c2s, err := handoff.New(capacity, handoff.Stream, named(o, "c2s"))
	if err != nil {
		return nil, nil, err
	}
	s2c, err := handoff.New(capacity, handoff.Stream, named(o, "s2c"))
	if err != nil {
		c2s.Close()
		return nil, nil, err
	}
	return framing(s2c, c2s), framing(c2s, s2c), nil
}

func named(o handoff.Options, dir string) *handoff.Options {
	if o.Name == "" {
		o.Name = dir
	} else {
		o.Name += "." + dir
	}
	return &o
}

// ByName returns the Framing described by the specified name, or nil if the
// name is unknown. The names currently understood are:
//
//	header:t -- corresponds to Header(t)
//	line     -- corresponds to Line
//	varint   -- corresponds to Varint
func ByName(name string) Framing {
	if t, ok := strings.CutPrefix(name, "header:"); ok {
		return Header(t)
	}
	return framings[name]
}

var framings = map[string]Framing{
	"line":   Line,
	"varint": Varint,
}
