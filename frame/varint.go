package frame

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
)

// Varint constructs a Channel that transmits and receives records on r and
// wc, each record prefixed by its length encoded in a varint as defined by
// the encoding/binary package.
func Varint(r io.Reader, wc io.WriteCloser) Channel {
	return &varint{wc: wc, rd: bufio.NewReader(r)}
}

// A varint implements Channel. Records sent on a varint channel are framed
// with a varint length prefix.
type varint struct {
	wc  io.WriteCloser
	rd  *bufio.Reader
	buf bytes.Buffer
}

// Send implements part of the Channel interface.
func (c *varint) Send(rec []byte) error {
	c.buf.Reset()
	c.buf.Write(binary.AppendUvarint(nil, uint64(len(rec))))
	c.buf.Write(rec)
	_, err := c.wc.Write(c.buf.Bytes())
	return err
}

// Recv implements part of the Channel interface.
func (c *varint) Recv() ([]byte, error) {
	ln, err := binary.ReadUvarint(c.rd)
	if err != nil {
		return nil, err
	}
	out := make([]byte, int(ln))
	if _, err := io.ReadFull(c.rd, out); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return out, nil
}

// Close implements part of the Channel interface.
func (c *varint) Close() error { return c.wc.Close() }
