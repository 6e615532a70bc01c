package frame

import (
	"bufio"
	"bytes"
	"io"
)

// Line constructs a Channel that transmits and receives records on r and wc
// with line framing. Each record is terminated by a Unicode LF (10), and LF
// bytes are stripped from outbound records.
func Line(r io.Reader, wc io.WriteCloser) Channel {
	return line{wc: wc, rd: bufio.NewReader(r)}
}

// line implements Channel. Records sent on a line channel are framed by
// terminating newlines.
type line struct {
	wc io.WriteCloser
	rd *bufio.Reader
}

// Send implements part of the Channel interface.
func (c line) Send(rec []byte) error {
	out := make([]byte, 0, len(rec)+1)
	for _, b := range rec {
		if b != '\n' {
			out = append(out, b)
		}
	}
	_, err := c.wc.Write(append(out, '\n'))
	return err
}

// Recv implements part of the Channel interface.
func (c line) Recv() ([]byte, error) {
	var buf bytes.Buffer
	for {
		chunk, err := c.rd.ReadSlice('\n')
		buf.Write(chunk)
		if err == bufio.ErrBufferFull {
			continue // incomplete line
		} else if err == io.EOF && buf.Len() != 0 {
			return nil, io.ErrUnexpectedEOF
		} else if err != nil {
			return nil, err
		}
		return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
	}
}

// Close implements part of the Channel interface.
func (c line) Close() error { return c.wc.Close() }
