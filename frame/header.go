package frame

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Header defines a framing that transmits and receives records using a header
// prefix similar to HTTP, in which the value of the string is used to describe
// the content encoding.
//
// Specifically, each record is sent in the format:
//
//	Content-Type: <mime-type>\r\n
//	Content-Length: <nbytes>\r\n
//	\r\n
//	<payload>
//
// The length (nbytes) is encoded as decimal digits. If mimeType == "", the
// Content-Type header is omitted on send and not checked on receipt.
// Otherwise a received record whose type does not match mimeType is reported
// as a *ContentTypeMismatchError.
func Header(mimeType string) Framing {
	return func(r io.Reader, wc io.WriteCloser) Channel {
		return &hdr{mtype: mimeType, wc: wc, rd: bufio.NewReader(r)}
	}
}

// ContentTypeMismatchError is reported by the Recv method of a Header
// channel when the content type of a record does not match the type the
// channel was created with.
type ContentTypeMismatchError struct {
	Got, Want string
}

func (e *ContentTypeMismatchError) Error() string {
	if e.Got == "" {
		return fmt.Sprintf("missing content-type, want %q", e.Want)
	}
	return fmt.Sprintf("got content-type %q, want %q", e.Got, e.Want)
}

// An hdr implements Channel. Records sent on a hdr channel are framed as a
// header/body transaction, similar to HTTP.
type hdr struct {
	mtype string
	wc    io.WriteCloser
	rd    *bufio.Reader
	buf   bytes.Buffer
}

// Send implements part of the Channel interface.
func (h *hdr) Send(rec []byte) error {
	h.buf.Reset()
	if h.mtype != "" {
		fmt.Fprintf(&h.buf, "Content-Type: %s\r\n", h.mtype)
	}
	fmt.Fprintf(&h.buf, "Content-Length: %d\r\n\r\n", len(rec))
	h.buf.Write(rec)
	_, err := h.wc.Write(h.buf.Bytes())
	return err
}

// Recv implements part of the Channel interface.
func (h *hdr) Recv() ([]byte, error) {
	p := make(map[string]string)
	for {
		raw, err := h.rd.ReadString('\n')
		if err == io.EOF && raw == "" && len(p) == 0 {
			return nil, io.EOF
		} else if err == io.EOF {
			return nil, io.ErrUnexpectedEOF
		} else if err != nil {
			return nil, err
		}
		line := strings.TrimRight(raw, "\r\n")
		if line == "" {
			break
		}
		key, val, ok := strings.Cut(line, ":")
		if !ok {
			return nil, errors.New("invalid header line")
		}
		p[strings.ToLower(key)] = strings.TrimSpace(val)
	}

	// Parse out the required content-length field. Unknown header fields are
	// ignored.
	clen, ok := p["content-length"]
	if !ok {
		return nil, errors.New("missing required content-length")
	}
	size, err := strconv.Atoi(clen)
	if err != nil {
		return nil, fmt.Errorf("invalid content-length: %w", err)
	} else if size < 0 {
		return nil, errors.New("negative content-length")
	}

	// ReadFull, because the buffered reader may issue only one read to the
	// underlying source, which may deliver less than the whole record.
	data := make([]byte, size)
	if _, err := io.ReadFull(h.rd, data); err != nil {
		return nil, err
	}
	if ctype := p["content-type"]; h.mtype != "" && ctype != h.mtype {
		return data, &ContentTypeMismatchError{Got: ctype, Want: h.mtype}
	}
	return data, nil
}

// Close implements part of the Channel interface.
func (h *hdr) Close() error { return h.wc.Close() }
