package frame

import (
	"errors"
	"testing"
)

func TestHeaderTypeMismatch(t *testing.T) {
	cli, srv, err := Pipe(Header("text/plain"), 256, nil)
	if err != nil {
		t.Fatalf("Pipe: unexpected error: %v", err)
	}
	defer cli.Close()
	defer srv.Close()

	noError := func(err error) bool { return err == nil }
	tests := []struct {
		payload string
		ok      func(error) bool
	}{
		// Order of headers and extra headers do not matter.
		{"Content-Type: text/plain\r\nContent-Length: 3\r\n\r\nfoo", noError},
		{"Extra: ok\r\nContent-Length: 4\r\nContent-Type: text/plain\r\n\r\nquux", noError},

		// A mismatched content type is reported.
		{"Content-Length: 2\r\nContent-Type: application/json\r\n\r\nno", func(err error) bool {
			var v *ContentTypeMismatchError
			return errors.As(err, &v) && v.Got == "application/json" && v.Want == "text/plain"
		}},

		// So is a missing one.
		{"Content-Length: 5\r\n\r\nabcde", func(err error) bool {
			var v *ContentTypeMismatchError
			return errors.As(err, &v) && v.Got == "" && v.Want == "text/plain"
		}},
	}
	h := cli.(*hdr)
	for _, test := range tests {
		if _, err := h.wc.Write([]byte(test.payload)); err != nil {
			t.Fatalf("Write %q failed: %v", test.payload, err)
		}
		msg, err := srv.Recv()
		if !test.ok(err) {
			t.Errorf("Recv failed: %v\n >> %q", err, msg)
		} else {
			t.Logf("Recv OK: %q", msg)
		}
	}
}

func TestHeaderMalformed(t *testing.T) {
	cli, srv, err := Pipe(Header(""), 256, nil)
	if err != nil {
		t.Fatalf("Pipe: unexpected error: %v", err)
	}
	defer srv.Close()

	h := cli.(*hdr)
	h.wc.Write([]byte("Nothing: nohow\r\n\r\n"))
	if _, err := srv.Recv(); err == nil {
		t.Error("Recv without content-length did not fail")
	}
	h.wc.Write([]byte("Content-Length: 10\r\n\r\nshort"))
	cli.Close()
	if _, err := srv.Recv(); err == nil {
		t.Error("Recv of truncated record did not fail")
	}
}
