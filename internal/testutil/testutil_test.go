package testutil_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/taskbuf/handoff"
	"github.com/taskbuf/handoff/internal/testutil"
)

func TestRecords(t *testing.T) {
	t.Run("Discrete", func(t *testing.T) {
		b := testutil.MustNew(t, 16, handoff.Discrete, nil)
		for _, rec := range []string{"ab", "cde", "f"} {
			testutil.MustSend(t, b, []byte(rec))
		}
		if diff := cmp.Diff([]string{"ab", "cde", "f"}, testutil.Records(t, b, 8)); diff != "" {
			t.Errorf("Records (-want, +got):\n%s", diff)
		}
	})
	t.Run("Stream", func(t *testing.T) {
		b := testutil.MustNew(t, 16, handoff.Stream, nil)
		testutil.MustSend(t, b, []byte("abcdefg"))
		if diff := cmp.Diff([]string{"abc", "def", "g"}, testutil.Records(t, b, 3)); diff != "" {
			t.Errorf("Records (-want, +got):\n%s", diff)
		}
	})
}
