// Package logging implements tagged, levelled console logging in the style of
// an embedded SDK. Each line names its level, the milliseconds elapsed since
// the logger was created, and the tag of the component that wrote it:
//
//	I (1234) stream: sent 10 bytes
//
// The threshold for each tag can be set separately, so that one component can
// be traced in detail while the rest of the program is quiet.
package logging

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// A Level is the severity of a log line. A line is written when its level is
// at or below the threshold for its tag.
type Level int

// Log levels, in increasing order of detail.
const (
	None Level = iota
	Error
	Warn
	Info
	Debug
	Verbose
)

var levelNames = [...]string{"none", "error", "warn", "info", "debug", "verbose"}

func (l Level) String() string {
	if l < None || l > Verbose {
		return fmt.Sprintf("Level(%d)", int(l))
	}
	return levelNames[l]
}

// letter reports the single-letter prefix for a line at level l.
func (l Level) letter() byte {
	if l <= None || l > Verbose {
		return '?'
	}
	return "EWIDV"[l-1]
}

// ParseLevel returns the level with the given name, ignoring case, or an
// error if there is no such level.
func ParseLevel(s string) (Level, error) {
	for i, name := range levelNames {
		if strings.EqualFold(s, name) {
			return Level(i), nil
		}
	}
	return None, fmt.Errorf("unknown log level %q", s)
}

// A Logger writes tagged log lines to an output. It is safe for concurrent
// use; each line is written with a single call to the output.
type Logger struct {
	start time.Time

	mu   sync.Mutex
	out  io.Writer
	def  Level
	tags map[string]Level
}

// New constructs a Logger that writes to w, with threshold def for all tags.
func New(w io.Writer, def Level) *Logger {
	return &Logger{start: time.Now(), out: w, def: def, tags: make(map[string]Level)}
}

// SetLevel sets the threshold for tag to lvl. The tag "*" sets the threshold
// for all tags, replacing any set earlier.
func (l *Logger) SetLevel(tag string, lvl Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if tag == "*" {
		l.def = lvl
		clear(l.tags)
	} else {
		l.tags[tag] = lvl
	}
}

// Level reports the threshold for tag.
func (l *Logger) Level(tag string) Level {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.levelLocked(tag)
}

func (l *Logger) levelLocked(tag string) Level {
	if lvl, ok := l.tags[tag]; ok {
		return lvl
	}
	return l.def
}

// Enabled reports whether a line at level lvl for tag would be written.
func (l *Logger) Enabled(tag string, lvl Level) bool {
	return lvl > None && lvl <= l.Level(tag)
}

// SetOutput replaces the output of l with w.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out = w
}

// Logf writes a line at level lvl for tag, if enabled.
func (l *Logger) Logf(lvl Level, tag, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if lvl <= None || lvl > l.levelLocked(tag) {
		return
	}
	l.writeLocked(lvl, tag, fmt.Sprintf(format, args...))
}

func (l *Logger) writeLocked(lvl Level, tag, msg string) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%c (%d) %s: %s", lvl.letter(), time.Since(l.start).Milliseconds(), tag, msg)
	if !strings.HasSuffix(msg, "\n") {
		buf.WriteByte('\n')
	}
	l.out.Write(buf.Bytes())
}

// Errorf writes a line at level Error for tag.
func (l *Logger) Errorf(tag, format string, args ...any) { l.Logf(Error, tag, format, args...) }

// Warnf writes a line at level Warn for tag.
func (l *Logger) Warnf(tag, format string, args ...any) { l.Logf(Warn, tag, format, args...) }

// Infof writes a line at level Info for tag.
func (l *Logger) Infof(tag, format string, args ...any) { l.Logf(Info, tag, format, args...) }

// Debugf writes a line at level Debug for tag.
func (l *Logger) Debugf(tag, format string, args ...any) { l.Logf(Debug, tag, format, args...) }

// Verbosef writes a line at level Verbose for tag.
func (l *Logger) Verbosef(tag, format string, args ...any) { l.Logf(Verbose, tag, format, args...) }

// Writer returns an io.Writer that logs each line written to it at level lvl
// for tag. It is suitable as the LogWriter in the options of other packages,
// so that their debug output shares the same sink and thresholds.
func (l *Logger) Writer(tag string, lvl Level) io.Writer {
	return tagWriter{l: l, tag: tag, lvl: lvl}
}

type tagWriter struct {
	l   *Logger
	tag string
	lvl Level
}

func (w tagWriter) Write(p []byte) (int, error) {
	w.l.mu.Lock()
	defer w.l.mu.Unlock()
	if w.lvl > None && w.lvl <= w.l.levelLocked(w.tag) {
		for line := range strings.Lines(string(p)) {
			w.l.writeLocked(w.lvl, w.tag, line)
		}
	}
	return len(p), nil
}
