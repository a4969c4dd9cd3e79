// Package klog provides the kernel-wide structured logger.
//
// Until an output sink is attached, log output is captured by an in-memory
// ring buffer. Attaching a sink via SetOutputSink flushes the buffered
// output to it so that messages emitted during early boot are not lost.
package klog

import (
	"io"
	"sync"

	"github.com/sirupsen/logrus"
)

// ModuleField is the log field that carries the name of the kernel module
// that emitted an entry.
const ModuleField = "module"

var (
	out    = &sink{}
	logger = newLogger()
)

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.Out = out
	l.Formatter = &Formatter{}
	l.Level = logrus.InfoLevel
	return l
}

// sink routes formatted entries either to the early ring buffer or to the
// attached writer.
type sink struct {
	mu    sync.Mutex
	early ringBuffer
	w     io.Writer
}

func (s *sink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.w == nil {
		return s.early.Write(p)
	}
	return s.w.Write(p)
}

// SetOutputSink directs log output to w. Any output buffered so far is
// written to w first. Passing a nil writer detaches the current sink and
// resumes buffering.
func SetOutputSink(w io.Writer) {
	out.mu.Lock()
	defer out.mu.Unlock()

	out.w = w
	if w == nil {
		return
	}

	_, _ = io.Copy(w, &out.early)
	out.early.Reset()
}

// Logger returns the kernel logger.
func Logger() *logrus.Logger {
	return logger
}

// Module returns a log entry tagged with the supplied module name.
func Module(name string) *logrus.Entry {
	return logger.WithField(ModuleField, name)
}

// SetLevel adjusts the verbosity of the kernel logger.
func SetLevel(level logrus.Level) {
	logger.SetLevel(level)
}
