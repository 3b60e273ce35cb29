// Package logging provides the structured logger shared across the engine.
// It is a thin layer over logrus, the way the rest of the corpus logs
// (plain logrus.Entry, WithField/WithFields for per-request context)
// rather than a bespoke levelled-logger abstraction.
package logging

import (
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

var traceSeq int64

// NextTraceID returns a new, process-wide, monotonically increasing id
// used to correlate every log line produced while servicing one read
// request, synchronous or async.
func NextTraceID() int64 {
	return atomic.AddInt64(&traceSeq, 1)
}

// Entry returns l, or a fresh entry on the standard logger if l is nil —
// every function that accepts an optional *logrus.Entry normalizes through
// this so call sites never need a nil check of their own.
func Entry(l *logrus.Entry) *logrus.Entry {
	if l == nil {
		return logrus.NewEntry(logrus.StandardLogger())
	}
	return l
}

// WithTrace tags l with the request's trace id.
func WithTrace(l *logrus.Entry, traceID int64) *logrus.Entry {
	return Entry(l).WithField("trace_id", traceID)
}
