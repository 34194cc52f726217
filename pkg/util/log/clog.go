// Copyright 2013 Google Inc. All Rights Reserved.
// Copyright 2017 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package log

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/groupflow/pkg/util/syncutil"
	"github.com/cockroachdb/logtags"
	"github.com/cockroachdb/redact"
)

// loggerT is the process-wide logger. Entries are written synchronously to
// the configured output.
type loggerT struct {
	mu struct {
		syncutil.Mutex
		out io.Writer
	}

	// verbosity is the level up to which V() and VEventf() are enabled.
	verbosity atomic.Int32
	// redactable, when set, keeps redaction markers in the output so that
	// the logs can be safely redacted later.
	redactable atomic.Bool

	// now is overridden in tests.
	now func() time.Time
}

var mainLog = newLogger(os.Stderr)

func newLogger(out io.Writer) *loggerT {
	l := &loggerT{now: time.Now}
	l.mu.out = out
	return l
}

// SetOutput redirects all log entries to w. It returns a function that
// restores the previous output.
func SetOutput(w io.Writer) (restore func()) {
	mainLog.mu.Lock()
	defer mainLog.mu.Unlock()
	prev := mainLog.mu.out
	mainLog.mu.out = w
	return func() {
		mainLog.mu.Lock()
		defer mainLog.mu.Unlock()
		mainLog.mu.out = prev
	}
}

// SetVerbosity sets the global verbosity level and returns the previous one.
func SetVerbosity(level int32) (prev int32) {
	return mainLog.verbosity.Swap(level)
}

// SetRedactable configures whether redaction markers are kept in the output.
func SetRedactable(redactable bool) {
	mainLog.redactable.Store(redactable)
}

// logEntry is a single formatted log event.
type logEntry struct {
	sev  Severity
	time time.Time
	file string
	line int
	tags *logtags.Buffer
	msg  redact.RedactableString
}

func (l *loggerT) makeEntry(
	ctx context.Context, sev Severity, depth int, format string, args []interface{},
) logEntry {
	e := logEntry{
		sev:  sev,
		time: l.now(),
		tags: logtags.FromContext(ctx),
	}
	if _, file, line, ok := runtime.Caller(depth + 1); ok {
		e.file, e.line = filepath.Base(file), line
	} else {
		e.file, e.line = "???", 1
	}
	if len(args) == 0 {
		e.msg = redact.Sprint(redact.Safe(format))
	} else {
		e.msg = redact.Sprintf(format, args...)
	}
	return e
}

func (l *loggerT) outputLogEntry(e logEntry) {
	buf := formatEntry(e, l.redactable.Load())
	l.mu.Lock()
	defer l.mu.Unlock()
	// Errors writing logs are not reported anywhere.
	_, _ = l.mu.out.Write(buf)
}
