// Copyright 2015 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package log implements the context-aware logging used throughout the
// execution layer. Log tags attached to the context (see logtags) are printed
// with every entry; message arguments go through redact so that sensitive
// values can be stripped from the output.
package log

import "context"

// V returns true if the logging verbosity is set to the specified level or
// higher.
func V(level int32) bool {
	return mainLog.verbosity.Load() >= level
}

// Infof logs to the INFO log.
// It extracts log tags from the context and logs them along with the given
// message. Arguments are handled in the manner of fmt.Printf.
func Infof(ctx context.Context, format string, args ...interface{}) {
	logDepth(ctx, 1, Severity_INFO, format, args)
}

// Info logs to the INFO log.
func Info(ctx context.Context, msg string) {
	logDepth(ctx, 1, Severity_INFO, msg, nil)
}

// InfofDepth logs to the INFO log, offsetting the caller's stack frame by
// 'depth'.
func InfofDepth(ctx context.Context, depth int, format string, args ...interface{}) {
	logDepth(ctx, depth+1, Severity_INFO, format, args)
}

// Warningf logs to the WARNING log.
func Warningf(ctx context.Context, format string, args ...interface{}) {
	logDepth(ctx, 1, Severity_WARNING, format, args)
}

// Errorf logs to the ERROR log.
func Errorf(ctx context.Context, format string, args ...interface{}) {
	logDepth(ctx, 1, Severity_ERROR, format, args)
}

// VEventf logs the formatted message if the verbosity is at least the given
// level.
func VEventf(ctx context.Context, level int32, format string, args ...interface{}) {
	if V(level) {
		logDepth(ctx, 1, Severity_INFO, format, args)
	}
}

// VEvent logs the message if the verbosity is at least the given level.
func VEvent(ctx context.Context, level int32, msg string) {
	if V(level) {
		logDepth(ctx, 1, Severity_INFO, msg, nil)
	}
}

func logDepth(ctx context.Context, depth int, sev Severity, format string, args []interface{}) {
	mainLog.outputLogEntry(mainLog.makeEntry(ctx, sev, depth+1, format, args))
}
