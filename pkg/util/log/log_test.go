// Copyright 2015 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package log

import (
	"bytes"
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/cockroachdb/logtags"
	"github.com/cockroachdb/redact"
	"github.com/stretchr/testify/require"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	var buf bytes.Buffer
	restore := SetOutput(&buf)
	prevNow := mainLog.now
	mainLog.now = func() time.Time {
		return time.Date(2025, 3, 4, 5, 6, 7, 8000, time.UTC)
	}
	t.Cleanup(func() {
		restore()
		mainLog.now = prevNow
		SetRedactable(false)
		SetVerbosity(0)
	})
	return &buf
}

func TestInfof(t *testing.T) {
	buf := captureLogs(t)
	ctx := logtags.AddTag(context.Background(), "flow", 7)
	Infof(ctx, "opened %d cursors", 3)
	re := regexp.MustCompile(`^I250304 05:06:07\.000008 log_test\.go:\d+ \[flow=7\] opened 3 cursors\n$`)
	require.Regexp(t, re, buf.String())
}

func TestSeverityLetters(t *testing.T) {
	buf := captureLogs(t)
	ctx := context.Background()
	Warningf(ctx, "w")
	Errorf(ctx, "e")
	Info(ctx, "i")
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 3)
	require.Equal(t, byte('W'), lines[0][0])
	require.Equal(t, byte('E'), lines[1][0])
	require.Equal(t, byte('I'), lines[2][0])
}

func TestVerbosity(t *testing.T) {
	buf := captureLogs(t)
	ctx := context.Background()
	require.False(t, V(1))
	VEventf(ctx, 1, "hidden")
	require.Zero(t, buf.Len())

	SetVerbosity(2)
	require.True(t, V(1))
	require.True(t, V(2))
	require.False(t, V(3))
	VEventf(ctx, 2, "shown %s", "now")
	VEvent(ctx, 3, "still hidden")
	require.Contains(t, buf.String(), "shown now")
	require.NotContains(t, buf.String(), "still hidden")
}

func TestRedactableOutput(t *testing.T) {
	buf := captureLogs(t)
	ctx := context.Background()

	Infof(ctx, "value %s safe %s", "secret", redact.Safe("public"))
	require.Contains(t, buf.String(), "value secret safe public")
	buf.Reset()

	SetRedactable(true)
	Infof(ctx, "value %s safe %s", "secret", redact.Safe("public"))
	require.Contains(t, buf.String(), "value ‹secret› safe public")
}

func TestSeverityString(t *testing.T) {
	require.Equal(t, "WARNING", Severity_WARNING.String())
	require.Equal(t, "UNKNOWN", Severity(42).String())
}
