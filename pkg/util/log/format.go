// Copyright 2020 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package log

import (
	"bytes"
	"strconv"
)

// formatEntry renders an entry in the crdb-v1 layout:
//
//	Lyymmdd hh:mm:ss.uuuuuu file:line [tags] msg
//
// where L is the first letter of the severity.
func formatEntry(e logEntry, redactable bool) []byte {
	var buf bytes.Buffer
	buf.WriteByte(e.sev.letter())
	buf.WriteString(e.time.UTC().Format("060102 15:04:05.000000"))
	buf.WriteByte(' ')
	buf.WriteString(e.file)
	buf.WriteByte(':')
	buf.WriteString(strconv.Itoa(e.line))
	buf.WriteByte(' ')
	if e.tags != nil {
		buf.WriteByte('[')
		buf.WriteString(e.tags.String())
		buf.WriteString("] ")
	}
	if redactable {
		buf.WriteString(string(e.msg))
	} else {
		buf.WriteString(e.msg.StripMarkers())
	}
	if b := buf.Bytes(); len(b) == 0 || b[len(b)-1] != '\n' {
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}
