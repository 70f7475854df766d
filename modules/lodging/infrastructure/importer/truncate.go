package importer

import (
	"fmt"
	"strings"
)

// Truncate keeps the first and last halves of the output when it exceeds
// maxLines, replacing the middle with an elision marker. The orchestrator
// reports the truncated text but decides on the untruncated exit status.
func Truncate(s string, maxLines int) string {
	if maxLines <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	if len(lines) <= maxLines {
		return s
	}

	head := maxLines / 2
	tail := maxLines - head
	elided := len(lines) - head - tail

	out := make([]string, 0, maxLines+1)
	out = append(out, lines[:head]...)
	out = append(out, fmt.Sprintf("... [%d lines elided] ...", elided))
	out = append(out, lines[len(lines)-tail:]...)
	return strings.Join(out, "\n")
}
