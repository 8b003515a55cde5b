package testutil

import (
	"bytes"
	"regexp"
)

var (
	uuidPattern      = regexp.MustCompile(`[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)
	timestampPattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})`)
)

// Normalize replaces run ids and timestamps with fixed placeholders and
// converts CRLF line endings so output compares across platforms.
func Normalize(data []byte) []byte {
	out := bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))
	out = uuidPattern.ReplaceAll(out, []byte("<id>"))
	out = timestampPattern.ReplaceAll(out, []byte("<time>"))
	return out
}
