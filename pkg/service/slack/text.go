package slack

import "unicode/utf8"

// MaxSectionTextBytes is the size limit Slack applies to a section block's text
const MaxSectionTextBytes = 3000

// TruncateText shortens s to at most maxBytes without splitting a UTF-8
// sequence. An ellipsis is appended when anything was cut.
func TruncateText(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}

	const ellipsis = "…"
	limit := maxBytes - len(ellipsis)
	if limit <= 0 {
		return ""
	}

	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit] + ellipsis
}
