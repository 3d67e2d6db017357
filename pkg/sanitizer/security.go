package sanitizer

import "html"

// EscapeHTML escapes the characters & < > " ' so s is safe inside markup.
func EscapeHTML(s string) string {
	return html.EscapeString(s)
}

// UnescapeHTML reverses EscapeHTML.
func UnescapeHTML(s string) string {
	return html.UnescapeString(s)
}

// LogSafe prepares untrusted text, such as a remote response body, for logs
// and user-facing messages: control characters are removed, the text is put
// on one line and cut to maxLen runes.
func LogSafe(s string, maxLen int) string {
	return MaxLength(SingleLine(RemoveControlChars(s)), maxLen)
}
