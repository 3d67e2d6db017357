package sanitizer_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/checkoutkit/pkg/sanitizer"
)

func TestEscapeHTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain text untouched", "Transaction T1 completed", "Transaction T1 completed"},
		{"all five characters", `<a href="x">'&'</a>`, "&lt;a href=&#34;x&#34;&gt;&#39;&amp;&#39;&lt;/a&gt;"},
		{"script tag", "<script>alert(1)</script>", "&lt;script&gt;alert(1)&lt;/script&gt;"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizer.EscapeHTML(tt.input)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, tt.input, sanitizer.UnescapeHTML(got))
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"trims and lowercases", "  John.Doe@Example.COM ", "john.doe@example.com"},
		{"collapses dots", "john..doe@example.com", "john.doe@example.com"},
		{"strips edge dots", ".john.@example.com", "john@example.com"},
		{"no at sign", " NotAnEmail ", "notanemail"},
		{"two at signs", "a@b@c.com", "a@b@c.com"},
		{"empty", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizer.NormalizeEmail(tt.input))
		})
	}
}

func TestLogSafe(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "line one line two", sanitizer.LogSafe("line one\n\tline\x00 two\r\n", 100))
	assert.Equal(t, "abc...", sanitizer.LogSafe("abcdef", 3))
	assert.Equal(t, "", sanitizer.LogSafe("abc", 0))

	long := strings.Repeat("x", 500)
	assert.Len(t, sanitizer.LogSafe(long, 200), 203)
}

func TestCompose(t *testing.T) {
	t.Parallel()

	clean := sanitizer.Compose(sanitizer.Trim, sanitizer.NormalizeEmail)
	assert.Equal(t, "a@b.com", clean("  A@B.com\n"))
	assert.Equal(t, "x", sanitizer.Apply(" x ", sanitizer.Trim))
}
