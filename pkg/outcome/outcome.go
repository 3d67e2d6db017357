// Package outcome defines the single user-visible message a checkout or
// analysis flow ends with.
package outcome

import (
	"github.com/dmitrymomot/checkoutkit/pkg/sanitizer"
)

// Kind classifies a Message for rendering.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	// KindWarning marks a secondary message that does not reverse the primary outcome.
	KindWarning Kind = "warning"
)

// Message is the text shown to the visitor at the end of a flow.
// Text is plain and may contain untrusted provider or server fields; use HTML
// when embedding it in markup.
type Message struct {
	Text string `json:"text"`
	Kind Kind   `json:"kind"`
}

func Success(text string) *Message { return &Message{Text: text, Kind: KindSuccess} }
func Error(text string) *Message   { return &Message{Text: text, Kind: KindError} }
func Warning(text string) *Message { return &Message{Text: text, Kind: KindWarning} }

// HTML returns Text with & < > " ' escaped.
func (m *Message) HTML() string {
	if m == nil {
		return ""
	}
	return sanitizer.EscapeHTML(m.Text)
}

func (m *Message) IsError() bool {
	return m != nil && m.Kind == KindError
}

func (m *Message) String() string {
	if m == nil {
		return ""
	}
	return string(m.Kind) + ": " + m.Text
}
