package email

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

// TagTrialWelcome tags the trial welcome email in Postmark.
const TagTrialWelcome = "trial-welcome"

var welcomeTemplate = template.Must(template.New("welcome").Parse(`<!doctype html>
<html><body>
<p>Hi {{.Email}},</p>
<p>Your free trial is active until {{.Expires}}.</p>
<p>Run as many analyses as you like during the trial. When it ends you can subscribe to keep access.</p>
</body></html>`))

// TrialWelcome builds the email sent when a visitor starts a trial.
func TrialWelcome(to string, expires time.Time) (Message, error) {
	var buf bytes.Buffer
	err := welcomeTemplate.Execute(&buf, struct {
		Email   string
		Expires string
	}{
		Email:   to,
		Expires: expires.UTC().Format("January 2, 2006"),
	})
	if err != nil {
		return Message{}, fmt.Errorf("render welcome email: %w", err)
	}
	return Message{
		To:      to,
		Subject: "Your free trial has started",
		HTML:    buf.String(),
		Tag:     TagTrialWelcome,
	}, nil
}
