package mail

import (
	"bytes"
	"html/template"
)

const verifySubject = "Verify your email"

var verifyTmpl = template.Must(template.New("verify").Parse(`<p>Dear {{.Name}},</p>
<p>Thank you for registering. Please confirm your email address to activate your account.</p>
<p><a href="{{.URL}}" style="color:#fff;background:#0c831f;padding:10px 20px;border-radius:4px;text-decoration:none">Verify Email</a></p>
<p>If the button does not work, open this link: {{.URL}}</p>`))

// VerificationEmail renders the registration confirmation body.
func VerificationEmail(name, url string) (subject, body string, err error) {
	var buf bytes.Buffer
	if err := verifyTmpl.Execute(&buf, struct{ Name, URL string }{name, url}); err != nil {
		return "", "", err
	}
	return verifySubject, buf.String(), nil
}
