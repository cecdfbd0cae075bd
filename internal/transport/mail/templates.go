package mail

import (
	"fmt"
	"html/template"
	"strings"
)

type message struct {
	Subject string
	Body    string
}

var welcomeTmpl = template.Must(template.New("welcome").Parse(`
<p>Hi {{.Name}},</p>
<p>Welcome to Vitae. Your account is ready; sign in and start sharing.</p>
`))

var passwordResetTmpl = template.Must(template.New("password_reset").Parse(`
<p>Hi {{.Name}},</p>
<p>We received a request to reset your password. The link below is valid
for a limited time and can be used once:</p>
<p><a href="{{.ResetLink}}">Reset your password</a></p>
<p>If you did not request this, ignore this email.</p>
`))

var passwordChangedTmpl = template.Must(template.New("password_changed").Parse(`
<p>Hi {{.Name}},</p>
<p>Your password was just changed. Any previously issued sessions are no
longer valid.</p>
<p>If this was not you, reset your password immediately.</p>
`))

var accountLockedTmpl = template.Must(template.New("account_locked").Parse(`
<p>Hi {{.Name}},</p>
<p>Your account has been locked after too many failed sign-in attempts.
Use the password reset flow to regain access.</p>
`))

type templateData struct {
	Name      string
	ResetLink string
}

func renderWelcome(name string) (message, error) {
	body, err := render(welcomeTmpl, templateData{Name: name})
	if err != nil {
		return message{}, err
	}
	return message{Subject: "Welcome to Vitae", Body: body}, nil
}

func renderPasswordReset(name, resetLink string) (message, error) {
	body, err := render(passwordResetTmpl, templateData{Name: name, ResetLink: resetLink})
	if err != nil {
		return message{}, err
	}
	return message{Subject: "Reset your Vitae password", Body: body}, nil
}

func renderPasswordChanged(name string) (message, error) {
	body, err := render(passwordChangedTmpl, templateData{Name: name})
	if err != nil {
		return message{}, err
	}
	return message{Subject: "Your Vitae password was changed", Body: body}, nil
}

func renderAccountLocked(name string) (message, error) {
	body, err := render(accountLockedTmpl, templateData{Name: name})
	if err != nil {
		return message{}, err
	}
	return message{Subject: "Your Vitae account is locked", Body: body}, nil
}

func render(tmpl *template.Template, data templateData) (string, error) {
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("mail: render %s: %w", tmpl.Name(), err)
	}
	return sb.String(), nil
}

// buildMIME assembles an RFC 822 message with an HTML body.
func buildMIME(from, to, subject, htmlBody string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("From: %s\r\n", from))
	sb.WriteString(fmt.Sprintf("To: %s\r\n", to))
	sb.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	sb.WriteString("Content-Transfer-Encoding: 7bit\r\n\r\n")
	sb.WriteString(htmlBody)
	sb.WriteString("\r\n")
	return sb.String()
}
