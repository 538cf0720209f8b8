package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

// Template names, also used as metric labels.
const (
	TemplateOTP    = "otp"
	TemplateReset  = "reset_password"
	TemplateStatus = "status_change"
)

var templates = template.Must(template.New("mail").Parse(`
{{define "otp"}}<p>Hi {{.Name}},</p>
<p>Your verification code is <strong>{{.Code}}</strong>.</p>
<p>Enter it in the app to finish setting up your {{.Kind}} account.</p>{{end}}
{{define "reset_password"}}<p>Hi {{.Name}},</p>
<p>Your password reset code is <strong>{{.Code}}</strong>. It expires in {{.Minutes}} minutes.</p>
<p>If you did not ask for a reset you can ignore this email.</p>{{end}}
{{define "status_change"}}<p>Hi {{.Name}},</p>
<p>Your hirer account has been <strong>{{.Status}}</strong> by our team.</p>{{end}}
`))

func render(to, subject, name string, data interface{}) (Message, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return Message{}, fmt.Errorf("render %s: %w", name, err)
	}
	return Message{To: to, Subject: subject, HTML: buf.String(), Template: name}, nil
}

// OTPMessage builds the verification email.
func OTPMessage(to, name, kind, code string) (Message, error) {
	return render(to, "Your verification code", TemplateOTP, map[string]string{
		"Name": name,
		"Kind": kind,
		"Code": code,
	})
}

// ResetMessage builds the password reset email.
func ResetMessage(to, name, code string, validFor time.Duration) (Message, error) {
	return render(to, "Reset your password", TemplateReset, map[string]interface{}{
		"Name":    name,
		"Code":    code,
		"Minutes": int(validFor.Minutes()),
	})
}

// StatusMessage builds the hirer approval decision email.
func StatusMessage(to, name, status string) (Message, error) {
	return render(to, "Your account status changed", TemplateStatus, map[string]string{
		"Name":   name,
		"Status": status,
	})
}
