package mailer

import (
	"bytes"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"net/url"
	"sort"
	"strings"
	texttemplate "text/template"
)

// Template names accepted by Render.
const (
	TemplateWelcome       = "welcome"
	TemplateRegister      = "register"
	TemplateResetPassword = "reset-password"
)

var ErrUnknownTemplate = errors.New("mailer: unknown template")

// MissingFieldError reports template data that lacks a required key.
type MissingFieldError struct {
	Template string
	Field    string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("mailer: template %q requires %q", e.Template, e.Field)
}

// TemplateData is the caller-supplied context. AppName is filled in by the
// renderer.
type TemplateData map[string]string

type template struct {
	subject  string
	html     *htmltemplate.Template
	text     *texttemplate.Template
	required []string
	urls     []string
}

const layoutHTML = `<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<title>{{.appName}}</title>
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; background-color: #f6f9fc;">
	<div style="max-width: 600px; margin: 0 auto; padding: 20px; background-color: #ffffff;">
		<h2 style="text-align: center;">{{.appName}}</h2>
		{{template "content" .}}
		<p>Regards,<br>The {{.appName}} team</p>
	</div>
</body>
</html>
`

const buttonStyle = `background-color: #556cd6; color: #fff; padding: 12px 30px; text-decoration: none; border-radius: 4px; display: inline-block;`

var registry = map[string]*template{
	TemplateWelcome: mustTemplate(
		"Welcome to %s",
		`{{define "content"}}
		<p style="font-size: 24px; font-weight: bold; text-align: center;">Welcome, {{.name}}!</p>
		<p>Thank you for joining {{.appName}}. We are glad to help you manage your owners association.</p>
		<p style="text-align: center;"><a href="{{.loginUrl}}" style="`+buttonStyle+`">Open your account</a></p>
		<p>If you have any questions, just reply to this email.</p>
		{{end}}`,
		`Welcome, {{.name}}!

Thank you for joining {{.appName}}. Sign in here:

{{.loginUrl}}
`,
		[]string{"name", "loginUrl"},
		[]string{"loginUrl"},
	),
	TemplateRegister: mustTemplate(
		"Confirm your email address for %s",
		`{{define "content"}}
		<p style="font-size: 24px; font-weight: bold; text-align: center;">Confirm your email address</p>
		<p>Hi {{.name}},</p>
		<p>Thank you for registering with {{.appName}}. Please confirm your email address to activate your account:</p>
		<p style="text-align: center;"><a href="{{.verificationUrl}}" style="`+buttonStyle+`">Confirm email address</a></p>
		<p>If you did not register, you can ignore this email.</p>
		<p>The confirmation link is valid for 24 hours. If it has expired, please register again.</p>
		{{end}}`,
		`Hi {{.name}},

Please confirm your email address for {{.appName}} by visiting:

{{.verificationUrl}}

The link is valid for 24 hours. If you did not register, ignore this email.
`,
		[]string{"name", "verificationUrl"},
		[]string{"verificationUrl"},
	),
	TemplateResetPassword: mustTemplate(
		"Reset your %s password",
		`{{define "content"}}
		<p style="font-size: 24px; font-weight: bold; text-align: center;">Reset your password</p>
		<p>Hi {{.name}},</p>
		<p>We received a request to reset your password. Use the button below to choose a new one:</p>
		<p style="text-align: center;"><a href="{{.resetUrl}}" style="`+buttonStyle+`">Reset password</a></p>
		<p>If you did not request a reset, you can ignore this email.</p>
		{{end}}`,
		`Hi {{.name}},

Reset your {{.appName}} password here:

{{.resetUrl}}

If you did not request a reset, ignore this email.
`,
		[]string{"name", "resetUrl"},
		[]string{"resetUrl"},
	),
}

func mustTemplate(subject, content, text string, required, urls []string) *template {
	html := htmltemplate.Must(htmltemplate.New("layout").Option("missingkey=zero").Parse(layoutHTML))
	htmltemplate.Must(html.Parse(content))
	return &template{
		subject:  subject,
		html:     html,
		text:     texttemplate.Must(texttemplate.New("text").Option("missingkey=zero").Parse(text)),
		required: required,
		urls:     urls,
	}
}

// Templates lists the registered template names in sorted order.
func Templates() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Renderer renders registered templates for one application name.
type Renderer struct {
	appName string
}

// NewRenderer creates a Renderer.
func NewRenderer(appName string) *Renderer {
	return &Renderer{appName: appName}
}

// Render produces a message for name. subject overrides the template's
// default subject when non-empty.
func (r *Renderer) Render(name string, to []string, subject string, data TemplateData) (Message, error) {
	tmpl, ok := registry[name]
	if !ok {
		return Message{}, fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
	}

	ctx := make(map[string]string, len(data)+1)
	for k, v := range data {
		ctx[k] = strings.TrimSpace(v)
	}
	ctx["appName"] = r.appName

	for _, field := range tmpl.required {
		if ctx[field] == "" {
			return Message{}, &MissingFieldError{Template: name, Field: field}
		}
	}
	for _, field := range tmpl.urls {
		u, err := url.Parse(ctx[field])
		if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") {
			return Message{}, fmt.Errorf("mailer: template %q: %s must be an absolute http(s) URL", name, field)
		}
	}

	var htmlBuf, textBuf bytes.Buffer
	if err := tmpl.html.Execute(&htmlBuf, ctx); err != nil {
		return Message{}, fmt.Errorf("mailer: render %q html: %w", name, err)
	}
	if err := tmpl.text.Execute(&textBuf, ctx); err != nil {
		return Message{}, fmt.Errorf("mailer: render %q text: %w", name, err)
	}

	if subject == "" {
		subject = fmt.Sprintf(tmpl.subject, r.appName)
	}

	return Message{
		To:      to,
		Subject: subject,
		HTML:    htmlBuf.String(),
		Text:    textBuf.String(),
	}, nil
}
