// Package mail sends transactional email over SMTP: the address
// confirmation sent on sign-up and email change, and the password
// reset message. Templates are embedded so the binary ships
// self-contained.
package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/smtp"
	"net/url"
	"strings"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

// Options configures the mailer.
type Options struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string

	// PublicURL is the server's externally reachable base URL, used to
	// build confirmation links.
	PublicURL string

	// PasswordTokenTTL is shown in the reset email so the reader knows
	// how long the link is good for.
	PasswordTokenTTL time.Duration

	// Enabled false turns every send into a logged no-op. Used in
	// development where no SMTP relay is available.
	Enabled bool

	Logger *slog.Logger
}

// Mailer sends account-lifecycle email over SMTP.
type Mailer struct {
	opts      Options
	templates *template.Template
	logger    *slog.Logger
}

// NewMailer creates a mailer with the embedded templates parsed.
func NewMailer(opts Options) (*Mailer, error) {
	templates, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse mail templates: %w", err)
	}

	return &Mailer{
		opts:      opts,
		templates: templates,
		logger:    opts.Logger,
	}, nil
}

// activationData feeds the activation template.
type activationData struct {
	FirstName string
	Link      string
}

// resetData feeds the password reset template.
type resetData struct {
	FirstName string
	Link      string
	ExpiresIn string
}

// SendActivation sends the email-confirmation message for a new or
// changed address.
func (m *Mailer) SendActivation(ctx context.Context, email, firstName, token string) error {
	body, err := m.render("activation.html", activationData{
		FirstName: firstName,
		Link:      m.link("activate", token),
	})
	if err != nil {
		return err
	}
	return m.send(ctx, email, "Confirm your Scrap email", body)
}

// SendPasswordReset sends the password reset message.
func (m *Mailer) SendPasswordReset(ctx context.Context, email, firstName, token string) error {
	body, err := m.render("password_reset.html", resetData{
		FirstName: firstName,
		Link:      m.link("reset-password", token),
		ExpiresIn: formatDuration(m.opts.PasswordTokenTTL),
	})
	if err != nil {
		return err
	}
	return m.send(ctx, email, "Reset your Scrap password", body)
}

func (m *Mailer) render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := m.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

func (m *Mailer) link(path, token string) string {
	base := strings.TrimSuffix(m.opts.PublicURL, "/")
	return fmt.Sprintf("%s/%s?token=%s", base, path, url.QueryEscape(token))
}

func (m *Mailer) send(ctx context.Context, to, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if !m.opts.Enabled {
		// No relay configured. Log enough to complete the flow by hand
		// during development.
		m.logger.Info("mail disabled, skipping send",
			"to", to,
			"subject", subject,
		)
		return nil
	}

	msg := buildMessage(m.opts.From, to, subject, htmlBody)
	addr := m.opts.Host + ":" + m.opts.Port

	var auth smtp.Auth
	if m.opts.Username != "" {
		auth = smtp.PlainAuth("", m.opts.Username, m.opts.Password, m.opts.Host)
	}

	if err := smtp.SendMail(addr, auth, m.opts.From, []string{to}, msg); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}

	m.logger.Debug("mail sent", "to", to, "subject", subject)
	return nil
}

// buildMessage assembles an RFC 5322 message with HTML body.
func buildMessage(from, to, subject, htmlBody string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	return []byte(b.String())
}

// formatDuration renders a duration the way a human would say it:
// "10 minutes", not "10m0s".
func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Hour && d%time.Hour == 0:
		hours := int(d / time.Hour)
		if hours == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", hours)
	case d >= time.Minute:
		minutes := int(d / time.Minute)
		if minutes == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", minutes)
	default:
		return d.String()
	}
}
